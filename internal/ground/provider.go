package ground

import (
	"fmt"
	"strings"

	"github.com/san-kum/arfall/internal/dynamo"
)

// Provider reports the floor height under (x, z). ok is false where there is
// no floor.
type Provider interface {
	Height(x, z float64) (h float64, ok bool)
}

// Fixed is a flat virtual floor.
type Fixed struct {
	Value float64
}

func (f Fixed) Height(x, z float64) (float64, bool) {
	return f.Value, true
}

// Mode selects the active provider of a world.
type Mode int

const (
	ModeFixed Mode = iota
	ModeDetected
)

func (m Mode) String() string {
	switch m {
	case ModeFixed:
		return "fixed"
	case ModeDetected:
		return "detected"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeDetected {
		return ModeFixed
	}
	return ModeDetected
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed", "":
		return ModeFixed, nil
	case "detected":
		return ModeDetected, nil
	}
	return ModeFixed, fmt.Errorf("%w: ground mode %q", dynamo.ErrUnknownName, s)
}

// QueryMode chooses how detected planes produce a height.
type QueryMode int

const (
	// Containment finds the planes whose polygon contains the point and
	// solves their plane equation.
	Containment QueryMode = iota
	// Lowest ignores polygons and uses the minimum plane position height.
	Lowest
)

func (q QueryMode) String() string {
	if q == Lowest {
		return "lowest"
	}
	return "containment"
}

func ParseQueryMode(s string) (QueryMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "containment", "":
		return Containment, nil
	case "lowest":
		return Lowest, nil
	}
	return Containment, fmt.Errorf("%w: query mode %q", dynamo.ErrUnknownName, s)
}

// Overlap picks a height when several planes contain the same point.
type Overlap int

const (
	First Overlap = iota
	LowestHeight
)

func (o Overlap) String() string {
	if o == LowestHeight {
		return "lowest"
	}
	return "first"
}

func ParseOverlap(s string) (Overlap, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first", "":
		return First, nil
	case "lowest":
		return LowestHeight, nil
	}
	return First, fmt.Errorf("%w: overlap policy %q", dynamo.ErrUnknownName, s)
}
