package frames

import (
	"context"
	"fmt"

	"github.com/san-kum/arfall/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReferenceSpace is a coordinate frame poses can be resolved in. Origin is
// the space's pose in tracking coordinates.
type ReferenceSpace struct {
	Name   string
	Origin dynamo.Pose
}

// Local is the tracking frame itself.
var Local = ReferenceSpace{Name: "local", Origin: dynamo.IdentityPose()}

// DetectedPlane is a plane as reported for one frame. Its pose is looked up
// through Frame.Pose.
type DetectedPlane struct {
	Handle  string
	Polygon []r3.Vec
}

type InputKind int

const (
	PointerDown InputKind = iota
	PointerMove
	PointerUp
	PointerCancel
	ControllerPose
	SelectStart
	SelectEnd
	Squeeze
	SessionEnd
)

var inputNames = map[InputKind]string{
	PointerDown:    "pointer_down",
	PointerMove:    "pointer_move",
	PointerUp:      "pointer_up",
	PointerCancel:  "pointer_cancel",
	ControllerPose: "controller_pose",
	SelectStart:    "select_start",
	SelectEnd:      "select_end",
	Squeeze:        "squeeze",
	SessionEnd:     "session_end",
}

func (k InputKind) String() string {
	if s, ok := inputNames[k]; ok {
		return s
	}
	return fmt.Sprintf("InputKind(%d)", int(k))
}

func ParseInputKind(s string) (InputKind, error) {
	for k, name := range inputNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: input kind %q", dynamo.ErrUnknownName, s)
}

// Input is one raw device event. X and Y are pixels for pointer kinds;
// Pose is the controller transform for ControllerPose.
type Input struct {
	Kind InputKind
	X, Y float64
	Pose dynamo.Pose
}

// Frame is everything the world consumes for one turn. A nil Planes slice
// means plane detection reported nothing this frame.
type Frame struct {
	Index  int
	Time   float64
	Planes []DetectedPlane
	Input  []Input

	poses map[string]dynamo.Pose
}

// AddPlane appends a plane. A nil pose leaves the plane without a pose for
// this frame. Poses resolve by handle, so a handle already used in this
// frame is rejected and the frame is left unchanged.
func (f *Frame) AddPlane(handle string, polygon []r3.Vec, pose *dynamo.Pose) error {
	for _, p := range f.Planes {
		if p.Handle == handle {
			return fmt.Errorf("%w: duplicate plane handle %q", dynamo.ErrParameterBounds, handle)
		}
	}
	f.Planes = append(f.Planes, DetectedPlane{Handle: handle, Polygon: polygon})
	if pose == nil {
		return nil
	}
	if f.poses == nil {
		f.poses = make(map[string]dynamo.Pose)
	}
	f.poses[handle] = *pose
	return nil
}

// Pose resolves the pose of a plane relative to space.
func (f Frame) Pose(handle string, space ReferenceSpace) (dynamo.Pose, bool) {
	p, ok := f.poses[handle]
	if !ok {
		return dynamo.Pose{}, false
	}
	return space.Origin.Inverse().Compose(p), true
}

// Source yields frames until it returns io.EOF.
type Source interface {
	Next(ctx context.Context) (Frame, error)
}
