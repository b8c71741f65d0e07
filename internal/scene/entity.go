package scene

import (
	"fmt"

	"github.com/san-kum/arfall/internal/dynamo"
	"github.com/san-kum/arfall/internal/physics"
	"github.com/san-kum/arfall/internal/raysource"
	"gonum.org/v1/gonum/spatial/r3"
)

// EntityID is assigned by Scene.Add and never reused within a scene.
type EntityID uint64

type Kind int

const (
	KindParticle Kind = iota
	KindUIControl
	KindStaticProp
)

func (k Kind) String() string {
	switch k {
	case KindParticle:
		return "particle"
	case KindUIControl:
		return "ui"
	case KindStaticProp:
		return "prop"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Payload is the tagged part of an entity. The set of payloads is closed.
type Payload interface {
	Kind() Kind
	sealed()
}

// Particle points at a body owned by a physics.Field.
type Particle struct {
	ID   physics.ID
	Body *physics.Particle
}

func (*Particle) Kind() Kind { return KindParticle }
func (*Particle) sealed()    {}

type Role int

const (
	RoleButton Role = iota
	RoleBoard
)

func (r Role) String() string {
	if r == RoleBoard {
		return "board"
	}
	return "button"
}

// ClickContext is passed to a control's action.
type ClickContext struct {
	Source raysource.SourceID
	Point  r3.Vec
	Entity *Entity
}

// UIControl is an opaque panel target. Size is the full box extent in the
// entity's local frame.
type UIControl struct {
	Role    Role
	Size    r3.Vec
	Text    string
	OnClick func(ClickContext)
}

func (*UIControl) Kind() Kind { return KindUIControl }
func (*UIControl) sealed()    {}

// SetText replaces the displayed text.
func (u *UIControl) SetText(s string) { u.Text = s }

// Actionable reports whether a hit on the control triggers anything.
func (u *UIControl) Actionable() bool {
	return u.Role == RoleButton && u.OnClick != nil
}

// StaticProp is scenery that never takes part in ray casts.
type StaticProp struct{}

func (*StaticProp) Kind() Kind { return KindStaticProp }
func (*StaticProp) sealed()    {}

// Entity is a transform plus one payload. Parent, when set, makes Transform
// relative to the parent's world pose.
type Entity struct {
	ID        EntityID
	Name      string
	Transform dynamo.Pose
	Parent    *Entity
	Payload   Payload
}

func (e *Entity) Kind() Kind {
	if e.Payload == nil {
		return KindStaticProp
	}
	return e.Payload.Kind()
}

// WorldPose resolves the parent chain. A particle's pose is its body
// position with no rotation.
func (e *Entity) WorldPose() dynamo.Pose {
	if p, ok := e.Payload.(*Particle); ok {
		return dynamo.Pose{Position: p.Body.Position, Orientation: dynamo.Identity}
	}
	if e.Parent == nil {
		return e.Transform
	}
	return e.Parent.WorldPose().Compose(e.Transform)
}

func (e *Entity) Position() r3.Vec {
	return e.WorldPose().Position
}

// SetPosition moves the entity to a world position.
func (e *Entity) SetPosition(p r3.Vec) {
	if b, ok := e.Payload.(*Particle); ok {
		b.Body.Position = p
		return
	}
	if e.Parent == nil {
		e.Transform.Position = p
		return
	}
	e.Transform.Position = e.Parent.WorldPose().ApplyInverse(p)
}

// AsParticle returns the particle payload, if any.
func (e *Entity) AsParticle() (*Particle, bool) {
	p, ok := e.Payload.(*Particle)
	return p, ok
}

func (e *Entity) AsUIControl() (*UIControl, bool) {
	u, ok := e.Payload.(*UIControl)
	return u, ok
}
