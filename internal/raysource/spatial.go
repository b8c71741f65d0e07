package raysource

import (
	"github.com/san-kum/arfall/internal/dynamo"
)

// Spatial turns a tracked controller pose into rays along the controller's
// forward axis.
type Spatial struct {
	pose      dynamo.Pose
	tracked   bool
	selecting bool
	q         queue
}

func NewSpatial() *Spatial {
	return &Spatial{pose: dynamo.IdentityPose()}
}

func (s *Spatial) ID() SourceID { return Controller }

func (s *Spatial) ray() dynamo.Ray {
	return dynamo.NewRay(s.pose.Position, s.pose.Rotate(dynamo.Forward))
}

// UpdatePose records the controller transform for this frame and emits a
// Move while select is held.
func (s *Spatial) UpdatePose(p dynamo.Pose) {
	s.pose = p
	s.tracked = true
	if s.selecting {
		s.q.push(Event{Source: Controller, Phase: Move, Ray: s.ray()})
	}
}

func (s *Spatial) SelectStart() {
	if !s.tracked {
		return
	}
	s.selecting = true
	s.q.push(Event{Source: Controller, Phase: Begin, Ray: s.ray()})
}

func (s *Spatial) SelectEnd() {
	if !s.selecting {
		return
	}
	s.selecting = false
	s.q.push(Event{Source: Controller, Phase: End, Ray: s.ray()})
}

func (s *Spatial) Squeeze() {
	s.q.push(Event{Source: Controller, Phase: Command, Ray: s.ray(), Command: ToggleGround})
}

// EndSession releases any held select and forgets the pose.
func (s *Spatial) EndSession() {
	s.SelectEnd()
	s.tracked = false
}

func (s *Spatial) Selecting() bool { return s.selecting }

func (s *Spatial) CurrentRay() (dynamo.Ray, bool) {
	if !s.tracked {
		return dynamo.Ray{}, false
	}
	return s.ray(), true
}

func (s *Spatial) Drain() []Event { return s.q.drain() }
