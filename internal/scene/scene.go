package scene

import (
	"math"

	"github.com/san-kum/arfall/internal/dynamo"
)

// Scene holds entities in insertion order.
type Scene struct {
	entities []*Entity
	byID     map[EntityID]*Entity
	nextID   EntityID

	// PickRadius, when positive, replaces each particle's collision offset
	// as its ray cast radius.
	PickRadius float64
}

func New() *Scene {
	return &Scene{byID: make(map[EntityID]*Entity), nextID: 1}
}

// Add assigns an id and stores e.
func (s *Scene) Add(e *Entity) *Entity {
	e.ID = s.nextID
	s.nextID++
	s.entities = append(s.entities, e)
	s.byID[e.ID] = e
	return e
}

// Remove drops the entity. Children keep their parent pointer but are not
// removed.
func (s *Scene) Remove(id EntityID) bool {
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, e := range s.entities {
		if e.ID == id {
			s.entities = append(s.entities[:i], s.entities[i+1:]...)
			break
		}
	}
	return true
}

func (s *Scene) Get(id EntityID) (*Entity, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// Lookup returns the first entity with the given name.
func (s *Scene) Lookup(name string) (*Entity, bool) {
	for _, e := range s.entities {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

func (s *Scene) Len() int { return len(s.entities) }

func (s *Scene) Entities() []*Entity { return s.entities }

// Interactive returns the entities a ray cast considers: particles and UI
// controls.
func (s *Scene) Interactive() []*Entity {
	out := make([]*Entity, 0, len(s.entities))
	for _, e := range s.entities {
		if k := e.Kind(); k == KindParticle || k == KindUIControl {
			out = append(out, e)
		}
	}
	return out
}

// Raycast returns the nearest interactive hit with t in [tMin, tMax].
func (s *Scene) Raycast(ray dynamo.Ray, tMin, tMax float64) (Hit, bool) {
	if !ray.Valid() {
		return Hit{}, false
	}
	best := Hit{T: math.Inf(1)}
	found := false
	for _, e := range s.entities {
		var (
			t  float64
			ok bool
		)
		switch p := e.Payload.(type) {
		case *Particle:
			r := p.Body.Offset
			if s.PickRadius > 0 {
				r = s.PickRadius
			}
			t, ok = hitSphere(ray, p.Body.Position, r, tMin, tMax)
		case *UIControl:
			t, ok = hitBox(ray, e.WorldPose(), p.Size, tMin, tMax)
		default:
			continue
		}
		if ok && t < best.T {
			best = Hit{Entity: e, Point: ray.At(t), T: t}
			found = true
		}
	}
	return best, found
}
