// Package scene is the composition layer: every entity is a transform plus a
// tagged [Payload] (particle, UI control or static prop). Ray casts run
// against particles as spheres and UI controls as oriented boxes.
package scene
