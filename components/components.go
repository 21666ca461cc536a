// Package components defines ECS components for the animated scene.
package components

import "image/color"

// Transform places a shape on the artboard.
type Transform struct {
	X, Y     float32
	Rotation float32 // radians
	Scale    float32
}

// Orbit moves an entity around a fixed centre.
type Orbit struct {
	CX, CY float32
	Radius float32
	Angle  float32 // current angle, radians
	Speed  float32 // radians per second
}

// Spin rotates an entity about its own centre.
type Spin struct {
	Rate float32 // radians per second
}

// Pulse oscillates an entity's scale around 1.
type Pulse struct {
	Phase  float32
	Speed  float32 // radians per second
	Amount float32 // peak deviation from scale 1
}

// ShapeKind selects the primitive used to draw an entity.
type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota
	ShapeRect
	ShapeStar
)

// Shape describes how an entity is drawn.
type Shape struct {
	Kind  ShapeKind
	Size  float32 // radius for circles and stars, half-extent for rects
	Color color.RGBA
}
