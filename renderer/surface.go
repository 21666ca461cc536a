// Package renderer defines the drawing surface contract and a headless
// software raster surface. The window surface lives in renderer/rlsurface so
// that code depending only on Surface does not link raylib.
package renderer

import (
	"image/color"
	"math"

	"github.com/pthm-cable/framebench/layout"
)

// Surface is a drawing target with a save/restore transform stack.
// Geometry passed to the fill methods is in content coordinates and is
// mapped through the current transform.
type Surface interface {
	// Clear fills the whole surface with the background colour.
	Clear()
	// Save pushes the current transform.
	Save()
	// Restore pops the transform pushed by the matching Save.
	Restore()
	// Transform post-multiplies the current transform by m.
	Transform(m layout.Mat2D)

	FillCircle(center layout.Point, radius float32, c color.RGBA)
	FillPolygon(points []layout.Point, c color.RGBA)

	// Resize changes the drawable area in pixels.
	Resize(width, height int)
}

// TransformStack implements the Save/Restore/Transform part of Surface.
// Surfaces embed it and map geometry through Current.
type TransformStack struct {
	current layout.Mat2D
	saved   []layout.Mat2D
}

// NewTransformStack returns a stack holding the identity transform.
func NewTransformStack() TransformStack {
	return TransformStack{current: layout.Identity()}
}

// Current returns the transform applied to geometry.
func (s *TransformStack) Current() layout.Mat2D {
	return s.current
}

func (s *TransformStack) Save() {
	s.saved = append(s.saved, s.current)
}

// Restore with nothing saved resets to identity.
func (s *TransformStack) Restore() {
	n := len(s.saved)
	if n == 0 {
		s.current = layout.Identity()
		return
	}
	s.current = s.saved[n-1]
	s.saved = s.saved[:n-1]
}

func (s *TransformStack) Transform(m layout.Mat2D) {
	s.current = s.current.Mul(m)
}

// Depth returns the number of unmatched Save calls.
func (s *TransformStack) Depth() int {
	return len(s.saved)
}

// circleSegments is the polygon resolution used to approximate circles on
// surfaces without a native circle primitive.
const circleSegments = 24

// circlePolygon appends the vertices of a circle approximation to dst.
func circlePolygon(dst []layout.Point, center layout.Point, radius float32) []layout.Point {
	for i := 0; i < circleSegments; i++ {
		p := layout.Rotate(float32(i) * 2 * math.Pi / circleSegments).Apply(layout.Point{X: radius})
		dst = append(dst, layout.Point{X: center.X + p.X, Y: center.Y + p.Y})
	}
	return dst
}
