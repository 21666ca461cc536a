// Package rlsurface implements renderer.Surface on the raylib window.
package rlsurface

import (
	"image/color"
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/framebench/layout"
	"github.com/pthm-cable/framebench/renderer"
)

var _ renderer.Surface = (*Surface)(nil)

// Surface draws into the current raylib window.
// All methods must be called between rl.BeginDrawing and rl.EndDrawing.
type Surface struct {
	renderer.TransformStack
	background rl.Color
	width      int32
	height     int32
	scratch    []rl.Vector2
}

// New creates a surface for a window of the given size.
func New(width, height int, background color.RGBA) *Surface {
	return &Surface{
		TransformStack: renderer.NewTransformStack(),
		background:     rl.NewColor(background.R, background.G, background.B, background.A),
		width:          int32(width),
		height:         int32(height),
	}
}

// Clear fills the window with the background colour.
func (s *Surface) Clear() {
	rl.ClearBackground(s.background)
}

// FillCircle draws a filled circle.
func (s *Surface) FillCircle(center layout.Point, radius float32, c color.RGBA) {
	p := s.Current().Apply(center)
	r := radius * s.Current().ScaleFactor()
	rl.DrawCircleV(rl.Vector2{X: p.X, Y: p.Y}, r, rl.NewColor(c.R, c.G, c.B, c.A))
}

// FillPolygon draws a filled polygon as a triangle fan around its centroid,
// which covers convex and star-shaped outlines.
func (s *Surface) FillPolygon(points []layout.Point, c color.RGBA) {
	n := len(points)
	if n < 3 {
		return
	}
	s.scratch = append(s.scratch[:0], rl.Vector2{})
	var cx, cy, area float32
	for i, pt := range points {
		p := s.Current().Apply(pt)
		q := s.Current().Apply(points[(i+1)%n])
		s.scratch = append(s.scratch, rl.Vector2{X: p.X, Y: p.Y})
		cx += p.X
		cy += p.Y
		area += p.X*q.Y - q.X*p.Y
	}
	s.scratch[0] = rl.Vector2{X: cx / float32(n), Y: cy / float32(n)}
	// raylib culls fans that are not counter-clockwise on screen
	// (negative signed area with y pointing down).
	if area > 0 {
		slices.Reverse(s.scratch[1:])
	}
	s.scratch = append(s.scratch, s.scratch[1])
	rl.DrawTriangleFan(s.scratch, rl.NewColor(c.R, c.G, c.B, c.A))
}

// Resize records the new window size.
func (s *Surface) Resize(width, height int) {
	s.width = int32(width)
	s.height = int32(height)
}
