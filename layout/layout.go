// Package layout maps animation content into the viewport using fit and
// alignment rules, and tracks the viewport size across resizes.
package layout

import (
	"fmt"
	"math"
	"strings"
)

// Point is a 2D coordinate.
type Point struct {
	X, Y float32
}

// Rect is an axis-aligned rectangle given by its min and max corners.
type Rect struct {
	MinX, MinY, MaxX, MaxY float32
}

// Width returns the horizontal extent.
func (r Rect) Width() float32 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rect) Height() float32 { return r.MaxY - r.MinY }

// Contains reports whether p lies inside r (edges inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Mat2D is a 2D affine transform:
//
//	| A C Tx |
//	| B D Ty |
type Mat2D struct {
	A, B, C, D, Tx, Ty float32
}

// Identity returns the identity transform.
func Identity() Mat2D {
	return Mat2D{A: 1, D: 1}
}

// Translate returns a translation.
func Translate(x, y float32) Mat2D {
	return Mat2D{A: 1, D: 1, Tx: x, Ty: y}
}

// Scale returns a (possibly non-uniform) scale.
func Scale(sx, sy float32) Mat2D {
	return Mat2D{A: sx, D: sy}
}

// Rotate returns a rotation by angle radians.
func Rotate(angle float32) Mat2D {
	sin, cos := math.Sincos(float64(angle))
	s, c := float32(sin), float32(cos)
	return Mat2D{A: c, B: s, C: -s, D: c}
}

// Mul returns m * n: n is applied first, then m.
func (m Mat2D) Mul(n Mat2D) Mat2D {
	return Mat2D{
		A:  m.A*n.A + m.C*n.B,
		B:  m.B*n.A + m.D*n.B,
		C:  m.A*n.C + m.C*n.D,
		D:  m.B*n.C + m.D*n.D,
		Tx: m.A*n.Tx + m.C*n.Ty + m.Tx,
		Ty: m.B*n.Tx + m.D*n.Ty + m.Ty,
	}
}

// Apply transforms a point.
func (m Mat2D) Apply(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y + m.Tx,
		Y: m.B*p.X + m.D*p.Y + m.Ty,
	}
}

// ScaleFactor returns the geometric mean of the axis scales, used for
// lengths such as radii that have no direction.
func (m Mat2D) ScaleFactor() float32 {
	sx := math.Hypot(float64(m.A), float64(m.B))
	sy := math.Hypot(float64(m.C), float64(m.D))
	return float32(math.Sqrt(sx * sy))
}

// Fit selects how content is scaled into the frame.
type Fit int

const (
	FitContain Fit = iota
	FitCover
	FitFill
	FitWidth
	FitHeight
	FitNone
	FitScaleDown
)

var fitNames = map[Fit]string{
	FitContain:   "contain",
	FitCover:     "cover",
	FitFill:      "fill",
	FitWidth:     "fitWidth",
	FitHeight:    "fitHeight",
	FitNone:      "none",
	FitScaleDown: "scaleDown",
}

func (f Fit) String() string {
	if name, ok := fitNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Fit(%d)", int(f))
}

// ParseFit converts a config name (case-insensitive) to a Fit.
func ParseFit(s string) (Fit, error) {
	for f, name := range fitNames {
		if strings.EqualFold(name, s) {
			return f, nil
		}
	}
	return FitContain, fmt.Errorf("unknown fit %q", s)
}

// Alignment positions content within the frame. X and Y range over [-1, 1]:
// -1 is left/top, 0 is centre, 1 is right/bottom.
type Alignment struct {
	X, Y float32
}

var (
	TopLeft      = Alignment{-1, -1}
	TopCenter    = Alignment{0, -1}
	TopRight     = Alignment{1, -1}
	CenterLeft   = Alignment{-1, 0}
	Center       = Alignment{0, 0}
	CenterRight  = Alignment{1, 0}
	BottomLeft   = Alignment{-1, 1}
	BottomCenter = Alignment{0, 1}
	BottomRight  = Alignment{1, 1}
)

var alignmentNames = map[string]Alignment{
	"topLeft":      TopLeft,
	"topCenter":    TopCenter,
	"topRight":     TopRight,
	"centerLeft":   CenterLeft,
	"center":       Center,
	"centerRight":  CenterRight,
	"bottomLeft":   BottomLeft,
	"bottomCenter": BottomCenter,
	"bottomRight":  BottomRight,
}

// ParseAlignment converts a config name (case-insensitive) to an Alignment.
func ParseAlignment(s string) (Alignment, error) {
	for name, a := range alignmentNames {
		if strings.EqualFold(name, s) {
			return a, nil
		}
	}
	return Center, fmt.Errorf("unknown alignment %q", s)
}

// Align computes the transform that places content inside frame according to
// fit and alignment. Degenerate (zero-sized) content maps with unit scale.
func Align(fit Fit, alignment Alignment, frame, content Rect) Mat2D {
	cw, ch := content.Width(), content.Height()
	fw, fh := frame.Width(), frame.Height()

	sx, sy := float32(1), float32(1)
	if cw > 0 && ch > 0 {
		switch fit {
		case FitFill:
			sx, sy = fw/cw, fh/ch
		case FitContain:
			s := min(fw/cw, fh/ch)
			sx, sy = s, s
		case FitCover:
			s := max(fw/cw, fh/ch)
			sx, sy = s, s
		case FitHeight:
			s := fh / ch
			sx, sy = s, s
		case FitWidth:
			s := fw / cw
			sx, sy = s, s
		case FitScaleDown:
			s := min(fw/cw, fh/ch, 1)
			sx, sy = s, s
		case FitNone:
		}
	}

	// Anchor point inside the content, relative to its origin.
	ax := -content.MinX - cw/2 - alignment.X*cw/2
	ay := -content.MinY - ch/2 - alignment.Y*ch/2

	// Matching anchor point inside the frame.
	fx := frame.MinX + fw/2 + alignment.X*fw/2
	fy := frame.MinY + fh/2 + alignment.Y*fh/2

	return Translate(fx, fy).Mul(Scale(sx, sy)).Mul(Translate(ax, ay))
}
