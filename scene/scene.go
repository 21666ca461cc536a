// Package scene provides a procedural animation used as the workload for the
// frame harness. Shapes live in an ECS world; Advance steps their motion and
// Draw renders them to a surface.
package scene

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/framebench/components"
	"github.com/pthm-cable/framebench/layout"
	"github.com/pthm-cable/framebench/renderer"
)

// Config holds scene construction parameters.
type Config struct {
	Shapes int
	Seed   int64
	Width  float32 // artboard width
	Height float32 // artboard height
}

// Scene is an animated artboard of orbiting, spinning, pulsing shapes.
type Scene struct {
	world *ecs.World

	mapper    *ecs.Map5[components.Transform, components.Orbit, components.Spin, components.Pulse, components.Shape]
	movers    *ecs.Filter3[components.Transform, components.Orbit, components.Spin]
	pulses    *ecs.Filter2[components.Transform, components.Pulse]
	drawables *ecs.Filter2[components.Transform, components.Shape]

	bounds  layout.Rect
	elapsed float64
	count   int

	scratch []layout.Point
}

// Artboard backdrop colour.
var backdrop = color.RGBA{R: 24, G: 28, B: 40, A: 255}

// New creates a scene and spawns its shapes from a seeded RNG.
func New(cfg Config) *Scene {
	world := ecs.NewWorld()

	s := &Scene{
		world:     world,
		mapper:    ecs.NewMap5[components.Transform, components.Orbit, components.Spin, components.Pulse, components.Shape](world),
		movers:    ecs.NewFilter3[components.Transform, components.Orbit, components.Spin](world),
		pulses:    ecs.NewFilter2[components.Transform, components.Pulse](world),
		drawables: ecs.NewFilter2[components.Transform, components.Shape](world),
		bounds:    layout.Rect{MaxX: cfg.Width, MaxY: cfg.Height},
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	for i := 0; i < cfg.Shapes; i++ {
		s.spawn(rng)
	}
	return s
}

// spawn creates one shape with randomised motion.
func (s *Scene) spawn(rng *rand.Rand) {
	w, h := s.bounds.Width(), s.bounds.Height()
	short := min(w, h)

	orbit := components.Orbit{
		CX:     w * (0.25 + 0.5*rng.Float32()),
		CY:     h * (0.25 + 0.5*rng.Float32()),
		Radius: short * (0.05 + 0.3*rng.Float32()),
		Angle:  rng.Float32() * 2 * math.Pi,
		Speed:  (rng.Float32() - 0.5) * 2,
	}
	spin := components.Spin{Rate: (rng.Float32() - 0.5) * 4}
	pulse := components.Pulse{
		Phase:  rng.Float32() * 2 * math.Pi,
		Speed:  1 + rng.Float32()*3,
		Amount: 0.1 + rng.Float32()*0.3,
	}
	shape := components.Shape{
		Kind: components.ShapeKind(rng.Intn(3)),
		Size: short * (0.01 + 0.04*rng.Float32()),
		Color: color.RGBA{
			R: uint8(80 + rng.Intn(176)),
			G: uint8(80 + rng.Intn(176)),
			B: uint8(80 + rng.Intn(176)),
			A: 220,
		},
	}
	t := components.Transform{Scale: pulseScale(&pulse)}
	placeOnOrbit(&t, &orbit)

	s.mapper.NewEntity(&t, &orbit, &spin, &pulse, &shape)
	s.count++
}

// Advance steps the animation by elapsedSec seconds.
func (s *Scene) Advance(elapsedSec float64) {
	dt := float32(elapsedSec)
	s.elapsed += elapsedSec

	query := s.movers.Query()
	for query.Next() {
		t, orbit, spin := query.Get()
		orbit.Angle = wrapAngle(orbit.Angle + orbit.Speed*dt)
		placeOnOrbit(t, orbit)
		t.Rotation = wrapAngle(t.Rotation + spin.Rate*dt)
	}

	pq := s.pulses.Query()
	for pq.Next() {
		t, pulse := pq.Get()
		pulse.Phase = wrapAngle(pulse.Phase + pulse.Speed*dt)
		t.Scale = pulseScale(pulse)
	}
}

// Draw renders the artboard backdrop and every shape.
func (s *Scene) Draw(surface renderer.Surface) {
	b := s.bounds
	surface.FillPolygon([]layout.Point{
		{X: b.MinX, Y: b.MinY},
		{X: b.MaxX, Y: b.MinY},
		{X: b.MaxX, Y: b.MaxY},
		{X: b.MinX, Y: b.MaxY},
	}, backdrop)

	query := s.drawables.Query()
	for query.Next() {
		t, shape := query.Get()
		size := shape.Size * t.Scale
		center := layout.Point{X: t.X, Y: t.Y}

		switch shape.Kind {
		case components.ShapeCircle:
			surface.FillCircle(center, size, shape.Color)
		case components.ShapeRect:
			s.scratch = rectPolygon(s.scratch[:0], t, size)
			surface.FillPolygon(s.scratch, shape.Color)
		case components.ShapeStar:
			s.scratch = starPolygon(s.scratch[:0], t, size)
			surface.FillPolygon(s.scratch, shape.Color)
		}
	}
}

// Bounds returns the artboard rectangle in content coordinates.
func (s *Scene) Bounds() layout.Rect {
	return s.bounds
}

// Len returns the number of shapes.
func (s *Scene) Len() int {
	return s.count
}

// Elapsed returns total animated time in seconds.
func (s *Scene) Elapsed() float64 {
	return s.elapsed
}

func pulseScale(p *components.Pulse) float32 {
	return 1 + p.Amount*float32(math.Sin(float64(p.Phase)))
}

func placeOnOrbit(t *components.Transform, o *components.Orbit) {
	sin, cos := math.Sincos(float64(o.Angle))
	t.X = o.CX + o.Radius*float32(cos)
	t.Y = o.CY + o.Radius*float32(sin)
}

// rectPolygon appends the corners of a rotated square.
func rectPolygon(dst []layout.Point, t *components.Transform, half float32) []layout.Point {
	m := layout.Translate(t.X, t.Y).Mul(layout.Rotate(t.Rotation))
	for _, c := range [4]layout.Point{{X: -half, Y: -half}, {X: half, Y: -half}, {X: half, Y: half}, {X: -half, Y: half}} {
		dst = append(dst, m.Apply(c))
	}
	return dst
}

// starPolygon appends the vertices of a rotated five-pointed star.
func starPolygon(dst []layout.Point, t *components.Transform, outer float32) []layout.Point {
	const points = 5
	inner := outer * 0.45
	m := layout.Translate(t.X, t.Y).Mul(layout.Rotate(t.Rotation))
	for i := 0; i < points*2; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := float64(i) * math.Pi / points
		sin, cos := math.Sincos(a)
		dst = append(dst, m.Apply(layout.Point{X: r * float32(cos), Y: r * float32(sin)}))
	}
	return dst
}

// wrapAngle keeps an angle in [0, 2pi) so long runs do not lose float32 precision.
func wrapAngle(a float32) float32 {
	const tau = 2 * math.Pi
	a = float32(math.Mod(float64(a), tau))
	if a < 0 {
		a += tau
	}
	return a
}
