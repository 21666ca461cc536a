package renderer

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/vector"

	"github.com/pthm-cable/framebench/layout"
)

var _ Surface = (*RasterSurface)(nil)

// RasterSurface renders into an in-memory RGBA image with an anti-aliased
// software rasterizer. It is used when no window is available, so draw
// timings still reflect real per-pixel work.
type RasterSurface struct {
	TransformStack
	background color.RGBA
	img        *image.RGBA
	raster     *vector.Rasterizer
	scratch    []layout.Point

	// Polygons counts fill operations since the last Clear.
	Polygons int
}

// NewRasterSurface creates a software surface of the given size.
func NewRasterSurface(width, height int, background color.RGBA) *RasterSurface {
	width, height = max(width, 1), max(height, 1)
	return &RasterSurface{
		TransformStack: NewTransformStack(),
		background:     background,
		img:            image.NewRGBA(image.Rect(0, 0, width, height)),
		raster:         vector.NewRasterizer(width, height),
	}
}

// Clear fills the image with the background colour.
func (s *RasterSurface) Clear() {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(s.background), image.Point{}, draw.Src)
	s.Polygons = 0
}

// FillCircle fills a polygonal approximation of a circle.
func (s *RasterSurface) FillCircle(center layout.Point, radius float32, c color.RGBA) {
	s.scratch = circlePolygon(s.scratch[:0], center, radius)
	s.fill(s.scratch, c)
}

// FillPolygon fills a closed polygon.
func (s *RasterSurface) FillPolygon(points []layout.Point, c color.RGBA) {
	s.fill(points, c)
}

func (s *RasterSurface) fill(points []layout.Point, c color.RGBA) {
	if len(points) < 3 {
		return
	}
	b := s.img.Bounds()
	s.raster.Reset(b.Dx(), b.Dy())
	for i, pt := range points {
		p := s.current.Apply(pt)
		if i == 0 {
			s.raster.MoveTo(p.X, p.Y)
		} else {
			s.raster.LineTo(p.X, p.Y)
		}
	}
	s.raster.ClosePath()
	s.raster.DrawOp = draw.Over
	s.raster.Draw(s.img, b, image.NewUniform(c), image.Point{})
	s.Polygons++
}

// Resize reallocates the backing image.
func (s *RasterSurface) Resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if b := s.img.Bounds(); b.Dx() == width && b.Dy() == height {
		return
	}
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Image returns the backing image.
func (s *RasterSurface) Image() *image.RGBA {
	return s.img
}
