package layout

// Viewport tracks the drawable area of the host window.
type Viewport struct {
	Width, Height float32
}

// NewViewport creates a viewport of the given size.
func NewViewport(width, height float32) *Viewport {
	return &Viewport{Width: width, Height: height}
}

// Resize updates the viewport dimensions.
// Returns false if the size did not change.
func (v *Viewport) Resize(width, height float32) bool {
	if width == v.Width && height == v.Height {
		return false
	}
	v.Width = width
	v.Height = height
	return true
}

// Frame returns the viewport as a rectangle anchored at the origin.
func (v *Viewport) Frame() Rect {
	return Rect{MaxX: v.Width, MaxY: v.Height}
}
