package model

// Rect is a rectangle in PDF user-space coordinates: lower-left and
// upper-right corners, y increasing upward.
type Rect struct {
	LLX, LLY float64 // Lower-left corner
	URX, URY float64 // Upper-right corner
}

// NewRect creates a rectangle from corner coordinates.
func NewRect(llx, lly, urx, ury float64) Rect {
	return Rect{LLX: llx, LLY: lly, URX: urx, URY: ury}
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 {
	return r.URX - r.LLX
}

// Height returns the vertical extent.
func (r Rect) Height() float64 {
	return r.URY - r.LLY
}

// IsValid reports whether the rectangle has positive width and height.
func (r Rect) IsValid() bool {
	return r.URX > r.LLX && r.URY > r.LLY
}

// ContainsRect reports whether other lies entirely within r.
// Edges touching count as contained.
func (r Rect) ContainsRect(other Rect) bool {
	return other.LLX >= r.LLX && other.LLY >= r.LLY &&
		other.URX <= r.URX && other.URY <= r.URY
}
