package svg

import "strconv"

// A Rect is an axis-aligned rectangle in document coordinates.
// Unlike [image.Rectangle], coordinates are fractional: element bounds
// in vector documents rarely fall on integer positions.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

func (self Rect) Width() float64  { return self.MaxX - self.MinX }
func (self Rect) Height() float64 { return self.MaxY - self.MinY }

// Empty reports whether the rectangle has zero or negative area.
func (self Rect) Empty() bool {
	return self.MaxX <= self.MinX || self.MaxY <= self.MinY
}

// Union returns the smallest rectangle containing both self and other.
// Empty rectangles are treated as the identity value.
func (self Rect) Union(other Rect) Rect {
	if self.Empty() { return other }
	if other.Empty() { return self }
	if other.MinX < self.MinX { self.MinX = other.MinX }
	if other.MinY < self.MinY { self.MinY = other.MinY }
	if other.MaxX > self.MaxX { self.MaxX = other.MaxX }
	if other.MaxY > self.MaxY { self.MaxY = other.MaxY }
	return self
}

// expand grows the rectangle to contain the given point. The zero
// value rectangle is not usable with expand; see newPointRect.
func (self Rect) expand(x, y float64) Rect {
	if x < self.MinX { self.MinX = x }
	if y < self.MinY { self.MinY = y }
	if x > self.MaxX { self.MaxX = x }
	if y > self.MaxY { self.MaxY = y }
	return self
}

func newPointRect(x, y float64) Rect {
	return Rect{ MinX: x, MinY: y, MaxX: x, MaxY: y }
}

func (self Rect) String() string {
	format := func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
	return "(" + format(self.MinX) + ", " + format(self.MinY) +
		", " + format(self.MaxX) + ", " + format(self.MaxY) + ")"
}
