package svg

import "image"
import "image/color"

import "golang.org/x/image/vector"

// ElementExists reports whether the document contains a named element
// with the given id.
func (self *Document) ElementExists(id string) bool {
	_, found := self.elements[id]
	return found
}

// ElementBounds returns the bounding box of the named element in
// document coordinates. The bool reports whether the element exists;
// missing elements yield a zero rectangle.
func (self *Document) ElementBounds(id string) (Rect, bool) {
	elem, found := self.elements[id]
	if !found { return Rect{}, false }
	return elem.bounds, true
}

// ViewBox returns the document's own coordinate space.
func (self *Document) ViewBox() Rect { return self.viewBox }

// RenderElement rasterizes the named element onto dst, scaled to fill
// the full target bounds (the element's aspect ratio is not preserved,
// matching how sprite frameworks stretch elements to the requested
// sprite size). Pixels are composited over whatever dst already holds.
//
// An empty id renders the whole document scaled from its viewBox.
// A missing id is a no-op: dst is left untouched.
//
// remap, when non-nil, substitutes the fill color of each draw command
// right before compositing. It receives the resolved source color and
// returns the color to paint with.
func (self *Document) RenderElement(id string, dst *image.RGBA, remap func(color.RGBA) color.RGBA) {
	var shapes []*shape
	var bounds Rect
	if id == "" {
		shapes, bounds = self.body, self.viewBox
	} else {
		elem, found := self.elements[id]
		if !found { return }
		shapes, bounds = elem.shapes, elem.bounds
	}
	if bounds.Empty() { return }

	width, height := dst.Bounds().Dx(), dst.Bounds().Dy()
	if width <= 0 || height <= 0 { return }
	sx := float64(width) / bounds.Width()
	sy := float64(height) / bounds.Height()

	for _, sh := range shapes {
		fill := sh.fill
		if remap != nil { fill = remap(fill) }
		if fill.A == 0 { continue }
		rasterizeShape(sh, dst, bounds, sx, sy, fill)
	}
}

func rasterizeShape(sh *shape, dst *image.RGBA, bounds Rect, sx, sy float64, fill color.RGBA) {
	width, height := dst.Bounds().Dx(), dst.Bounds().Dy()
	rast := vector.NewRasterizer(width, height)
	tx := func(p point) (float32, float32) {
		return float32((p.x - bounds.MinX) * sx), float32((p.y - bounds.MinY) * sy)
	}
	open := false
	for _, seg := range sh.segments {
		switch seg.op {
		case opMoveTo:
			if open { rast.ClosePath() }
			x, y := tx(seg.args[0])
			rast.MoveTo(x, y)
			open = true
		case opLineTo:
			x, y := tx(seg.args[0])
			rast.LineTo(x, y)
		case opQuadTo:
			bx, by := tx(seg.args[0])
			cx, cy := tx(seg.args[1])
			rast.QuadTo(bx, by, cx, cy)
		case opCubeTo:
			bx, by := tx(seg.args[0])
			cx, cy := tx(seg.args[1])
			dx, dy := tx(seg.args[2])
			rast.CubeTo(bx, by, cx, cy, dx, dy)
		case opClose:
			if open { rast.ClosePath() }
			open = false
		}
	}
	if open { rast.ClosePath() }
	rast.Draw(dst, dst.Bounds(), image.NewUniform(fill), image.Point{})
}
