package svg

import "io"
import "os"
import "bytes"
import "errors"
import "image/color"
import "strconv"
import "strings"
import "encoding/xml"

import "github.com/ashvele/gsprite/internal/logx"

// A Document is a parsed vector theme file. Named elements inside it
// can be queried and rasterized independently.
//
// Documents are immutable after parsing and therefore safe for
// concurrent reads, but the gsprite renderer pool still treats each
// instance as single-threaded and never shares one across workers.
type Document struct {
	viewBox Rect
	elements map[string]*element
	body []*shape // document-level render list, excludes <defs>
}

type element struct {
	shapes []*shape
	bounds Rect
}

type shape struct {
	fill color.RGBA
	segments []segment
	bounds Rect
}

// parse state for one open container or shape node
type frame struct {
	id string
	fill color.RGBA
	hasFill bool // an explicit fill color is active (possibly inherited)
	fillNone bool // filling is explicitly disabled ("none")
	isDefs bool
}

var ErrNotSVG = errors.New("document has no <svg> root element")

// Load reads and parses the vector document at the given path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil { return nil, err }
	return Parse(data)
}

// Parse parses a vector document from raw bytes. Parsing is strict
// about document structure (malformed XML or a missing <svg> root is
// an error) but lenient about content: unsupported shapes are skipped
// with a warning instead of failing the whole document.
func Parse(data []byte) (*Document, error) {
	doc := &Document{ elements: make(map[string]*element) }
	decoder := xml.NewDecoder(bytes.NewReader(data))
	var stack []frame
	rootSeen := false

	for {
		token, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) { break }
			return nil, err
		}
		switch tk := token.(type) {
		case xml.StartElement:
			name := tk.Name.Local
			if !rootSeen {
				if name != "svg" { return nil, ErrNotSVG }
				rootSeen = true
				doc.viewBox = parseViewBox(tk)
			}

			next := frame{ id: attrValue(tk, "id"), isDefs: name == "defs" }
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				next.fill, next.hasFill = parent.fill, parent.hasFill
				next.fillNone = parent.fillNone
				next.isDefs = next.isDefs || parent.isDefs
			}
			if fill, ok, none := parseColor(attrValue(tk, "fill")); ok {
				next.fill, next.hasFill, next.fillNone = fill, !none, none
			}

			switch name {
			case "svg", "g", "defs":
				if next.id != "" { doc.element(next.id) }
			case "rect", "circle", "ellipse", "polygon", "path":
				doc.addShape(name, tk, next, stack)
			default:
				// unsupported subtree (text, metadata, gradients...)
			}
			stack = append(stack, next) // popped by the matching EndElement
		case xml.EndElement:
			if len(stack) > 0 { stack = stack[:len(stack)-1] }
		}
	}
	if !rootSeen { return nil, ErrNotSVG }

	if doc.viewBox.Empty() {
		// no usable viewBox: fall back to the content bounds
		for _, sh := range doc.body {
			doc.viewBox = doc.viewBox.Union(sh.bounds)
		}
	}
	return doc, nil
}

// addShape converts one shape node to segments and registers it on the
// document body, the enclosing named groups and the shape's own id.
// The stack holds the ancestors of the shape; fr is the shape's own
// resolved state.
func (self *Document) addShape(name string, tk xml.StartElement, fr frame, stack []frame) {
	if fr.fillNone { return }
	segments, err := shapeSegments(name, tk)
	if err != nil {
		logx.Get().Warn("svg: skipping unsupported shape", "shape", name, "id", fr.id)
		return
	}
	if len(segments) == 0 { return }
	if !fr.hasFill { fr.fill = color.RGBA{0, 0, 0, 255} } // SVG default fill is black
	sh := &shape{ fill: fr.fill, segments: segments, bounds: segmentsBounds(segments) }

	if !fr.isDefs { self.body = append(self.body, sh) }
	for _, ancestor := range stack {
		if ancestor.id != "" { self.element(ancestor.id).add(sh) }
	}
	if fr.id != "" { self.element(fr.id).add(sh) }
}

func (self *Document) element(id string) *element {
	elem, found := self.elements[id]
	if found { return elem }
	elem = &element{}
	self.elements[id] = elem
	return elem
}

func (self *element) add(sh *shape) {
	self.shapes = append(self.shapes, sh)
	self.bounds = self.bounds.Union(sh.bounds)
}

// --- shape conversion ---

// control point factor for approximating circle quadrants with cubics
const kappa = 0.5522847498307936

func shapeSegments(name string, tk xml.StartElement) ([]segment, error) {
	switch name {
	case "rect":
		x, y := attrFloat(tk, "x"), attrFloat(tk, "y")
		w, h := attrFloat(tk, "width"), attrFloat(tk, "height")
		if w <= 0 || h <= 0 { return nil, nil }
		return []segment{
			{ op: opMoveTo, args: [3]point{{x, y}} },
			{ op: opLineTo, args: [3]point{{x + w, y}} },
			{ op: opLineTo, args: [3]point{{x + w, y + h}} },
			{ op: opLineTo, args: [3]point{{x, y + h}} },
			{ op: opClose },
		}, nil
	case "circle":
		r := attrFloat(tk, "r")
		return ellipseSegments(attrFloat(tk, "cx"), attrFloat(tk, "cy"), r, r), nil
	case "ellipse":
		rx, ry := attrFloat(tk, "rx"), attrFloat(tk, "ry")
		return ellipseSegments(attrFloat(tk, "cx"), attrFloat(tk, "cy"), rx, ry), nil
	case "polygon":
		return polygonSegments(attrValue(tk, "points"))
	case "path":
		return parsePath(attrValue(tk, "d"))
	}
	return nil, errBadPath
}

func ellipseSegments(cx, cy, rx, ry float64) []segment {
	if rx <= 0 || ry <= 0 { return nil }
	kx, ky := rx*kappa, ry*kappa
	cube := func(c1, c2, target point) segment {
		return segment{ op: opCubeTo, args: [3]point{c1, c2, target} }
	}
	return []segment{
		{ op: opMoveTo, args: [3]point{{cx + rx, cy}} },
		cube(point{cx + rx, cy + ky}, point{cx + kx, cy + ry}, point{cx, cy + ry}),
		cube(point{cx - kx, cy + ry}, point{cx - rx, cy + ky}, point{cx - rx, cy}),
		cube(point{cx - rx, cy - ky}, point{cx - kx, cy - ry}, point{cx, cy - ry}),
		cube(point{cx + kx, cy - ry}, point{cx + rx, cy - ky}, point{cx + rx, cy}),
		{ op: opClose },
	}
}

func polygonSegments(points string) ([]segment, error) {
	scanner := pathScanner{ data: strings.TrimSpace(points) }
	var segments []segment
	for !scanner.done() {
		target, err := scanner.point()
		if err != nil { return nil, err }
		op := opLineTo
		if len(segments) == 0 { op = opMoveTo }
		segments = append(segments, segment{ op: op, args: [3]point{target} })
	}
	if len(segments) < 3 { return nil, nil } // degenerate polygon, nothing to fill
	return append(segments, segment{ op: opClose }), nil
}

// --- attribute helpers ---

func attrValue(tk xml.StartElement, name string) string {
	for _, attr := range tk.Attr {
		if attr.Name.Local == name { return attr.Value }
	}
	return ""
}

func attrFloat(tk xml.StartElement, name string) float64 {
	raw := strings.TrimSuffix(strings.TrimSpace(attrValue(tk, name)), "px")
	if raw == "" { return 0 }
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil { return 0 }
	return value
}

func parseViewBox(tk xml.StartElement) Rect {
	raw := attrValue(tk, "viewBox")
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 4 {
		var values [4]float64
		valid := true
		for i, field := range fields {
			value, err := strconv.ParseFloat(field, 64)
			if err != nil { valid = false; break }
			values[i] = value
		}
		if valid {
			return Rect{
				MinX: values[0], MinY: values[1],
				MaxX: values[0] + values[2], MaxY: values[1] + values[3],
			}
		}
	}
	w, h := attrFloat(tk, "width"), attrFloat(tk, "height")
	return Rect{ MaxX: w, MaxY: h }
}

// --- colors ---

var namedColors = map[string]color.RGBA{
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 128, 0, 255},
	"lime":    {0, 255, 0, 255},
	"blue":    {0, 0, 255, 255},
	"yellow":  {255, 255, 0, 255},
	"cyan":    {0, 255, 255, 255},
	"magenta": {255, 0, 255, 255},
	"gray":    {128, 128, 128, 255},
	"grey":    {128, 128, 128, 255},
	"orange":  {255, 165, 0, 255},
	"purple":  {128, 0, 128, 255},
	"brown":   {165, 42, 42, 255},
	"navy":    {0, 0, 128, 255},
	"teal":    {0, 128, 128, 255},
}

// parseColor parses a fill attribute value. The first bool reports
// whether the attribute was present and understood, the second whether
// it explicitly disables filling ("none" / "transparent").
func parseColor(raw string) (color.RGBA, bool, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch raw {
	case "":
		return color.RGBA{}, false, false
	case "none", "transparent":
		return color.RGBA{}, true, true
	case "currentcolor":
		return color.RGBA{0, 0, 0, 255}, true, false
	}
	if raw[0] == '#' {
		c, ok := parseHexColor(raw[1:])
		return c, ok, false
	}
	c, found := namedColors[raw]
	return c, found, false
}

func parseHexColor(hex string) (color.RGBA, bool) {
	nibble := func(c byte) (uint8, bool) {
		switch {
		case c >= '0' && c <= '9': return c - '0', true
		case c >= 'a' && c <= 'f': return c - 'a' + 10, true
		}
		return 0, false
	}
	switch len(hex) {
	case 3: // #rgb
		var out [3]uint8
		for i := 0; i < 3; i++ {
			v, ok := nibble(hex[i])
			if !ok { return color.RGBA{}, false }
			out[i] = v<<4 | v
		}
		return color.RGBA{out[0], out[1], out[2], 255}, true
	case 6, 8: // #rrggbb / #rrggbbaa
		var out [4]uint8
		out[3] = 255
		for i := 0; i*2 < len(hex); i++ {
			hi, ok1 := nibble(hex[i*2])
			lo, ok2 := nibble(hex[i*2+1])
			if !ok1 || !ok2 { return color.RGBA{}, false }
			out[i] = hi<<4 | lo
		}
		return color.RGBA{out[0], out[1], out[2], out[3]}, true
	}
	return color.RGBA{}, false
}
