package svg

import "errors"
import "strconv"
import "strings"

// Path segment operations, after normalizing relative commands and
// H/V shorthands to their absolute forms.
type segmentOp uint8

const (
	opMoveTo segmentOp = iota
	opLineTo
	opQuadTo
	opCubeTo
	opClose
)

type point struct{ x, y float64 }

type segment struct {
	op segmentOp
	args [3]point // opMoveTo/opLineTo use [0], opQuadTo [0..1], opCubeTo [0..2]
}

var errBadPath = errors.New("malformed path data")

// pathScanner tokenizes the `d` attribute of a <path> element: commands
// are single letters, numbers may be separated by whitespace or commas.
type pathScanner struct {
	data string
	pos int
}

func (self *pathScanner) skipSeparators() {
	for self.pos < len(self.data) {
		c := self.data[self.pos]
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' && c != ',' { return }
		self.pos++
	}
}

func (self *pathScanner) done() bool {
	self.skipSeparators()
	return self.pos >= len(self.data)
}

// peekCommand returns the next command letter, or 0 if a number follows
// (implicit command repetition).
func (self *pathScanner) peekCommand() byte {
	self.skipSeparators()
	if self.pos >= len(self.data) { return 0 }
	c := self.data[self.pos]
	if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		self.pos++
		return c
	}
	return 0
}

func (self *pathScanner) number() (float64, error) {
	self.skipSeparators()
	start := self.pos
	if self.pos < len(self.data) && (self.data[self.pos] == '+' || self.data[self.pos] == '-') {
		self.pos++
	}
	seenDot, seenExp := false, false
	for self.pos < len(self.data) {
		c := self.data[self.pos]
		switch {
		case c >= '0' && c <= '9':
			self.pos++
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
			self.pos++
		case (c == 'e' || c == 'E') && !seenExp:
			seenExp = true
			self.pos++
			if self.pos < len(self.data) && (self.data[self.pos] == '+' || self.data[self.pos] == '-') {
				self.pos++
			}
		default:
			goto parse
		}
	}
parse:
	if self.pos == start { return 0, errBadPath }
	value, err := strconv.ParseFloat(self.data[start:self.pos], 64)
	if err != nil { return 0, errBadPath }
	return value, nil
}

func (self *pathScanner) point() (point, error) {
	x, err := self.number()
	if err != nil { return point{}, err }
	y, err := self.number()
	if err != nil { return point{}, err }
	return point{x, y}, nil
}

// parsePath converts path data into absolute segments. Unsupported
// commands (arcs and the S/T shorthands) yield an error: silently
// dropping parts of a shape would be worse than rejecting it.
func parsePath(data string) ([]segment, error) {
	scanner := pathScanner{ data: strings.TrimSpace(data) }
	var segments []segment
	var current, subpathStart point
	command := byte(0)
	for !scanner.done() {
		if next := scanner.peekCommand(); next != 0 {
			command = next
			// after a moveto, implicit repetitions are linetos
		} else if command == 'M' {
			command = 'L'
		} else if command == 'm' {
			command = 'l'
		}
		relative := command >= 'a'
		abs := func(p point) point {
			if relative { return point{ current.x + p.x, current.y + p.y } }
			return p
		}
		switch command {
		case 'M', 'm':
			target, err := scanner.point()
			if err != nil { return nil, err }
			current = abs(target)
			subpathStart = current
			segments = append(segments, segment{ op: opMoveTo, args: [3]point{current} })
		case 'L', 'l':
			target, err := scanner.point()
			if err != nil { return nil, err }
			current = abs(target)
			segments = append(segments, segment{ op: opLineTo, args: [3]point{current} })
		case 'H', 'h':
			x, err := scanner.number()
			if err != nil { return nil, err }
			if relative { x += current.x }
			current = point{ x, current.y }
			segments = append(segments, segment{ op: opLineTo, args: [3]point{current} })
		case 'V', 'v':
			y, err := scanner.number()
			if err != nil { return nil, err }
			if relative { y += current.y }
			current = point{ current.x, y }
			segments = append(segments, segment{ op: opLineTo, args: [3]point{current} })
		case 'Q', 'q':
			control, err := scanner.point()
			if err != nil { return nil, err }
			target, err := scanner.point()
			if err != nil { return nil, err }
			control = abs(control)
			current = abs(target)
			segments = append(segments, segment{ op: opQuadTo, args: [3]point{control, current} })
		case 'C', 'c':
			control1, err := scanner.point()
			if err != nil { return nil, err }
			control2, err := scanner.point()
			if err != nil { return nil, err }
			target, err := scanner.point()
			if err != nil { return nil, err }
			control1 = abs(control1)
			control2 = abs(control2)
			current = abs(target)
			segments = append(segments, segment{ op: opCubeTo, args: [3]point{control1, control2, current} })
		case 'Z', 'z':
			current = subpathStart
			segments = append(segments, segment{ op: opClose })
		default:
			return nil, errBadPath
		}
	}
	return segments, nil
}

// segmentsBounds returns the control-point bounding box of the given
// segments. For curves this is a slight over-estimate of the painted
// area, which is the usual convention for cheap vector bounds.
func segmentsBounds(segments []segment) Rect {
	var bounds Rect
	first := true
	visit := func(p point) {
		if first {
			bounds = newPointRect(p.x, p.y)
			first = false
		} else {
			bounds = bounds.expand(p.x, p.y)
		}
	}
	for _, seg := range segments {
		switch seg.op {
		case opMoveTo, opLineTo:
			visit(seg.args[0])
		case opQuadTo:
			visit(seg.args[0])
			visit(seg.args[1])
		case opCubeTo:
			visit(seg.args[0])
			visit(seg.args[1])
			visit(seg.args[2])
		}
	}
	return bounds
}
