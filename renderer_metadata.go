package gsprite

import "fmt"
import "math"
import "strconv"
import "encoding/binary"

import "github.com/ashvele/gsprite/svg"

// Key prefixes for metadata entries in the persistent cache. They keep
// frame counts and bounds from ever colliding with pixmap keys.
const frameCountKeyPrefix = "fc-"
const boundsKeyPrefix = "br-"

// spriteFrameKey translates a sprite key and frame number into the
// element key of the theme document. Negative frames ([NoFrame] in
// particular) address the sprite's single non-animated element.
//
// With normalizeFrameNo set, out of range frames wrap around the
// sprite's frame count, so an ever-increasing frame counter can be
// used directly for a looping animation.
func (self *Renderer) spriteFrameKey(key string, frame int, normalizeFrameNo bool) string {
	if frame < 0 { return key }
	if normalizeFrameNo {
		frameCount := self.FrameCount(key)
		if frameCount <= 0 { return key }
		frame = (frame-self.frameBaseIndex)%frameCount
		if frame < 0 { frame += frameCount }
		frame += self.frameBaseIndex
	}
	return key + fmt.Sprintf(self.frameSuffix, frame)
}

// FrameCount returns the number of animation frames the theme defines
// for the given sprite key: [FrameCountMissing] if the sprite does not
// exist at all, [FrameCountNonAnimated] if it exists as a single
// element without frames, and the frame count otherwise.
//
// The answer is determined at most once per theme; both an in-process
// cache and the persistent cache memoize it.
func (self *Renderer) FrameCount(key string) int {
	if !self.ensureThemeLoaded() { return FrameCountMissing }
	if count, found := self.frameCountCache[key]; found { return count }

	count, counted := FrameCountMissing, false
	cacheKey := frameCountKeyPrefix + key
	if self.diskCache != nil && self.pool.hasAvailableInstance() {
		if data, found := self.diskCache.Find(cacheKey); found {
			if parsed, err := strconv.Atoi(string(data)); err == nil {
				count, counted = parsed, true
			}
		}
	}
	if !counted {
		doc := self.pool.allocate()
		if doc != nil {
			frame := self.frameBaseIndex
			for doc.ElementExists(self.spriteFrameKey(key, frame, false)) {
				frame += 1
			}
			count = frame - self.frameBaseIndex
			if count == 0 && !doc.ElementExists(key) {
				count = FrameCountMissing
			}
			self.pool.release(doc)
			if self.diskCache != nil {
				self.diskCache.Insert(cacheKey, []byte(strconv.Itoa(count)))
			}
		}
	}
	self.frameCountCache[key] = count
	return count
}

// SpriteExists reports whether the theme defines an element for the
// given sprite key, either directly or through animation frames.
func (self *Renderer) SpriteExists(key string) bool {
	if !self.ensureThemeLoaded() { return false }
	return self.FrameCount(key) >= 0
}

// BoundsOnSprite returns the bounding rectangle of the given sprite
// frame within the theme document's coordinate system. Pass [NoFrame]
// for non-animated sprites. Unknown sprites yield an empty rect.
func (self *Renderer) BoundsOnSprite(key string, frame int) svg.Rect {
	elementKey := self.spriteFrameKey(key, frame, true)
	if !self.ensureThemeLoaded() { return svg.Rect{} }
	if bounds, found := self.boundsCache[elementKey]; found { return bounds }

	var bounds svg.Rect
	resolved := false
	cacheKey := boundsKeyPrefix + elementKey
	if self.diskCache != nil && self.pool.hasAvailableInstance() {
		if data, found := self.diskCache.Find(cacheKey); found {
			if decoded, ok := decodeBounds(data); ok {
				bounds, resolved = decoded, true
			}
		}
	}
	if !resolved {
		doc := self.pool.allocate()
		if doc != nil {
			bounds, _ = doc.ElementBounds(elementKey)
			self.pool.release(doc)
			if self.diskCache != nil {
				self.diskCache.Insert(cacheKey, encodeBounds(bounds))
			}
		}
	}
	self.boundsCache[elementKey] = bounds
	return bounds
}

func encodeBounds(bounds svg.Rect) []byte {
	data := make([]byte, 32)
	binary.BigEndian.PutUint64(data[ 0 :  8], math.Float64bits(bounds.MinX))
	binary.BigEndian.PutUint64(data[ 8 : 16], math.Float64bits(bounds.MinY))
	binary.BigEndian.PutUint64(data[16 : 24], math.Float64bits(bounds.MaxX))
	binary.BigEndian.PutUint64(data[24 : 32], math.Float64bits(bounds.MaxY))
	return data
}

func decodeBounds(data []byte) (svg.Rect, bool) {
	if len(data) != 32 { return svg.Rect{}, false }
	return svg.Rect{
		MinX: math.Float64frombits(binary.BigEndian.Uint64(data[ 0 :  8])),
		MinY: math.Float64frombits(binary.BigEndian.Uint64(data[ 8 : 16])),
		MaxX: math.Float64frombits(binary.BigEndian.Uint64(data[16 : 24])),
		MaxY: math.Float64frombits(binary.BigEndian.Uint64(data[24 : 32])),
	}, true
}
