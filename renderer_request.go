package gsprite

import "image"
import "sort"
import "strconv"
import "strings"
import "encoding/binary"

// spriteRequest describes one concrete rendition of a sprite.
type spriteRequest struct {
	spriteKey string
	frame int
	width int
	height int
	colors ColorMap
}

// spriteCacheKey derives the cache key identifying one rendition. The
// color replacement pairs are serialized in ascending order of their
// packed source color, so logically equal maps always share a key.
func spriteCacheKey(elementKey string, width, height int, colors ColorMap) string {
	var builder strings.Builder
	builder.WriteString(strconv.Itoa(width))
	builder.WriteByte('-')
	builder.WriteString(strconv.Itoa(height))
	builder.WriteByte('-')
	builder.WriteString(elementKey)
	if len(colors) > 0 {
		pairs := make([][2]uint32, 0, len(colors))
		for src, dst := range colors {
			pairs = append(pairs, [2]uint32{packRGBA(src), packRGBA(dst)})
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i][0] < pairs[j][0] })
		for _, pair := range pairs {
			builder.WriteByte('-')
			builder.WriteString(strconv.FormatUint(uint64(pair[0]), 10))
			builder.WriteByte('-')
			builder.WriteString(strconv.FormatUint(uint64(pair[1]), 10))
		}
	}
	return builder.String()
}

// SpritePixmap renders the given sprite frame at the given size,
// synchronously, and returns the resulting pixmap. Pass [NoFrame] for
// non-animated sprites and nil for no color replacements. A nil
// pixmap is returned for empty sizes or when no theme could be loaded.
//
// This is the one-shot API; programs that re-render the same sprite
// over time should use [Renderer.NewSprite] instead and get cache
// bookkeeping and background rendering for free.
func (self *Renderer) SpritePixmap(key string, width, height, frame int, colors ColorMap) Pixmap {
	var result Pixmap
	request := spriteRequest{ spriteKey: key, frame: frame, width: width, height: height, colors: colors }
	self.requestPixmap(request, nil, &result)
	return result
}

// requestPixmap is the central sprite serving routine. Results can be
// delivered through the client (possibly asynchronously) and through
// syncResult (always synchronously, nil on a miss that went to the
// background).
//
// The lookup order is: in-process pixmap cache, persistent cache, and
// finally an actual render job. With a client attached and background
// threads enabled the job runs on the worker pool and the result
// arrives through [Renderer.Update]; otherwise it runs inline.
func (self *Renderer) requestPixmap(request spriteRequest, client *Sprite, syncResult *Pixmap) {
	if syncResult != nil { *syncResult = nil }
	if request.width <= 0 || request.height <= 0 {
		if client != nil { client.receivePixmap(nil) }
		return
	}
	elementKey := self.spriteFrameKey(request.spriteKey, request.frame, true)
	cacheKey := spriteCacheKey(elementKey, request.width, request.height, request.colors)
	if client != nil {
		if self.clients[client] == cacheKey { return } // same rendition already served
		self.clients[client] = cacheKey
	}
	if !self.ensureThemeLoaded() {
		self.propagate(nil, client, syncResult)
		return
	}

	if pixmap, found := self.pixmapCache[cacheKey]; found {
		self.propagate(pixmap, client, syncResult)
		return
	}
	if self.diskCache != nil {
		if data, found := self.diskCache.Find(cacheKey); found {
			if img, ok := imageFromBlob(data); ok {
				pixmap := pixmapFromImage(img)
				self.pixmapCache[cacheKey] = pixmap
				self.propagate(pixmap, client, syncResult)
				return
			}
		}
	}

	// an identical job may already be in flight; the client is
	// registered for the cache key, so the running job will serve it
	if client != nil {
		if _, pending := self.pendingRequests[cacheKey]; pending { return }
	}

	job := &renderJob{
		cacheKey: cacheKey,
		elementKey: elementKey,
		width: request.width,
		height: request.height,
		colors: request.colors.clone(),
	}
	if client == nil || self.strategies&UseBackgroundThreads == 0 {
		job.run(self.pool)
		self.jobFinished(job, true)
		// jobFinished installed the pixmap and served the client
		if syncResult != nil { *syncResult = self.pixmapCache[cacheKey] }
	} else {
		self.pendingRequests[cacheKey] = struct{}{}
		self.inflightJobs += 1
		pool, completions := self.pool, self.completions
		self.workers.Submit(func() {
			job.run(pool)
			completions.push(job)
		})
	}
}

func (self *Renderer) propagate(pixmap Pixmap, client *Sprite, syncResult *Pixmap) {
	if client != nil { client.receivePixmap(pixmap) }
	if syncResult != nil { *syncResult = pixmap }
}

// jobFinished integrates a completed render job: it stores the raw
// result in the persistent cache, converts it to a pixmap and fans it
// out to every sprite still waiting on the job's cache key.
func (self *Renderer) jobFinished(job *renderJob, isSynchronous bool) {
	delete(self.pendingRequests, job.cacheKey)
	var requesters []*Sprite
	for sprite, lastKey := range self.clients {
		if lastKey == job.cacheKey { requesters = append(requesters, sprite) }
	}
	if self.diskCache != nil {
		self.diskCache.Insert(job.cacheKey, imageToBlob(job.result))
		// nobody is waiting anymore and the result is safely on disk,
		// so the pixmap conversion can be skipped. this is the common
		// case for intermediate sizes during smooth resizes
		if !isSynchronous && len(requesters) == 0 { return }
	}
	pixmap := pixmapFromImage(job.result)
	self.pixmapCache[job.cacheKey] = pixmap
	for _, requester := range requesters {
		requester.receivePixmap(pixmap)
	}
}

// imageToBlob serializes an image for the persistent cache: two
// big-endian uint32 dimensions followed by raw RGBA pixels. Images
// created by render jobs always have their minimum point at the
// origin and a packed stride, which is all this codec supports.
func imageToBlob(img *image.RGBA) []byte {
	width, height := img.Rect.Dx(), img.Rect.Dy()
	blob := make([]byte, 8+len(img.Pix))
	binary.BigEndian.PutUint32(blob[0 : 4], uint32(width))
	binary.BigEndian.PutUint32(blob[4 : 8], uint32(height))
	copy(blob[8:], img.Pix)
	return blob
}

func imageFromBlob(data []byte) (*image.RGBA, bool) {
	if len(data) < 8 { return nil, false }
	width := int(binary.BigEndian.Uint32(data[0 : 4]))
	height := int(binary.BigEndian.Uint32(data[4 : 8]))
	if width <= 0 || height <= 0 { return nil, false }
	if len(data) != 8+width*height*4 { return nil, false }
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, data[8:])
	return img, true
}
