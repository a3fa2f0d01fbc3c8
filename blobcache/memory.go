package blobcache

import "sync"
import "time"
import "sync/atomic"
import "math/rand"

// approximate bookkeeping overhead per cached blob
const constEntrySizeFactor = 56

// A cached blob with additional information to estimate how much the
// entry is being used.
type cachedBlobEntry struct {
	data []byte // Read-only.
	byteSize uint32 // Read-only.
	creationInstant uint32 // see cacheInstant(). Read-only.
	accessCount uint32 // number of times the entry has been accessed
}

// Must be called after accessing an entry in order to keep the
// hotness() heuristic making sense. Concurrent-safe.
func (self *cachedBlobEntry) increaseAccessCount() {
	atomic.AddUint32(&self.accessCount, 1)
}

// A measure of "bytes accessed per time". Coldest entries (smallest
// values) are candidates for eviction. Concurrent-safe.
func (self *cachedBlobEntry) hotness(instant uint32) uint32 {
	const ConstEvictionCost = 1000 // additional threshold and pad
	bytesHit := self.byteSize * atomic.LoadUint32(&self.accessCount)
	elapsed := instant - self.creationInstant
	if elapsed == 0 { elapsed = 1 }
	return (ConstEvictionCost + bytesHit) / elapsed
}

// Lets tests move time forward without sleeping. One second would be
// 1000_000_000, half a second 500_000_000, etc.
var testInstantNanosHack int64

// A time instant derived from the monotonic clock, with some arbitrary
// downscaling applied (close to converting nanoseconds to hundredth's
// of seconds).
func cacheInstant() uint32 {
	nanos := time.Since(cacheEpoch).Nanoseconds() + atomic.LoadInt64(&testInstantNanosHack)
	return uint32(nanos >> 27)
}

var cacheEpoch = time.Now()

func newCachedBlobEntry(data []byte) (*cachedBlobEntry, uint32) {
	instant := cacheInstant()
	return &cachedBlobEntry{
		data: data,
		byteSize: uint32(len(data)) + constEntrySizeFactor,
		creationInstant: instant,
		accessCount: 1,
	}, instant
}

// Memory is a [Cache] bounded by a byte capacity that keeps its blobs
// in process memory. It is concurrent-safe (though not optimized or
// expected to be used under heavily concurrent scenarios) and uses
// random sampling for evicting entries.
//
// It's mostly useful for tests and for sharing rendered sprites across
// renderers within a single run; use [Disk] to share across runs.
type Memory struct {
	cachedBlobs map[string]*cachedBlobEntry
	rng *rand.Rand
	spaceBytesLeft uint32
	lowestBytesLeft uint32
	byteSizeLimit uint32
	mutex sync.RWMutex
}

// NewMemory creates a new in-memory cache bounded by the given size
// in bytes. Non-positive values panic; they are likely a dev mistake.
func NewMemory(maxByteSize int) *Memory {
	if maxByteSize <= 0 { panic("maxByteSize <= 0") }
	return &Memory{
		cachedBlobs: make(map[string]*cachedBlobEntry, 128),
		spaceBytesLeft: uint32(maxByteSize),
		lowestBytesLeft: uint32(maxByteSize),
		byteSizeLimit: uint32(maxByteSize),
		rng: rand.New(rand.NewSource(time.Now().UnixNano() ^ 0x36285016_051A1E33)),
	}
}

// Attempts to remove the entry with the lowest eviction cost from a
// small pool of samples. May not remove anything in some cases.
//
// The returned value is the freed space, which must be manually
// added to spaceBytesLeft by the caller.
func (self *Memory) removeRandEntry(hotness uint32, instant uint32) uint32 {
	const SampleSize = 10

	self.mutex.RLock()
	var selectedKey string
	lowestHotness := ^uint32(0)
	samplesTaken := 0
	for key, entry := range self.cachedBlobs {
		currHotness := entry.hotness(instant)
		// on lower hotness, update selected eviction target
		if currHotness < lowestHotness {
			lowestHotness = currHotness
			selectedKey = key
		}

		// break if we already took enough samples
		samplesTaken += 1
		if samplesTaken >= SampleSize { break }
	}
	self.mutex.RUnlock()

	// delete selected entry, if any
	freedSpace := uint32(0)
	if lowestHotness < hotness {
		self.mutex.Lock()
		entry, stillExists := self.cachedBlobs[selectedKey]
		if stillExists {
			delete(self.cachedBlobs, selectedKey)
			freedSpace = entry.byteSize
		}
		self.mutex.Unlock()
	}
	return freedSpace
}

// Insert implements [Cache].Insert.
func (self *Memory) Insert(key string, data []byte) {
	const MaxMakeRoomAttempts = 2

	// see if we have enough space to add the blob, or try to
	// make some room otherwise
	entry, instant := newCachedBlobEntry(data)
	if entry.byteSize > atomic.LoadUint32(&self.byteSizeLimit) { return }
	spaceBytesLeft := atomic.LoadUint32(&self.spaceBytesLeft)
	freedSpace := uint32(0)
	if entry.byteSize > spaceBytesLeft {
		hotness := entry.hotness(instant)
		missingSpace := entry.byteSize - spaceBytesLeft
		for i := 0; i < MaxMakeRoomAttempts; i++ {
			freedSpace += self.removeRandEntry(hotness, instant)
			if freedSpace >= missingSpace { goto roomMade }
		}

		// we didn't make enough room for the new entry. desist.
		if freedSpace != 0 {
			atomic.AddUint32(&self.spaceBytesLeft, freedSpace)
		}
		return
	}

roomMade:
	// add the blob to the cache
	self.mutex.Lock()
	defer self.mutex.Unlock()
	if freedSpace != 0 { atomic.AddUint32(&self.spaceBytesLeft, freedSpace) }
	_, alreadyExists := self.cachedBlobs[key]
	if alreadyExists { return }
	if atomic.LoadUint32(&self.spaceBytesLeft) < entry.byteSize { return }
	newLeft := atomic.AddUint32(&self.spaceBytesLeft, ^uint32(entry.byteSize - 1))
	if newLeft < atomic.LoadUint32(&self.lowestBytesLeft) {
		atomic.StoreUint32(&self.lowestBytesLeft, newLeft)
	}
	self.cachedBlobs[key] = entry
}

// Find implements [Cache].Find.
func (self *Memory) Find(key string) ([]byte, bool) {
	self.mutex.RLock()
	entry, found := self.cachedBlobs[key]
	self.mutex.RUnlock()
	if !found { return nil, false }
	entry.increaseAccessCount()
	return entry.data, true
}

// ApproxByteSize returns an approximation of the number of bytes taken
// by the blobs currently stored in the cache.
func (self *Memory) ApproxByteSize() int {
	return int(atomic.LoadUint32(&self.byteSizeLimit) - atomic.LoadUint32(&self.spaceBytesLeft))
}

// PeakSize returns an approximation of the maximum amount of bytes
// that the cache has been filled with at any point of its life.
//
// This can be useful to determine the actual cache usage within your
// application and set the capacity to a reasonable value.
func (self *Memory) PeakSize() int {
	return int(atomic.LoadUint32(&self.byteSizeLimit) - atomic.LoadUint32(&self.lowestBytesLeft))
}
