// The blobcache subpackage defines the persistent key/value blob store
// used as the second cache tier beneath the in-process pixmap cache,
// and provides two implementations: a size-bounded [Disk] cache shared
// across program runs, and a byte-bounded [Memory] cache.
//
// Blob caches are best-effort by contract: every failure mode is a
// plain miss. Rendering works the same with a broken cache, it just
// stops being amortized across runs.
package blobcache

// A Cache stores opaque blobs under string keys within some byte
// capacity. Eviction policy is the implementation's responsibility.
//
// Implementations must be safe for concurrent use.
type Cache interface {
	// Finds the blob stored under the given key. A miss (or any
	// internal failure) returns (nil, false).
	Find(key string) ([]byte, bool)

	// Stores a blob under the given key. Insertions may be silently
	// dropped, e.g. when the blob alone exceeds the cache capacity
	// or the backing store fails.
	Insert(key string, data []byte)
}
