package blobcache

import "bytes"
import "strconv"
import "sync/atomic"
import "testing"

func TestMemoryFindInsert(t *testing.T) {
	cache := NewMemory(1 << 20)
	if _, found := cache.Find("missing"); found { t.Fatal("found a blob in an empty cache") }

	data := []byte("rendered sprite bytes")
	cache.Insert("sprite", data)
	stored, found := cache.Find("sprite")
	if !found { t.Fatal("blob not found after insert") }
	if !bytes.Equal(stored, data) { t.Fatal("blob data corrupted") }

	if size := cache.ApproxByteSize(); size != len(data)+constEntrySizeFactor {
		t.Fatalf("approx size = %d (expected %d)", size, len(data)+constEntrySizeFactor)
	}
}

func TestMemoryDuplicateInsert(t *testing.T) {
	cache := NewMemory(1 << 20)
	cache.Insert("key", []byte("first"))
	cache.Insert("key", []byte("second"))
	stored, found := cache.Find("key")
	if !found { t.Fatal("blob not found") }
	if string(stored) != "first" { t.Fatal("duplicate insert replaced the original blob") }
	if size := cache.ApproxByteSize(); size != 5+constEntrySizeFactor {
		t.Fatalf("approx size = %d after duplicate insert", size)
	}
}

func TestMemoryRejectsOversizedBlobs(t *testing.T) {
	cache := NewMemory(128)
	cache.Insert("huge", make([]byte, 256))
	if _, found := cache.Find("huge"); found { t.Fatal("oversized blob was stored") }
	if size := cache.ApproxByteSize(); size != 0 {
		t.Fatalf("approx size = %d (expected 0)", size)
	}
}

func TestMemoryEviction(t *testing.T) {
	defer atomic.StoreInt64(&testInstantNanosHack, 0)

	// two 456-byte entries fit in 1000 bytes, a third doesn't
	cache := NewMemory(1000)
	cache.Insert("first", make([]byte, 400))
	cache.Insert("second", make([]byte, 400))
	if size := cache.ApproxByteSize(); size != 912 {
		t.Fatalf("approx size = %d (expected 912)", size)
	}

	// without time passing the existing entries are as hot as the new
	// one and nothing can be evicted
	cache.Insert("third", make([]byte, 400))
	if _, found := cache.Find("third"); found {
		t.Fatal("hot entries were evicted for an equally hot newcomer")
	}

	// ...but once the old entries have cooled down, they go
	atomic.StoreInt64(&testInstantNanosHack, 8_000_000_000) // +8s
	cache.Insert("third", make([]byte, 400))
	if _, found := cache.Find("third"); !found {
		t.Fatal("cold entries were not evicted for a hot newcomer")
	}
	survivors := 0
	for _, key := range []string{"first", "second"} {
		if _, found := cache.Find(key); found { survivors += 1 }
	}
	if survivors != 1 {
		t.Fatalf("%d old entries survived (expected 1)", survivors)
	}
}

func TestMemoryPeakSize(t *testing.T) {
	cache := NewMemory(1 << 16)
	for i := 0; i < 4; i++ {
		cache.Insert("blob-"+strconv.Itoa(i), make([]byte, 100))
	}
	expected := 4 * (100 + constEntrySizeFactor)
	if peak := cache.PeakSize(); peak != expected {
		t.Fatalf("peak size = %d (expected %d)", peak, expected)
	}
}
