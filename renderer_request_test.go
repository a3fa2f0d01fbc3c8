//go:build gtxt

package gsprite

import "os"
import "time"
import "image/color"
import "testing"

func TestSpritePixmap(t *testing.T) {
	renderer := newTestRenderer(t)
	pixmap := renderer.SpritePixmap("ball", 64, 64, NoFrame, nil)
	if pixmap == nil { t.Fatal("expected a pixmap") }
	bounds := pixmap.Bounds()
	if bounds.Dx() != 64 || bounds.Dy() != 64 {
		t.Fatalf("pixmap size = %dx%d (expected 64x64)", bounds.Dx(), bounds.Dy())
	}

	// the element bounds are stretched to the pixmap, so the center
	// must carry the ball's fill color
	if got := pixmap.RGBAAt(32, 32); got != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("center pixel = %v (expected opaque red)", got)
	}
	// corners stay outside the circle
	if got := pixmap.RGBAAt(1, 1); got.A != 0 {
		t.Fatalf("corner pixel = %v (expected transparent)", got)
	}
}

func TestSpritePixmapIdempotence(t *testing.T) {
	renderer := newTestRenderer(t)
	first := renderer.SpritePixmap("spin", 48, 32, 2, nil)
	second := renderer.SpritePixmap("spin", 48, 32, 2, nil)
	comparePixmaps("SameRenderer", t, first, second)
	if first != second {
		t.Fatal("expected the exact cached pixmap on the second request")
	}
}

func TestSpritePixmapEmptySize(t *testing.T) {
	renderer := newTestRenderer(t)
	if pixmap := renderer.SpritePixmap("ball", 0, 32, NoFrame, nil); pixmap != nil {
		t.Fatal("expected nil pixmap for zero width")
	}
	if pixmap := renderer.SpritePixmap("ball", 32, -1, NoFrame, nil); pixmap != nil {
		t.Fatal("expected nil pixmap for negative height")
	}
}

func TestUnknownSpritePixmap(t *testing.T) {
	renderer := newTestRenderer(t)
	pixmap := renderer.SpritePixmap("nonsense", 16, 16, NoFrame, nil)
	if pixmap == nil { t.Fatal("expected a pixmap even for unknown keys") }
	for i := 0; i < len(pixmap.Pix); i++ {
		if pixmap.Pix[i] != 0 { t.Fatal("expected a fully transparent pixmap") }
	}
}

func TestColorReplacement(t *testing.T) {
	renderer := newTestRenderer(t)
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}
	pixmap := renderer.SpritePixmap("ball", 64, 64, NoFrame, ColorMap{ red: blue })
	if got := pixmap.RGBAAt(32, 32); got != blue {
		t.Fatalf("center pixel = %v (expected opaque blue)", got)
	}

	// a replacement for a color the element doesn't use changes nothing
	green := color.RGBA{0, 255, 0, 255}
	pixmap = renderer.SpritePixmap("ball", 64, 64, NoFrame, ColorMap{ green: blue })
	if got := pixmap.RGBAAt(32, 32); got != red {
		t.Fatalf("center pixel = %v (expected opaque red)", got)
	}
}

func TestCacheKeyColorOrder(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}
	green := color.RGBA{0, 255, 0, 255}
	white := color.RGBA{255, 255, 255, 255}
	keyA := spriteCacheKey("ball", 32, 32, ColorMap{ red: blue, green: white })
	keyB := spriteCacheKey("ball", 32, 32, ColorMap{ green: white, red: blue })
	if keyA != keyB {
		t.Fatalf("logically equal color maps produced different keys:\n%s\n%s", keyA, keyB)
	}
	keyC := spriteCacheKey("ball", 32, 32, ColorMap{ red: white, green: blue })
	if keyA == keyC {
		t.Fatal("different color maps produced the same key")
	}
	if plain := spriteCacheKey("ball", 32, 32, nil); plain != "32-32-ball" {
		t.Fatalf("plain key = %q (expected 32-32-ball)", plain)
	}
}

func TestPersistentCacheSurvivesRestart(t *testing.T) {
	themePath := newTestTheme(t)
	cacheRoot := t.TempDir()

	renderer := NewRenderer(themePath, 1)
	renderer.SetCacheRoot(cacheRoot)
	first := renderer.SpritePixmap("ball", 40, 40, NoFrame, nil)
	renderer.Close()

	entries, err := os.ReadDir(cacheRoot)
	if err != nil { t.Fatalf("reading cache root: %s", err) }
	if len(entries) == 0 { t.Fatal("expected a cache directory to be created") }

	// a fresh renderer on the same cache root must serve the same
	// pixels from the persistent cache
	renderer = NewRenderer(themePath, 1)
	renderer.SetCacheRoot(cacheRoot)
	defer renderer.Close()
	second := renderer.SpritePixmap("ball", 40, 40, NoFrame, nil)
	comparePixmaps("AfterRestart", t, first, second)
}

func TestImageBlobCodec(t *testing.T) {
	renderer := newTestRenderer(t)
	pixmap := renderer.SpritePixmap("spin", 24, 24, 0, nil)
	decoded, ok := imageFromBlob(imageToBlob(pixmap))
	if !ok { t.Fatal("failed to decode encoded image") }
	comparePixmaps("BlobRoundtrip", t, pixmap, decoded)

	if _, ok := imageFromBlob(nil); ok { t.Fatal("expected failure on nil blob") }
	if _, ok := imageFromBlob(imageToBlob(pixmap)[:11]); ok {
		t.Fatal("expected failure on truncated blob")
	}
}

func TestOrphanedJobSkipsConversion(t *testing.T) {
	renderer := newTestRenderer(t)
	sprite := renderer.NewSprite("ball")
	sprite.SetSize(48, 48)
	sprite.Release() // nobody is waiting when the job completes
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) && renderer.inflightJobs > 0 {
		renderer.Update()
		time.Sleep(time.Millisecond)
	}
	if renderer.inflightJobs > 0 { t.Fatal("job still in flight after 3s") }

	// the result reaches the persistent cache, but the pixmap
	// conversion is skipped when no sprite is waiting anymore
	key := spriteCacheKey("ball", 48, 48, nil)
	if _, found := renderer.pixmapCache[key]; found {
		t.Fatal("expected no pixmap conversion for an orphaned job")
	}
	if _, found := renderer.diskCache.Find(key); !found {
		t.Fatal("expected the orphaned result in the persistent cache")
	}

	// a later request for the same rendition is served from disk
	pixmap := renderer.SpritePixmap("ball", 48, 48, NoFrame, nil)
	if pixmap == nil { t.Fatal("expected a pixmap served from the persistent cache") }
	if _, found := renderer.pixmapCache[key]; !found {
		t.Fatal("expected the disk hit to be installed in the pixmap cache")
	}
}

func TestSynchronousStrategy(t *testing.T) {
	renderer := newTestRenderer(t)
	renderer.SetStrategyEnabled(UseBackgroundThreads, false)
	sprite := renderer.NewSprite("ball")
	defer sprite.Release()
	sprite.SetSize(32, 32)
	// no Update needed: without background threads the sprite is
	// served before SetSize returns
	if sprite.Pixmap() == nil { t.Fatal("expected immediate pixmap delivery") }
	if len(renderer.pendingRequests) != 0 {
		t.Fatalf("%d requests left pending", len(renderer.pendingRequests))
	}
}
