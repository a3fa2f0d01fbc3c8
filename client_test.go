//go:build gtxt

package gsprite

import "time"
import "image/color"
import "testing"

func TestSpriteDelivery(t *testing.T) {
	renderer := newTestRenderer(t)
	sprite := renderer.NewSprite("ball")
	defer sprite.Release()
	if sprite.Pixmap() != nil { t.Fatal("expected no pixmap before a size is set") }

	var deliveries int
	sprite.SetOnChangeFunc(func(pixmap Pixmap) { deliveries += 1 })
	sprite.SetSize(32, 32)
	pixmap := waitForPixmap(t, renderer, sprite)
	if deliveries != 1 { t.Fatalf("%d deliveries (expected 1)", deliveries) }

	direct := renderer.SpritePixmap("ball", 32, 32, NoFrame, nil)
	comparePixmaps("SpriteVsDirect", t, pixmap, direct)
}

func TestSpriteRequestDeduplication(t *testing.T) {
	renderer := newTestRenderer(t)
	spriteA := renderer.NewSprite("ball")
	spriteB := renderer.NewSprite("ball")
	defer spriteA.Release()
	defer spriteB.Release()

	// identical requests must share a single render job. pending
	// requests are only retired during Update, so the count is
	// stable here no matter how fast the workers are
	spriteA.SetSize(50, 50)
	spriteB.SetSize(50, 50)
	if len(renderer.pendingRequests) != 1 {
		t.Fatalf("%d pending requests (expected 1)", len(renderer.pendingRequests))
	}

	pixmapA := waitForPixmap(t, renderer, spriteA)
	pixmapB := waitForPixmap(t, renderer, spriteB)
	if pixmapA != pixmapB {
		t.Fatal("expected both sprites to receive the shared pixmap")
	}
}

func TestAsyncBurstNeverBlocksOwner(t *testing.T) {
	renderer := newTestRenderer(t)
	renderer.SetStrategyEnabled(UseDiskCache, false)
	sprite := renderer.NewSprite("ball")
	defer sprite.Release()

	// a burst of distinct renditions between two Update calls must
	// never block the requesting goroutine, no matter how far ahead
	// of the workers it gets: results travel back on an unbounded
	// queue, so the workers always keep consuming tasks
	const burstSize = 2000
	for height := 1; height <= burstSize; height++ {
		sprite.SetSize(4, height)
	}

	deadline := time.Now().Add(20 * time.Second)
	for time.Now().Before(deadline) && renderer.inflightJobs > 0 {
		renderer.Update()
		time.Sleep(time.Millisecond)
	}
	if renderer.inflightJobs > 0 { t.Fatal("jobs still in flight after 20s") }
	if len(renderer.pendingRequests) != 0 {
		t.Fatalf("%d requests left pending", len(renderer.pendingRequests))
	}

	// only the last rendition matches the sprite's current key
	pixmap := sprite.Pixmap()
	if pixmap == nil { t.Fatal("no pixmap delivered") }
	if got := pixmap.Bounds().Dy(); got != burstSize {
		t.Fatalf("delivered pixmap height = %d (expected %d)", got, burstSize)
	}
}

func TestSpriteRedundantRequest(t *testing.T) {
	renderer := newTestRenderer(t)
	renderer.SetStrategyEnabled(UseBackgroundThreads, false)
	sprite := renderer.NewSprite("ball")
	defer sprite.Release()

	var deliveries int
	sprite.SetOnChangeFunc(func(pixmap Pixmap) { deliveries += 1 })
	sprite.SetSize(32, 32)
	sprite.SetSize(32, 32) // same rendition, must be suppressed
	sprite.SetFrame(NoFrame)
	if deliveries != 1 { t.Fatalf("%d deliveries (expected 1)", deliveries) }

	sprite.SetSize(48, 48)
	if deliveries != 2 { t.Fatalf("%d deliveries after resize (expected 2)", deliveries) }
}

func TestSpriteFrameAdvance(t *testing.T) {
	renderer := newTestRenderer(t)
	renderer.SetStrategyEnabled(UseBackgroundThreads, false)
	sprite := renderer.NewSprite("spin")
	defer sprite.Release()
	sprite.SetSize(20, 20)

	sprite.SetFrame(1)
	frame1 := sprite.Pixmap()
	sprite.SetFrame(2)
	if sprite.Pixmap() == frame1 { t.Fatal("expected a different pixmap for frame 2") }

	// frame numbers wrap, so frame 5 is frame 1 again
	sprite.SetFrame(5)
	if sprite.Pixmap() != frame1 {
		t.Fatal("expected frame 5 to wrap around to the frame 1 pixmap")
	}
}

func TestSpriteRelease(t *testing.T) {
	renderer := newTestRenderer(t)
	renderer.SetStrategyEnabled(UseBackgroundThreads, false)
	sprite := renderer.NewSprite("ball")
	sprite.SetSize(32, 32)
	last := sprite.Pixmap()

	sprite.Release()
	if len(renderer.clients) != 0 { t.Fatal("expected sprite to be unregistered") }
	sprite.SetSize(64, 64) // must be a no-op now
	if sprite.Pixmap() != last { t.Fatal("released sprite received a new pixmap") }
	if len(renderer.clients) != 0 { t.Fatal("released sprite re-registered itself") }
	sprite.Release() // releasing twice is fine
}

func TestSpriteEmptySize(t *testing.T) {
	renderer := newTestRenderer(t)
	renderer.SetStrategyEnabled(UseBackgroundThreads, false)
	sprite := renderer.NewSprite("ball")
	defer sprite.Release()
	sprite.SetSize(32, 32)
	if sprite.Pixmap() == nil { t.Fatal("expected a pixmap") }
	sprite.SetSize(0, 0)
	if sprite.Pixmap() != nil { t.Fatal("expected nil pixmap after shrinking to empty") }
}

func TestSpriteColors(t *testing.T) {
	renderer := newTestRenderer(t)
	renderer.SetStrategyEnabled(UseBackgroundThreads, false)
	sprite := renderer.NewSprite("ball")
	defer sprite.Release()
	sprite.SetSize(16, 16)

	red := color.RGBA{255, 0, 0, 255}
	green := color.RGBA{0, 255, 0, 255}
	colors := ColorMap{ red: green }
	sprite.SetColors(colors)
	recolored := sprite.Pixmap()

	// the map was copied, mutating the original has no effect
	colors[red] = color.RGBA{0, 0, 255, 255}
	if got := sprite.Colors(); got[red] != green {
		t.Fatalf("sprite colors changed through the caller's map: %v", got)
	}
	if sprite.Pixmap() != recolored { t.Fatal("pixmap changed without a new request") }
}
