//go:build gtxt

package gsprite

// This file sets up the on-disk test themes and provides a few helper
// methods shared by the package tests.

import "os"
import "time"
import "path/filepath"
import "testing"

const testThemeSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
	<rect id="background" x="0" y="0" width="100" height="100" fill="#204060"/>
	<circle id="ball" cx="50" cy="50" r="20" fill="#ff0000"/>
	<rect id="spin_0" x="10" y="10" width="20" height="20" fill="#00ff00"/>
	<rect id="spin_1" x="40" y="10" width="20" height="20" fill="#00dd00"/>
	<rect id="spin_2" x="10" y="40" width="20" height="20" fill="#00bb00"/>
	<rect id="spin_3" x="40" y="40" width="20" height="20" fill="#009900"/>
</svg>`

const altThemeSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
	<rect id="background" x="0" y="0" width="100" height="100" fill="#604020"/>
	<circle id="ball" cx="50" cy="50" r="20" fill="#0000ff"/>
</svg>`

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	err := os.WriteFile(path, []byte(content), 0644)
	if err != nil { t.Fatalf("writing %s: %s", name, err) }
	return path
}

func newTestTheme(t *testing.T) string {
	t.Helper()
	return writeTestFile(t, t.TempDir(), "default.svg", testThemeSVG)
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	renderer := NewRenderer(newTestTheme(t), 1)
	renderer.SetCacheRoot(t.TempDir())
	t.Cleanup(renderer.Close)
	return renderer
}

// waitForPixmap pumps the renderer until the sprite receives a pixmap
// or the test times out. Background jobs are fast, but not instant.
func waitForPixmap(t *testing.T, renderer *Renderer, sprite *Sprite) Pixmap {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		renderer.Update()
		if sprite.Pixmap() != nil { return sprite.Pixmap() }
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("no pixmap delivered within 3s")
	return nil
}

// waitForThemeReload pumps the renderer until the watcher-triggered
// reload lands, detected through the alt theme missing 'spin'.
func waitForThemeReload(t *testing.T, renderer *Renderer) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		renderer.Update()
		if !renderer.SpriteExists("spin") { return }
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("theme reload not picked up within 5s")
}

func comparePixmaps(context string, t *testing.T, a, b Pixmap) {
	t.Helper()
	if a == nil || b == nil { t.Fatalf("%s: nil pixmap", context) }
	if a.Rect != b.Rect { t.Fatalf("%s: pixmap sizes differ (%v vs %v)", context, a.Rect, b.Rect) }
	for i := 0; i < len(a.Pix); i++ {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("%s: pixmaps differ at byte %d (%d vs %d)", context, i, a.Pix[i], b.Pix[i])
		}
	}
}
