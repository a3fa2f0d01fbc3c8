package theme

import "os"
import "time"
import "path/filepath"
import "testing"

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "theme.svg", "<svg/>")
	watcher, err := Watch(path)
	if err != nil { t.Fatalf("watch failed: %s", err) }
	defer watcher.Close()

	// give the watcher a moment to be fully registered, then touch
	// the file a few times; debouncing must fold them into one event
	time.Sleep(50 * time.Millisecond)
	for i := 0; i < 3; i++ {
		err = os.WriteFile(path, []byte("<svg></svg>"), 0644)
		if err != nil { t.Fatalf("rewrite failed: %s", err) }
	}

	select {
	case got := <-watcher.Events():
		if filepath.Base(got) != "theme.svg" {
			t.Fatalf("event for %q (expected theme.svg)", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event within 5s")
	}
}

func TestWatcherClose(t *testing.T) {
	path := writeFile(t, t.TempDir(), "theme.svg", "<svg/>")
	watcher, err := Watch(path)
	if err != nil { t.Fatalf("watch failed: %s", err) }
	watcher.Close()
	watcher.Close() // closing twice is fine

	select {
	case _, open := <-watcher.Events():
		if open { t.Fatal("expected the events channel to be closed") }
	case <-time.After(time.Second):
		t.Fatal("events channel not closed within 1s")
	}
}

func TestWatchMissingFile(t *testing.T) {
	if _, err := Watch("/definitely/not/a/file.svg"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
