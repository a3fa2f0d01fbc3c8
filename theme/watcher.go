package theme

import "time"
import "sync"

import "github.com/fsnotify/fsnotify"

import "github.com/ashvele/gsprite/internal/logx"

// writes from editors and exporters come in bursts; coalesce them
const debounceDelay = 100 * time.Millisecond

// A Watcher observes a theme's files and reports modifications, so a
// renderer can reload the theme while the game is running. This is a
// development aid: artists get live feedback without restarting.
//
// Reload notifications are delivered on [Watcher.Events](); the
// consumer decides when to drain the channel (the gsprite renderer
// does it from Update()). Notifications are debounced and the channel
// never blocks the watcher: if a notification is already pending,
// further ones are folded into it.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	events chan string
	closeOnce sync.Once
	done chan struct{}
}

// Watch starts watching the given files for modifications.
func Watch(paths ...string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil { return nil, err }
	for _, path := range paths {
		err = fsWatcher.Add(path)
		if err != nil {
			_ = fsWatcher.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		fsWatcher: fsWatcher,
		events: make(chan string, 1),
		done: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Events returns the channel on which modified file paths are
// delivered. The channel is closed when the watcher is closed.
func (self *Watcher) Events() <-chan string {
	return self.events
}

// Close stops watching. Safe to call multiple times.
func (self *Watcher) Close() {
	self.closeOnce.Do(func() {
		close(self.done)
		_ = self.fsWatcher.Close()
	})
}

func (self *Watcher) run() {
	defer close(self.events)
	var pendingPath string
	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-self.done:
			return
		case event, ok := <-self.fsWatcher.Events:
			if !ok { return }
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 { continue }
			pendingPath = event.Name
			if timer == nil {
				timer = time.NewTimer(debounceDelay)
			} else {
				if !timer.Stop() { select { case <-timer.C: ; default: } }
				timer.Reset(debounceDelay)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			select {
			case self.events <- pendingPath:
			default: // a reload is already pending, fold into it
			}
		case err, ok := <-self.fsWatcher.Errors:
			if !ok { return }
			logx.Get().Warn("theme: watcher error", "error", err)
		}
	}
}
