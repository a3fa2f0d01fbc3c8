package gsprite

import "os"
import "fmt"
import "bytes"
import "strconv"
import "strings"
import "crypto/sha1"
import "encoding/hex"
import "path/filepath"

import "github.com/ashvele/gsprite/svg"
import "github.com/ashvele/gsprite/theme"
import "github.com/ashvele/gsprite/blobcache"
import "github.com/ashvele/gsprite/internal/logx"
import "github.com/ashvele/gsprite/internal/workqueue"

// The default frame suffix, used when none has been set or the one
// given was unusable.
const defaultFrameSuffix = "_%d"

// Renderer is the main type of this package. It loads a theme's
// vector document and serves rasterized sprites from it, caching the
// results at multiple levels so the same sprite is never rasterized
// twice at the same size and colors.
//
// Renderers own their caches and their client registry, and none of
// that state is protected by locks: a Renderer must be used from a
// single goroutine, the same one that calls [Renderer.Update]. The
// only work that leaves that goroutine is the rasterization itself,
// which runs on an internal worker pool.
//
// Most programs create a single Renderer at startup, keep it for the
// whole run and let sprites come and go through [Renderer.NewSprite].
type Renderer struct {
	defaultTheme string
	currentTheme string
	frameSuffix string
	frameBaseIndex int
	strategies Strategy
	cacheCapacity int64
	cacheRoot string

	diskCache blobcache.Cache
	customCache blobcache.Cache

	frameCountCache map[string]int
	boundsCache map[string]svg.Rect
	pixmapCache map[string]Pixmap
	pendingRequests map[string]struct{}
	inflightJobs int // jobs submitted but not yet received back
	clients map[*Sprite]string

	pool *rendererPool
	workers *workqueue.Pool
	completions *completionQueue
	watcher *theme.Watcher
	watchingEnabled bool
	onThemeChange func(string)
	settingTheme bool
	closed bool
}

// NewRenderer creates a sprite renderer that will fall back to the
// given theme whenever no other theme has been set or the requested
// one can't be loaded. The theme is not loaded yet; that happens
// lazily on the first operation that needs it, or eagerly through
// [Renderer.SetTheme].
//
// cacheMiB is the capacity of the persistent cache in MiB. Zero
// selects the default of 3MiB; negative values are not allowed.
func NewRenderer(defaultTheme string, cacheMiB int) *Renderer {
	if cacheMiB < 0 { panic("invalid cache capacity (cacheMiB < 0)") }
	if cacheMiB == 0 { cacheMiB = 3 }
	workers := workqueue.New(0)
	renderer := &Renderer{
		defaultTheme: defaultTheme,
		frameSuffix: defaultFrameSuffix,
		strategies: UseDiskCache | UseBackgroundThreads,
		cacheCapacity: int64(cacheMiB) << 20,
		frameCountCache: make(map[string]int),
		boundsCache: make(map[string]svg.Rect),
		pixmapCache: make(map[string]Pixmap),
		pendingRequests: make(map[string]struct{}),
		clients: make(map[*Sprite]string),
		workers: workers,
		completions: newCompletionQueue(),
	}
	renderer.pool = newRendererPool(workers)
	return renderer
}

// Theme returns the path of the currently loaded theme, or the empty
// string when none has been loaded yet.
func (self *Renderer) Theme() string { return self.currentTheme }

// DefaultTheme returns the fallback theme path given at construction.
func (self *Renderer) DefaultTheme() string { return self.defaultTheme }

// FrameBaseIndex returns the frame number of the first frame of
// animated sprites. See [Renderer.SetFrameBaseIndex].
func (self *Renderer) FrameBaseIndex() int { return self.frameBaseIndex }

// SetFrameBaseIndex sets the frame number of the first frame of
// animated sprites. Themes that name their frames starting from 1
// instead of 0 need this set before any sprite is requested. Changing
// it while sprites are live is not supported; do it right after
// creating the renderer.
func (self *Renderer) SetFrameBaseIndex(index int) { self.frameBaseIndex = index }

// FrameSuffix returns the suffix appended to sprite keys to form
// frame element keys. See [Renderer.SetFrameSuffix].
func (self *Renderer) FrameSuffix() string { return self.frameSuffix }

// SetFrameSuffix sets the suffix appended to sprite keys to form the
// element keys of animation frames. The suffix must contain exactly
// one %d placeholder for the frame number, e.g. "_%d" (the default)
// turns key "spin" and frame 3 into element "spin_3". Suffixes that
// don't satisfy that are replaced by the default.
func (self *Renderer) SetFrameSuffix(suffix string) {
	if strings.Count(suffix, "%d") != 1 || strings.Count(suffix, "%") != 1 {
		suffix = defaultFrameSuffix
	}
	self.frameSuffix = suffix
}

// Strategies returns the set of rendering strategies currently in use.
func (self *Renderer) Strategies() Strategy { return self.strategies }

// SetStrategyEnabled enables or disables a rendering strategy. Both
// [UseDiskCache] and [UseBackgroundThreads] start enabled.
//
// Toggling [UseDiskCache] reloads the current theme: the set of
// reachable cached pixmaps changes with the strategy, and a reload is
// the only way to guarantee no stale pixmap survives the switch.
func (self *Renderer) SetStrategyEnabled(strategy Strategy, enabled bool) {
	wasEnabled := (self.strategies & strategy) != 0
	if enabled {
		self.strategies |= strategy
	} else {
		self.strategies &^= strategy
	}
	if strategy&UseDiskCache != 0 && wasEnabled != enabled {
		self.reloadTheme()
	}
}

// SetOnThemeChangeFunc sets a function to be called whenever the
// loaded theme actually changes, with the new theme path as argument.
// Fallbacks count as changes too. Pass nil to disable the callback.
func (self *Renderer) SetOnThemeChangeFunc(fn func(themePath string)) {
	self.onThemeChange = fn
}

// SetCacheRoot overrides the directory under which persistent cache
// folders are created. When unset, the renderer derives one from
// [os.UserCacheDir]. Takes effect on the next theme (re)load.
func (self *Renderer) SetCacheRoot(dir string) { self.cacheRoot = dir }

// SetCacheBackend replaces the file based persistent cache with a
// custom [blobcache.Cache]. Keys are prefixed with the theme's
// document path, so a single backend can serve multiple themes. The
// current theme is reloaded so the new backend takes effect at once.
// Pass nil to go back to the default file based cache.
func (self *Renderer) SetCacheBackend(cache blobcache.Cache) {
	self.customCache = cache
	self.reloadTheme()
}

// SetTheme loads the theme at the given path, which may point to a
// theme descriptor file (.yaml/.yml) or directly to a vector document.
// When loading fails, the renderer falls back to the default theme
// and the error for the requested one is still returned; check
// [Renderer.Theme] to see which theme is actually active.
//
// A successful switch invalidates all caches and triggers a refresh
// of every live sprite.
func (self *Renderer) SetTheme(themePath string) error {
	if self.settingTheme { return nil } // re-entry from a sprite refresh
	self.settingTheme = true
	defer func() { self.settingTheme = false }()

	oldTheme := self.currentTheme
	if oldTheme == themePath { return nil }
	err := self.setTheme(themePath)
	if err != nil && themePath != self.defaultTheme {
		logx.Get().Warn("theme failed to load, falling back to default",
			"theme", themePath, "default", self.defaultTheme, "error", err)
		fallbackErr := self.setTheme(self.defaultTheme)
		if fallbackErr != nil {
			err = fmt.Errorf("%w (fallback also failed: %w)", err, fallbackErr)
		}
	}

	// every sprite must be refreshed against the new theme, whatever
	// it turned out to be
	self.refetchAllSprites()
	if oldTheme != self.currentTheme && self.onThemeChange != nil {
		self.onThemeChange(self.currentTheme)
	}
	return err
}

// setTheme performs the actual switch, without fallback or client
// notification.
func (self *Renderer) setTheme(themePath string) error {
	docPath, err := theme.Resolve(themePath)
	if err != nil { return err }
	doc, err := svg.Load(docPath)
	if err != nil { return err }

	// from here on the switch can't fail anymore. drain in-flight
	// jobs first: their cache keys belong to the old theme and must
	// not land in the new caches
	self.drainAndWait()
	self.pool.setSource(docPath, doc)

	self.frameCountCache = make(map[string]int)
	self.boundsCache = make(map[string]svg.Rect)
	self.pixmapCache = make(map[string]Pixmap)
	self.pendingRequests = make(map[string]struct{})
	self.openBlobCache(docPath)
	self.restartWatcher(themePath, docPath)
	self.currentTheme = themePath
	logx.Get().Info("theme loaded", "theme", themePath, "document", docPath)
	return nil
}

// openBlobCache sets up the persistent cache for the given document,
// honoring the disk cache strategy and any custom backend. Failures
// degrade to running without a persistent cache.
func (self *Renderer) openBlobCache(docPath string) {
	self.diskCache = nil
	if self.strategies&UseDiskCache == 0 { return }
	if self.customCache != nil {
		self.diskCache = prefixedCache{ inner: self.customCache, prefix: docPath + "|" }
		return
	}
	dir := self.blobCacheDir(docPath)
	if dir == "" { return }
	cache, err := blobcache.OpenDisk(dir, self.cacheCapacity)
	if err != nil {
		logx.Get().Warn("persistent cache unavailable", "dir", dir, "error", err)
		return
	}
	self.discardStaleBlobs(cache, docPath)
	self.diskCache = cache
}

// Key of the stamp blob recording the modification time of the theme
// document a persistent cache was filled from.
const themeStampKey = "theme-stamp"

// discardStaleBlobs wipes the persistent cache when the theme document
// was modified after the cache was last written. Without this, editing
// a theme in place would keep serving the old sprites forever.
func (self *Renderer) discardStaleBlobs(cache *blobcache.Disk, docPath string) {
	info, err := os.Stat(docPath)
	if err != nil { return }
	stamp := []byte(strconv.FormatInt(info.ModTime().UnixNano(), 10))
	if prev, found := cache.Find(themeStampKey); found && bytes.Equal(prev, stamp) {
		return
	}
	if cache.Len() > 0 {
		logx.Get().Info("theme document changed, discarding persistent cache", "document", docPath)
		cache.Clear()
	}
	cache.Insert(themeStampKey, stamp)
}

// blobCacheDir derives a per-theme cache directory, or returns the
// empty string when no sensible location exists.
func (self *Renderer) blobCacheDir(docPath string) string {
	root := self.cacheRoot
	if root == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			logx.Get().Warn("no user cache directory", "error", err)
			return ""
		}
		root = filepath.Join(base, "gsprite")
	}

	// the directory name embeds a hash of the absolute document path,
	// so same-named themes in different locations don't collide
	absPath, err := filepath.Abs(docPath)
	if err != nil { absPath = docPath }
	sum := sha1.Sum([]byte(absPath))
	name := strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath))
	return filepath.Join(root, name+"-"+hex.EncodeToString(sum[:6]))
}

// restartWatcher replaces the theme file watcher, if watching is
// enabled, so it tracks the files of the newly loaded theme.
func (self *Renderer) restartWatcher(themePath, docPath string) {
	if self.watcher != nil {
		self.watcher.Close()
		self.watcher = nil
	}
	if !self.watchingEnabled { return }
	paths := []string{docPath}
	if themePath != docPath { paths = append(paths, themePath) }
	watcher, err := theme.Watch(paths...)
	if err != nil {
		logx.Get().Warn("theme watching unavailable", "error", err)
		return
	}
	self.watcher = watcher
}

// SetThemeWatching enables or disables automatic theme reloads when
// the theme's files change on disk. Changes are picked up during
// [Renderer.Update]. Watching is disabled by default.
func (self *Renderer) SetThemeWatching(enabled bool) {
	if self.watchingEnabled == enabled { return }
	self.watchingEnabled = enabled
	if self.currentTheme == "" { return }
	if enabled {
		docPath, err := theme.Resolve(self.currentTheme)
		if err == nil {
			self.restartWatcher(self.currentTheme, docPath)
		}
	} else if self.watcher != nil {
		self.watcher.Close()
		self.watcher = nil
	}
}

// reloadTheme forces the current theme through a full [Renderer.SetTheme]
// cycle even though the path didn't change.
func (self *Renderer) reloadTheme() {
	themePath := self.currentTheme
	if themePath == "" { return }
	self.currentTheme = ""
	_ = self.SetTheme(themePath)
}

// ensureThemeLoaded makes sure some theme is loaded, going to the
// default one if necessary. Returns false when nothing could be loaded.
func (self *Renderer) ensureThemeLoaded() bool {
	if self.currentTheme != "" { return true }
	if self.defaultTheme == "" || self.settingTheme { return false }
	_ = self.SetTheme(self.defaultTheme)
	return self.currentTheme != ""
}

// refetchAllSprites invalidates the last served key of every live
// sprite and triggers a fresh request for each.
func (self *Renderer) refetchAllSprites() {
	for sprite := range self.clients {
		self.clients[sprite] = ""
	}
	for sprite := range self.clients {
		sprite.fetch()
	}
}

// Update must be called periodically, typically once per frame, from
// the goroutine that owns the renderer. It delivers the pixmaps of
// completed background jobs to their sprites and applies pending theme
// reloads from the file watcher. It never blocks.
func (self *Renderer) Update() {
	if self.watcher != nil {
		select {
		case path, ok := <-self.watcher.Events():
			if ok {
				logx.Get().Info("theme files changed, reloading", "path", path)
				self.reloadTheme()
			}
		default:
			// no changes
		}
	}
	self.drainCompletions()
}

func (self *Renderer) drainCompletions() {
	for {
		job := self.completions.pop()
		if job == nil { return }
		self.inflightJobs -= 1
		self.jobFinished(job, false)
	}
}

// drainAndWait blocks until every in-flight job has been executed and
// integrated.
func (self *Renderer) drainAndWait() {
	for self.inflightJobs > 0 {
		job := self.completions.pop()
		if job == nil {
			<-self.completions.ready
			continue
		}
		self.inflightJobs -= 1
		self.jobFinished(job, false)
	}
}

// Close waits for in-flight render jobs, delivers their results and
// releases the renderer's workers and watchers. The renderer can't be
// used after Close.
func (self *Renderer) Close() {
	if self.closed { return }
	self.closed = true
	self.drainAndWait()
	self.workers.Close()
	if self.watcher != nil {
		self.watcher.Close()
		self.watcher = nil
	}
	self.pool.setSource("", nil)
	self.diskCache = nil
}

// prefixedCache namespaces a shared cache backend by theme.
type prefixedCache struct {
	inner blobcache.Cache
	prefix string
}

func (self prefixedCache) Find(key string) ([]byte, bool) {
	return self.inner.Find(self.prefix + key)
}

func (self prefixedCache) Insert(key string, data []byte) {
	self.inner.Insert(self.prefix+key, data)
}
