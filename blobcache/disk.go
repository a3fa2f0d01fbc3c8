package blobcache

import "os"
import "sort"
import "sync"
import "time"
import "crypto/sha1"
import "encoding/hex"
import "container/list"
import "path/filepath"

import "github.com/ashvele/gsprite/internal/logx"

const blobExt = ".blob"

// Disk is a [Cache] that stores each blob as a file under a root
// directory, bounded by a byte capacity with least-recently-used
// eviction. The LRU order survives restarts: it is rebuilt from file
// modification times, which are touched on access.
//
// Keys are hashed into file names, so any string is a valid key.
type Disk struct {
	mutex sync.Mutex
	root string
	capacity int64
	used int64
	entries map[string]*list.Element
	lru *list.List // front = most recently used *diskEntry
}

type diskEntry struct {
	name string
	size int64
}

// OpenDisk opens (or creates) a disk cache rooted at the given
// directory, bounded by capacity bytes. Blobs already present from
// previous runs are indexed and count against the capacity from the
// start. Non-positive capacities panic; they are likely a dev mistake.
func OpenDisk(root string, capacity int64) (*Disk, error) {
	if capacity <= 0 { panic("capacity <= 0") }
	err := os.MkdirAll(root, 0o755)
	if err != nil { return nil, err }

	cache := &Disk{
		root: root,
		capacity: capacity,
		entries: make(map[string]*list.Element, 64),
		lru: list.New(),
	}
	err = cache.scan()
	if err != nil { return nil, err }
	cache.evictOverflow()
	return cache, nil
}

// scan rebuilds the index from the files already in the cache dir,
// ordered by modification time.
func (self *Disk) scan() error {
	dirEntries, err := os.ReadDir(self.root)
	if err != nil { return err }

	type fileInfo struct {
		name string
		size int64
		modTime time.Time
	}
	var files []fileInfo
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() || filepath.Ext(dirEntry.Name()) != blobExt { continue }
		info, err := dirEntry.Info()
		if err != nil { continue }
		files = append(files, fileInfo{ dirEntry.Name(), info.Size(), info.ModTime() })
	}
	sort.Slice(files, func(i, j int) bool { return files[i].modTime.Before(files[j].modTime) })

	// oldest first, so the most recently used blob ends up at the front
	for _, file := range files {
		entry := &diskEntry{ name: file.name, size: file.size }
		self.entries[file.name] = self.lru.PushFront(entry)
		self.used += file.size
	}
	return nil
}

func blobFileName(key string) string {
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:]) + blobExt
}

// Find implements [Cache].Find. I/O failures degrade to a miss and
// drop the broken entry from the index.
func (self *Disk) Find(key string) ([]byte, bool) {
	name := blobFileName(key)
	self.mutex.Lock()
	defer self.mutex.Unlock()

	elem, found := self.entries[name]
	if !found { return nil, false }
	path := filepath.Join(self.root, name)
	data, err := os.ReadFile(path)
	if err != nil {
		logx.Get().Warn("blobcache: dropping unreadable blob", "path", path, "error", err)
		self.dropLocked(elem)
		return nil, false
	}
	self.lru.MoveToFront(elem)
	now := time.Now()
	_ = os.Chtimes(path, now, now) // best effort, keeps LRU order across runs
	return data, true
}

// Insert implements [Cache].Insert.
func (self *Disk) Insert(key string, data []byte) {
	size := int64(len(data))
	if size > self.capacity { return }
	name := blobFileName(key)

	self.mutex.Lock()
	defer self.mutex.Unlock()

	path := filepath.Join(self.root, name)
	tmp := path + ".tmp"
	err := os.WriteFile(tmp, data, 0o644)
	if err == nil { err = os.Rename(tmp, path) }
	if err != nil {
		logx.Get().Warn("blobcache: insert failed", "path", path, "error", err)
		_ = os.Remove(tmp)
		return
	}

	if elem, found := self.entries[name]; found {
		entry := elem.Value.(*diskEntry)
		self.used += size - entry.size
		entry.size = size
		self.lru.MoveToFront(elem)
	} else {
		entry := &diskEntry{ name: name, size: size }
		self.entries[name] = self.lru.PushFront(entry)
		self.used += size
	}
	self.evictOverflow()
}

// evictOverflow removes least recently used blobs until the cache fits
// its capacity again. Must be called with the mutex held (or before
// the cache is shared, as in OpenDisk).
func (self *Disk) evictOverflow() {
	for self.used > self.capacity {
		elem := self.lru.Back()
		if elem == nil { return }
		self.dropLocked(elem)
	}
}

func (self *Disk) dropLocked(elem *list.Element) {
	entry := elem.Value.(*diskEntry)
	self.lru.Remove(elem)
	delete(self.entries, entry.name)
	self.used -= entry.size
	_ = os.Remove(filepath.Join(self.root, entry.name))
}

// Clear removes every blob from the cache, including their files.
func (self *Disk) Clear() {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	for elem := self.lru.Back(); elem != nil; elem = self.lru.Back() {
		self.dropLocked(elem)
	}
}

// Len returns the current number of cached blobs.
func (self *Disk) Len() int {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return len(self.entries)
}

// ByteSize returns the total size of the cached blobs in bytes.
func (self *Disk) ByteSize() int64 {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return self.used
}
