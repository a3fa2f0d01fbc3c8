package gsprite

import "sync"

import "github.com/ashvele/gsprite/svg"
import "github.com/ashvele/gsprite/internal/logx"
import "github.com/ashvele/gsprite/internal/workqueue"

// Validity of the pool's current source document. Construction of the
// first instance decides it; a source that failed to parse stays
// invalid until the pool is pointed at a new path.
type sourceValidity uint8

const (
	validityUnchecked sourceValidity = iota
	validityValid
	validityInvalid
)

type instanceState uint8

const (
	instanceFree instanceState = iota
	instanceCheckedOut
)

type pooledInstance struct {
	doc *svg.Document
	state instanceState
}

// rendererPool owns the document instances used for rasterization and
// lends them out to whichever goroutine is executing a render job.
// Instances are not safe for shared use, so the state of each one is
// the single source of truth for availability, and it is only ever
// touched under the pool mutex.
//
// This is the only renderer state reachable from worker goroutines;
// everything else stays confined to the owning goroutine.
type rendererPool struct {
	mutex sync.Mutex
	workers *workqueue.Pool
	path string
	validity sourceValidity
	instances []*pooledInstance
}

func newRendererPool(workers *workqueue.Pool) *rendererPool {
	// don't try to construct instances until given a valid source
	return &rendererPool{ workers: workers, validity: validityInvalid }
}

// setSource discards all instances and points the pool at a new
// document path. The caller may pass the already parsed document as
// seed: its existence is evidence for the validity of the source.
//
// The worker pool is drained first, so that no instance can still be
// checked out when the old ones are dropped. Finding one checked out
// after the drain is a bug in the caller, not a recoverable state.
func (self *rendererPool) setSource(path string, seed *svg.Document) {
	self.workers.Wait()
	self.mutex.Lock()
	defer self.mutex.Unlock()
	for _, instance := range self.instances {
		if instance.state != instanceFree {
			panic("gsprite: document instance still checked out while re-sourcing the pool")
		}
	}
	self.instances = self.instances[:0]
	self.path = path
	switch {
	case seed != nil:
		self.validity = validityValid
		self.instances = append(self.instances, &pooledInstance{ doc: seed })
	case path == "":
		self.validity = validityInvalid
	default:
		self.validity = validityUnchecked
	}
}

// hasAvailableInstance reports whether at least one instance exists
// and is not checked out. Used as a hint that a metadata query could
// be answered directly without constructing anything.
func (self *rendererPool) hasAvailableInstance() bool {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	for _, instance := range self.instances {
		if instance.state == instanceFree { return true }
	}
	return false
}

// allocate checks out a document instance for the calling goroutine,
// lazily constructing a new one when all existing instances are busy.
// It returns nil if the source is invalid; construction is attempted
// at most once per source, so an invalid source stays cheap.
func (self *rendererPool) allocate() *svg.Document {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	for _, instance := range self.instances {
		if instance.state == instanceFree {
			instance.state = instanceCheckedOut
			return instance.doc
		}
	}
	if self.validity == validityInvalid { return nil }
	doc, err := svg.Load(self.path)
	if err != nil {
		logx.Get().Warn("gsprite: source document failed to load", "path", self.path, "error", err)
		self.validity = validityInvalid
		return nil
	}
	self.validity = validityValid
	self.instances = append(self.instances, &pooledInstance{ doc: doc, state: instanceCheckedOut })
	return doc
}

// release marks a checked out instance as available again.
func (self *rendererPool) release(doc *svg.Document) {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	for _, instance := range self.instances {
		if instance.doc == doc {
			instance.state = instanceFree
			return
		}
	}
}
