package gsprite

import "sync"
import "image"

// renderJob carries everything a worker needs to rasterize one sprite,
// plus the resulting image on the way back. Jobs are created on the
// renderer's owning goroutine, handed to a worker, and returned whole
// through the completion queue, so no field needs synchronization.
type renderJob struct {
	cacheKey string
	elementKey string
	width int
	height int
	colors ColorMap
	result *image.RGBA
}

// completionQueue carries finished jobs from the workers back to the
// owning goroutine. It is unbounded so workers can never block while
// handing a result back: if they could, a burst of requests between
// two [Renderer.Update] calls would stall the workers and, through the
// bounded task queue, end up blocking the one goroutine able to drain
// anything. Asynchronous requests must never block the caller.
type completionQueue struct {
	mutex sync.Mutex
	jobs []*renderJob
	ready chan struct{} // wakeup signal for blocking drains, cap 1
}

func newCompletionQueue() *completionQueue {
	return &completionQueue{ ready: make(chan struct{}, 1) }
}

func (self *completionQueue) push(job *renderJob) {
	self.mutex.Lock()
	self.jobs = append(self.jobs, job)
	self.mutex.Unlock()
	select {
	case self.ready <- struct{}{}:
	default: // a wakeup is already pending
	}
}

// pop returns the oldest completed job, or nil if none is waiting.
func (self *completionQueue) pop() *renderJob {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	if len(self.jobs) == 0 { return nil }
	job := self.jobs[0]
	self.jobs[0] = nil
	self.jobs = self.jobs[1:]
	return job
}

// run rasterizes the job's element at the requested size. When no
// document instance can be obtained the result stays a fully
// transparent image of the right size, which is also what an unknown
// element key produces.
func (self *renderJob) run(pool *rendererPool) {
	img := image.NewRGBA(image.Rect(0, 0, self.width, self.height))
	doc := pool.allocate()
	if doc != nil {
		doc.RenderElement(self.elementKey, img, self.colors.remapFunc())
		pool.release(doc)
	}
	self.result = img
}
