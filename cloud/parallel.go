package cloud

import (
	"runtime"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/particlemorph/frame"
)

// parallelThreshold is the minimum particle count to use the workers.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 2048

// particleSnapshot captures the read-only inputs for one particle.
type particleSnapshot struct {
	Index int
	Phase float64
}

// workChunk is a range of snapshots for one worker.
type workChunk struct {
	start, end int
}

// workerPool evaluates vertices in three phases: gather snapshots from the
// ECS, compute positions in parallel, write positions back.
type workerPool struct {
	cloud *Cloud

	snapshots  []particleSnapshot
	positions  []r3.Vec
	numWorkers int
	frame      *frame.Snapshot

	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newWorkerPool(c *Cloud) *workerPool {
	return &workerPool{
		cloud:      c,
		numWorkers: runtime.GOMAXPROCS(0),
		snapshots:  make([]particleSnapshot, 0, c.count),
		positions:  make([]r3.Vec, c.count),
	}
}

func (p *workerPool) start() {
	if p.running {
		return
	}
	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *workerPool) stop() {
	if !p.running {
		return
	}
	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *workerPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			p.compute(chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// compute fills positions[start:end]. Each worker writes a disjoint range.
func (p *workerPool) compute(start, end int) {
	c := p.cloud
	for j := start; j < end; j++ {
		snap := p.snapshots[j]
		targets := c.targets(snap.Index)
		p.positions[j] = c.contract.Vertex(&targets, snap.Phase, p.frame)
	}
}

func (p *workerPool) run(s *frame.Snapshot) {
	c := p.cloud
	p.frame = s

	// Phase A: gather
	p.snapshots = p.snapshots[:0]
	q := c.filter.Query()
	for q.Next() {
		part, ph, _ := q.Get()
		p.snapshots = append(p.snapshots, particleSnapshot{Index: int(part.Index), Phase: ph.Value})
	}
	n := len(p.snapshots)
	if cap(p.positions) < n {
		p.positions = make([]r3.Vec, n)
	}
	p.positions = p.positions[:n]

	// Phase B: compute
	if n < parallelThreshold || p.numWorkers < 2 {
		p.compute(0, n)
	} else {
		p.start()
		chunkSize := (n + p.numWorkers - 1) / p.numWorkers
		chunks := 0
		for start := 0; start < n; start += chunkSize {
			end := min(start+chunkSize, n)
			p.workChan <- workChunk{start: start, end: end}
			chunks++
		}
		for i := 0; i < chunks; i++ {
			<-p.doneChan
		}
	}

	// Phase C: apply in the same query order as the gather
	j := 0
	q = c.filter.Query()
	for q.Next() {
		_, _, v := q.Get()
		v.Pos = p.positions[j]
		j++
	}
	p.frame = nil
}
