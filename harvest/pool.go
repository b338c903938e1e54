package harvest

import (
	"runtime"
	"sync"
)

// parsePool runs CPU-bound parsing on a fixed set of workers, so a burst
// of parses never competes with the goroutines waiting on the network.
type parsePool struct {
	jobs chan func()
	wg   sync.WaitGroup
}

func newParsePool(workers int) *parsePool {
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	p := &parsePool{jobs: make(chan func())}
	p.wg.Add(workers)
	for range workers {
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
			}
		}()
	}

	return p
}

// do runs fn on a worker and waits for it to finish.
func (p *parsePool) do(fn func()) {
	done := make(chan struct{})
	p.jobs <- func() {
		defer close(done)
		fn()
	}
	<-done
}

// close stops the workers once queued jobs have run.
func (p *parsePool) close() {
	close(p.jobs)
	p.wg.Wait()
}
