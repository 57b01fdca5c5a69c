package writer

import (
	"context"
	"io"
	"sync"

	"github.com/beevik/etree"

	"github.com/omniscale/osmwrangle/element"
	"github.com/omniscale/osmwrangle/reader"
)

type job struct {
	seq  int
	elem *etree.Element
	err  error
}

type result struct {
	seq    int
	shaped *element.Shaped
	err    error
}

// runParallel shapes elements in w.concurrency goroutines. Results are
// buffered until all preceding elements are written. Read errors are passed
// through the workers as results, so they are returned in document order as
// well.
func (w *Writer) runParallel(parent context.Context, src reader.Source) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	jobs := make(chan job, w.concurrency*2)
	results := make(chan result, w.concurrency*2)

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		defer close(jobs)
		for seq := 0; ; seq++ {
			elem, err := src.Next()
			if err == io.EOF {
				return
			}
			j := job{seq: seq, err: err}
			if err == nil {
				// the source reuses elements after the next call to Next
				j.elem = elem.Copy()
				src.Release(elem)
			}
			select {
			case jobs <- j:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	var workers sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for j := range jobs {
				r := result{seq: j.seq, err: j.err}
				if r.err == nil {
					r.shaped, r.err = w.process(j.elem)
				}
				select {
				case results <- r:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		workers.Wait()
		close(results)
	}()

	// stop all goroutines before returning, src is closed by the caller
	stop := func(err error) error {
		cancel()
		for range results {
		}
		<-readerDone
		return err
	}

	pending := make(map[int]result)
	next := 0
	for r := range results {
		pending[r.seq] = r
		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if r.err != nil {
				return stop(r.err)
			}
			if err := w.write(r.shaped); err != nil {
				return stop(err)
			}
		}
	}
	<-readerDone
	return parent.Err()
}
