/*
Package writer drives the import. It reads elements from a Source, shapes and
validates them and writes the records of each element to a Sink, in document
order.
*/
package writer

import (
	"context"
	"io"

	"github.com/beevik/etree"

	"github.com/omniscale/osmwrangle/database"
	"github.com/omniscale/osmwrangle/element"
	"github.com/omniscale/osmwrangle/reader"
	"github.com/omniscale/osmwrangle/shape"
	"github.com/omniscale/osmwrangle/stats"
)

// Validator checks a shaped element before it is written.
type Validator interface {
	Validate(*element.Shaped) error
}

type Writer struct {
	shaper      *shape.Shaper
	validator   Validator
	sink        database.Sink
	progress    *stats.Statistics
	concurrency int
}

// New returns a Writer. validator can be nil to skip validation.
func New(shaper *shape.Shaper, validator Validator, sink database.Sink, progress *stats.Statistics) *Writer {
	if progress == nil {
		progress = stats.NewStatistics()
	}
	return &Writer{
		shaper:      shaper,
		validator:   validator,
		sink:        sink,
		progress:    progress,
		concurrency: 1,
	}
}

// SetConcurrency sets the number of goroutines that shape and validate
// elements. Records are still written in document order.
func (w *Writer) SetConcurrency(n int) {
	if n < 1 {
		n = 1
	}
	w.concurrency = n
}

// Run processes all elements of src. It stops at the first error and
// returns it. All elements before the failing one are written to the sink.
// The sink is not ended or aborted by Run.
func (w *Writer) Run(ctx context.Context, src reader.Source) error {
	if w.concurrency > 1 {
		return w.runParallel(ctx, src)
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		elem, err := src.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		shaped, err := w.process(elem)
		src.Release(elem)
		if err != nil {
			return err
		}
		if err := w.write(shaped); err != nil {
			return err
		}
	}
}

// process shapes and validates elem. Returns nil for elements that are
// not nodes or ways.
func (w *Writer) process(elem *etree.Element) (*element.Shaped, error) {
	shaped, err := w.shaper.Shape(elem)
	if err != nil || shaped == nil {
		return nil, err
	}
	if w.validator != nil {
		if err := w.validator.Validate(shaped); err != nil {
			return nil, err
		}
	}
	if dropped := len(elem.SelectElements(element.TagKind)) - len(shaped.Tags); dropped > 0 {
		w.progress.AddDroppedTags(dropped)
	}
	return shaped, nil
}

func (w *Writer) write(shaped *element.Shaped) error {
	if shaped == nil {
		return nil
	}
	if err := w.sink.Write(shaped.Rows()); err != nil {
		return err
	}
	if shaped.Way != nil {
		w.progress.AddWays(1)
		w.progress.AddWayNodes(len(shaped.WayNodes))
	} else {
		w.progress.AddNodes(1)
	}
	w.progress.AddTags(len(shaped.Tags))
	return nil
}
