package shape

import (
	"strings"
	"sync"

	"github.com/beevik/etree"
)

// Problem is a tag that was dropped because of an invalid key.
type Problem struct {
	Elem  *etree.Element
	Key   string
	Value string
}

// Attrs formats all attributes of the owning element.
func (p Problem) Attrs() string {
	parts := make([]string, 0, len(p.Elem.Attr))
	for _, a := range p.Elem.Attr {
		parts = append(parts, a.Key+"="+a.Value)
	}
	return strings.Join(parts, " ")
}

type Reporter interface {
	Report(Problem)
}

// LogReporter logs each problem as warning.
type LogReporter struct{}

func (LogReporter) Report(p Problem) {
	log.Warnf("dropped tag with invalid key %q (%q) of %s %s", p.Key, p.Value, p.Elem.Tag, p.Attrs())
}

// CountingReporter counts problems and passes them to Next, if set.
type CountingReporter struct {
	Next  Reporter
	mu    sync.Mutex
	count int
}

func (c *CountingReporter) Report(p Problem) {
	c.mu.Lock()
	c.count += 1
	c.mu.Unlock()
	if c.Next != nil {
		c.Next.Report(p)
	}
}

func (c *CountingReporter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
