package stats

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/omniscale/osmwrangle/logging"
)

// Counts are the totals of one import.
type Counts struct {
	Nodes       int64 `json:"nodes"`
	Ways        int64 `json:"ways"`
	WayNodes    int64 `json:"ways_nodes"`
	Tags        int64 `json:"tags"`
	DroppedTags int64 `json:"dropped_tags"`
	InvalidKeys int64 `json:"invalid_keys"`
}

// Statistics counts the written records. All methods are safe for
// concurrent use.
type Statistics struct {
	nodes       rateCounter
	ways        rateCounter
	wayNodes    rateCounter
	tags        rateCounter
	droppedTags rateCounter
	invalidKeys rateCounter

	start time.Time
	quit  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

func (s *Statistics) AddNodes(n int)       { s.nodes.Add(n) }
func (s *Statistics) AddWays(n int)        { s.ways.Add(n) }
func (s *Statistics) AddWayNodes(n int)    { s.wayNodes.Add(n) }
func (s *Statistics) AddTags(n int)        { s.tags.Add(n) }
func (s *Statistics) AddDroppedTags(n int) { s.droppedTags.Add(n) }
func (s *Statistics) AddInvalidKeys(n int) { s.invalidKeys.Add(n) }

func (s *Statistics) Counts() Counts {
	return Counts{
		Nodes:       s.nodes.Value(),
		Ways:        s.ways.Value(),
		WayNodes:    s.wayNodes.Value(),
		Tags:        s.tags.Value(),
		DroppedTags: s.droppedTags.Value(),
		InvalidKeys: s.invalidKeys.Value(),
	}
}

// NewStatistics returns Statistics without progress output.
func NewStatistics() *Statistics {
	return &Statistics{start: time.Now(), quit: make(chan struct{})}
}

// StatsReporter returns Statistics that print the progress every second
// until Stop is called.
func StatsReporter() *Statistics {
	s := NewStatistics()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		tick := time.NewTicker(time.Second)
		defer tick.Stop()
		for {
			select {
			case now := <-tick.C:
				logging.Progress(s.progress(now))
			case <-s.quit:
				return
			}
		}
	}()
	return s
}

func (s *Statistics) progress(now time.Time) string {
	return fmt.Sprintf("[%s] Nodes: %6s/s (%s) Ways: %6s/s (%s) Tags: %7s/s (%s)",
		now.Sub(s.start).Truncate(time.Second),
		humanize.Comma(int64(s.nodes.Tick(now))), humanize.Comma(s.nodes.Value()),
		humanize.Comma(int64(s.ways.Tick(now))), humanize.Comma(s.ways.Value()),
		humanize.Comma(int64(s.tags.Tick(now))), humanize.Comma(s.tags.Value()),
	)
}

// Stop stops the progress output.
func (s *Statistics) Stop() {
	s.once.Do(func() {
		close(s.quit)
		s.wg.Wait()
	})
}

// Summary formats the totals.
func (s *Statistics) Summary() string {
	c := s.Counts()
	return fmt.Sprintf("%s nodes, %s ways, %s way nodes, %s tags (%s dropped, %s with invalid keys) in %s",
		humanize.Comma(c.Nodes), humanize.Comma(c.Ways), humanize.Comma(c.WayNodes),
		humanize.Comma(c.Tags), humanize.Comma(c.DroppedTags), humanize.Comma(c.InvalidKeys),
		time.Since(s.start).Truncate(time.Millisecond),
	)
}
