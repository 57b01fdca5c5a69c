package logging

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestQuietSuppressesProgress(t *testing.T) {
	out := &bytes.Buffer{}
	l := newLogBroker(out)
	l.quiet.Store(true)
	l.Progress <- "Nodes: 1000/s"
	l.Records <- Record{WARNING, "shape", "dropped tag"}
	l.shutdown()

	if strings.Contains(out.String(), "Nodes") {
		t.Errorf("progress printed in quiet mode:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "[warn] [shape] dropped tag") {
		t.Errorf("record missing:\n%s", out.String())
	}
}

func TestQuietToggleWhileLogging(t *testing.T) {
	out := &bytes.Buffer{}
	l := newLogBroker(out)

	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			l.quiet.Store(i%2 == 0)
		}
	}()
	for i := 0; i < 100; i++ {
		l.Progress <- "progress"
		l.Records <- Record{INFO, "", "record"}
	}
	wg.Wait()
	l.shutdown()

	if n := strings.Count(out.String(), "record\n"); n != 100 {
		t.Errorf("expected 100 records, got %d", n)
	}
}

func TestSetQuiet(t *testing.T) {
	SetQuiet(true)
	if !defaultLogBroker.quiet.Load() {
		t.Error("quiet not set")
	}
	SetQuiet(false)
	if defaultLogBroker.quiet.Load() {
		t.Error("quiet not reset")
	}
}
