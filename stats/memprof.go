package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"
)

// MemProfiler writes a heap profile into dir every interval. It does not
// return.
func MemProfiler(dir string, interval time.Duration) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		log.Fatal(err)
	}

	ticker := time.NewTicker(interval)
	for i := 0; ; i++ {
		<-ticker.C
		filename := filepath.Join(dir, fmt.Sprintf("memprof-%03d.pprof", i))
		f, err := os.Create(filename)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Errorf("writing heap profile: %s", err)
		}
		f.Close()
	}
}
