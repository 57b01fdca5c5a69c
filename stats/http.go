package stats

import (
	"net/http"
	_ "net/http/pprof"

	"github.com/omniscale/osmwrangle/logging"
)

var log = logging.NewLogger("stats")

// StartHttpPProf serves the pprof handlers on bind.
func StartHttpPProf(bind string) {
	go func() {
		log.Errorf("profile server: %s", http.ListenAndServe(bind, nil))
	}()
}
