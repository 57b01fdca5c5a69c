package import_

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/omniscale/osmwrangle/stats"
)

const ManifestFilename = "manifest.json"

// Manifest describes one import run.
type Manifest struct {
	RunID  string       `json:"run_id"`
	Input  string       `json:"input"`
	Start  time.Time    `json:"start"`
	End    time.Time    `json:"end"`
	Counts stats.Counts `json:"counts"`
}

func NewManifest(input string) *Manifest {
	return &Manifest{
		RunID: uuid.New().String(),
		Input: input,
		Start: time.Now().UTC(),
	}
}

func (m *Manifest) Finish(counts stats.Counts) {
	m.End = time.Now().UTC()
	m.Counts = counts
}

// WriteTo writes the manifest as ManifestFilename into dir and returns the
// full path.
func (m *Manifest) WriteTo(dir string) (string, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	filename := filepath.Join(dir, ManifestFilename)
	if err := ioutil.WriteFile(filename, append(b, '\n'), 0644); err != nil {
		return "", errors.Wrap(err, "writing manifest")
	}
	return filename, nil
}
