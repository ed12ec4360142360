// Package staging materializes inbound request bytes as uniquely named
// temporary files so path-based processing can operate on them.
//
// The thickness processor works on file paths, not streams, so staging is
// the bridge between the network boundary and the processing boundary.
// Every staged artifact must be released exactly once after use; the
// orchestrator owns that responsibility on both success and failure paths.
package staging

import (
	"fmt"
	"os"
)

// Format tags a staged artifact with the inbound file format.
// The tag becomes the artifact's file suffix, which the processor
// uses to pick a parser.
type Format string

const (
	// FormatSpreadsheet marks an Excel workbook payload.
	FormatSpreadsheet Format = "xlsx"

	// FormatText marks a delimited-text payload.
	FormatText Format = "txt"
)

// Suffix returns the artifact file suffix for the format, including the dot.
func (f Format) Suffix() string {
	return "." + string(f)
}

// Stager allocates and removes staged artifacts in a fixed directory.
// An empty directory means the platform default temp location.
// Stager is safe for concurrent use; uniqueness of artifact names is
// delegated to os.CreateTemp.
type Stager struct {
	dir string
}

// New returns a Stager writing artifacts under dir.
func New(dir string) *Stager {
	return &Stager{dir: dir}
}

// Stage writes data to a new uniquely named file with the format's suffix
// and returns its path. The file is fully written and closed before Stage
// returns, so the path is immediately readable. If Stage returns an error,
// no artifact exists and the caller must not call Release.
func (s *Stager) Stage(data []byte, format Format) (string, error) {
	f, err := os.CreateTemp(s.dir, "thickness-*"+format.Suffix())
	if err != nil {
		return "", fmt.Errorf("create staged artifact: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write staged artifact %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close staged artifact %s: %w", path, err)
	}

	return path, nil
}

// Release deletes a staged artifact. It must be called exactly once per
// successful Stage, on every exit path that does not deliberately retain
// the artifact.
func (s *Stager) Release(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("release staged artifact %s: %w", path, err)
	}
	return nil
}
