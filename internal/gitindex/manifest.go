package gitindex

import (
	"fmt"
	"os"
	"strings"
)

// Manifest is the ordered set of relative paths to synchronize:
// tracked paths first, then untracked-but-not-ignored paths. The order
// has no transfer significance but is kept deterministic for testing.
// Duplicates are tolerated; the transfer primitive is idempotent per path.
type Manifest struct {
	Paths []string
}

// Materialize writes the manifest to a process-scoped temporary file the
// transfer primitive can consume as a file list. The returned cleanup
// func must run on every exit path, transfer failure included.
func (m *Manifest) Materialize() (path string, cleanup func(), err error) {
	f, err := os.CreateTemp("", "remotebuild-manifest-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create manifest file: %w", err)
	}

	name := f.Name()
	if _, err := f.WriteString(strings.Join(m.Paths, "\n") + "\n"); err != nil {
		f.Close()
		os.Remove(name)
		return "", nil, fmt.Errorf("failed to write manifest file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", nil, fmt.Errorf("failed to write manifest file: %w", err)
	}

	return name, func() { os.Remove(name) }, nil
}
