package gitindex

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/tacogips/remotebuild/internal/debug"
)

// Lister answers the two read-only version-control queries this tool
// needs. Scoped to a project root; absence of a repository is an error
// from the Lister but a recoverable condition for Select.
type Lister interface {
	// Tracked lists paths known to the version-control index, relative
	// to root.
	Tracked(root string) ([]string, error)
	// Untracked lists paths that are neither tracked nor ignored,
	// relative to root.
	Untracked(root string) ([]string, error)
}

// GitLister implements Lister with the git binary.
type GitLister struct{}

// Tracked implements Lister via `git ls-files`.
func (GitLister) Tracked(root string) ([]string, error) {
	return gitLsFiles(root)
}

// Untracked implements Lister via `git ls-files --others --exclude-standard`.
func (GitLister) Untracked(root string) ([]string, error) {
	return gitLsFiles(root, "--others", "--exclude-standard")
}

func gitLsFiles(root string, extra ...string) ([]string, error) {
	args := append([]string{"ls-files"}, extra...)
	debug.Command("git", args)

	cmd := exec.Command("git", args...)
	cmd.Dir = root
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git ls-files failed: %v: %s", err, strings.TrimSpace(stderr.String()))
	}

	var paths []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paths = append(paths, line)
		}
	}
	return paths, nil
}

// Select computes the transfer manifest for a run. A nil result means
// "no manifest": the caller transfers the full tree subject to
// exclusions only.
//
// Incremental selection is a performance optimization, never a
// correctness requirement, so every degraded case returns nil instead
// of an error: selection disabled, not a repository, or a repository
// with zero tracked paths (an empty manifest would transfer nothing).
// A failing untracked query degrades to the tracked set alone.
func Select(l Lister, root string, incremental bool) *Manifest {
	if !incremental {
		return nil
	}

	tracked, err := l.Tracked(root)
	if err != nil {
		debug.Debug("tracked-path query failed, falling back to full sync: %v", err)
		return nil
	}
	if len(tracked) == 0 {
		debug.Debug("no tracked paths, falling back to full sync")
		return nil
	}

	untracked, err := l.Untracked(root)
	if err != nil {
		debug.Debug("untracked-path query failed, syncing tracked paths only: %v", err)
		untracked = nil
	}

	return &Manifest{Paths: append(tracked, untracked...)}
}
