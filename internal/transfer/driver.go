package transfer

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/tacogips/remotebuild/internal/debug"
	"github.com/tacogips/remotebuild/internal/gitindex"
	"github.com/tacogips/remotebuild/internal/sshconn"
)

// Runner executes the local rsync binary with stdio attached to the
// terminal (transfer output is user-facing at the verbose tier).
type Runner interface {
	Run(name string, args ...string) error
}

// ExecRunner runs rsync through os/exec with inherited stdio.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(name string, args ...string) error {
	debug.Command(name, args)
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Driver composes and runs the two transfers of a build: pushing the
// source tree out and pulling artifacts back, both multiplexed over the
// shared session.
type Driver struct {
	runner Runner
	// verbose passes -v to rsync instead of --quiet.
	verbose bool
}

// NewDriver creates a Driver using the real rsync binary.
func NewDriver(verbose bool) *Driver {
	return &Driver{runner: ExecRunner{}, verbose: verbose}
}

// NewDriverWith creates a Driver with an explicit runner, for tests.
func NewDriverWith(runner Runner, verbose bool) *Driver {
	return &Driver{runner: runner, verbose: verbose}
}

// Push mirrors the project tree to the remote path. The remote tree
// converges to exactly the local tree minus exclusions: --delete keeps
// stale files from accumulating across runs.
//
// A manifest, when present, restricts the source-side file set; the
// exclusion set is applied regardless, both locally (manifest
// pre-filter) and in rsync itself. Manifest materialization failure
// degrades to a full-tree push.
func (d *Driver) Push(projectRoot string, target sshconn.Target, manifest *gitindex.Manifest, excl ExclusionSet, conn *sshconn.Conn) error {
	args := []string{"-az", "--delete"}
	args = append(args, d.verbosityArg())
	args = append(args, excl.RsyncArgs()...)

	if manifest != nil {
		filtered := &gitindex.Manifest{Paths: excl.Filter(manifest.Paths)}
		listPath, cleanup, err := filtered.Materialize()
		if err != nil {
			debug.Debug("manifest materialization failed, pushing full tree: %v", err)
		} else {
			defer cleanup()
			args = append(args, "--files-from="+listPath)
		}
	}

	args = append(args,
		"-e", conn.RsyncTransport(),
		projectRoot+"/",
		fmt.Sprintf("%s:%s/", target.Host, target.RemotePath),
	)

	if err := d.runner.Run("rsync", args...); err != nil {
		return fmt.Errorf("rsync push to %s failed: %w", target.Host, err)
	}
	return nil
}

// Pull copies one remote artifact pattern into destDir. Callers invoke
// it once per pattern and treat each failure independently.
func (d *Driver) Pull(target sshconn.Target, pattern string, conn *sshconn.Conn, destDir string) error {
	args := []string{"-az"}
	args = append(args, d.verbosityArg())
	args = append(args,
		"-e", conn.RsyncTransport(),
		fmt.Sprintf("%s:%s/%s", target.Host, target.RemotePath, pattern),
		destDir,
	)

	if err := d.runner.Run("rsync", args...); err != nil {
		return fmt.Errorf("rsync pull of %s failed: %w", pattern, err)
	}
	return nil
}

func (d *Driver) verbosityArg() string {
	if d.verbose {
		return "-v"
	}
	return "--quiet"
}
