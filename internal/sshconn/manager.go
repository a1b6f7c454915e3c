package sshconn

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/tacogips/remotebuild/internal/debug"
)

// controlPersist is how long an idle master session stays alive after
// the last client detaches. OpenSSH enforces it; this process never
// tears the session down itself.
const controlPersist = "10m"

// Runner executes the local ssh binary. Split into its own interface so
// the manager can be exercised without a reachable host.
type Runner interface {
	// Run executes name with args and waits for it, discarding output.
	Run(name string, args ...string) error
	// Start launches name with args without waiting for completion.
	Start(name string, args ...string) error
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(name string, args ...string) error {
	debug.Command(name, args)
	return exec.Command(name, args...).Run()
}

// Start implements Runner.
func (ExecRunner) Start(name string, args ...string) error {
	debug.Command(name, args)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the forked ssh in the background so it never turns into a
	// zombie; the pipeline does not care when (or whether) it exits.
	go func() { _ = cmd.Wait() }()
	return nil
}

// Manager owns the lifecycle of one reusable SSH session per host.
type Manager struct {
	runner Runner
	// cacheDir holds the control sockets, one per sanitized host.
	cacheDir string
	// grace bounds how long Ensure waits for a fresh master's socket to
	// appear before proceeding anyway.
	grace time.Duration
}

// NewManager creates a Manager storing control sockets under the
// per-user cache directory.
func NewManager() (*Manager, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate user cache directory: %w", err)
	}
	return &Manager{
		runner:   ExecRunner{},
		cacheDir: filepath.Join(base, "remotebuild"),
		grace:    2 * time.Second,
	}, nil
}

// NewManagerWith creates a Manager with explicit collaborators, for tests.
func NewManagerWith(runner Runner, cacheDir string, grace time.Duration) *Manager {
	return &Manager{runner: runner, cacheDir: cacheDir, grace: grace}
}

// ControlPath returns the control socket path for host. The path is the
// session handle: derived deterministically, so every operation within a
// run (and across runs, until the idle timeout) addresses the same socket.
func (m *Manager) ControlPath(host string) string {
	return filepath.Join(m.cacheDir, "ctl-"+SanitizeHost(host))
}

// Ensure returns a usable session handle for host, reusing a live master
// when one exists and otherwise warming a new one up in the background.
//
// Warm-up is advisory: Ensure waits at most the grace period for the new
// master's socket and then returns regardless. A session that never comes
// up surfaces as an error on the first operation that tries to use it.
// The only hard failure here is being unable to create the cache directory.
func (m *Manager) Ensure(host string) (*Conn, error) {
	if err := os.MkdirAll(m.cacheDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create control socket directory %s: %w", m.cacheDir, err)
	}

	ctl := m.ControlPath(host)
	conn := &Conn{ControlPath: ctl}

	if _, err := os.Stat(ctl); err == nil {
		if m.Liveness(conn, host) {
			debug.Debug("reusing ssh master for %s at %s", host, ctl)
			return conn, nil
		}
		// Stale socket from a dead master. Remove it so the new -M
		// master can bind the path.
		debug.Debug("removing stale control socket %s", ctl)
		_ = os.Remove(ctl)
	}

	if err := m.runner.Start("ssh",
		"-M", "-N", "-f",
		"-S", ctl,
		"-o", "ControlPersist="+controlPersist,
		"-o", "ConnectTimeout=10",
		host,
	); err != nil {
		// Even spawn failure is not fatal: later operations fall back
		// to their own (non-multiplexed) connections and report real
		// errors with context.
		debug.Debug("ssh master spawn for %s failed: %v", host, err)
		return conn, nil
	}

	m.waitForSocket(ctl)
	return conn, nil
}

// Liveness probes whether the master behind a handle still answers.
// -O check is the no-op control command: it goes through the socket and
// cannot trigger a fresh handshake.
func (m *Manager) Liveness(conn *Conn, host string) bool {
	return m.runner.Run("ssh", "-S", conn.ControlPath, "-O", "check", host) == nil
}

// waitForSocket polls for the control socket for the grace period.
func (m *Manager) waitForSocket(ctl string) {
	const step = 50 * time.Millisecond
	deadline := time.Now().Add(m.grace)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(ctl); err == nil {
			return
		}
		time.Sleep(step)
	}
}

// SanitizeHost maps a host identifier to a filesystem-safe token.
// Alphanumerics, '-' and '.' pass through; everything else (including
// the '@' of user@host) becomes '_'.
func SanitizeHost(host string) string {
	out := make([]byte, 0, len(host))
	for i := 0; i < len(host); i++ {
		c := host[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '.':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
