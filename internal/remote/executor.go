package remote

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/tacogips/remotebuild/internal/debug"
	"github.com/tacogips/remotebuild/internal/sshconn"
	"github.com/tacogips/remotebuild/internal/status"
)

// Runner executes the local ssh binary for remote commands.
type Runner interface {
	// Stream runs the command with stdout/stderr attached to the
	// terminal and returns ExitError on a non-zero remote exit.
	Stream(name string, args ...string) error
	// Output runs the command, discarding stdout; on failure the error
	// includes captured remote stderr.
	Output(name string, args ...string) error
}

// ExecRunner runs ssh through os/exec.
type ExecRunner struct{}

// Stream implements Runner.
func (ExecRunner) Stream(name string, args ...string) error {
	debug.Command(name, args)
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Code: exitErr.ExitCode()}
		}
		return err
	}
	return nil
}

// Output implements Runner.
func (ExecRunner) Output(name string, args ...string) error {
	debug.Command(name, args)
	cmd := exec.Command(name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%v: %s", err, msg)
		}
		return err
	}
	return nil
}

// ExitError reports a non-zero remote exit status.
type ExitError struct {
	Code int
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("remote command exited with status %d", e.Code)
}

// EnsureDir creates the remote build directory. The path is quoted for
// the remote shell, except for a leading home-relative segment which
// must stay bare so the shell expands it.
func EnsureDir(r Runner, target sshconn.Target, conn *sshconn.Conn) error {
	mkdir := "mkdir -p " + QuoteRemotePath(target.RemotePath)
	args := append(conn.SSHArgs(), target.Host, mkdir)
	if err := r.Output("ssh", args...); err != nil {
		return fmt.Errorf("failed to create remote directory %s: %w", target.RemotePath, err)
	}
	return nil
}

// RunBuild executes the configured build command in the remote path
// through the shared session, streaming output to the terminal.
//
// The command is `cd <path> && <build_command>`: the && makes a cd
// failure abort the build instead of running it in the wrong directory.
// The path is interpolated unescaped (it is the operator's simple path,
// possibly home-relative); the build command passes through as
// configured. Before streaming, the reporter's line is blanked so
// remote output never lands on a half-overwritten status line.
func RunBuild(r Runner, rep status.Reporter, target sshconn.Target, conn *sshconn.Conn, buildCommand string) error {
	script := BuildScript(target.RemotePath, buildCommand)
	args := append(conn.SSHArgs(), target.Host, script)

	rep.Clear()
	return r.Stream("ssh", args...)
}

// BuildScript composes the remote command line for a build.
func BuildScript(remotePath, buildCommand string) string {
	return fmt.Sprintf("cd %s && %s", remotePath, buildCommand)
}

// QuoteRemotePath quotes a remote path for interpolation into a remote
// shell command, leaving a leading ~ or ~user segment bare so tilde
// expansion still happens.
func QuoteRemotePath(p string) string {
	if !strings.HasPrefix(p, "~") {
		return shellquote.Join(p)
	}
	prefix, rest, ok := strings.Cut(p, "/")
	if !ok {
		return p
	}
	if rest == "" {
		return prefix + "/"
	}
	return prefix + "/" + shellquote.Join(rest)
}
