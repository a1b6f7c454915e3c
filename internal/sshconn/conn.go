package sshconn

import "github.com/kballard/go-shellquote"

// Conn is the handle for a reusable authenticated SSH session. The
// control socket path is the whole handle: it is derived
// deterministically from the host, lives in the per-user cache
// directory, and outlives the process (OpenSSH tears the master down
// after its idle timeout). No other state is tracked.
type Conn struct {
	// ControlPath is the OpenSSH control socket backing the session.
	ControlPath string
}

// SSHArgs returns the argument fragment every ssh invocation merges in
// so it multiplexes over the shared session instead of re-authenticating.
func (c *Conn) SSHArgs() []string {
	return []string{"-S", c.ControlPath}
}

// RsyncTransport returns the value for rsync's -e flag, addressing the
// same shared session. The path is quoted because rsync splits the
// string on whitespace.
func (c *Conn) RsyncTransport() string {
	return shellquote.Join("ssh", "-S", c.ControlPath)
}
