package sshconn

// Target identifies a remote build destination. It is derived once from
// configuration and never changes during a run.
type Target struct {
	// Host is the SSH destination, passed to the transport verbatim.
	Host string
	// RemotePath is the remote directory the build runs in. It may use
	// home-relative notation and must be quoted before interpolation
	// into any remote command except cd (see remote.BuildScript).
	RemotePath string
}
