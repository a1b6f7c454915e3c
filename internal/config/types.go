package config

// Config represents a project's remote build configuration, loaded from
// .remotebuild.yaml in the project root.
type Config struct {
	// Host is the SSH destination (e.g. "user@host" or just "host").
	// The value is passed to the transport as-is.
	Host string `yaml:"host"`
	// RemotePath is the remote directory the project is synced into and
	// built from. May use home-relative notation ("~/...").
	RemotePath string `yaml:"remote_path"`
	// BuildCommand is the command run on the remote host after sync.
	BuildCommand string `yaml:"build_command"`
	// Artifacts are path patterns (relative to RemotePath) copied back to
	// the local working directory after a successful build.
	Artifacts []string `yaml:"artifacts"`
	// ExcludePatterns are user exclusions appended to the built-in set.
	ExcludePatterns []string `yaml:"exclude_patterns,omitempty"`
	// GitAware enables git-based file selection for faster sync.
	// Defaults to true; nil means unset.
	GitAware *bool `yaml:"git_aware"`
	// Output is the output tier name ("minimal", "normal", "verbose").
	// Unrecognized values behave as "minimal".
	Output string `yaml:"output"`
	// Verbose is honored as a legacy alias for output: verbose when
	// Output is unset.
	Verbose bool `yaml:"verbose,omitempty"`
}

// IsGitAware reports whether git-based file selection is enabled,
// applying the default when the field is unset.
func (c *Config) IsGitAware() bool {
	if c.GitAware == nil {
		return true
	}
	return *c.GitAware
}
