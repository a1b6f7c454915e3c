package config

// DefaultRemotePath is the remote build directory used when the
// configuration does not name one.
const DefaultRemotePath = "~/remotebuild-cache"

// DefaultConfigName is the configuration file name looked up in the
// project root.
const DefaultConfigName = ".remotebuild.yaml"

// applyDefaults fills unset fields with their default values.
func applyDefaults(cfg *Config) {
	if cfg.RemotePath == "" {
		cfg.RemotePath = DefaultRemotePath
	}
	if cfg.GitAware == nil {
		gitAware := true
		cfg.GitAware = &gitAware
	}
	if cfg.Output == "" && cfg.Verbose {
		cfg.Output = "verbose"
	}
	if cfg.Output == "" {
		cfg.Output = "minimal"
	}
}
