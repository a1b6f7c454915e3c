package cli

// Common flag names and descriptions
const (
	// Flag names
	FlagPath          = "path"
	FlagConfig        = "config"
	FlagForceFullSync = "force-full-sync"
	FlagOutput        = "output"
	FlagForce         = "force"
	FlagNoColor       = "no-color"
	FlagDebug         = "debug"

	// Flag descriptions
	DescPath          = "Path to project directory (defaults to current directory)"
	DescConfig        = "Config file name"
	DescForceFullSync = "Force full sync (ignore git change detection)"
	DescOutput        = "Output tier: minimal, normal, or verbose"
	DescForce         = "Overwrite an existing config file"
	DescNoColor       = "Disable colored output"
	DescDebug         = "Enable debug logging"
)
