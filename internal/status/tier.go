package status

import "strings"

// Tier selects how much progress and remote output the run renders.
// It is chosen once per invocation and never changes mid-run.
type Tier int

const (
	// TierMinimal renders the whole run as a single overwritten line.
	TierMinimal Tier = iota
	// TierNormal renders discrete phase headers with done markers.
	TierNormal
	// TierVerbose renders like TierNormal plus full remote output passthrough.
	TierVerbose
)

// String returns the tier name as used in configuration files.
func (t Tier) String() string {
	switch t {
	case TierNormal:
		return "normal"
	case TierVerbose:
		return "verbose"
	default:
		return "minimal"
	}
}

// ParseTier parses a tier name from configuration or a CLI flag.
// Unrecognized values fall back to TierMinimal.
func ParseTier(s string) Tier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return TierNormal
	case "verbose":
		return TierVerbose
	default:
		return TierMinimal
	}
}
