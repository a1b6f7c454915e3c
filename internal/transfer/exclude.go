package transfer

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// builtinExclusions are always applied: version-control metadata and
// known build byproducts that must never reach the remote tree.
var builtinExclusions = []string{
	".git",
	".gitignore",
	"*.nds",
	"*.elf",
	"build/",
	".ninja_*",
	"compile_commands.json",
}

// ExclusionSet is the ordered sequence of glob-style exclusion patterns
// for a run: the fixed built-ins followed by user-supplied patterns.
// All patterns are additive excludes; order carries no precedence.
type ExclusionSet struct {
	patterns []string
}

// NewExclusionSet builds the exclusion set for a run from the
// user-supplied patterns.
func NewExclusionSet(userPatterns []string) ExclusionSet {
	patterns := make([]string, 0, len(builtinExclusions)+len(userPatterns))
	patterns = append(patterns, builtinExclusions...)
	patterns = append(patterns, userPatterns...)
	return ExclusionSet{patterns: patterns}
}

// Patterns returns the patterns in order.
func (s ExclusionSet) Patterns() []string {
	return s.patterns
}

// RsyncArgs renders the set as rsync --exclude flags.
func (s ExclusionSet) RsyncArgs() []string {
	args := make([]string, 0, len(s.patterns))
	for _, p := range s.patterns {
		args = append(args, "--exclude="+p)
	}
	return args
}

// Matches reports whether the relative path is excluded. Mirrors the
// transfer primitive's semantics closely enough for local pre-filtering:
// a pattern without a slash matches any path element, a pattern ending
// in a slash matches a directory and everything below it.
func (s ExclusionSet) Matches(rel string) bool {
	rel = path.Clean(strings.ReplaceAll(rel, "\\", "/"))
	for _, p := range s.patterns {
		if matchPattern(p, rel) {
			return true
		}
	}
	return false
}

// Filter returns the paths not excluded by the set, preserving order.
// Applied to manifest entries before materialization: the index may
// still track paths the exclusions forbid, and the manifest must never
// reintroduce them.
func (s ExclusionSet) Filter(paths []string) []string {
	kept := make([]string, 0, len(paths))
	for _, p := range paths {
		if !s.Matches(p) {
			kept = append(kept, p)
		}
	}
	return kept
}

func matchPattern(pattern, rel string) bool {
	// Manifest entries are files, so a directory pattern matches
	// anything below the directory.
	if dir, ok := strings.CutSuffix(pattern, "/"); ok {
		return strings.HasPrefix(rel, dir+"/")
	}

	// Bare names and globs match any path element, like rsync patterns
	// without a slash.
	if !strings.Contains(pattern, "/") {
		for _, elem := range strings.Split(rel, "/") {
			if ok, err := doublestar.Match(pattern, elem); err == nil && ok {
				return true
			}
		}
		return false
	}

	ok, err := doublestar.Match(pattern, rel)
	return err == nil && ok
}
