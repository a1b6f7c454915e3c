package transfer

import (
	"reflect"
	"strings"
	"testing"
)

func TestExclusionSetOrderIsBuiltinsThenUser(t *testing.T) {
	s := NewExclusionSet([]string{"*.log", "tmp/"})
	patterns := s.Patterns()

	if patterns[0] != ".git" {
		t.Errorf("Built-ins must come first, got %v", patterns[:2])
	}
	n := len(patterns)
	if patterns[n-2] != "*.log" || patterns[n-1] != "tmp/" {
		t.Errorf("User patterns must be appended in order, got %v", patterns[n-2:])
	}
}

func TestRsyncArgs(t *testing.T) {
	s := NewExclusionSet([]string{"*.log"})
	args := s.RsyncArgs()

	if len(args) != len(s.Patterns()) {
		t.Fatalf("Expected one flag per pattern, got %d for %d", len(args), len(s.Patterns()))
	}
	for _, a := range args {
		if !strings.HasPrefix(a, "--exclude=") {
			t.Errorf("Unexpected rsync flag: %s", a)
		}
	}
	if args[len(args)-1] != "--exclude=*.log" {
		t.Errorf("User pattern missing from rsync args: %v", args)
	}
}

func TestMatches(t *testing.T) {
	s := NewExclusionSet([]string{"*.log", "secrets/"})

	tests := []struct {
		path string
		want bool
	}{
		{".git", true},
		{".git/config", true}, // bare name matches the path element
		{".gitignore", true},
		{"build/output.o", true}, // directory pattern
		{"build", false},         // "build/" names a directory, not a file
		{"firmware.elf", true},
		{"nested/dir/firmware.elf", true},
		{".ninja_log", true},
		{"compile_commands.json", true},
		{"debug.log", true},
		{"logs/debug.log", true},
		{"secrets/key.pem", true},
		{"src/main.c", false},
		{"Makefile", false},
		{"buildings/plan.txt", false}, // prefix must stop at the separator
	}

	for _, tt := range tests {
		if got := s.Matches(tt.path); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFilterDropsExcludedManifestEntries(t *testing.T) {
	// A version-control index may still track excluded paths; the
	// manifest must not reintroduce them.
	s := NewExclusionSet([]string{"*.log"})

	got := s.Filter([]string{"src/main.c", "build/stale.o", "run.log", "Makefile"})
	want := []string{"src/main.c", "Makefile"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter = %v, want %v", got, want)
	}
}
