package status

import (
	"fmt"
	"io"
	"strings"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorRed    = "\033[31m"
)

// Reporter renders run progress for one output tier.
//
// The contract between the Reporter and components that stream foreign
// output (remote build output, verbose rsync output) is Clear: the
// streaming component calls Clear first, synchronously, so an in-place
// status line is never interleaved with streamed bytes. Clear is a no-op
// for renderers that do not rewrite lines.
type Reporter interface {
	// Phase announces that a pipeline phase is starting.
	Phase(msg string)
	// Done marks an intermediate phase as completed. The run keeps going,
	// so an in-place renderer may overwrite the marker with the next phase.
	Done(msg string)
	// Finish marks the whole run as completed and commits the final line.
	Finish(msg string)
	// Warn reports a non-fatal problem without ending the run.
	Warn(msg string)
	// Fail reports a fatal problem.
	Fail(msg string)
	// Clear blanks any in-place status text before foreign output is written.
	Clear()
	// Tier returns the active output tier.
	Tier() Tier
}

// Options adjust how a Reporter renders.
type Options struct {
	// Interactive reports whether the writer is a terminal. When false the
	// minimal tier renders plain lines instead of carriage-return rewrites,
	// so redirected output stays readable.
	Interactive bool
	// NoColor disables ANSI colors.
	NoColor bool
}

// NewReporter builds the Reporter for the given tier writing to w.
func NewReporter(tier Tier, w io.Writer, opts Options) Reporter {
	if tier == TierMinimal && opts.Interactive {
		return &lineReporter{w: w, noColor: opts.NoColor}
	}
	return &phaseReporter{w: w, tier: tier, noColor: opts.NoColor}
}

// lineReporter renders the whole run on one terminal line, overwriting
// prior text in place. Used only for the minimal tier on a terminal.
type lineReporter struct {
	w       io.Writer
	noColor bool
	// width is the widest text written so far; shorter rewrites pad to it
	// so stale characters never survive an overwrite.
	width int
}

func (r *lineReporter) Phase(msg string) {
	r.rewrite(msg)
}

// Done rewrites in place like Phase: intermediate completions belong to
// the same run line and the next phase overwrites them.
func (r *lineReporter) Done(msg string) {
	if r.noColor {
		r.rewrite("✓ " + msg)
	} else {
		r.rewrite(fmt.Sprintf("%s✓%s %s", colorGreen, colorReset, msg))
	}
}

// Finish overwrites the run line with the completion marker and commits
// it. This is the only newline the run line itself ever gets.
func (r *lineReporter) Finish(msg string) {
	if r.noColor {
		r.rewrite("✓ " + msg)
	} else {
		r.rewrite(fmt.Sprintf("%s✓%s %s", colorGreen, colorReset, msg))
	}
	fmt.Fprint(r.w, "\n")
	r.width = 0
}

func (r *lineReporter) Warn(msg string) {
	// Warnings must survive later overwrites: blank the line, then emit
	// the warning on its own line.
	r.Clear()
	if r.noColor {
		fmt.Fprintf(r.w, "⚠ %s\n", msg)
	} else {
		fmt.Fprintf(r.w, "%s⚠%s %s\n", colorYellow, colorReset, msg)
	}
}

func (r *lineReporter) Fail(msg string) {
	r.Clear()
	if r.noColor {
		fmt.Fprintf(r.w, "✗ %s\n", msg)
	} else {
		fmt.Fprintf(r.w, "%s✗%s %s\n", colorRed, colorReset, msg)
	}
}

func (r *lineReporter) Clear() {
	if r.width == 0 {
		return
	}
	fmt.Fprintf(r.w, "\r%s\r", strings.Repeat(" ", r.width))
	r.width = 0
}

func (r *lineReporter) Tier() Tier { return TierMinimal }

// rewrite replaces the current line, padding over any longer prior text.
func (r *lineReporter) rewrite(text string) {
	pad := ""
	if n := visibleLen(text); n < r.width {
		pad = strings.Repeat(" ", r.width-n)
	} else {
		r.width = visibleLen(text)
	}
	fmt.Fprintf(r.w, "\r%s%s", text, pad)
}

// visibleLen counts printable runes, skipping ANSI escape sequences.
func visibleLen(s string) int {
	n := 0
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == '\033':
			inEscape = true
		default:
			n++
		}
	}
	return n
}

// phaseReporter renders discrete phase lines. Used for the normal and
// verbose tiers, and for the minimal tier when output is not a terminal.
type phaseReporter struct {
	w       io.Writer
	tier    Tier
	noColor bool
}

func (r *phaseReporter) Phase(msg string) {
	if r.noColor {
		fmt.Fprintf(r.w, "→ %s\n", msg)
	} else {
		fmt.Fprintf(r.w, "%s→%s %s\n", colorBlue, colorReset, msg)
	}
}

func (r *phaseReporter) Done(msg string) {
	if r.noColor {
		fmt.Fprintf(r.w, "✓ %s\n", msg)
	} else {
		fmt.Fprintf(r.w, "%s✓%s %s\n", colorGreen, colorReset, msg)
	}
}

// Finish renders like Done: discrete lines need no separate commit step.
func (r *phaseReporter) Finish(msg string) { r.Done(msg) }

func (r *phaseReporter) Warn(msg string) {
	if r.noColor {
		fmt.Fprintf(r.w, "⚠ %s\n", msg)
	} else {
		fmt.Fprintf(r.w, "%s⚠%s %s\n", colorYellow, colorReset, msg)
	}
}

func (r *phaseReporter) Fail(msg string) {
	if r.noColor {
		fmt.Fprintf(r.w, "✗ %s\n", msg)
	} else {
		fmt.Fprintf(r.w, "%s✗%s %s\n", colorRed, colorReset, msg)
	}
}

// Clear is a no-op: phase output never rewrites lines, so there is
// nothing to blank before foreign output.
func (r *phaseReporter) Clear() {}

func (r *phaseReporter) Tier() Tier { return r.tier }
