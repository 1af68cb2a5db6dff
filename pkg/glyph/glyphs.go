// Package glyph maps attendance states to the symbols used across the CLI
// and TUI output.
package glyph

import (
	"fmt"

	"tableflip.dev/rollcall/pkg/schedule"
)

type Glyph struct {
	Key     string
	Symbol  string
	Meaning string
}

const (
	escape        = "\x1b"
	resetCode     = 0
	boldCode      = 1
	underlineCode = 4
	strikeCode    = 9
)

func Strike(in string) string {
	return fmt.Sprintf("%s[%dm%s%s[%dm", escape, strikeCode, in, escape, resetCode)
}

func Bold(in string) string {
	return fmt.Sprintf("%s[%dm%s%s[%dm", escape, boldCode, in, escape, resetCode)
}

func Underline(in string) string {
	return fmt.Sprintf("%s[%dm%s%s[%dm", escape, underlineCode, in, escape, resetCode)
}

const (
	Occurred    = "●"
	Missed      = "○"
	Cancelled   = "✘"
	Added       = "+"
	Replacement = "›"
)

// ForStatus picks the symbol for an occurrence status.
func ForStatus(s schedule.Status) string {
	switch s {
	case schedule.StatusOccurred:
		return Occurred
	case schedule.StatusCancelled:
		return Cancelled
	default:
		return Missed
	}
}

// ForEntry picks the marker printed before an entry: the status symbol,
// prefixed for replacement and ad-hoc added occurrences.
func ForEntry(e *schedule.Entry) string {
	switch {
	case e == nil:
		return Missed
	case e.IsAdded:
		return Added + ForStatus(e.Status)
	case e.IsReplacement:
		return Replacement + ForStatus(e.Status)
	}
	return " " + ForStatus(e.Status)
}

// DefaultGlyphs lists the notation for help output.
func DefaultGlyphs() []Glyph {
	return []Glyph{
		{Key: "o", Symbol: Occurred, Meaning: "class occurred, attendance counted"},
		{Key: "m", Symbol: Missed, Meaning: "class missed (or not yet marked)"},
		{Key: "c", Symbol: Cancelled, Meaning: "class cancelled"},
		{Key: "a", Symbol: Added, Meaning: "ad-hoc class added outside the timetable"},
		{Key: "r", Symbol: Replacement, Meaning: "replacement for a cancelled class"},
	}
}
