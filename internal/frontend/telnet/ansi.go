// Package telnet provides the Telnet listener, line codec and ANSI rendering
// used by the loot list server.
package telnet

import (
	"fmt"
	"strings"
)

// SGR sequences. Markup letters map onto these in markup.go.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Black   = "\033[30m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightBlack   = "\033[90m"
	BrightRed     = "\033[91m"
	BrightGreen   = "\033[92m"
	BrightYellow  = "\033[93m"
	BrightBlue    = "\033[94m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
	BrightWhite   = "\033[97m"
)

// Colorize wraps text in color and Reset.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf is Colorize over a format string.
func Colorf(color, format string, args ...any) string {
	return Colorize(color, fmt.Sprintf(format, args...))
}

// Paint colorizes text only when enabled, for players who turned color off.
func Paint(enabled bool, color, text string) string {
	if !enabled {
		return text
	}
	return Colorize(color, text)
}

// StripANSI removes CSI escape sequences, leaving the printable text. An
// unterminated sequence at the end of s is kept.
func StripANSI(s string) string {
	if !strings.Contains(s, "\033[") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			if end := csiEnd(s, i+2); end > 0 {
				i = end
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// csiEnd returns the index of the final byte of a CSI sequence whose
// parameters start at from, or -1 when the sequence never ends.
func csiEnd(s string, from int) int {
	for j := from; j < len(s); j++ {
		if s[j] >= 0x40 && s[j] <= 0x7e {
			return j
		}
	}
	return -1
}
