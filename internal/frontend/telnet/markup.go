package telnet

import "strings"

// markupColors maps single-letter color codes to ANSI sequences. Lowercase
// letters are the dark shade, uppercase the bright one.
var markupColors = map[byte]string{
	'k': Black, 'K': BrightBlack,
	'r': Red, 'R': BrightRed,
	'o': Red, 'O': BrightRed,
	'g': Green, 'G': BrightGreen,
	'w': Yellow, 'W': BrightYellow,
	'b': Blue, 'B': BrightBlue,
	'm': Magenta, 'M': BrightMagenta,
	'c': Cyan, 'C': BrightCyan,
	'y': White, 'Y': BrightWhite,
}

// ColorCode returns the ANSI sequence for a markup color letter, or "" when
// the letter is unknown.
func ColorCode(code string) string {
	if len(code) != 1 {
		return ""
	}
	return markupColors[code[0]]
}

// RenderMarkup translates {{C|text}} spans into ANSI color when color is
// true, or strips the span delimiters otherwise. Spans may nest; the outer
// color is restored when an inner span closes. Unknown color letters and
// unterminated spans are emitted literally.
func RenderMarkup(s string, color bool) string {
	var b strings.Builder
	b.Grow(len(s))
	var stack []string

	for i := 0; i < len(s); {
		if strings.HasPrefix(s[i:], "{{") && i+3 < len(s) && s[i+3] == '|' {
			if code, ok := markupColors[s[i+2]]; ok && strings.Contains(s[i+4:], "}}") {
				stack = append(stack, code)
				if color {
					b.WriteString(code)
				}
				i += 4
				continue
			}
		}
		if len(stack) > 0 && strings.HasPrefix(s[i:], "}}") {
			stack = stack[:len(stack)-1]
			if color {
				b.WriteString(Reset)
				if len(stack) > 0 {
					b.WriteString(stack[len(stack)-1])
				}
			}
			i += 2
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	if color && len(stack) > 0 {
		b.WriteString(Reset)
	}
	return b.String()
}

// StripMarkup removes markup delimiters leaving the plain text.
func StripMarkup(s string) string {
	return RenderMarkup(s, false)
}

// NewlinesToCRLF converts bare \n line breaks to the \r\n Telnet expects.
func NewlinesToCRLF(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}
