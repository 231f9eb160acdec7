package extract

import (
	"regexp"
	"strings"
)

// horizontalSpace matches runs of whitespace other than '\n'. Unicode line and
// paragraph separators (U+2028, U+2029) and NEL (U+0085) count as spaces.
var horizontalSpace = regexp.MustCompile(`[\t\f\v\r\x{85}\p{Z}]+`)

// Normalize collapses whitespace inside each line to single spaces, trims every
// line, and collapses any run of blank lines into exactly one blank line.
// Paragraph breaks survive, so the result can be chunked on "\n\n".
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var b strings.Builder
	b.Grow(len(s))
	wrote, gap := false, false
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(horizontalSpace.ReplaceAllString(line, " "))
		if line == "" {
			gap = wrote
			continue
		}
		if wrote {
			if gap {
				b.WriteString("\n\n")
			} else {
				b.WriteByte('\n')
			}
		}
		b.WriteString(line)
		wrote, gap = true, false
	}
	return b.String()
}
