package compliance

import "strings"

// DefaultMaxScan bounds how many bytes ExtractJSONObject inspects.
const DefaultMaxScan = 64 << 10

// StripCodeFences removes a leading ```lang line and a trailing ``` from s.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		} else {
			s = strings.TrimLeft(s[3:], "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ExtractJSONObject returns the first balanced {...} span of s. Braces inside JSON
// strings are ignored. When the object opened at a brace never closes, the scan
// restarts at the next brace, so a stray "{" in prose does not hide a later object.
// At most maxScan bytes are inspected in total, and nothing past offset maxScan.
func ExtractJSONObject(s string, maxScan int) (string, bool) {
	if maxScan <= 0 {
		maxScan = DefaultMaxScan
	}
	limit := min(len(s), maxScan)
	budget := maxScan
	for from := 0; from < limit && budget > 0; {
		off := strings.IndexByte(s[from:limit], '{')
		if off < 0 {
			return "", false
		}
		start := from + off
		end, inspected := balancedEnd(s[start:limit], budget)
		if end > 0 {
			return s[start : start+end], true
		}
		budget -= inspected
		from = start + 1
	}
	return "", false
}

// balancedEnd scans s, which starts with '{', for the brace closing it. It returns
// the length of the object, or 0 if it does not close within budget bytes, along
// with the number of bytes inspected.
func balancedEnd(s string, budget int) (end, inspected int) {
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		if i >= budget {
			return 0, i
		}
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, i + 1
			}
		}
	}
	return 0, len(s)
}
