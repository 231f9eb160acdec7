package compliance

import (
	"strings"
	"testing"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{}\n```", "{}"},
		{"  {\"a\":1}  ", `{"a":1}`},
		{"```json{\"a\":1}```", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := StripCodeFences(tt.in); got != tt.want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		max    int
		want   string
		wantOK bool
	}{
		{"plain", `{"a":1}`, 0, `{"a":1}`, true},
		{"surrounding prose", `Sure! {"a":{"b":2}} Hope it helps.`, 0, `{"a":{"b":2}}`, true},
		{"braces in strings", `{"s":"a } { b","t":"\"}"}`, 0, `{"s":"a } { b","t":"\"}"}`, true},
		{"first of two", `{"a":1} {"b":2}`, 0, `{"a":1}`, true},
		{"no object", "no json here", 0, "", false},
		{"unbalanced", `{"a":{"b":1`, 0, "", false},
		{"unclosed outer, balanced inner", `{"a":{"b":1}`, 0, `{"b":1}`, true},
		{"stray brace in prose", "Note: one clause opens a { brace and never closes it.\n{\"compliance_summary\":\"ok\"}", 0, `{"compliance_summary":"ok"}`, true},
		{"stray quote after brace", `Odd { "quote then {"a":1}`, 0, `{"a":1}`, true},
		{"beyond bound", strings.Repeat(" ", 50) + `{"a":1}`, 20, "", false},
		{"closes past bound", `{"a":"` + strings.Repeat("x", 100) + `"}`, 50, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.in, tt.max)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ExtractJSONObject = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestExtractJSONObject_adversarial(t *testing.T) {
	in := strings.Repeat("{", 1<<20)
	if _, ok := ExtractJSONObject(in, DefaultMaxScan); ok {
		t.Error("unterminated nesting should fail")
	}
}
