package ui

import "testing"

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"  short ", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much longer text", 8, "much lo…"},
		{"héllo wörld", 5, "héll…"},
		{"ab", 1, "a"},
		{"anything", 0, "anything"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.limit); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
}

func TestPadRightAndIndent(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight = %q", got)
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Fatalf("padRight should not cut, got %q", got)
	}
	if indent(0) != "" || indent(2) != "│ │ " {
		t.Fatalf("unexpected indent %q", indent(2))
	}
	if got := len([]rune(indent(20))); got != 12 {
		t.Fatalf("expected indent capped at 6 levels, got %d runes", got)
	}
}

func TestSingleLine(t *testing.T) {
	if got := singleLine("a\n\n b\tc "); got != "a b c" {
		t.Fatalf("singleLine = %q", got)
	}
}
