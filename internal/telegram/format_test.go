package telegram

import "testing"

func TestEscapeMarkdown(t *testing.T) {
	cases := map[string]string{
		"plain":        "plain",
		"under_score":  `under\_score`,
		"star*name":    `star\*name`,
		"[link]":       `\[link]`,
		"tick`quote":   "tick\\`quote",
		"mixed_*[all`": "mixed\\_\\*\\[all\\`",
	}
	for in, want := range cases {
		if got := EscapeMarkdown(in); got != want {
			t.Errorf("EscapeMarkdown(%q) = %q, want %q", in, got, want)
		}
	}
}
