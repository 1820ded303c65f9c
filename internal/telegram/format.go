package telegram

import "strings"

var markdownEscaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"[", `\[`,
	"`", "\\`",
)

// EscapeMarkdown neutralizes legacy-Markdown control characters in
// user-supplied text (names, group titles) before interpolation.
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}
