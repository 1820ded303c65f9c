package feature

import (
	"context"
	"strings"
)

// keywordReplies answer common idle chatter without a provider call.
var keywordReplies = []struct {
	keywords []string
	reply    string
}{
	{[]string{"hello", "hi ", "hey"}, "👋 Hey there! Pick something from the menu or type /help."},
	{[]string{"thank"}, "🙌 You're welcome!"},
	{[]string{"how are you"}, "🤖 Running at full capacity! What can I fetch for you?"},
	{[]string{"bye", "good night"}, "👋 See you around!"},
	{[]string{"love"}, "❤️ Right back at you!"},
}

const idleFallbackReply = "🤔 I didn't catch that. Use the menu below or type /help to see what I can do!"

// IdleText answers free text that is neither a command, a menu label, nor a
// pending conversation input.
func (s *Service) IdleText(ctx context.Context, chat int64, text string) error {
	lowered := " " + strings.ToLower(strings.TrimSpace(text)) + " "
	for _, entry := range keywordReplies {
		for _, kw := range entry.keywords {
			if strings.Contains(lowered, kw) {
				return s.gw.SendText(ctx, chat, entry.reply, false)
			}
		}
	}
	return s.gw.SendText(ctx, chat, idleFallbackReply, false)
}
