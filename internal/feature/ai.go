package feature

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"universebot/internal/provider"
)

// maxReplyRunes bounds AI answers below Telegram's 4096-character limit.
const maxReplyRunes = 4000

// Imagine sends the generated-image URL for the prompt. The image service
// renders on fetch, so the URL itself is the deterministic result.
func (s *Service) Imagine(ctx context.Context, chat int64, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return s.gw.SendText(ctx, chat, "🎨 Usage: /imagine <your description>", false)
	}
	_ = s.gw.Notify(ctx, chat, ActionUploadPhoto)
	s.record("imagine", true)

	imageURL := s.endpoints.PollinationsAI + "/prompt/" + url.PathEscape(prompt)
	caption := fmt.Sprintf("🎨 *Generated Image*\n\nPrompt: _%s_", prompt)
	return s.gw.SendPhoto(ctx, chat, imageURL, caption, true)
}

// Ask forwards the question to the text-generation provider.
func (s *Service) Ask(ctx context.Context, chat int64, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return s.gw.SendText(ctx, chat, "💬 Usage: /ask <your question>", false)
	}
	_ = s.gw.Notify(ctx, chat, ActionTyping)

	answer, live := provider.Resolve(ctx, s.resolver, s.chains.Ask, provider.Params{"q": question})
	s.record("ask", live)
	if !live {
		return s.gw.SendText(ctx, chat, answer, false)
	}

	text := truncate(fmt.Sprintf("🤖 *AI Response*\n\n%s", answer), maxReplyRunes)
	return s.gw.SendText(ctx, chat, text, true)
}
