package telegram

import (
	"context"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"universebot/internal/logger"
)

// Sender adapts the telebot API to the gateway interfaces the feature
// handlers and the broadcast engine reply through.
type Sender struct {
	bot *tele.Bot
}

// NewSender wraps a bot.
func NewSender(bot *tele.Bot) *Sender {
	return &Sender{bot: bot}
}

func sendOptions(markdown bool) *tele.SendOptions {
	opts := &tele.SendOptions{DisableWebPagePreview: true}
	if markdown {
		opts.ParseMode = tele.ModeMarkdown
	}
	return opts
}

// SendText delivers a text message to the chat.
func (s *Sender) SendText(ctx context.Context, chat int64, text string, markdown bool) error {
	start := time.Now()
	_, err := s.bot.Send(tele.ChatID(chat), text, sendOptions(markdown))
	if err != nil {
		logger.Warn(ctx, "tg", "tg.send.fail",
			slog.String("rid", logger.RIDFrom(ctx)),
			slog.Int64("chat_id", chat),
			slog.String("mode", "text"),
			slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
	return err
}

// SendPhoto delivers a photo by URL with a caption.
func (s *Sender) SendPhoto(ctx context.Context, chat int64, photoURL, caption string, markdown bool) error {
	start := time.Now()
	photo := &tele.Photo{File: tele.FromURL(photoURL), Caption: caption}
	_, err := s.bot.Send(tele.ChatID(chat), photo, sendOptions(markdown))
	if err != nil {
		logger.Warn(ctx, "tg", "tg.send.fail",
			slog.String("rid", logger.RIDFrom(ctx)),
			slog.Int64("chat_id", chat),
			slog.String("mode", "photo"),
			slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
	return err
}

// Notify shows a chat action ("typing", "upload_photo") while a handler
// works. Failures are ignored: the action is cosmetic.
func (s *Sender) Notify(_ context.Context, chat int64, action string) error {
	return s.bot.Notify(tele.ChatID(chat), tele.ChatAction(action))
}
