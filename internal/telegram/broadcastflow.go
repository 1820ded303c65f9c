package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"universebot/internal/broadcast"
	"universebot/internal/logger"
	"universebot/internal/session"
)

// broadcastRunner abstracts the broadcast engine for tests.
type broadcastRunner interface {
	Run(ctx context.Context, message string, recipients []int64) broadcast.Result
}

// notifier is the minimal reply surface the flow needs to talk back to the
// admin chat.
type notifier interface {
	SendText(ctx context.Context, chat int64, text string, markdown bool) error
}

// BroadcastFlow wires the admin gate, the user registry, and the broadcast
// engine into the /broadcast command and its armed-message variant.
type BroadcastFlow struct {
	engine  broadcastRunner
	users   *session.Registry
	gw      notifier
	adminID int64
}

// NewBroadcastFlow builds the flow.
func NewBroadcastFlow(engine broadcastRunner, users *session.Registry, gw notifier, adminID int64) *BroadcastFlow {
	return &BroadcastFlow{engine: engine, users: users, gw: gw, adminID: adminID}
}

// Execute runs one broadcast on behalf of the caller. Non-admins are refused,
// an empty message yields the usage hint, and a real run replies with a
// pre-flight count followed by the final summary.
func (f *BroadcastFlow) Execute(ctx context.Context, chat, user int64, message string) error {
	if !Authorize(f.adminID, user) {
		logger.Warn(ctx, "broadcast", "broadcast.denied",
			slog.Int64("user_id", user),
		)
		return f.gw.SendText(ctx, chat, "❌ Admin access required!", false)
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return f.gw.SendText(ctx, chat, "📢 Usage: /broadcast <message>", false)
	}

	recipients := f.users.Snapshot()
	if err := f.gw.SendText(ctx, chat, fmt.Sprintf("📢 Broadcasting to %d users...", len(recipients)), false); err != nil {
		return err
	}

	res := f.engine.Run(ctx, message, recipients)

	summary := fmt.Sprintf("✅ Broadcast complete!\n\nSent: %d\nFailed: %d", res.Sent, res.Failed)
	return f.gw.SendText(ctx, chat, summary, false)
}
