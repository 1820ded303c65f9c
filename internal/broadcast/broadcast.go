// Package broadcast implements the administrator mass-send engine. Sends are
// strictly sequential with a fixed pause between them so the Telegram
// outbound rate limit is never tripped.
package broadcast

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"universebot/internal/logger"
	"universebot/internal/provider"
)

// Gateway is the outbound surface the engine sends through.
type Gateway interface {
	SendText(ctx context.Context, chat int64, text string, markdown bool) error
}

// Result summarizes one finished broadcast job.
type Result struct {
	JobID  string
	Total  int
	Sent   int
	Failed int
	Took   time.Duration
}

// Engine sends one message to every recipient, one at a time.
type Engine struct {
	gw    Gateway
	delay time.Duration
	sleep func(time.Duration)
}

// New builds an engine with the configured inter-send delay.
func New(gw Gateway, delay time.Duration) *Engine {
	return &Engine{gw: gw, delay: delay, sleep: time.Sleep}
}

// Run sends the message to every recipient in order and returns the final
// counters only after the whole list has been traversed. A failed send is
// counted and skipped; it is never retried within the job.
func (e *Engine) Run(ctx context.Context, message string, recipients []int64) Result {
	res := Result{
		JobID: uuid.NewString(),
		Total: len(recipients),
	}
	start := time.Now()

	logger.Info(ctx, "broadcast", "broadcast.start",
		slog.String("job_id", res.JobID),
		slog.Int("count", res.Total),
	)

	text := "📢 *Broadcast Message*\n\n" + message
	for i, chatID := range recipients {
		if i > 0 && e.delay > 0 {
			e.sleep(e.delay)
		}
		if err := e.gw.SendText(ctx, chatID, text, true); err != nil {
			res.Failed++
			kind := "permanent"
			if provider.ShouldRetry(err) {
				kind = "transient"
			}
			logger.Warn(ctx, "broadcast", "broadcast.send.fail",
				slog.String("job_id", res.JobID),
				slog.Int64("chat_id", chatID),
				slog.String("err_kind", kind),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
			continue
		}
		res.Sent++
	}

	res.Took = time.Since(start)
	logger.Info(ctx, "broadcast", "broadcast.done",
		slog.String("job_id", res.JobID),
		slog.String("outcome", outcome(res)),
		slog.Int("sent", res.Sent),
		slog.Int("failed", res.Failed),
		slog.Int64("duration_ms", res.Took.Milliseconds()),
	)
	return res
}

func outcome(res Result) string {
	switch {
	case res.Failed == 0:
		return "ok"
	case res.Sent == 0 && res.Total > 0:
		return "fail"
	}
	return "partial"
}
