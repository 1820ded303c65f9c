package feature

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"universebot/internal/logger"
)

// StatsReport replies with the bot usage summary: user count, totals,
// uptime, and the five most used features.
func (s *Service) StatsReport(ctx context.Context, chat int64) error {
	rep := s.stats.Snapshot(5)
	started := time.Now().Add(-rep.Uptime)

	var b strings.Builder
	b.WriteString("📊 *Bot Statistics*\n\n")
	fmt.Fprintf(&b, "👥 Total Users: %d\n", s.users.Count())
	fmt.Fprintf(&b, "💬 Total Commands: %d\n", rep.Commands)
	fmt.Fprintf(&b, "⏱️ Uptime: %s\n", formatUptime(rep.Uptime))
	fmt.Fprintf(&b, "📅 Started: %s\n\n", started.Format("2006-01-02 15:04"))
	b.WriteString("*Top Features:*\n")
	for _, row := range rep.Top {
		fmt.Fprintf(&b, "• %s: %d\n", row.Name, row.Count)
	}
	if s.usage != nil {
		if persisted, err := s.usage.LoadUsage(ctx); err != nil {
			logger.Warn(ctx, "feature", "stats.load_usage",
				slog.String("err", err.Error()),
			)
		} else if len(persisted) > 0 {
			var total int64
			for _, n := range persisted {
				total += n
			}
			fmt.Fprintf(&b, "\n📈 All-Time Feature Calls: %d\n", total)
		}
	}
	return s.gw.SendText(ctx, chat, b.String(), true)
}

// UsersList replies with the first 20 known users and the total count.
func (s *Service) UsersList(ctx context.Context, chat int64) error {
	total := s.users.Count()
	listed := s.users.List(20)

	var b strings.Builder
	fmt.Fprintf(&b, "👥 *Total Users: %d*\n\n", total)
	for _, u := range listed {
		username := u.Username
		if username == "" {
			username = "N/A"
		}
		fmt.Fprintf(&b, "• %s (ID: %d)\n", username, u.ID)
	}
	if total > len(listed) {
		fmt.Fprintf(&b, "\n... and %d more", total-len(listed))
	}
	return s.gw.SendText(ctx, chat, b.String(), true)
}
