package storage

import (
	"context"
	"fmt"
)

// RecordUsage upserts the drained per-feature counters into usage_stats.
// Counters are additive: concurrent bot instances accumulate into the same rows.
func (s *Store) RecordUsage(ctx context.Context, counts map[string]int64) error {
	if s == nil || s.db == nil || len(counts) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin usage tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
		INSERT INTO usage_stats (feature, invocations, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (feature)
		DO UPDATE SET invocations = usage_stats.invocations + EXCLUDED.invocations,
		              updated_at  = now()`
	for feature, n := range counts {
		if n <= 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, q, feature, n); err != nil {
			return fmt.Errorf("upsert usage %s: %w", feature, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit usage tx: %w", err)
	}
	return nil
}

// LoadUsage returns all persisted per-feature totals.
func (s *Store) LoadUsage(ctx context.Context) (map[string]int64, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	rows := []struct {
		Feature     string `db:"feature"`
		Invocations int64  `db:"invocations"`
	}{}
	if err := s.db.SelectContext(ctx, &rows, `SELECT feature, invocations FROM usage_stats`); err != nil {
		return nil, fmt.Errorf("load usage: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Feature] = r.Invocations
	}
	return out, nil
}
