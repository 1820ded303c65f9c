// Package stats keeps in-memory usage counters for the /stats report.
package stats

import (
	"sort"
	"sync"
	"time"
)

// Counters aggregates feature usage since process start. All methods are
// safe for concurrent use by handler goroutines.
type Counters struct {
	mu        sync.Mutex
	started   time.Time
	features  map[string]int64
	fallbacks map[string]int64
	messages  int64
	commands  int64
	clock     func() time.Time
}

// New returns zeroed counters anchored at the current time.
func New() *Counters {
	return newWithClock(time.Now)
}

func newWithClock(clock func() time.Time) *Counters {
	return &Counters{
		started:   clock(),
		features:  make(map[string]int64),
		fallbacks: make(map[string]int64),
		clock:     clock,
	}
}

// Feature records one invocation of a capability. live is false when the
// resolver served the static fallback.
func (c *Counters) Feature(name string, live bool) {
	if name == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.features[name]++
	if !live {
		c.fallbacks[name]++
	}
}

// Message records one handled text message.
func (c *Counters) Message() {
	c.mu.Lock()
	c.messages++
	c.mu.Unlock()
}

// Command records one handled slash command.
func (c *Counters) Command() {
	c.mu.Lock()
	c.commands++
	c.mu.Unlock()
}

// FeatureCount is one row of the usage report.
type FeatureCount struct {
	Name      string
	Count     int64
	Fallbacks int64
}

// Report is a point-in-time snapshot of the counters.
type Report struct {
	Uptime   time.Duration
	Messages int64
	Commands int64
	Top      []FeatureCount
	Total    int64
}

// Snapshot returns the current report. Top holds at most limit features
// ordered by count descending, name ascending on ties.
func (c *Counters) Snapshot(limit int) Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	rep := Report{
		Uptime:   c.clock().Sub(c.started),
		Messages: c.messages,
		Commands: c.commands,
	}
	rows := make([]FeatureCount, 0, len(c.features))
	for name, n := range c.features {
		rep.Total += n
		rows = append(rows, FeatureCount{Name: name, Count: n, Fallbacks: c.fallbacks[name]})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Name < rows[j].Name
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	rep.Top = rows
	return rep
}

// Drain returns per-feature counts accumulated since the previous Drain and
// resets them. The storage flusher uses it to upsert aggregate rows.
func (c *Counters) Drain() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.features) == 0 {
		return nil
	}
	out := c.features
	c.features = make(map[string]int64)
	c.fallbacks = make(map[string]int64)
	return out
}
