// Package session owns the in-memory user registry and the per-(chat,user)
// conversation state machine. Both live for the process lifetime only.
package session

import (
	"sync"
	"time"
)

// User is one known bot user. Fields are only mutated through Registry.
type User struct {
	ID           int64
	Username     string
	FirstSeen    time.Time
	LastActive   time.Time
	Interactions int64
	Prefs        map[string]string
}

// Registry tracks every user that ever sent an update. telebot runs handlers
// on separate goroutines, so access is mutex-guarded.
type Registry struct {
	mu    sync.RWMutex
	users map[int64]*User
	order []int64
	clock func() time.Time
}

// NewRegistry creates an empty user registry.
func NewRegistry() *Registry {
	return &Registry{
		users: make(map[int64]*User),
		clock: time.Now,
	}
}

// Touch records activity for a user, creating the record on first contact.
// It returns true when the user is new.
func (r *Registry) Touch(id int64, username string) bool {
	if r == nil || id == 0 {
		return false
	}
	now := r.clock()

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		u = &User{
			ID:        id,
			FirstSeen: now,
			Prefs:     make(map[string]string),
		}
		r.users[id] = u
		r.order = append(r.order, id)
	}
	if username != "" {
		u.Username = username
	}
	u.LastActive = now
	u.Interactions++
	return !ok
}

// Count returns the number of known users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// Snapshot returns user ids in first-seen order. The broadcast engine works
// off this copy so concurrent registrations do not disturb a running job.
func (r *Registry) Snapshot() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int64, len(r.order))
	copy(out, r.order)
	return out
}

// List returns copies of up to limit users in first-seen order.
func (r *Registry) List(limit int) []User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 || limit > len(r.order) {
		limit = len(r.order)
	}
	out := make([]User, 0, limit)
	for _, id := range r.order[:limit] {
		u := r.users[id]
		cp := *u
		cp.Prefs = nil
		out = append(out, cp)
	}
	return out
}

// SetPref stores an arbitrary preference value for a user.
func (r *Registry) SetPref(id int64, key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.Prefs[key] = value
	}
}

// Pref reads a preference value for a user.
func (r *Registry) Pref(id int64, key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		v, found := u.Prefs[key]
		return v, found
	}
	return "", false
}
