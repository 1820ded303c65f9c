package session

import (
	"sync"
	"time"

	"log/slog"

	"universebot/internal/logger"
)

type convKey struct {
	chat int64
	user int64
}

type convState struct {
	pending   Capability
	enteredAt time.Time
}

// maxPendingAge bounds how long an armed capability stays consumable. A
// message arriving later is treated as idle chatter, not stale input.
const maxPendingAge = 10 * time.Minute

// Conversations is the multi-turn conversation state machine. At most one
// capability may be armed per (chat,user) pair; arming another silently
// replaces it. Consume is an atomic read-and-clear so two racing messages
// cannot both claim the same pending capability.
type Conversations struct {
	mu     sync.Mutex
	states map[convKey]convState
	clock  func() time.Time
}

// NewConversations creates an empty conversation tracker.
func NewConversations() *Conversations {
	return &Conversations{
		states: make(map[convKey]convState),
		clock:  time.Now,
	}
}

// Arm marks a capability as awaiting input for the pair and returns the
// capability it replaced (CapNone when the pair was idle).
func (c *Conversations) Arm(chatID, userID int64, cap Capability) Capability {
	if cap == CapNone {
		return c.clear(chatID, userID)
	}

	c.mu.Lock()
	key := convKey{chat: chatID, user: userID}
	prev := c.states[key].pending
	c.states[key] = convState{pending: cap, enteredAt: c.clock()}
	c.mu.Unlock()

	if logger.Sess != nil {
		logger.Sess.Debug("conversation armed",
			slog.String("event", "conversation.arm"),
			slog.Int64("chat_id", chatID),
			slog.Int64("user_id", userID),
			slog.String("capability", cap.String()),
			slog.String("replaced", prev.String()),
		)
	}
	return prev
}

// Consume atomically takes the pending capability for the pair and resets the
// pair to idle. The second return is false when nothing was armed or the
// armed capability went stale.
func (c *Conversations) Consume(chatID, userID int64) (Capability, bool) {
	c.mu.Lock()
	key := convKey{chat: chatID, user: userID}
	state := c.states[key]
	delete(c.states, key)
	c.mu.Unlock()

	if state.pending == CapNone {
		return CapNone, false
	}
	if c.clock().Sub(state.enteredAt) > maxPendingAge {
		return CapNone, false
	}
	return state.pending, true
}

// Cancel resets the pair to idle without invoking any handler and reports
// which capability was dropped.
func (c *Conversations) Cancel(chatID, userID int64) (Capability, bool) {
	cap := c.clear(chatID, userID)
	if cap != CapNone && logger.Sess != nil {
		logger.Sess.Debug("conversation cancelled",
			slog.String("event", "conversation.cancel"),
			slog.Int64("chat_id", chatID),
			slog.Int64("user_id", userID),
			slog.String("capability", cap.String()),
		)
	}
	return cap, cap != CapNone
}

// Pending reports the currently armed capability without consuming it.
func (c *Conversations) Pending(chatID, userID int64) Capability {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[convKey{chat: chatID, user: userID}].pending
}

// InProgress reports whether the pair has an armed capability.
func (c *Conversations) InProgress(chatID, userID int64) bool {
	return c.Pending(chatID, userID) != CapNone
}

func (c *Conversations) clear(chatID, userID int64) Capability {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := convKey{chat: chatID, user: userID}
	prev := c.states[key].pending
	delete(c.states, key)
	return prev
}
