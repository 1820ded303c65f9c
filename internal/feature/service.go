package feature

import (
	"context"
	"fmt"

	"universebot/internal/provider"
	"universebot/internal/session"
	"universebot/internal/stats"
)

// Chat actions forwarded to the gateway while a handler works.
const (
	ActionTyping      = "typing"
	ActionUploadPhoto = "upload_photo"
)

// Gateway is the outbound messaging surface handlers reply through. The
// telegram package implements it over telebot; tests use a fake.
type Gateway interface {
	SendText(ctx context.Context, chat int64, text string, markdown bool) error
	SendPhoto(ctx context.Context, chat int64, photoURL, caption string, markdown bool) error
	Notify(ctx context.Context, chat int64, action string) error
}

// UsageSource supplies persisted all-time feature counters. The storage
// package implements it when a database is configured.
type UsageSource interface {
	LoadUsage(ctx context.Context) (map[string]int64, error)
}

// Service holds every feature handler's shared dependencies.
type Service struct {
	gw        Gateway
	resolver  *provider.Resolver
	chains    Chains
	endpoints Endpoints
	stats     *stats.Counters
	users     *session.Registry
	usage     UsageSource
}

// New wires the feature handlers.
func New(gw Gateway, resolver *provider.Resolver, chains Chains, ep Endpoints, counters *stats.Counters, users *session.Registry) *Service {
	return &Service{
		gw:        gw,
		resolver:  resolver,
		chains:    chains,
		endpoints: ep,
		stats:     counters,
		users:     users,
	}
}

// SetUsageSource attaches the persisted counters store. Stats reports then
// include all-time totals alongside the in-memory ones.
func (s *Service) SetUsageSource(src UsageSource) { s.usage = src }

// Users exposes the user registry for broadcast snapshots and admin views.
func (s *Service) Users() *session.Registry { return s.users }

// Stats exposes the usage counters.
func (s *Service) Stats() *stats.Counters { return s.stats }

// HandleArmed dispatches the consumed free-text input of a pending
// capability to its handler. Broadcast is armed through the same machine but
// executed by the broadcast engine, so it is not dispatched here.
func (s *Service) HandleArmed(ctx context.Context, chat int64, pending session.Capability, input string) error {
	switch pending {
	case session.CapImagePrompt:
		return s.Imagine(ctx, chat, input)
	case session.CapTextPrompt:
		return s.Ask(ctx, chat, input)
	case session.CapWeatherLocation:
		return s.Weather(ctx, chat, input)
	case session.CapCurrencyInput:
		return s.Convert(ctx, chat, input)
	case session.CapQRInput:
		return s.QR(ctx, chat, input)
	case session.CapBookQuery:
		return s.Book(ctx, chat, input)
	}
	return fmt.Errorf("no handler for pending capability %s", pending)
}

func (s *Service) record(name string, live bool) {
	if s.stats != nil {
		s.stats.Feature(name, live)
	}
}
