package telegram

import (
	"context"
	"strings"
	"testing"

	tele "gopkg.in/telebot.v4"

	"universebot/internal/feature"
	"universebot/internal/provider"
	"universebot/internal/session"
	"universebot/internal/stats"
)

// stubContext fakes the update context for handler tests. Only the methods
// the tested paths touch are implemented; anything else panics loudly.
type stubContext struct {
	tele.Context
	user  *tele.User
	chat  *tele.Chat
	store map[string]any
	sent  []string
}

func (s *stubContext) Sender() *tele.User  { return s.user }
func (s *stubContext) Chat() *tele.Chat    { return s.chat }
func (s *stubContext) Update() tele.Update { return tele.Update{} }

func (s *stubContext) Get(key string) any { return s.store[key] }

func (s *stubContext) Set(key string, v any) {
	if s.store == nil {
		s.store = make(map[string]any)
	}
	s.store[key] = v
}

func (s *stubContext) Send(what any, _ ...any) error {
	if text, ok := what.(string); ok {
		s.sent = append(s.sent, text)
	}
	return nil
}

type featureGateway struct {
	texts []string
}

func (g *featureGateway) SendText(_ context.Context, _ int64, text string, _ bool) error {
	g.texts = append(g.texts, text)
	return nil
}

func (g *featureGateway) SendPhoto(_ context.Context, _ int64, _, _ string, _ bool) error {
	return nil
}

func (g *featureGateway) Notify(_ context.Context, _ int64, _ string) error { return nil }

func newTestRegistry(adminID int64) (*Registry, *featureGateway) {
	gw := &featureGateway{}
	ep := feature.DefaultEndpoints()
	svc := feature.New(gw, provider.NewResolver(nil), feature.BuildChains(ep, feature.ChainOptions{}), ep, stats.New(), session.NewRegistry())
	flow := NewBroadcastFlow(&fakeRunner{}, svc.Users(), &fakeNotifier{}, adminID)
	h := NewHandlers(svc, session.NewConversations(), flow, adminID)
	reg := NewRegistry()
	h.Register(reg)
	return reg, gw
}

func TestAdminOnlyMiddlewareGate(t *testing.T) {
	rejected := 0
	gate := AdminOnlyMiddleware(AdminOptions{
		AdminID: 500,
		OnReject: func(c tele.Context) error {
			rejected++
			return nil
		},
	})

	ran := 0
	handler := gate(func(c tele.Context) error {
		ran++
		return nil
	})

	cases := []struct {
		name       string
		user       *tele.User
		wantRan    int
		wantReject int
	}{
		{"nil sender", nil, 0, 1},
		{"non-admin", &tele.User{ID: 7}, 0, 2},
		{"admin", &tele.User{ID: 500}, 1, 2},
	}
	for _, tc := range cases {
		if err := handler(&stubContext{user: tc.user}); err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if ran != tc.wantRan || rejected != tc.wantReject {
			t.Fatalf("%s: ran=%d rejected=%d, want ran=%d rejected=%d", tc.name, ran, rejected, tc.wantRan, tc.wantReject)
		}
	}
}

func TestRegisteredAdminCommandsRejectNonAdmin(t *testing.T) {
	reg, _ := newTestRegistry(500)

	for _, name := range []string{"/stats", "/users", "/broadcast"} {
		_, cmd, ok := reg.LookupCommand(name)
		if !ok {
			t.Fatalf("%s not registered", name)
		}
		if !cmd.AdminOnly {
			t.Fatalf("%s not marked admin-only", name)
		}

		c := &stubContext{user: &tele.User{ID: 7}, chat: &tele.Chat{ID: 7}}
		if err := cmd.Handler(c); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(c.sent) != 1 || c.sent[0] != adminDeniedText {
			t.Fatalf("%s replies = %q, want the denial text", name, c.sent)
		}
	}
}

func TestRegisteredStatsCommandServesAdmin(t *testing.T) {
	reg, gw := newTestRegistry(500)

	_, cmd, ok := reg.LookupCommand("/stats")
	if !ok {
		t.Fatal("/stats not registered")
	}

	c := &stubContext{user: &tele.User{ID: 500}, chat: &tele.Chat{ID: 500}}
	if err := cmd.Handler(c); err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(c.sent) != 0 {
		t.Fatalf("admin got a denial: %q", c.sent)
	}
	if len(gw.texts) != 1 || !strings.Contains(gw.texts[0], "📊 *Bot Statistics*") {
		t.Fatalf("stats report = %q", gw.texts)
	}
}

func TestCommandAliasesResolve(t *testing.T) {
	reg, _ := newTestRegistry(500)

	for alias, want := range map[string]string{"image": "/imagine", "qrcode": "/qr"} {
		key, _, ok := reg.LookupCommand(alias)
		if !ok || key != want {
			t.Fatalf("alias %q resolved to (%q, %v), want %q", alias, key, ok, want)
		}
	}
}

func TestPingHiddenFromCommandMenu(t *testing.T) {
	reg, _ := newTestRegistry(500)

	_, cmd, ok := reg.LookupCommand("/ping")
	if !ok {
		t.Fatal("/ping not registered")
	}
	if !cmd.Hidden {
		t.Fatal("/ping must be hidden")
	}
	for _, entry := range reg.ListCommands(true) {
		if entry.Text == "/ping" {
			t.Fatal("/ping leaked into the visible command menu")
		}
	}

	c := &stubContext{user: &tele.User{ID: 9}, chat: &tele.Chat{ID: 9}}
	if err := cmd.Handler(c); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if len(c.sent) != 1 || c.sent[0] != "🏓 Pong!" {
		t.Fatalf("ping replies = %q", c.sent)
	}
}
