package feature

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"universebot/internal/provider"
	"universebot/internal/session"
	"universebot/internal/stats"
)

type sentText struct {
	chat     int64
	text     string
	markdown bool
}

type sentPhoto struct {
	chat     int64
	url      string
	caption  string
	markdown bool
}

type fakeGateway struct {
	mu      sync.Mutex
	texts   []sentText
	photos  []sentPhoto
	actions []string
}

func (g *fakeGateway) SendText(_ context.Context, chat int64, text string, markdown bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.texts = append(g.texts, sentText{chat: chat, text: text, markdown: markdown})
	return nil
}

func (g *fakeGateway) SendPhoto(_ context.Context, chat int64, url, caption string, markdown bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.photos = append(g.photos, sentPhoto{chat: chat, url: url, caption: caption, markdown: markdown})
	return nil
}

func (g *fakeGateway) Notify(_ context.Context, _ int64, action string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.actions = append(g.actions, action)
	return nil
}

func (g *fakeGateway) lastText(t *testing.T) sentText {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.texts) == 0 {
		t.Fatal("no text was sent")
	}
	return g.texts[len(g.texts)-1]
}

func newTestService(ep Endpoints) (*Service, *fakeGateway) {
	gw := &fakeGateway{}
	chains := BuildChains(ep, ChainOptions{})
	svc := New(gw, provider.NewResolver(nil), chains, ep, stats.New(), session.NewRegistry())
	return svc, gw
}

func jsonServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConvertFormatsAmountAndRate(t *testing.T) {
	srv := jsonServer(t, `{"success":true,"rates":{"EUR":0.92}}`)
	ep := DefaultEndpoints()
	ep.ExchangeHost = srv.URL
	svc, gw := newTestService(ep)

	if err := svc.Convert(context.Background(), 42, "100 USD EUR"); err != nil {
		t.Fatalf("convert: %v", err)
	}
	reply := gw.lastText(t)
	if !strings.Contains(reply.text, "100.00 USD = 92.00 EUR") {
		t.Fatalf("missing conversion line: %q", reply.text)
	}
	if !strings.Contains(reply.text, "1 USD = 0.9200 EUR") {
		t.Fatalf("missing rate line: %q", reply.text)
	}
}

func TestConvertRejectsBadAmount(t *testing.T) {
	svc, gw := newTestService(DefaultEndpoints())
	if err := svc.Convert(context.Background(), 1, "lots USD EUR"); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got := gw.lastText(t).text; got != "❌ Invalid amount! Use numbers only." {
		t.Fatalf("reply = %q", got)
	}
}

func TestConvertUsageOnMissingArgs(t *testing.T) {
	svc, gw := newTestService(DefaultEndpoints())
	if err := svc.Convert(context.Background(), 1, "100 USD"); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !strings.Contains(gw.lastText(t).text, "Usage: /convert") {
		t.Fatalf("reply = %q", gw.lastText(t).text)
	}
}

func TestConvertUnknownSymbolIsCorrectiveNotFallback(t *testing.T) {
	srv := jsonServer(t, `{"success":true,"rates":{"EUR":0.92}}`)
	ep := DefaultEndpoints()
	ep.ExchangeHost = srv.URL
	// Keep the secondary providers from answering for the missing symbol.
	ep.OpenERAPI = srv.URL
	ep.Frankfurter = srv.URL
	svc, gw := newTestService(ep)

	if err := svc.Convert(context.Background(), 1, "100 USD ZZZ"); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got := gw.lastText(t).text; got != "❌ Invalid currency codes!" {
		t.Fatalf("reply = %q", got)
	}
}

func TestWeatherUnknownCity(t *testing.T) {
	srv := jsonServer(t, `{"results":[]}`)
	ep := DefaultEndpoints()
	ep.OpenMeteoGeo = srv.URL
	svc, gw := newTestService(ep)

	if err := svc.Weather(context.Background(), 7, "Nowhereistan"); err != nil {
		t.Fatalf("weather: %v", err)
	}
	if got := gw.lastText(t).text; got != "❌ City 'Nowhereistan' not found. Try again!" {
		t.Fatalf("reply = %q", got)
	}
	if len(gw.photos) != 0 {
		t.Fatal("no photo should be sent for an unknown city")
	}
}

func TestWeatherHappyPath(t *testing.T) {
	geo := jsonServer(t, `{"results":[{"name":"London","country":"United Kingdom","latitude":51.5,"longitude":-0.12}]}`)
	forecast := jsonServer(t, `{"current":{"temperature_2m":18.4,"relative_humidity_2m":72,"wind_speed_10m":14.2,"weather_code":2}}`)
	ep := DefaultEndpoints()
	ep.OpenMeteoGeo = geo.URL
	ep.OpenMeteo = forecast.URL
	svc, gw := newTestService(ep)

	if err := svc.Weather(context.Background(), 7, "London"); err != nil {
		t.Fatalf("weather: %v", err)
	}
	reply := gw.lastText(t).text
	for _, want := range []string{"Weather in London, United Kingdom", "⛅ Partly cloudy", "18.4°C", "72%", "14.2 km/h"} {
		if !strings.Contains(reply, want) {
			t.Fatalf("reply %q missing %q", reply, want)
		}
	}
}

func TestQRIsDeterministic(t *testing.T) {
	ep := DefaultEndpoints()
	svc, gw := newTestService(ep)

	for i := 0; i < 2; i++ {
		if err := svc.QR(context.Background(), 9, "hello"); err != nil {
			t.Fatalf("qr: %v", err)
		}
	}
	if len(gw.photos) != 2 {
		t.Fatalf("photos sent = %d", len(gw.photos))
	}
	want := ep.QRServer + "/v1/create-qr-code/?size=500x500&data=hello"
	if gw.photos[0].url != want {
		t.Fatalf("qr url = %q, want %q", gw.photos[0].url, want)
	}
	if gw.photos[0].url != gw.photos[1].url {
		t.Fatal("qr url must not vary between calls")
	}
	if !strings.Contains(gw.photos[0].caption, "hello") {
		t.Fatalf("caption = %q", gw.photos[0].caption)
	}
}

func TestJokeTimeoutsYieldExactFallback(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		slow.Close()
	}()

	ep := DefaultEndpoints()
	ep.DadJoke = slow.URL
	ep.OfficialJoke = slow.URL
	ep.JokeAPI = slow.URL
	svc, gw := newTestService(ep)

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	if err := svc.Joke(ctx, 3); err != nil {
		t.Fatalf("joke: %v", err)
	}
	if got := gw.lastText(t).text; got != FallbackJoke {
		t.Fatalf("reply = %q, want the exact fallback joke", got)
	}
}

func TestCoinCardFormatsPrices(t *testing.T) {
	srv := jsonServer(t, `{"bitcoin":{"usd":64250.12,"eur":59800.5,"gbp":51000.25,"usd_24h_change":2.41,"usd_market_cap":1267000000000}}`)
	ep := DefaultEndpoints()
	ep.CoinGecko = srv.URL
	svc, gw := newTestService(ep)

	if err := svc.CoinCard(context.Background(), 5, "bitcoin"); err != nil {
		t.Fatalf("coin card: %v", err)
	}
	reply := gw.lastText(t).text
	for _, want := range []string{"₿ *BITCOIN*", "$64,250.12", "€59,800.50", "+2.41%", "$1,267,000,000,000"} {
		if !strings.Contains(reply, want) {
			t.Fatalf("reply %q missing %q", reply, want)
		}
	}
}

func TestCoinIDMapsShorthand(t *testing.T) {
	if got := CoinID("BTC"); got != "bitcoin" {
		t.Fatalf("CoinID(BTC) = %q", got)
	}
	if got := CoinID("solana"); got != "solana" {
		t.Fatalf("CoinID(solana) = %q", got)
	}
}

func TestIdleTextKeywordsAndFallback(t *testing.T) {
	svc, gw := newTestService(DefaultEndpoints())

	if err := svc.IdleText(context.Background(), 1, "hello there"); err != nil {
		t.Fatalf("idle: %v", err)
	}
	if !strings.Contains(gw.lastText(t).text, "Hey there") {
		t.Fatalf("greeting reply = %q", gw.lastText(t).text)
	}

	if err := svc.IdleText(context.Background(), 1, "qwerty asdf"); err != nil {
		t.Fatalf("idle: %v", err)
	}
	if got := gw.lastText(t).text; got != idleFallbackReply {
		t.Fatalf("fallback reply = %q", got)
	}
}

func TestHandleArmedDispatch(t *testing.T) {
	svc, gw := newTestService(DefaultEndpoints())

	if err := svc.HandleArmed(context.Background(), 1, session.CapQRInput, "ping"); err != nil {
		t.Fatalf("armed qr: %v", err)
	}
	if len(gw.photos) != 1 || !strings.Contains(gw.photos[0].url, "data=ping") {
		t.Fatalf("photos = %+v", gw.photos)
	}

	if err := svc.HandleArmed(context.Background(), 1, session.CapBroadcastMessage, "x"); err == nil {
		t.Fatal("broadcast input must not be dispatched here")
	}
}

func TestStatsReportListsTopFeatures(t *testing.T) {
	svc, gw := newTestService(DefaultEndpoints())
	svc.Users().Touch(100, "alice")
	svc.Stats().Command()
	svc.Stats().Feature("qr", true)
	svc.Stats().Feature("qr", true)
	svc.Stats().Feature("joke", false)

	if err := svc.StatsReport(context.Background(), 1); err != nil {
		t.Fatalf("stats: %v", err)
	}
	reply := gw.lastText(t).text
	for _, want := range []string{"Total Users: 1", "Total Commands: 1", "• qr: 2", "• joke: 1"} {
		if !strings.Contains(reply, want) {
			t.Fatalf("reply %q missing %q", reply, want)
		}
	}
}

type fakeUsageSource struct {
	counts map[string]int64
	err    error
}

func (f *fakeUsageSource) LoadUsage(context.Context) (map[string]int64, error) {
	return f.counts, f.err
}

func TestStatsReportIncludesPersistedTotals(t *testing.T) {
	svc, gw := newTestService(DefaultEndpoints())
	svc.Stats().Feature("qr", true)
	svc.SetUsageSource(&fakeUsageSource{counts: map[string]int64{"qr": 40, "joke": 2}})

	if err := svc.StatsReport(context.Background(), 1); err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(gw.lastText(t).text, "All-Time Feature Calls: 42") {
		t.Fatalf("reply = %q", gw.lastText(t).text)
	}
}

func TestStatsReportSkipsBrokenUsageSource(t *testing.T) {
	svc, gw := newTestService(DefaultEndpoints())
	svc.SetUsageSource(&fakeUsageSource{err: context.DeadlineExceeded})

	if err := svc.StatsReport(context.Background(), 1); err != nil {
		t.Fatalf("stats: %v", err)
	}
	reply := gw.lastText(t).text
	if strings.Contains(reply, "All-Time") {
		t.Fatalf("reply must omit persisted totals on source error: %q", reply)
	}
	if !strings.Contains(reply, "📊 *Bot Statistics*") {
		t.Fatalf("reply = %q", reply)
	}
}

func TestUsersListTruncatesAtTwenty(t *testing.T) {
	svc, gw := newTestService(DefaultEndpoints())
	for i := int64(1); i <= 25; i++ {
		svc.Users().Touch(i, "")
	}

	if err := svc.UsersList(context.Background(), 1); err != nil {
		t.Fatalf("users: %v", err)
	}
	reply := gw.lastText(t).text
	if !strings.Contains(reply, "Total Users: 25") {
		t.Fatalf("reply = %q", reply)
	}
	if !strings.Contains(reply, "... and 5 more") {
		t.Fatalf("reply = %q", reply)
	}
}
