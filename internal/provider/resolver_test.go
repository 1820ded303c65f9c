package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func jsonSpec(name, url string) Spec[string] {
	return Spec[string]{
		Name: name,
		Request: func(Params) (Request, bool) {
			return Request{URL: url, Timeout: time.Second}, true
		},
		Parse: func(data []byte) (string, error) {
			var body struct {
				Value string `json:"value"`
			}
			if err := json.Unmarshal(data, &body); err != nil {
				return "", err
			}
			if body.Value == "" {
				return "", errors.New("missing value")
			}
			return body.Value, nil
		},
	}
}

func TestResolveReturnsFirstSuccess(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"value":"live"}`))
	}))
	defer good.Close()
	never := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("third provider must not be contacted")
	}))
	defer never.Close()

	ch := Chain[string]{
		Capability: "test",
		Providers: []Spec[string]{
			jsonSpec("bad", bad.URL),
			jsonSpec("good", good.URL),
			jsonSpec("never", never.URL),
		},
		Fallback: func() string { return "canned" },
	}

	got, live := Resolve(context.Background(), NewResolver(nil), ch, nil)
	if !live || got != "live" {
		t.Fatalf("resolve = %q live=%v", got, live)
	}
}

func TestResolveFallsBackWhenAllFail(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer down.Close()
	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer garbage.Close()

	ch := Chain[string]{
		Capability: "test",
		Providers: []Spec[string]{
			jsonSpec("down", down.URL),
			jsonSpec("garbage", garbage.URL),
		},
		Fallback: func() string { return "the exact canned answer" },
	}

	got, live := Resolve(context.Background(), NewResolver(nil), ch, nil)
	if live {
		t.Fatal("result must be marked as fallback")
	}
	if got != "the exact canned answer" {
		t.Fatalf("fallback = %q", got)
	}
}

func TestResolveFallsBackOnTimeouts(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		slow.Close()
	}()

	spec := jsonSpec("slow", slow.URL)
	spec.Request = func(Params) (Request, bool) {
		return Request{URL: slow.URL, Timeout: 30 * time.Millisecond}, true
	}

	ch := Chain[string]{
		Capability: "test",
		Providers:  []Spec[string]{spec, spec, spec},
		Fallback:   func() string { return "offline" },
	}

	got, live := Resolve(context.Background(), NewResolver(nil), ch, nil)
	if live || got != "offline" {
		t.Fatalf("resolve = %q live=%v", got, live)
	}
}

func TestResolveSkipsUnavailableProviders(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"value":"second"}`))
	}))
	defer good.Close()

	skipped := Spec[string]{
		Name:    "keyless",
		Request: func(Params) (Request, bool) { return Request{}, false },
		Parse:   func([]byte) (string, error) { return "", errors.New("unreachable") },
	}

	ch := Chain[string]{
		Capability: "test",
		Providers:  []Spec[string]{skipped, jsonSpec("good", good.URL)},
		Fallback:   func() string { return "canned" },
	}

	got, live := Resolve(context.Background(), NewResolver(nil), ch, nil)
	if !live || got != "second" {
		t.Fatalf("resolve = %q live=%v", got, live)
	}
}

func TestResolveCachesLiveResults(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"value":"cached"}`))
	}))
	defer srv.Close()

	ch := Chain[string]{
		Capability: "snapshot",
		Providers:  []Spec[string]{jsonSpec("srv", srv.URL)},
		Fallback:   func() string { return "canned" },
		CacheTTL:   time.Minute,
	}

	r := NewResolver(nil)
	params := Params{"coin": "bitcoin"}
	for i := 0; i < 3; i++ {
		got, live := Resolve(context.Background(), r, ch, params)
		if !live || got != "cached" {
			t.Fatalf("call %d: %q live=%v", i, got, live)
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("provider hit %d times, want 1", hits.Load())
	}

	// Different params miss the cache.
	if _, live := Resolve(context.Background(), r, ch, Params{"coin": "ethereum"}); !live {
		t.Fatal("expected live result for new params")
	}
	if hits.Load() != 2 {
		t.Fatalf("provider hit %d times, want 2", hits.Load())
	}
}

func TestResolveDoesNotCacheFallbacks(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	ch := Chain[string]{
		Capability: "snapshot",
		Providers:  []Spec[string]{jsonSpec("srv", srv.URL)},
		Fallback:   func() string { return "canned" },
		CacheTTL:   time.Minute,
	}

	r := NewResolver(nil)
	for i := 0; i < 2; i++ {
		if _, live := Resolve(context.Background(), r, ch, nil); live {
			t.Fatal("expected fallback")
		}
	}
	if hits.Load() != 2 {
		t.Fatalf("fallback must not be cached; hits = %d", hits.Load())
	}
}
