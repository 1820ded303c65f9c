package provider

import (
	"context"
	"sort"
	"strings"
	"time"

	"log/slog"

	gocache "github.com/patrickmn/go-cache"

	"universebot/internal/logger"
)

// Params is the validated parameter bag a feature handler passes to Resolve.
type Params map[string]string

// Spec declares one provider inside a capability's fallback chain. Request
// may report false to skip the provider for the given params (for example
// when its optional API key is absent).
type Spec[T any] struct {
	Name    string
	Request func(p Params) (Request, bool)
	Parse   func(data []byte) (T, error)
}

// Chain is the ordered provider list for one capability plus its static
// fallback. The fallback is mandatory: Resolve never returns silence.
type Chain[T any] struct {
	Capability string
	Providers  []Spec[T]
	Fallback   func() T
	// CacheTTL > 0 serves repeated identical calls from cache; only live
	// results are cached, fallbacks are retried on every call.
	CacheTTL time.Duration
}

// Resolver carries the shared client and cache used by every chain.
type Resolver struct {
	client *Client
	cache  *gocache.Cache
}

// NewResolver builds a resolver; pass nil to use the default client.
func NewResolver(client *Client) *Resolver {
	return &Resolver{
		client: orDefault(client),
		cache:  gocache.New(gocache.NoExpiration, 5*time.Minute),
	}
}

func orDefault(c *Client) *Client {
	if c == nil {
		return NewClient(nil)
	}
	return c
}

// Resolve walks the chain in declared order and returns the first parsed
// result, or the static fallback once every provider failed. The boolean
// reports whether the result is live. Resolve never returns an error.
func Resolve[T any](ctx context.Context, r *Resolver, ch Chain[T], params Params) (T, bool) {
	key := cacheKey(ch.Capability, params)
	if ch.CacheTTL > 0 {
		if v, ok := r.cache.Get(key); ok {
			if cached, ok := v.(T); ok {
				logger.Debug(ctx, "provider", "resolve.cache",
					slog.String("capability", ch.Capability),
					slog.String("cache", "hit"),
				)
				return cached, true
			}
		}
	}

	start := time.Now()
	for _, spec := range ch.Providers {
		req, ok := spec.Request(params)
		if !ok {
			logger.Debug(ctx, "provider", "fetch.skip",
				slog.String("capability", ch.Capability),
				slog.String("provider", spec.Name),
			)
			continue
		}
		req.Name = spec.Name

		data, ferr := r.client.Fetch(ctx, req)
		if ferr != nil {
			logFetchFailure(ctx, ch.Capability, ferr)
			continue
		}

		result, err := spec.Parse(data)
		if err != nil {
			logFetchFailure(ctx, ch.Capability, &FetchError{Provider: spec.Name, Kind: KindParse, Err: err})
			continue
		}

		logger.Debug(ctx, "provider", "resolve.ok",
			slog.String("capability", ch.Capability),
			slog.String("provider", spec.Name),
			slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
		)
		if ch.CacheTTL > 0 {
			r.cache.Set(key, result, ch.CacheTTL)
		}
		return result, true
	}

	logger.Warn(ctx, "provider", "resolve.fallback",
		slog.String("capability", ch.Capability),
		slog.String("status", "fail"),
		slog.Int("count", len(ch.Providers)),
		slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
	)
	return ch.Fallback(), false
}

func logFetchFailure(ctx context.Context, capability string, ferr *FetchError) {
	attrs := []slog.Attr{
		slog.String("capability", capability),
		slog.String("provider", ferr.Provider),
		slog.String("err_kind", ferr.Kind.String()),
	}
	if ferr.Status != 0 {
		attrs = append(attrs, slog.Int("http_code", ferr.Status))
	}
	if ferr.Err != nil {
		attrs = append(attrs, slog.String("err", logger.SanitizeLimit(ferr.Err.Error(), 256)))
	}
	logger.Warn(ctx, "provider", "fetch.fail", attrs...)
}

func cacheKey(capability string, params Params) string {
	if len(params) == 0 {
		return capability
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(capability)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}
