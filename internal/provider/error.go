package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Kind classifies a fetch failure. Every kind is recoverable: the resolver
// walks on to the next provider and ultimately to the static fallback.
type Kind int

const (
	// KindTimeout marks a deadline hit while contacting the provider.
	KindTimeout Kind = iota
	// KindHTTP marks a non-2xx response; Status carries the code.
	KindHTTP
	// KindNetwork marks dial/DNS/transport failures.
	KindNetwork
	// KindParse marks a 2xx response whose body did not match the expected shape.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindHTTP:
		return "http"
	case KindNetwork:
		return "network"
	case KindParse:
		return "parse"
	}
	return "unknown"
}

// FetchError is the typed failure returned by a Data Provider Client.
type FetchError struct {
	Provider string
	Kind     Kind
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Kind == KindHTTP {
		return fmt.Sprintf("provider %s: http status %d", e.Provider, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Kind)
}

func (e *FetchError) Unwrap() error { return e.Err }

// classify maps a transport error onto a Kind.
func classify(err error) Kind {
	if err == nil {
		return KindNetwork
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return KindTimeout
		}
		if urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
			return classify(urlErr.Err)
		}
	}

	return KindNetwork
}

// ShouldRetry reports whether a network error is worth retrying. It focuses
// on transient dial/timeout failures produced by net/http.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() || opErr.Op == "dial" {
			return true
		}
		if nested, ok := opErr.Err.(net.Error); ok && nested.Timeout() {
			return true
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		if urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
			return ShouldRetry(urlErr.Err)
		}
	}

	return false
}
