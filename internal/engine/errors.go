package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// FetchKind classifies why a provider call produced no items.
type FetchKind string

const (
	KindTimeout         FetchKind = "timeout"
	KindNetwork         FetchKind = "network"
	KindStatus          FetchKind = "status"
	KindMalformed       FetchKind = "malformed"
	KindUnknownProvider FetchKind = "unknown_provider"
	KindRegistry        FetchKind = "registry"
	KindInternal        FetchKind = "internal"
)

// FetchError is the per-call failure kept internal to the engine.
type FetchError struct {
	Site       string
	Kind       FetchKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	var msg string
	switch {
	case e.Kind == KindStatus:
		msg = fmt.Sprintf("status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	case e.Err != nil:
		msg = fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		msg = string(e.Kind)
	}
	if e.Site == "" {
		return msg
	}
	return e.Site + ": " + msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// httpStatusError reports a non-2xx response from the transport.
type httpStatusError struct {
	StatusCode int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("status %d", e.StatusCode)
}

// classify wraps err into a FetchError for the given site.
func classify(site string, err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		if fe.Site == "" {
			fe.Site = site
		}
		return fe
	}
	return &FetchError{Site: site, Kind: kindOf(err), StatusCode: statusOf(err), Err: err}
}

func kindOf(err error) FetchKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var httpErr *httpStatusError
	if errors.As(err, &httpErr) {
		return KindStatus
	}

	// Dial, DNS and read timeouts surface as net.Error.
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	// Everything else (refused, reset, DNS miss, canceled) is a network failure.
	return KindNetwork
}

func statusOf(err error) int {
	var httpErr *httpStatusError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// FetchErrorKind reports the kind of err, or "" if it is not a FetchError.
func FetchErrorKind(err error) FetchKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
