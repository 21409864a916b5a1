package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// ErrExpired means the server rejected the bearer token (HTTP 401).
	// It is the only verdict allowed to end a session on its own.
	ErrExpired = errors.New("token expired")
	// ErrTimeout means the request was cancelled by its deadline.
	ErrTimeout = errors.New("request timed out")
	// ErrNetwork covers transport failures: DNS, refused connections, offline.
	ErrNetwork = errors.New("network error")
	// ErrMalformedResponse is returned when a 2xx body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("http %d", e.Code)
}

// Is lets errors.Is(err, ErrExpired) match a 401.
func (e *StatusError) Is(target error) bool {
	return target == ErrExpired && e.Code == http.StatusUnauthorized
}

// ErrorKind is the classification every caller of the profile endpoint uses
// to decide between discarding a session and keeping it.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindExpired
	KindTimeout
	KindNetwork
	KindHTTP
)

func (k ErrorKind) String() string {
	switch k {
	case KindExpired:
		return "expired"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	default:
		return "unknown"
	}
}

// Kind classifies err. Only KindExpired is authoritative; everything else
// may be transient.
func Kind(err error) ErrorKind {
	var se *StatusError
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrExpired):
		return KindExpired
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.As(err, &se):
		return KindHTTP
	default:
		return KindUnknown
	}
}

// mapTransportError turns an error from http.Client.Do into ErrTimeout or
// ErrNetwork, keeping the original in the chain.
func mapTransportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}
