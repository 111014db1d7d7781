// Package failures describes how a refresh of the ticker data can fail.
package failures

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTransport covers network errors, timeouts and cancelled requests.
	ErrTransport = errors.New("upstream transport failure")
	// ErrUpstreamStatus is returned for non-2xx upstream responses.
	ErrUpstreamStatus = errors.New("upstream returned non-success status")
	// ErrMalformedPayload is returned when the top-level body is not a JSON array of objects.
	ErrMalformedPayload = errors.New("malformed upstream payload")
)

// Kind classifies a refresh failure.
type Kind string

const (
	KindTransport Kind = "transport"
	KindStatus    Kind = "status"
	KindPayload   Kind = "payload"
	KindUnknown   Kind = "unknown"
)

// Classify maps an error returned by a ticker source to a Kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUpstreamStatus):
		return KindStatus
	case errors.Is(err, ErrMalformedPayload):
		return KindPayload
	case errors.Is(err, ErrTransport),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindTransport
	default:
		return KindUnknown
	}
}

// Event is the structured record handed to a failure sink.
type Event struct {
	Kind        Kind
	Err         error
	AttemptedAt time.Time
	Duration    time.Duration
	IDs         []string
	Currency    string
	// StaleSince is the fetch time of the snapshot still being served; zero when nothing was ever fetched.
	StaleSince time.Time
}
