package collector

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a fetch did not produce usable data.
type ErrorKind string

const (
	KindTransport    ErrorKind = "TRANSPORT"     // connection error, non-2xx, undecodable body
	KindTransientAPI ErrorKind = "TRANSIENT_API" // status code 1
	KindTerminalAPI  ErrorKind = "TERMINAL_API"  // any other non-zero status code
	KindMalformed    ErrorKind = "MALFORMED"     // payload missing the expected shape
	KindExhausted    ErrorKind = "EXHAUSTED"     // retries used up
)

// FetchError describes a failed fetch against the upstream API.
type FetchError struct {
	Kind     ErrorKind
	Endpoint string
	Status   int    // HTTP status, 0 if no response
	Code     int    // API status code, when one was decoded
	Detail   string // response body or error text, used in alerts
	Raw      []byte // raw response body, when one was read
	Cause    error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Kind, e.Endpoint)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Cause }

// IsKind reports whether err is a *FetchError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

func malformed(endpoint, detail string) *FetchError {
	return &FetchError{Kind: KindMalformed, Endpoint: endpoint, Detail: detail}
}
