package recorder

import (
	"context"
	"errors"
)

// Recorder archives raw upstream payloads that ended a fetch with a terminal
// API error, for offline inspection.
type Recorder interface {
	RecordRawPayload(ctx context.Context, endpoint string, raw []byte) error
	Close() error
}

// Multi writes to every recorder and joins their errors.
type Multi []Recorder

func (m Multi) RecordRawPayload(ctx context.Context, endpoint string, raw []byte) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordRawPayload(ctx, endpoint, raw); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
