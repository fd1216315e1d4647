package recorder

import "context"

// NoopRecorder discards everything.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRawPayload(_ context.Context, _ string, _ []byte) error { return nil }
func (n *NoopRecorder) Close() error                                                 { return nil }
