package recorder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileRecorder overwrites a single fixed-name file with the latest payload.
type FileRecorder struct {
	path string
	mu   sync.Mutex
}

func NewFileRecorder(path string) *FileRecorder {
	return &FileRecorder{path: path}
}

func (f *FileRecorder) Path() string { return f.path }

// RecordRawPayload pretty-prints raw when it is valid JSON and writes it verbatim otherwise.
func (f *FileRecorder) RecordRawPayload(_ context.Context, _ string, raw []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data := raw
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err == nil {
		data = buf.Bytes()
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create archive dir: %w", err)
		}
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write raw payload: %w", err)
	}
	return nil
}

func (f *FileRecorder) Close() error { return nil }
