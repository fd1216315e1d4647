package recorder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glitchx7/clore-monitor/internal/logger"
)

func TestFileRecorder_PrettyPrintsAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug", "raw_orders_response.json")
	r := NewFileRecorder(path)
	ctx := context.Background()

	require.NoError(t, r.RecordRawPayload(ctx, "/v1/my_orders", []byte(`{"code":2,"error":"bad"}`)))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"code\": 2,\n    \"error\": \"bad\"\n}", string(data))

	require.NoError(t, r.RecordRawPayload(ctx, "/v1/my_orders", []byte("not json")))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "not json", string(data))
}

func TestSQLiteRecorder_RecordAndRecent(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "archive.db"), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	ctx := context.Background()
	require.NoError(t, r.RecordRawPayload(ctx, "https://api.clore.ai/v1/wallets", []byte(`{"code":5}`)))
	require.NoError(t, r.RecordRawPayload(ctx, "https://api.clore.ai/v1/my_orders", []byte(`{"code":2}`)))

	got, err := r.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "https://api.clore.ai/v1/my_orders", got[0].Endpoint)
	assert.Equal(t, `{"code":2}`, got[0].Payload)
	assert.False(t, got[1].Timestamp.IsZero())
}

type failingRecorder struct{ closed bool }

func (f *failingRecorder) RecordRawPayload(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func (f *failingRecorder) Close() error {
	f.closed = true
	return nil
}

func TestMulti_WritesAllAndJoinsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.json")
	bad := &failingRecorder{}
	m := Multi{bad, NewFileRecorder(path), NewNoopRecorder()}

	err := m.RecordRawPayload(context.Background(), "e", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.FileExists(t, path)

	require.NoError(t, m.Close())
	assert.True(t, bad.closed)
}
