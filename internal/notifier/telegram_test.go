package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramNotifier_Send(t *testing.T) {
	var received map[string]string
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tn := NewTelegramNotifier("123:abc", "-10042", "", 0)
	tn.APIBase = server.URL

	require.NoError(t, tn.Send(context.Background(), "No problems found!"))
	assert.Equal(t, "/bot123:abc/sendMessage", path)
	assert.Equal(t, "-10042", received["chat_id"])
	assert.Equal(t, "No problems found!", received["text"])
}

func TestTelegramNotifier_Send_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer server.Close()

	tn := NewTelegramNotifier("t", "c", "", 0)
	tn.APIBase = server.URL

	err := tn.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "chat not found")
}

func TestTelegramNotifier_Pacing(t *testing.T) {
	tn := NewTelegramNotifier("t", "c", "", time.Second)
	require.NotNil(t, tn.Limiter)
	assert.Equal(t, 1, tn.Limiter.Burst())

	assert.Nil(t, NewTelegramNotifier("t", "c", "", 0).Limiter)
}

func TestTelegramNotifier_PacingHonoursContext(t *testing.T) {
	tn := NewTelegramNotifier("t", "c", "", time.Hour)
	tn.APIBase = "http://127.0.0.1:0"
	// Drain the single burst token so the next Wait would block for an hour.
	require.True(t, tn.Limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := tn.Send(ctx, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wait for send slot")
}

func TestTelegramNotifier_Send_TruncatesLongText(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tn := NewTelegramNotifier("t", "c", "", 0)
	tn.APIBase = server.URL

	page := "<html>" + strings.Repeat("é", 10000) + "</html>"
	require.NoError(t, tn.Send(context.Background(), FormatFetchFailure(page)))

	text := received["text"]
	assert.Equal(t, MaxMessageRunes, utf8.RuneCountInString(text))
	assert.True(t, utf8.ValidString(text))
	assert.True(t, strings.HasPrefix(text, "Failed to fetch data: <html>"))
	assert.True(t, strings.HasSuffix(text, "…"))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", truncateRunes("short", 10))
	assert.Equal(t, "exactly", truncateRunes("exactly", 7))
	assert.Equal(t, "ab…", truncateRunes("abcdef", 3))
	assert.Equal(t, "日本…", truncateRunes("日本語テキスト", 3))
}
