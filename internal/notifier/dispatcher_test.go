package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/glitchx7/clore-monitor/internal/logger"
)

type stubNotifier struct {
	name string
	err  error
	sent []string
}

func (s *stubNotifier) Name() string { return s.name }

func (s *stubNotifier) Send(_ context.Context, text string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, text)
	return nil
}

func TestDispatcher_FailureDoesNotStopFanOut(t *testing.T) {
	broken := &stubNotifier{name: "broken", err: errors.New("network down")}
	ok := &stubNotifier{name: "ok"}

	d := NewDispatcher(logger.Discard(), broken, ok)
	d.Alert(context.Background(), "Performing checks...")

	assert.Empty(t, broken.sent)
	assert.Equal(t, []string{"Performing checks..."}, ok.sent)
}

func TestCapture(t *testing.T) {
	var c Capture
	c.Alert(context.Background(), "a")
	c.Alert(context.Background(), "b")

	msgs := c.Messages()
	assert.Equal(t, []string{"a", "b"}, msgs)
	msgs[0] = "mutated"
	assert.Equal(t, "a", c.Messages()[0])
}

func TestFormatters(t *testing.T) {
	assert.Equal(t,
		"Low balance alert! Total balance: 50 BTC, Threshold: 100 BTC",
		FormatLowBalance(decimal.NewFromInt(50), decimal.RequireFromString("100.0"), "BTC"))
	assert.Equal(t, "Order ID 12 seems to be offline.", FormatOffline("12"))
	assert.Equal(t,
		"Checked balances and spends. Total balance: 1.5, Total spend: 0",
		FormatSummary(decimal.RequireFromString("1.50"), decimal.Zero))
	assert.Equal(t, `Missing or invalid "orders" key in response: {}`, FormatMalformed("orders", "{}"))
}
