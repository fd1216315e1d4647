package notifier

import (
	"context"
	"log/slog"
	"sync"

	"github.com/glitchx7/clore-monitor/internal/metrics"
)

// Notifier delivers a text message to one channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, text string) error
}

// Alerter is the fire-and-forget sink used by the checks. It never reports
// delivery failures to the caller.
type Alerter interface {
	Alert(ctx context.Context, text string)
}

// Dispatcher fans an alert out to every configured notifier.
// Delivery failures are logged and dropped.
type Dispatcher struct {
	notifiers []Notifier
	logger    *slog.Logger
}

func NewDispatcher(logger *slog.Logger, notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{notifiers: notifiers, logger: logger}
}

func (d *Dispatcher) Alert(ctx context.Context, text string) {
	for _, n := range d.notifiers {
		if err := n.Send(ctx, text); err != nil {
			metrics.AlertsSent.WithLabelValues(n.Name(), "failed").Inc()
			d.logger.Error("alert delivery failed", "channel", n.Name(), "error", err)
			continue
		}
		metrics.AlertsSent.WithLabelValues(n.Name(), "sent").Inc()
		d.logger.Info("alert sent", "channel", n.Name(), "text", text)
	}
}

// Capture records alerts in memory instead of sending them.
type Capture struct {
	mu       sync.Mutex
	messages []string
}

func (c *Capture) Alert(_ context.Context, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, text)
}

// Messages returns a copy of everything captured so far.
func (c *Capture) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.messages))
	copy(out, c.messages)
	return out
}
