package prober

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/glitchx7/clore-monitor/internal/metrics"
	"github.com/glitchx7/clore-monitor/internal/model"
	"github.com/glitchx7/clore-monitor/internal/notifier"
)

// DefaultTimeout bounds each connection attempt.
const DefaultTimeout = 5 * time.Second

// ErrBlankHost marks a probe that could not be attempted because the exposed
// host is empty. It counts as a failure.
var ErrBlankHost = errors.New("blank host")

// Dialer opens network connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Prober checks that each order's SSH port answers on every exposed host.
type Prober struct {
	Alerter notifier.Alerter
	Dialer  Dialer
	Timeout time.Duration
	Logger  *slog.Logger
	// SuppressOnlineOnFailure drops the closing "online" message when any probe failed.
	SuppressOnlineOnFailure bool
}

func New(alerter notifier.Alerter, timeout time.Duration, logger *slog.Logger) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{
		Alerter: alerter,
		Dialer:  &net.Dialer{},
		Timeout: timeout,
		Logger:  logger,
	}
}

// Probe dials every (host, external port) pair mapped to internal port 22,
// one at a time. Each failure raises an offline alert naming the order.
// A blank host is never dialed and counts as a failure.
// Orders without hosts or SSH mappings are skipped silently.
//
// The closing "online" alert is sent regardless of earlier failures unless
// SuppressOnlineOnFailure is set.
func (p *Prober) Probe(ctx context.Context, orders []model.Order) []model.ProbeResult {
	var results []model.ProbeResult
	failed := false

	for _, o := range orders {
		ports := o.SSHPorts()
		if len(o.ExposedHosts) == 0 || len(ports) == 0 {
			continue
		}
		for _, host := range o.ExposedHosts {
			for _, port := range ports {
				res := p.probeOne(ctx, o.ID, host, port)
				results = append(results, res)
				if res.OK {
					metrics.ProbeResults.WithLabelValues("open").Inc()
					p.Logger.Info("ssh port open", "order_id", o.ID, "host", host, "port", port, "latency", res.Latency)
					continue
				}
				failed = true
				metrics.ProbeResults.WithLabelValues("unreachable").Inc()
				p.Logger.Warn("ssh port unreachable", "order_id", o.ID, "host", host, "port", port, "error", res.Err)
				p.Alerter.Alert(ctx, notifier.FormatOffline(o.ID))
			}
		}
	}

	if failed && p.SuppressOnlineOnFailure {
		p.Logger.Info("skipping online summary after failed probes")
		return results
	}
	p.Alerter.Alert(ctx, notifier.MsgInstancesOnline)
	return results
}

func (p *Prober) probeOne(ctx context.Context, orderID, host string, port int) model.ProbeResult {
	res := model.ProbeResult{OrderID: orderID, Host: host, Port: port}
	if strings.TrimSpace(host) == "" {
		res.Err = ErrBlankHost
		return res
	}

	dialCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	start := time.Now()
	conn, err := p.Dialer.DialContext(dialCtx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	res.Latency = time.Since(start)
	if err != nil {
		res.Err = err
		return res
	}
	conn.Close()
	res.OK = true
	return res
}
