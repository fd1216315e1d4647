package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/glitchx7/clore-monitor/internal/metrics"
	"github.com/glitchx7/clore-monitor/internal/notifier"
	"github.com/glitchx7/clore-monitor/internal/recorder"
)

const (
	// DefaultMaxRetries is the number of requests one fetch may issue.
	DefaultMaxRetries = 3
	// DefaultUnit is the base time unit for courtesy waits and backoff.
	DefaultUnit = time.Second

	maxBodyBytes = 8 << 20
)

// API status codes carried in every payload.
const (
	CodeOK            = 0
	CodeDatabaseError = 1
)

// Payload is a decoded response whose status code was 0.
type Payload struct {
	Code int
	Raw  json.RawMessage
}

// Sleeper suspends for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the production Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Backoff returns the wait after a failed attempt: unit * 2^attempt,
// with attempt counted from zero.
func Backoff(unit time.Duration, attempt int) time.Duration {
	return unit * time.Duration(1<<uint(attempt))
}

// Fetcher issues GET requests against the upstream API, retrying transport
// failures and transient API errors with exponential backoff. Every failed
// attempt is reported through the Alerter.
type Fetcher struct {
	Client     *http.Client
	Alerter    notifier.Alerter
	Recorder   recorder.Recorder
	Logger     *slog.Logger
	MaxRetries int
	Unit       time.Duration
	Sleep      Sleeper
}

// NewFetcher creates a Fetcher with the default retry policy.
func NewFetcher(client *http.Client, alerter notifier.Alerter, rec recorder.Recorder, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Fetcher{
		Client:     client,
		Alerter:    alerter,
		Recorder:   rec,
		Logger:     logger,
		MaxRetries: DefaultMaxRetries,
		Unit:       DefaultUnit,
		Sleep:      SleepContext,
	}
}

// Fetch returns the first payload with status code 0. A terminal API error
// ends the fetch at once and archives the raw payload; transport failures and
// code 1 are retried up to MaxRetries. Any error means no data is available.
func (f *Fetcher) Fetch(ctx context.Context, endpoint string, headers http.Header) (*Payload, error) {
	var lastErr error
	for attempt := 0; attempt < f.MaxRetries; attempt++ {
		if err := f.Sleep(ctx, f.Unit); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
		}

		payload, err := f.do(ctx, endpoint, headers)
		if err == nil {
			metrics.FetchAttempts.WithLabelValues(endpoint, "ok").Inc()
			return payload, nil
		}
		lastErr = err

		var fe *FetchError
		if !errors.As(err, &fe) {
			return nil, err
		}
		metrics.FetchAttempts.WithLabelValues(endpoint, string(fe.Kind)).Inc()
		f.Logger.Warn("api request failed",
			"endpoint", endpoint, "attempt", attempt+1, "kind", fe.Kind, "status", fe.Status, "detail", fe.Detail)

		switch fe.Kind {
		case KindTerminalAPI:
			f.Alerter.Alert(ctx, notifier.FormatUnexpectedAPIError(fe.Detail))
			if rerr := f.Recorder.RecordRawPayload(ctx, endpoint, fe.Raw); rerr != nil {
				f.Logger.Error("archive raw payload", "endpoint", endpoint, "error", rerr)
			}
			return nil, err
		case KindTransientAPI:
			f.Alerter.Alert(ctx, notifier.FormatDatabaseError(fe.Detail))
		default:
			f.Alerter.Alert(ctx, notifier.FormatFetchFailure(fe.Detail))
		}

		if err := f.Sleep(ctx, Backoff(f.Unit, attempt)); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
		}
	}
	return nil, &FetchError{
		Kind:     KindExhausted,
		Endpoint: endpoint,
		Detail:   fmt.Sprintf("gave up after %d attempts", f.MaxRetries),
		Cause:    lastErr,
	}
}

// do performs a single request and classifies its outcome.
func (f *Fetcher) do(ctx context.Context, endpoint string, headers http.Header) (*Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, Endpoint: endpoint, Detail: err.Error(), Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, Endpoint: endpoint, Status: resp.StatusCode,
			Detail: "read body: " + err.Error(), Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{Kind: KindTransport, Endpoint: endpoint, Status: resp.StatusCode,
			Detail: string(body), Raw: body}
	}

	var envelope struct {
		Code *json.Number `json:"code"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &FetchError{Kind: KindTransport, Endpoint: endpoint, Status: resp.StatusCode,
			Detail: "decode response: " + err.Error(), Raw: body, Cause: err}
	}

	code, ok := statusCode(envelope.Code)
	switch {
	case !ok:
		return nil, &FetchError{Kind: KindTerminalAPI, Endpoint: endpoint, Status: resp.StatusCode,
			Code: -1, Detail: string(body), Raw: body}
	case code == CodeOK:
		return &Payload{Code: CodeOK, Raw: body}, nil
	case code == CodeDatabaseError:
		return nil, &FetchError{Kind: KindTransientAPI, Endpoint: endpoint, Status: resp.StatusCode,
			Code: CodeDatabaseError, Detail: string(body), Raw: body}
	default:
		return nil, &FetchError{Kind: KindTerminalAPI, Endpoint: endpoint, Status: resp.StatusCode,
			Code: code, Detail: string(body), Raw: body}
	}
}

// statusCode compares the payload code numerically, so 0, 0.0 and 0e0 are
// the same code. A missing or non-integral code is not a valid status.
func statusCode(n *json.Number) (int, bool) {
	if n == nil {
		return 0, false
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil || !d.IsInteger() {
		return 0, false
	}
	return int(d.IntPart()), true
}
