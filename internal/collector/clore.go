package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/glitchx7/clore-monitor/internal/model"
)

const (
	ordersPath  = "/v1/my_orders"
	walletsPath = "/v1/wallets"
)

// CloreClient reads orders and wallets from the Clore.ai API.
type CloreClient struct {
	BaseURL string
	Token   string
	Fetcher *Fetcher
	Logger  *slog.Logger
}

func NewCloreClient(baseURL, token string, fetcher *Fetcher, logger *slog.Logger) *CloreClient {
	return &CloreClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Fetcher: fetcher,
		Logger:  logger,
	}
}

// NewHTTPClient builds the API client with optional proxy support.
func NewHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

func (c *CloreClient) Name() string { return "clore" }

func (c *CloreClient) headers() http.Header {
	h := http.Header{}
	h.Set("auth", c.Token)
	return h
}

// Orders fetches the account's active orders.
func (c *CloreClient) Orders(ctx context.Context) ([]model.Order, error) {
	endpoint := c.BaseURL + ordersPath
	payload, err := c.Fetcher.Fetch(ctx, endpoint, c.headers())
	if err != nil {
		return nil, err
	}
	return decodeOrders(endpoint, payload.Raw, c.Logger)
}

// Wallets fetches the account's wallet balances.
func (c *CloreClient) Wallets(ctx context.Context) ([]model.Wallet, error) {
	endpoint := c.BaseURL + walletsPath
	payload, err := c.Fetcher.Fetch(ctx, endpoint, c.headers())
	if err != nil {
		return nil, err
	}
	return decodeWallets(endpoint, payload.Raw, c.Logger)
}

// collection extracts the list stored under key, failing if it is absent or not a list.
func collection(endpoint string, raw []byte, key string) ([]json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, malformed(endpoint, string(raw))
	}
	list, ok := envelope[key]
	if !ok || bytes.Equal(bytes.TrimSpace(list), []byte("null")) {
		return nil, malformed(endpoint, string(raw))
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(list, &entries); err != nil {
		return nil, malformed(endpoint, string(raw))
	}
	return entries, nil
}

type orderRecord struct {
	ID         json.RawMessage `json:"id"`
	Price      json.RawMessage `json:"price"`
	PubCluster json.RawMessage `json:"pub_cluster"`
	TCPPorts   json.RawMessage `json:"tcp_ports"`
}

func decodeOrders(endpoint string, raw []byte, logger *slog.Logger) ([]model.Order, error) {
	entries, err := collection(endpoint, raw, "orders")
	if err != nil {
		return nil, err
	}

	orders := make([]model.Order, 0, len(entries))
	for i, entry := range entries {
		var rec orderRecord
		if err := json.Unmarshal(entry, &rec); err != nil {
			logger.Warn("skipping malformed order entry", "index", i, "error", err)
			continue
		}
		o := model.Order{ID: parseID(rec.ID)}

		price, ok := parseAmount(rec.Price)
		if !ok {
			logger.Warn("unparsable order price, counting as zero", "order_id", o.ID, "price", string(rec.Price))
		}
		o.Price = price

		if len(rec.PubCluster) > 0 {
			if err := json.Unmarshal(rec.PubCluster, &o.ExposedHosts); err != nil {
				logger.Warn("unparsable pub_cluster", "order_id", o.ID, "error", err)
				o.ExposedHosts = nil
			}
		}

		var ports []string
		if len(rec.TCPPorts) > 0 {
			if err := json.Unmarshal(rec.TCPPorts, &ports); err != nil {
				logger.Warn("unparsable tcp_ports", "order_id", o.ID, "error", err)
			}
		}
		for _, p := range ports {
			pm, err := ParsePortMapping(p)
			if err != nil {
				logger.Warn("skipping port mapping", "order_id", o.ID, "mapping", p, "error", err)
				continue
			}
			o.PortMappings = append(o.PortMappings, pm)
		}

		orders = append(orders, o)
	}
	return orders, nil
}

type walletRecord struct {
	Name    string          `json:"name"`
	Balance json.RawMessage `json:"balance"`
}

func decodeWallets(endpoint string, raw []byte, logger *slog.Logger) ([]model.Wallet, error) {
	entries, err := collection(endpoint, raw, "wallets")
	if err != nil {
		return nil, err
	}

	wallets := make([]model.Wallet, 0, len(entries))
	for i, entry := range entries {
		var rec walletRecord
		if err := json.Unmarshal(entry, &rec); err != nil {
			logger.Warn("skipping malformed wallet entry", "index", i, "error", err)
			continue
		}
		balance, ok := parseAmount(rec.Balance)
		if !ok {
			logger.Warn("unparsable wallet balance, counting as zero", "wallet", rec.Name, "balance", string(rec.Balance))
		}
		wallets = append(wallets, model.Wallet{Name: rec.Name, Balance: balance})
	}
	return wallets, nil
}

// parseAmount reads a JSON number or numeric string. Absent and null values
// are zero; anything unparsable is zero with ok=false.
func parseAmount(raw json.RawMessage) (decimal.Decimal, bool) {
	if len(raw) == 0 {
		return decimal.Zero, true
	}
	var d decimal.NullDecimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, false
	}
	if !d.Valid {
		return decimal.Zero, true
	}
	return d.Decimal, true
}

func parseID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	id := strings.TrimSpace(string(raw))
	if id == "null" {
		return ""
	}
	return id
}

// ParsePortMapping parses "internal:external", e.g. "22:40022".
func ParsePortMapping(s string) (model.PortMapping, error) {
	internal, external, ok := strings.Cut(s, ":")
	if !ok {
		return model.PortMapping{}, &strconv.NumError{Func: "ParsePortMapping", Num: s, Err: strconv.ErrSyntax}
	}
	in, err := strconv.Atoi(strings.TrimSpace(internal))
	if err != nil {
		return model.PortMapping{}, err
	}
	out, err := strconv.Atoi(strings.TrimSpace(external))
	if err != nil {
		return model.PortMapping{}, err
	}
	return model.PortMapping{Internal: in, External: out}, nil
}
