package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glitchx7/clore-monitor/internal/logger"
	"github.com/glitchx7/clore-monitor/internal/model"
	"github.com/glitchx7/clore-monitor/internal/notifier"
)

func TestParsePortMapping(t *testing.T) {
	pm, err := ParsePortMapping("22:40022")
	require.NoError(t, err)
	assert.Equal(t, model.PortMapping{Internal: 22, External: 40022}, pm)

	pm, err = ParsePortMapping(" 8888 : 1234 ")
	require.NoError(t, err)
	assert.Equal(t, model.PortMapping{Internal: 8888, External: 1234}, pm)

	for _, bad := range []string{"", "22", "ssh:40022", "22:", "22:x"} {
		_, err := ParsePortMapping(bad)
		assert.Error(t, err, bad)
	}
}

func TestDecodeOrders(t *testing.T) {
	raw := []byte(`{"code":0,"orders":[
		{"id":101,"price":"0.25","pub_cluster":["n1.clore.ai","n2.clore.ai"],"tcp_ports":["22:40022","8888:40023","bogus"]},
		{"id":"102","price":1.5},
		{"id":103,"price":"n/a","pub_cluster":"not-a-list"},
		"garbage",
		{"id":104}
	]}`)

	orders, err := decodeOrders("e", raw, logger.Discard())
	require.NoError(t, err)
	require.Len(t, orders, 4)

	assert.Equal(t, "101", orders[0].ID)
	assert.True(t, decimal.RequireFromString("0.25").Equal(orders[0].Price))
	assert.Equal(t, []string{"n1.clore.ai", "n2.clore.ai"}, orders[0].ExposedHosts)
	assert.Equal(t, []model.PortMapping{{Internal: 22, External: 40022}, {Internal: 8888, External: 40023}}, orders[0].PortMappings)
	assert.Equal(t, []int{40022}, orders[0].SSHPorts())

	assert.Equal(t, "102", orders[1].ID)
	assert.True(t, decimal.RequireFromString("1.5").Equal(orders[1].Price))
	assert.Empty(t, orders[1].PortMappings)

	assert.Equal(t, "103", orders[2].ID)
	assert.True(t, orders[2].Price.IsZero())
	assert.Nil(t, orders[2].ExposedHosts)

	assert.Equal(t, "104", orders[3].ID)
	assert.True(t, orders[3].Price.IsZero())
}

func TestDecodeOrders_Malformed(t *testing.T) {
	for name, raw := range map[string]string{
		"missing key": `{"code":0}`,
		"null":        `{"code":0,"orders":null}`,
		"not a list":  `{"code":0,"orders":{"id":1}}`,
		"not object":  `[1,2,3]`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := decodeOrders("e", []byte(raw), logger.Discard())
			assert.True(t, IsKind(err, KindMalformed))
		})
	}
}

func TestDecodeWallets(t *testing.T) {
	raw := []byte(`{"code":0,"wallets":[
		{"name":"bitcoin","balance":0.1},
		{"name":"CLORE-Blockchain","balance":"12.000000001"},
		{"name":"empty"},
		{"name":"broken","balance":"abc"}
	]}`)
	wallets, err := decodeWallets("e", raw, logger.Discard())
	require.NoError(t, err)
	require.Len(t, wallets, 4)
	assert.True(t, decimal.RequireFromString("0.1").Equal(wallets[0].Balance))
	assert.True(t, decimal.RequireFromString("12.000000001").Equal(wallets[1].Balance))
	assert.True(t, wallets[2].Balance.IsZero())
	assert.True(t, wallets[3].Balance.IsZero())

	_, err = decodeWallets("e", []byte(`{"code":0}`), logger.Discard())
	assert.True(t, IsKind(err, KindMalformed))
}

func TestCloreClient_Endpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/my_orders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("auth"))
		_, _ = w.Write([]byte(`{"code":0,"orders":[{"id":1,"price":2}]}`))
	})
	mux.HandleFunc("/v1/wallets", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"code":0,"wallets":[{"name":"bitcoin","balance":"0.5"}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewFetcher(NewHTTPClient("", 5*time.Second), &notifier.Capture{}, nil, logger.Discard())
	f.Sleep = func(context.Context, time.Duration) error { return nil }
	c := NewCloreClient(srv.URL+"/", "secret", f, logger.Discard())

	orders, err := c.Orders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "1", orders[0].ID)

	wallets, err := c.Wallets(context.Background())
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	assert.Equal(t, "bitcoin", wallets[0].Name)
}

func TestCloreClient_FetchErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"code":3}`))
	}))
	defer srv.Close()

	f := NewFetcher(nil, &notifier.Capture{}, nil, logger.Discard())
	f.Sleep = func(context.Context, time.Duration) error { return nil }
	c := NewCloreClient(srv.URL, "t", f, logger.Discard())

	_, err := c.Wallets(context.Background())
	assert.True(t, IsKind(err, KindTerminalAPI))
}
