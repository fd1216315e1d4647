package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/glitchx7/clore-monitor/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestTotalSpend(t *testing.T) {
	tests := []struct {
		name   string
		orders []model.Order
		want   string
	}{
		{"nil", nil, "0"},
		{"empty", []model.Order{}, "0"},
		{"single", []model.Order{{ID: "1", Price: dec("0.25")}}, "0.25"},
		{"zero price counts as nothing", []model.Order{{Price: dec("1.1")}, {}, {Price: dec("2.2")}}, "3.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TotalSpend(tt.orders)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("TotalSpend = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTotalSpend_NoDrift(t *testing.T) {
	// 0.1 summed 1000 times drifts in float64; it must be exactly 100 here.
	orders := make([]model.Order, 1000)
	for i := range orders {
		orders[i].Price = dec("0.1")
	}
	got := TotalSpend(orders)
	if !got.Equal(dec("100")) {
		t.Fatalf("expected exactly 100, got %s", got)
	}
}

func TestTotalBalance(t *testing.T) {
	wallets := []model.Wallet{
		{Name: "bitcoin", Balance: dec("0.00012345")},
		{Name: "CLORE-Blockchain", Balance: dec("150.5")},
		{Name: "empty"},
	}
	got := TotalBalance(wallets)
	if !got.Equal(dec("150.50012345")) {
		t.Errorf("TotalBalance = %s", got)
	}
	if !TotalBalance(nil).IsZero() {
		t.Error("expected zero for no wallets")
	}
}
