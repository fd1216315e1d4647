package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/glitchx7/clore-monitor/internal/model"
)

// TotalBalance sums the balance of every wallet, across currencies.
func TotalBalance(wallets []model.Wallet) decimal.Decimal {
	total := decimal.Zero
	for _, w := range wallets {
		total = total.Add(w.Balance)
	}
	return total
}
