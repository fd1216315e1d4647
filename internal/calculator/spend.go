package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/glitchx7/clore-monitor/internal/model"
)

// TotalSpend sums the price of every order. Prices that were absent or
// unparsable were already decoded as zero, so the total is always defined.
func TotalSpend(orders []model.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Price)
	}
	return total
}
