package model

import "github.com/shopspring/decimal"

// Wallet is a single account balance record.
type Wallet struct {
	Name    string
	Balance decimal.Decimal
}
