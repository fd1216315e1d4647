package collector

import (
	"context"

	"github.com/glitchx7/clore-monitor/internal/model"
)

// Source provides fresh order and wallet snapshots. Each call hits the
// upstream again; nothing is cached between calls.
type Source interface {
	Orders(ctx context.Context) ([]model.Order, error)
	Wallets(ctx context.Context) ([]model.Wallet, error)
	Name() string
}

// StaticSource returns fixed data for development and testing.
type StaticSource struct {
	OrderList  []model.Order
	WalletList []model.Wallet
	OrdersErr  error
	WalletsErr error

	OrderCalls  int
	WalletCalls int
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Orders(_ context.Context) ([]model.Order, error) {
	s.OrderCalls++
	if s.OrdersErr != nil {
		return nil, s.OrdersErr
	}
	return s.OrderList, nil
}

func (s *StaticSource) Wallets(_ context.Context) ([]model.Wallet, error) {
	s.WalletCalls++
	if s.WalletsErr != nil {
		return nil, s.WalletsErr
	}
	return s.WalletList, nil
}
