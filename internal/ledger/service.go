package ledger

import (
	"context"
	"fmt"
	"time"

	"card-market/internal/marketerrors"
	model "card-market/internal/models"
	"card-market/internal/repository"

	"github.com/shopspring/decimal"
)

// Service is the user-facing wallet surface: opening wallets, deposits and history
type Service struct {
	store repository.Store
	now   func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source used for Transaction rows
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new wallet Service instance
func NewService(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenWallet creates an empty wallet for the user
func (s *Service) OpenWallet(ctx context.Context, userID string) (Balance, error) {
	if userID == "" {
		return Balance{}, fmt.Errorf("service: %w - empty user ID", marketerrors.ErrInvalidRequest)
	}

	w := model.Wallet{UserID: userID, Balance: decimal.Zero, LockedBalance: decimal.Zero}
	if err := s.store.CreateWallet(ctx, w); err != nil {
		return Balance{}, fmt.Errorf("service: failed to open wallet for user %s: %w", userID, err)
	}
	return BalanceOf(w), nil
}

// Deposit credits already-settled external funds to the user's wallet
func (s *Service) Deposit(ctx context.Context, userID string, amount decimal.Decimal) (Balance, error) {
	if userID == "" {
		return Balance{}, fmt.Errorf("service: %w - empty user ID", marketerrors.ErrInvalidRequest)
	}

	var out Balance
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		w, err := New(tx, tx, s.now).Credit(ctx, userID, amount, Entry{
			Type:        model.TxDeposit,
			Description: fmt.Sprintf("Deposit of %s", amount.StringFixed(2)),
		})
		if err != nil {
			return err
		}
		out = BalanceOf(w)
		return nil
	})
	if err != nil {
		return Balance{}, fmt.Errorf("service: failed to deposit for user %s: %w", userID, err)
	}
	return out, nil
}

// Balance returns the user's current balance
func (s *Service) Balance(ctx context.Context, userID string) (Balance, error) {
	if userID == "" {
		return Balance{}, fmt.Errorf("service: %w - empty user ID", marketerrors.ErrInvalidRequest)
	}
	return New(s.store, s.store, s.now).GetBalance(ctx, userID)
}

// Transactions returns the user's history, newest first
func (s *Service) Transactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", marketerrors.ErrInvalidRequest)
	}
	if _, err := s.store.GetWallet(ctx, userID); err != nil {
		return nil, fmt.Errorf("service: failed to get transactions for user %s: %w", userID, err)
	}

	txs, err := s.store.ListTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get transactions for user %s: %w", userID, err)
	}
	return txs, nil
}
