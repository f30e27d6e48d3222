package ledger

import (
	"context"
	"fmt"
	"time"

	"card-market/internal/marketerrors"
	model "card-market/internal/models"
	"card-market/internal/repository"
	"card-market/utils"

	"github.com/shopspring/decimal"
)

// FeeRate is the platform cut on every completed sale
var FeeRate = decimal.RequireFromString("0.08")

// SplitSale divides a sale price into the platform fee and what the seller receives.
// The fee is rounded to the stored scale; fee + sellerReceives == price exactly.
func SplitSale(price decimal.Decimal) (fee, sellerReceives decimal.Decimal) {
	fee = price.Mul(FeeRate).Round(model.AmountScale)
	return fee, price.Sub(fee)
}

// Balance is the public view of a wallet
type Balance struct {
	UserID    string          `json:"user_id"`
	Available decimal.Decimal `json:"available"`
	Locked    decimal.Decimal `json:"locked"`
	Spendable decimal.Decimal `json:"spendable"`
}

// BalanceOf converts a wallet row to its public view
func BalanceOf(w model.Wallet) Balance {
	return Balance{
		UserID:    w.UserID,
		Available: w.Balance,
		Locked:    w.LockedBalance,
		Spendable: w.Spendable(),
	}
}

// Entry describes the Transaction row written for a balance change
type Entry struct {
	Type        model.TransactionType
	Description string
	Reference   string
}

// Ledger applies wallet mutations and writes their Transaction rows.
// It is bound to the stores of one atomic unit.
type Ledger struct {
	wallets repository.WalletStore
	log     repository.TransactionLog
	now     func() time.Time
}

// New creates a Ledger over the given stores
func New(wallets repository.WalletStore, log repository.TransactionLog, now func() time.Time) *Ledger {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Ledger{wallets: wallets, log: log, now: now}
}

// GetBalance returns the wallet's balance and locked amount
func (l *Ledger) GetBalance(ctx context.Context, userID string) (Balance, error) {
	w, err := l.wallets.GetWallet(ctx, userID)
	if err != nil {
		return Balance{}, fmt.Errorf("ledger: get balance for %s: %w", userID, err)
	}
	return BalanceOf(w), nil
}

// Credit adds amount to the user's balance
func (l *Ledger) Credit(ctx context.Context, userID string, amount decimal.Decimal, entry Entry) (model.Wallet, error) {
	return l.apply(ctx, userID, amount, &entry, func(w *model.Wallet) error {
		w.Balance = w.Balance.Add(amount)
		return nil
	})
}

// Debit removes amount from the user's balance. Held funds cannot be debited.
func (l *Ledger) Debit(ctx context.Context, userID string, amount decimal.Decimal, entry Entry) (model.Wallet, error) {
	return l.apply(ctx, userID, amount, &entry, func(w *model.Wallet) error {
		if w.Spendable().LessThan(amount) {
			return fmt.Errorf("%w - spendable balance is %s", marketerrors.ErrInsufficientFunds, w.Spendable().String())
		}
		w.Balance = w.Balance.Sub(amount)
		return nil
	})
}

// Lock moves amount into escrow without changing the balance
func (l *Ledger) Lock(ctx context.Context, userID string, amount decimal.Decimal) (model.Wallet, error) {
	return l.apply(ctx, userID, amount, nil, func(w *model.Wallet) error {
		if w.Spendable().LessThan(amount) {
			return fmt.Errorf("%w - spendable balance is %s", marketerrors.ErrInsufficientFunds, w.Spendable().String())
		}
		w.LockedBalance = w.LockedBalance.Add(amount)
		return nil
	})
}

// Unlock releases amount from escrow
func (l *Ledger) Unlock(ctx context.Context, userID string, amount decimal.Decimal) (model.Wallet, error) {
	return l.apply(ctx, userID, amount, nil, func(w *model.Wallet) error {
		if w.LockedBalance.LessThan(amount) {
			return fmt.Errorf("%w - locked %s, releasing %s", marketerrors.ErrInvalidState, w.LockedBalance.String(), amount.String())
		}
		w.LockedBalance = w.LockedBalance.Sub(amount)
		return nil
	})
}

// SettleLock turns a hold into an executed debit
func (l *Ledger) SettleLock(ctx context.Context, userID string, amount decimal.Decimal, entry Entry) (model.Wallet, error) {
	return l.apply(ctx, userID, amount, &entry, func(w *model.Wallet) error {
		if w.LockedBalance.LessThan(amount) {
			return fmt.Errorf("%w - locked %s, settling %s", marketerrors.ErrInvalidState, w.LockedBalance.String(), amount.String())
		}
		w.LockedBalance = w.LockedBalance.Sub(amount)
		w.Balance = w.Balance.Sub(amount)
		return nil
	})
}

// RecordFee writes the platform's side of a sale. The platform has no wallet.
func (l *Ledger) RecordFee(ctx context.Context, fee decimal.Decimal, entry Entry) error {
	if !fee.IsPositive() {
		return nil
	}
	entry.Type = model.TxPlatformFee
	return l.log.AppendTransactions(ctx, l.row(model.PlatformUserID, fee, entry))
}

// apply loads the wallet, runs mutate, checks the wallet invariants and persists.
// A nil entry means the balance does not change and no row is written.
func (l *Ledger) apply(ctx context.Context, userID string, amount decimal.Decimal, entry *Entry, mutate func(w *model.Wallet) error) (model.Wallet, error) {
	if !amount.IsPositive() || !model.FitsScale(amount) {
		return model.Wallet{}, fmt.Errorf("ledger: %w - got %s", marketerrors.ErrInvalidAmount, amount.String())
	}

	w, err := l.wallets.GetWallet(ctx, userID)
	if err != nil {
		return model.Wallet{}, fmt.Errorf("ledger: load wallet %s: %w", userID, err)
	}
	before := w.Balance

	if err := mutate(&w); err != nil {
		return model.Wallet{}, fmt.Errorf("ledger: wallet %s: %w", userID, err)
	}
	if err := CheckWallet(w); err != nil {
		utils.Error("ledger: wallet invariant broken", map[string]any{"user_id": userID, "error": err.Error()})
		return model.Wallet{}, err
	}

	if err := l.wallets.UpdateWallet(ctx, w); err != nil {
		return model.Wallet{}, fmt.Errorf("ledger: save wallet %s: %w", userID, err)
	}

	if entry != nil {
		delta := w.Balance.Sub(before)
		if err := l.log.AppendTransactions(ctx, l.row(userID, delta, *entry)); err != nil {
			return model.Wallet{}, fmt.Errorf("ledger: append transaction for %s: %w", userID, err)
		}
	}
	return w, nil
}

func (l *Ledger) row(userID string, amount decimal.Decimal, entry Entry) model.Transaction {
	return model.Transaction{
		TransactionID: utils.GenerateID(),
		UserID:        userID,
		Type:          entry.Type,
		Amount:        amount,
		Description:   entry.Description,
		Reference:     entry.Reference,
		CreatedAt:     l.now(),
	}
}

// CheckWallet verifies balance >= 0 and locked <= balance
func CheckWallet(w model.Wallet) error {
	switch {
	case w.Balance.IsNegative():
		return fmt.Errorf("%w: wallet %s balance %s is negative", marketerrors.ErrInvariantViolation, w.UserID, w.Balance.String())
	case w.LockedBalance.IsNegative():
		return fmt.Errorf("%w: wallet %s locked balance %s is negative", marketerrors.ErrInvariantViolation, w.UserID, w.LockedBalance.String())
	case w.LockedBalance.GreaterThan(w.Balance):
		return fmt.Errorf("%w: wallet %s locks %s of %s", marketerrors.ErrInvariantViolation, w.UserID, w.LockedBalance.String(), w.Balance.String())
	}
	return nil
}
