package marketerrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Repository-level errors
var (
	ErrNotFound        = errors.New("not found")
	ErrWalletNotFound  = fmt.Errorf("wallet %w", ErrNotFound)
	ErrCardNotFound    = fmt.Errorf("card %w", ErrNotFound)
	ErrAuctionNotFound = fmt.Errorf("auction %w", ErrNotFound)
	ErrNoBids          = errors.New("no bids found for auction")
	ErrWalletExists    = errors.New("wallet already exists")
	ErrCardExists      = errors.New("card already minted")
)

// ledger errors
var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidState      = errors.New("locked balance too small")
)

// ownership and marketplace errors
var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrNotOwner          = errors.New("not the owner")
	ErrAlreadyListed     = errors.New("card already listed")
	ErrNotForSale        = errors.New("card not for sale")
	ErrNotListed         = errors.New("card not listed")
	ErrInAuction         = errors.New("card is in a live auction")
	ErrOwnershipMismatch = errors.New("ownership mismatch")
	ErrSelfTrade         = errors.New("cannot buy your own card")
)

// auction errors
var (
	ErrSelfBid        = errors.New("cannot bid on your own auction")
	ErrBidTooLow      = errors.New("bid amount too low")
	ErrNotLive        = errors.New("auction is not live")
	ErrExpired        = errors.New("auction has expired")
	ErrNotEnded       = errors.New("auction has not ended yet")
	ErrAlreadySettled = errors.New("auction already settled")
	ErrHasBids        = errors.New("auction has bids")
	ErrNoBuyNowPrice  = errors.New("auction has no buy-now price")
)

// ErrInvariantViolation aborts a unit whose stored state breaks a money invariant.
// It is never reconciled automatically.
var ErrInvariantViolation = errors.New("internal invariant violation")

// BidTooLowError carries the smallest bid the auction would accept.
type BidTooLowError struct {
	Minimum decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("%s - minimum bid is %s", ErrBidTooLow, e.Minimum.String())
}

func (e *BidTooLowError) Unwrap() error {
	return ErrBidTooLow
}
