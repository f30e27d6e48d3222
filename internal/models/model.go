package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlatformUserID owns the fee rows written for every completed sale
const PlatformUserID = "platform"

// AmountScale is the number of decimal places money is stored with
const AmountScale = 4

// FitsScale reports whether d needs no more than AmountScale decimal places
func FitsScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(AmountScale))
}

// User represents a participant in the market
type User struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Wallet holds a user's balance and the part of it escrowed by open bids
type Wallet struct {
	UserID        string          `json:"user_id"`
	Balance       decimal.Decimal `json:"balance"`
	LockedBalance decimal.Decimal `json:"locked_balance"`
}

// Spendable is the amount available for a new lock or debit
func (w Wallet) Spendable() decimal.Decimal {
	return w.Balance.Sub(w.LockedBalance)
}

// Card represents a minted trading card
type Card struct {
	CardID  string          `json:"card_id"`
	Name    string          `json:"name"`
	OwnerID string          `json:"owner_id,omitempty"`
	ForSale bool            `json:"for_sale"`
	Price   decimal.Decimal `json:"price"`
}

// AuctionStatus is the lifecycle state of an auction
type AuctionStatus string

const (
	AuctionDraft     AuctionStatus = "draft"
	AuctionLive      AuctionStatus = "live"
	AuctionEnded     AuctionStatus = "ended"
	AuctionCancelled AuctionStatus = "cancelled"
	AuctionSettled   AuctionStatus = "settled"
)

// CanTransitionTo reports whether moving from s to next keeps the lifecycle forward-only
func (s AuctionStatus) CanTransitionTo(next AuctionStatus) bool {
	switch s {
	case AuctionDraft:
		return next == AuctionLive
	case AuctionLive:
		return next == AuctionEnded || next == AuctionCancelled || next == AuctionSettled
	default:
		return false
	}
}

// Auction represents a timed sale of a single card
type Auction struct {
	AuctionID    string           `json:"auction_id"`
	CardID       string           `json:"card_id"`
	SellerID     string           `json:"seller_id"`
	Status       AuctionStatus    `json:"status"`
	ReservePrice decimal.Decimal  `json:"reserve_price"`
	StartPrice   decimal.Decimal  `json:"start_price"`
	BuyNowPrice  *decimal.Decimal `json:"buy_now_price,omitempty"`
	MinIncrement decimal.Decimal  `json:"min_increment"`
	StartsAt     time.Time        `json:"starts_at"`
	EndsAt       time.Time        `json:"ends_at"`
}

// Bid represents a user's bid on an auction
type Bid struct {
	BidID     string          `json:"bid_id"`
	AuctionID string          `json:"auction_id"`
	BidderID  string          `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// TransactionType classifies a ledger row
type TransactionType string

const (
	TxDeposit         TransactionType = "deposit"
	TxMarketPurchase  TransactionType = "market_purchase"
	TxMarketSale      TransactionType = "market_sale"
	TxAuctionPurchase TransactionType = "auction_purchase"
	TxAuctionSale     TransactionType = "auction_sale"
	TxBuyNowPurchase  TransactionType = "buy_now_purchase"
	TxBuyNowSale      TransactionType = "buy_now_sale"
	TxPlatformFee     TransactionType = "platform_fee"
)

// Transaction is one append-only balance mutation. Amount is signed.
type Transaction struct {
	TransactionID string          `json:"transaction_id"`
	UserID        string          `json:"user_id"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Reference     string          `json:"reference,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
