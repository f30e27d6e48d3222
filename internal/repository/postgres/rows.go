package postgres

import (
	"time"

	model "card-market/internal/models"

	"github.com/shopspring/decimal"
)

// WalletRow is the persisted form of model.Wallet
type WalletRow struct {
	UserID        string          `gorm:"primaryKey;size:64"`
	Balance       decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	LockedBalance decimal.Decimal `gorm:"type:numeric(20,4);not null"`
}

func (WalletRow) TableName() string { return "wallets" }

type CardRow struct {
	CardID  string          `gorm:"primaryKey;size:64"`
	Name    string          `gorm:"size:255"`
	OwnerID string          `gorm:"size:64;index"`
	ForSale bool            `gorm:"not null;index"`
	Price   decimal.Decimal `gorm:"type:numeric(20,4);not null"`
}

func (CardRow) TableName() string { return "cards" }

type AuctionRow struct {
	AuctionID    string              `gorm:"primaryKey;size:64"`
	CardID       string              `gorm:"size:64;not null;index"`
	SellerID     string              `gorm:"size:64;not null"`
	Status       string              `gorm:"size:16;not null;index"`
	ReservePrice decimal.Decimal     `gorm:"type:numeric(20,4);not null"`
	StartPrice   decimal.Decimal     `gorm:"type:numeric(20,4);not null"`
	BuyNowPrice  decimal.NullDecimal `gorm:"type:numeric(20,4)"`
	MinIncrement decimal.Decimal     `gorm:"type:numeric(20,4);not null"`
	StartsAt     time.Time           `gorm:"not null"`
	EndsAt       time.Time           `gorm:"not null;index"`
}

func (AuctionRow) TableName() string { return "auctions" }

// BidRow keeps insertion order in its serial ID
type BidRow struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	BidID     string          `gorm:"size:64;not null;uniqueIndex"`
	AuctionID string          `gorm:"size:64;not null;index"`
	BidderID  string          `gorm:"size:64;not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	CreatedAt time.Time       `gorm:"not null"`
}

func (BidRow) TableName() string { return "bids" }

type TransactionRow struct {
	ID            uint64          `gorm:"primaryKey;autoIncrement"`
	TransactionID string          `gorm:"size:64;not null;uniqueIndex"`
	UserID        string          `gorm:"size:64;not null;index"`
	Type          string          `gorm:"size:32;not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	Description   string          `gorm:"size:255"`
	Reference     string          `gorm:"size:64"`
	CreatedAt     time.Time       `gorm:"not null"`
}

func (TransactionRow) TableName() string { return "transactions" }

func walletFromModel(w model.Wallet) WalletRow {
	return WalletRow{UserID: w.UserID, Balance: w.Balance, LockedBalance: w.LockedBalance}
}

func (r WalletRow) toModel() model.Wallet {
	return model.Wallet{UserID: r.UserID, Balance: r.Balance, LockedBalance: r.LockedBalance}
}

func cardFromModel(c model.Card) CardRow {
	return CardRow{CardID: c.CardID, Name: c.Name, OwnerID: c.OwnerID, ForSale: c.ForSale, Price: c.Price}
}

func (r CardRow) toModel() model.Card {
	return model.Card{CardID: r.CardID, Name: r.Name, OwnerID: r.OwnerID, ForSale: r.ForSale, Price: r.Price}
}

func auctionFromModel(a model.Auction) AuctionRow {
	row := AuctionRow{
		AuctionID:    a.AuctionID,
		CardID:       a.CardID,
		SellerID:     a.SellerID,
		Status:       string(a.Status),
		ReservePrice: a.ReservePrice,
		StartPrice:   a.StartPrice,
		MinIncrement: a.MinIncrement,
		StartsAt:     a.StartsAt.UTC(),
		EndsAt:       a.EndsAt.UTC(),
	}
	if a.BuyNowPrice != nil {
		row.BuyNowPrice = decimal.NewNullDecimal(*a.BuyNowPrice)
	}
	return row
}

func (r AuctionRow) toModel() model.Auction {
	a := model.Auction{
		AuctionID:    r.AuctionID,
		CardID:       r.CardID,
		SellerID:     r.SellerID,
		Status:       model.AuctionStatus(r.Status),
		ReservePrice: r.ReservePrice,
		StartPrice:   r.StartPrice,
		MinIncrement: r.MinIncrement,
		StartsAt:     r.StartsAt.UTC(),
		EndsAt:       r.EndsAt.UTC(),
	}
	if r.BuyNowPrice.Valid {
		price := r.BuyNowPrice.Decimal
		a.BuyNowPrice = &price
	}
	return a
}

func bidFromModel(b model.Bid) BidRow {
	return BidRow{BidID: b.BidID, AuctionID: b.AuctionID, BidderID: b.BidderID, Amount: b.Amount, CreatedAt: b.CreatedAt.UTC()}
}

func (r BidRow) toModel() model.Bid {
	return model.Bid{BidID: r.BidID, AuctionID: r.AuctionID, BidderID: r.BidderID, Amount: r.Amount, CreatedAt: r.CreatedAt.UTC()}
}

func transactionFromModel(t model.Transaction) TransactionRow {
	return TransactionRow{
		TransactionID: t.TransactionID,
		UserID:        t.UserID,
		Type:          string(t.Type),
		Amount:        t.Amount,
		Description:   t.Description,
		Reference:     t.Reference,
		CreatedAt:     t.CreatedAt.UTC(),
	}
}

func (r TransactionRow) toModel() model.Transaction {
	return model.Transaction{
		TransactionID: r.TransactionID,
		UserID:        r.UserID,
		Type:          model.TransactionType(r.Type),
		Amount:        r.Amount,
		Description:   r.Description,
		Reference:     r.Reference,
		CreatedAt:     r.CreatedAt.UTC(),
	}
}
