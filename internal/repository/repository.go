package repository

import (
	"context"

	model "card-market/internal/models"
)

//go:generate mockgen -destination=mock_repository.go -package=repository card-market/internal/repository WalletStore,TransactionLog

// WalletStore defines wallet storage. Reads made inside an atomic unit lock the row.
type WalletStore interface {
	GetWallet(ctx context.Context, userID string) (model.Wallet, error)
	CreateWallet(ctx context.Context, wallet model.Wallet) error
	UpdateWallet(ctx context.Context, wallet model.Wallet) error
	// LockWallets takes the row locks for every listed wallet in a stable order
	LockWallets(ctx context.Context, userIDs ...string) error
}

// CardStore defines card ownership storage
type CardStore interface {
	GetCard(ctx context.Context, cardID string) (model.Card, error)
	CreateCard(ctx context.Context, card model.Card) error
	UpdateCard(ctx context.Context, card model.Card) error
	ListCardsForSale(ctx context.Context) ([]model.Card, error)
	ListCardsByOwner(ctx context.Context, ownerID string) ([]model.Card, error)
}

// AuctionStore defines auction storage
type AuctionStore interface {
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	CreateAuction(ctx context.Context, auction model.Auction) error
	UpdateAuctionStatus(ctx context.Context, auctionID string, status model.AuctionStatus) error
	// FindLiveAuctionByCard reports the live auction for a card, if any
	FindLiveAuctionByCard(ctx context.Context, cardID string) (model.Auction, bool, error)
	ListAuctionsByStatus(ctx context.Context, status model.AuctionStatus) ([]model.Auction, error)
}

// BidStore defines the append-only bid history
type BidStore interface {
	RecordBid(ctx context.Context, bid model.Bid) error
	// GetBidsByAuction returns bids oldest first; an auction without bids yields an empty slice
	GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error)
	GetHighestBid(ctx context.Context, auctionID string) (model.Bid, error)
}

// TransactionLog is the append-only record of balance mutations
type TransactionLog interface {
	AppendTransactions(ctx context.Context, txs ...model.Transaction) error
	// ListTransactionsByUser returns the user's rows newest first
	ListTransactionsByUser(ctx context.Context, userID string) ([]model.Transaction, error)
}

// Tx is the set of stores visible inside one atomic unit
type Tx interface {
	WalletStore
	CardStore
	AuctionStore
	BidStore
	TransactionLog
}

// Store exposes non-transactional reads and runs atomic units.
// Atomic commits every write made through tx when fn returns nil and discards them otherwise.
type Store interface {
	Tx
	Atomic(ctx context.Context, fn func(tx Tx) error) error
}
