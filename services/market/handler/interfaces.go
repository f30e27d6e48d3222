package handler

import (
	"context"

	"card-market/internal/auction"
	"card-market/internal/ledger"
	"card-market/internal/marketplace"
	model "card-market/internal/models"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -destination=mock_services.go -package=handler card-market/services/market/handler WalletServiceInterface,MarketplaceServiceInterface,AuctionServiceInterface

type WalletServiceInterface interface {
	OpenWallet(ctx context.Context, userID string) (ledger.Balance, error)
	Deposit(ctx context.Context, userID string, amount decimal.Decimal) (ledger.Balance, error)
	Balance(ctx context.Context, userID string) (ledger.Balance, error)
	Transactions(ctx context.Context, userID string) ([]model.Transaction, error)
}

type MarketplaceServiceInterface interface {
	List(ctx context.Context, cardID, sellerID string, price decimal.Decimal) (model.Card, error)
	CancelListing(ctx context.Context, cardID, sellerID string) (model.Card, error)
	Buy(ctx context.Context, cardID, buyerID string) (marketplace.Purchase, error)
	Listings(ctx context.Context) ([]model.Card, error)
	Card(ctx context.Context, cardID string) (model.Card, error)
	CardsByOwner(ctx context.Context, ownerID string) ([]model.Card, error)
}

type AuctionServiceInterface interface {
	Create(ctx context.Context, in auction.CreateAuctionInput) (model.Auction, error)
	Cancel(ctx context.Context, auctionID, sellerID string) (model.Auction, error)
	Get(ctx context.Context, auctionID string) (model.Auction, error)
	ActiveAuctions(ctx context.Context) ([]model.Auction, error)
	Bids(ctx context.Context, auctionID string) ([]model.Bid, error)
	WinningBid(ctx context.Context, auctionID string) (model.Bid, error)
	PlaceBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal) (model.Bid, error)
	BuyNow(ctx context.Context, auctionID, buyerID string) (auction.Outcome, error)
	Settle(ctx context.Context, auctionID string) (auction.Outcome, error)
}
