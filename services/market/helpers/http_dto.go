package helpers

import (
	"time"

	model "card-market/internal/models"

	"github.com/shopspring/decimal"
)

// Request DTOs. Amounts are validated by the services, which own the money rules.
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type ListCardRequest struct {
	Price decimal.Decimal `json:"price"`
}

type CreateAuctionRequest struct {
	CardID          string           `json:"card_id" binding:"required"`
	StartPrice      decimal.Decimal  `json:"start_price"`
	BuyNowPrice     *decimal.Decimal `json:"buy_now_price,omitempty"`
	ReservePrice    *decimal.Decimal `json:"reserve_price,omitempty"`
	DurationSeconds int64            `json:"duration_seconds" binding:"required,gt=0"`
}

type PlaceBidRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Response DTOs
type BidResponse struct {
	BidID     string          `json:"bid_id"`
	AuctionID string          `json:"auction_id"`
	BidderID  string          `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt string          `json:"created_at"`
}

type AuctionResponse struct {
	AuctionID    string           `json:"auction_id"`
	CardID       string           `json:"card_id"`
	SellerID     string           `json:"seller_id"`
	Status       string           `json:"status"`
	StartPrice   decimal.Decimal  `json:"start_price"`
	ReservePrice decimal.Decimal  `json:"reserve_price"`
	BuyNowPrice  *decimal.Decimal `json:"buy_now_price,omitempty"`
	MinIncrement decimal.Decimal  `json:"min_increment"`
	StartsAt     string           `json:"starts_at"`
	EndsAt       string           `json:"ends_at"`
}

func NewBidResponse(b model.Bid) BidResponse {
	return BidResponse{
		BidID:     b.BidID,
		AuctionID: b.AuctionID,
		BidderID:  b.BidderID,
		Amount:    b.Amount,
		CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func NewBidResponses(bids []model.Bid) []BidResponse {
	resp := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		resp = append(resp, NewBidResponse(b))
	}
	return resp
}

func NewAuctionResponse(a model.Auction) AuctionResponse {
	return AuctionResponse{
		AuctionID:    a.AuctionID,
		CardID:       a.CardID,
		SellerID:     a.SellerID,
		Status:       string(a.Status),
		StartPrice:   a.StartPrice,
		ReservePrice: a.ReservePrice,
		BuyNowPrice:  a.BuyNowPrice,
		MinIncrement: a.MinIncrement,
		StartsAt:     a.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:       a.EndsAt.UTC().Format(time.RFC3339),
	}
}

func NewAuctionResponses(auctions []model.Auction) []AuctionResponse {
	resp := make([]AuctionResponse, 0, len(auctions))
	for _, a := range auctions {
		resp = append(resp, NewAuctionResponse(a))
	}
	return resp
}
