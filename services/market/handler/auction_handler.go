package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"card-market/internal/auction"
	"card-market/internal/marketerrors"
	model "card-market/internal/models"
	"card-market/services/market/helpers"
	"card-market/utils"

	"github.com/gin-gonic/gin"
)

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// CreateAuctionHandler handles POST /auctions
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	sellerID, ok := requireUser(c, "CreateAuctionHandler")
	if !ok {
		return
	}

	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	// checked before the conversion so a huge value cannot wrap around
	if maxSeconds := int64(auction.MaxDuration / time.Second); req.DurationSeconds > maxSeconds {
		err := fmt.Errorf("handler: %w - duration_seconds %d above %d", marketerrors.ErrInvalidAmount, req.DurationSeconds, maxSeconds)
		helpers.RespondError(c, "CreateAuctionHandler", "create_auction", err, map[string]any{
			"card_id":   req.CardID,
			"seller_id": sellerID,
		})
		return
	}

	a, err := h.service.Create(c.Request.Context(), auction.CreateAuctionInput{
		CardID:       req.CardID,
		SellerID:     sellerID,
		StartPrice:   req.StartPrice,
		BuyNowPrice:  req.BuyNowPrice,
		ReservePrice: req.ReservePrice,
		Duration:     time.Duration(req.DurationSeconds) * time.Second,
	})
	if err != nil {
		helpers.RespondError(c, "CreateAuctionHandler", "create_auction", err, map[string]any{
			"card_id":   req.CardID,
			"seller_id": sellerID,
		})
		return
	}

	helpers.RespondSuccess(c, "CreateAuctionHandler", "create_auction", http.StatusCreated,
		helpers.NewAuctionResponse(a), "auction created successfully", map[string]any{
			"auction_id": a.AuctionID,
			"card_id":    a.CardID,
			"seller_id":  sellerID,
			"ends_at":    a.EndsAt,
		})
}

// CancelAuctionHandler handles DELETE /auctions/:auction_id
func (h *AuctionHandler) CancelAuctionHandler(c *gin.Context) {
	sellerID, ok := requireUser(c, "CancelAuctionHandler")
	if !ok {
		return
	}

	auctionID := c.Param("auction_id")
	a, err := h.service.Cancel(c.Request.Context(), auctionID, sellerID)
	if err != nil {
		helpers.RespondError(c, "CancelAuctionHandler", "cancel_auction", err, map[string]any{
			"auction_id": auctionID,
			"seller_id":  sellerID,
		})
		return
	}

	helpers.RespondSuccess(c, "CancelAuctionHandler", "cancel_auction", http.StatusOK,
		helpers.NewAuctionResponse(a), "auction cancelled successfully", map[string]any{"auction_id": auctionID})
}

// PlaceBidHandler handles POST /auctions/:auction_id/bids
func (h *AuctionHandler) PlaceBidHandler(c *gin.Context) {
	bidderID, ok := requireUser(c, "PlaceBidHandler")
	if !ok {
		return
	}

	auctionID := c.Param("auction_id")
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	bid, err := h.service.PlaceBid(c.Request.Context(), auctionID, bidderID, req.Amount)
	if err != nil {
		helpers.RespondError(c, "PlaceBidHandler", "place_bid", err, map[string]any{
			"auction_id": auctionID,
			"bidder_id":  bidderID,
			"amount":     req.Amount.String(),
		})
		return
	}

	helpers.RespondSuccess(c, "PlaceBidHandler", "place_bid", http.StatusCreated,
		helpers.NewBidResponse(bid), "bid recorded successfully", map[string]any{
			"bid_id":     bid.BidID,
			"auction_id": auctionID,
			"bidder_id":  bidderID,
			"amount":     bid.Amount.String(),
		})
}

// BuyNowHandler handles POST /auctions/:auction_id/buy-now
func (h *AuctionHandler) BuyNowHandler(c *gin.Context) {
	buyerID, ok := requireUser(c, "BuyNowHandler")
	if !ok {
		return
	}

	auctionID := c.Param("auction_id")
	outcome, err := h.service.BuyNow(c.Request.Context(), auctionID, buyerID)
	if err != nil {
		helpers.RespondError(c, "BuyNowHandler", "buy_now", err, map[string]any{
			"auction_id": auctionID,
			"buyer_id":   buyerID,
		})
		return
	}

	helpers.RespondSuccess(c, "BuyNowHandler", "buy_now", http.StatusCreated, outcome,
		"auction bought successfully", map[string]any{
			"auction_id": auctionID,
			"buyer_id":   buyerID,
			"price":      outcome.Price.String(),
		})
}

// SettleAuctionHandler handles POST /auctions/:auction_id/settle
func (h *AuctionHandler) SettleAuctionHandler(c *gin.Context) {
	if _, ok := requireUser(c, "SettleAuctionHandler"); !ok {
		return
	}

	auctionID := c.Param("auction_id")
	outcome, err := h.service.Settle(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "SettleAuctionHandler", "settle", err, map[string]any{"auction_id": auctionID})
		return
	}

	helpers.RespondSuccess(c, "SettleAuctionHandler", "settle", http.StatusOK, outcome,
		"auction settled successfully", map[string]any{
			"auction_id": auctionID,
			"sold":       outcome.Sold,
			"winner_id":  outcome.WinnerID,
			"price":      outcome.Price.String(),
		})
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	a, err := h.service.Get(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "GetAuctionHandler", "auction", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewAuctionResponse(a), "auction retrieved successfully")
}

// GetActiveAuctionsHandler handles GET /auctions
func (h *AuctionHandler) GetActiveAuctionsHandler(c *gin.Context) {
	auctions, err := h.service.ActiveAuctions(c.Request.Context())
	if err != nil {
		helpers.RespondError(c, "GetActiveAuctionsHandler", "active_auctions", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewAuctionResponses(auctions), "auctions retrieved successfully")
	helpers.LogSuccess("GetActiveAuctionsHandler", "auctions retrieved successfully", map[string]any{"count": len(auctions)})
}

// GetBidsHandler handles GET /auctions/:auction_id/bids
func (h *AuctionHandler) GetBidsHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bids, err := h.service.Bids(c.Request.Context(), auctionID)
	if err != nil && !errors.Is(err, marketerrors.ErrNoBids) {
		helpers.RespondError(c, "GetBidsHandler", "bids", err, map[string]any{"auction_id": auctionID})
		return
	}

	if bids == nil {
		bids = []model.Bid{}
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponses(bids), "bids retrieved successfully")
	helpers.LogSuccess("GetBidsHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(bids),
	})
}

// GetWinningBidHandler handles GET /auctions/:auction_id/winning
func (h *AuctionHandler) GetWinningBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bid, err := h.service.WinningBid(c.Request.Context(), auctionID)
	if err != nil {
		if errors.Is(err, marketerrors.ErrNoBids) {
			utils.JSONError(c, http.StatusNotFound, err, "no winning bid found")
			utils.Info("GetWinningBidHandler: no winning bid found", map[string]any{"auction_id": auctionID})
			return
		}
		helpers.RespondError(c, "GetWinningBidHandler", "winning_bid", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "winning bid retrieved successfully")
	helpers.LogSuccess("GetWinningBidHandler", "winning bid retrieved successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": auctionID,
		"bidder_id":  bid.BidderID,
		"amount":     bid.Amount.String(),
	})
}
