package handler

import (
	"net/http"

	model "card-market/internal/models"
	"card-market/services/market/helpers"
	"card-market/utils"

	"github.com/gin-gonic/gin"
)

type MarketHandler struct {
	service MarketplaceServiceInterface
}

func NewMarketHandler(service MarketplaceServiceInterface) *MarketHandler {
	return &MarketHandler{service: service}
}

// ListCardHandler handles POST /cards/:card_id/listing
func (h *MarketHandler) ListCardHandler(c *gin.Context) {
	sellerID, ok := requireUser(c, "ListCardHandler")
	if !ok {
		return
	}

	cardID := c.Param("card_id")
	var req helpers.ListCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "ListCardHandler", err)
		return
	}

	card, err := h.service.List(c.Request.Context(), cardID, sellerID, req.Price)
	if err != nil {
		helpers.RespondError(c, "ListCardHandler", "list", err, map[string]any{
			"card_id":   cardID,
			"seller_id": sellerID,
			"price":     req.Price.String(),
		})
		return
	}

	helpers.RespondSuccess(c, "ListCardHandler", "list", http.StatusCreated, card,
		"card listed successfully", map[string]any{
			"card_id":   cardID,
			"seller_id": sellerID,
			"price":     card.Price.String(),
		})
}

// CancelListingHandler handles DELETE /cards/:card_id/listing
func (h *MarketHandler) CancelListingHandler(c *gin.Context) {
	sellerID, ok := requireUser(c, "CancelListingHandler")
	if !ok {
		return
	}

	cardID := c.Param("card_id")
	card, err := h.service.CancelListing(c.Request.Context(), cardID, sellerID)
	if err != nil {
		helpers.RespondError(c, "CancelListingHandler", "cancel_listing", err, map[string]any{
			"card_id":   cardID,
			"seller_id": sellerID,
		})
		return
	}

	helpers.RespondSuccess(c, "CancelListingHandler", "cancel_listing", http.StatusOK, card,
		"listing cancelled successfully", map[string]any{"card_id": cardID, "seller_id": sellerID})
}

// BuyCardHandler handles POST /cards/:card_id/purchase
func (h *MarketHandler) BuyCardHandler(c *gin.Context) {
	buyerID, ok := requireUser(c, "BuyCardHandler")
	if !ok {
		return
	}

	cardID := c.Param("card_id")
	purchase, err := h.service.Buy(c.Request.Context(), cardID, buyerID)
	if err != nil {
		helpers.RespondError(c, "BuyCardHandler", "buy", err, map[string]any{
			"card_id":  cardID,
			"buyer_id": buyerID,
		})
		return
	}

	helpers.RespondSuccess(c, "BuyCardHandler", "buy", http.StatusCreated, purchase,
		"card purchased successfully", map[string]any{
			"card_id":  cardID,
			"buyer_id": buyerID,
			"price":    purchase.Price.String(),
			"fee":      purchase.Fee.String(),
		})
}

// GetListingsHandler handles GET /listings
func (h *MarketHandler) GetListingsHandler(c *gin.Context) {
	cards, err := h.service.Listings(c.Request.Context())
	if err != nil {
		helpers.RespondError(c, "GetListingsHandler", "listings", err, nil)
		return
	}

	if cards == nil {
		cards = []model.Card{}
	}

	utils.JSONResponse(c, http.StatusOK, cards, "listings retrieved successfully")
	helpers.LogSuccess("GetListingsHandler", "listings retrieved successfully", map[string]any{"count": len(cards)})
}

// GetCardHandler handles GET /cards/:card_id
func (h *MarketHandler) GetCardHandler(c *gin.Context) {
	cardID := c.Param("card_id")
	card, err := h.service.Card(c.Request.Context(), cardID)
	if err != nil {
		helpers.RespondError(c, "GetCardHandler", "card", err, map[string]any{"card_id": cardID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, card, "card retrieved successfully")
}

// GetCardsByOwnerHandler handles GET /users/:user_id/cards
func (h *MarketHandler) GetCardsByOwnerHandler(c *gin.Context) {
	ownerID := c.Param("user_id")
	cards, err := h.service.CardsByOwner(c.Request.Context(), ownerID)
	if err != nil {
		helpers.RespondError(c, "GetCardsByOwnerHandler", "cards_by_owner", err, map[string]any{"user_id": ownerID})
		return
	}

	if cards == nil {
		cards = []model.Card{}
	}

	utils.JSONResponse(c, http.StatusOK, cards, "cards retrieved successfully")
	helpers.LogSuccess("GetCardsByOwnerHandler", "cards retrieved successfully", map[string]any{
		"user_id":     ownerID,
		"cards_count": len(cards),
	})
}
