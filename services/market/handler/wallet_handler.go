package handler

import (
	"errors"
	"net/http"

	model "card-market/internal/models"
	"card-market/services/market/helpers"
	"card-market/utils"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	service WalletServiceInterface
}

func NewWalletHandler(service WalletServiceInterface) *WalletHandler {
	return &WalletHandler{service: service}
}

// OpenWalletHandler handles POST /wallets
func (h *WalletHandler) OpenWalletHandler(c *gin.Context) {
	userID, ok := requireUser(c, "OpenWalletHandler")
	if !ok {
		return
	}

	balance, err := h.service.OpenWallet(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondError(c, "OpenWalletHandler", "open_wallet", err, map[string]any{"user_id": userID})
		return
	}

	helpers.RespondSuccess(c, "OpenWalletHandler", "open_wallet", http.StatusCreated, balance,
		"wallet opened successfully", map[string]any{"user_id": userID})
}

// GetBalanceHandler handles GET /wallets/me
func (h *WalletHandler) GetBalanceHandler(c *gin.Context) {
	userID, ok := requireUser(c, "GetBalanceHandler")
	if !ok {
		return
	}

	balance, err := h.service.Balance(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondError(c, "GetBalanceHandler", "balance", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, balance, "balance retrieved successfully")
}

// DepositHandler handles POST /wallets/me/deposits
func (h *WalletHandler) DepositHandler(c *gin.Context) {
	userID, ok := requireUser(c, "DepositHandler")
	if !ok {
		return
	}

	var req helpers.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "DepositHandler", err)
		return
	}

	balance, err := h.service.Deposit(c.Request.Context(), userID, req.Amount)
	if err != nil {
		helpers.RespondError(c, "DepositHandler", "deposit", err, map[string]any{
			"user_id": userID,
			"amount":  req.Amount.String(),
		})
		return
	}

	helpers.RespondSuccess(c, "DepositHandler", "deposit", http.StatusCreated, balance,
		"deposit recorded successfully", map[string]any{
			"user_id": userID,
			"amount":  req.Amount.String(),
			"balance": balance.Available.String(),
		})
}

// GetTransactionsHandler handles GET /wallets/me/transactions
func (h *WalletHandler) GetTransactionsHandler(c *gin.Context) {
	userID, ok := requireUser(c, "GetTransactionsHandler")
	if !ok {
		return
	}

	txs, err := h.service.Transactions(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondError(c, "GetTransactionsHandler", "transactions", err, map[string]any{"user_id": userID})
		return
	}

	if txs == nil {
		txs = []model.Transaction{}
	}

	utils.JSONResponse(c, http.StatusOK, txs, "transactions retrieved successfully")
	helpers.LogSuccess("GetTransactionsHandler", "transactions retrieved successfully", map[string]any{
		"user_id": userID,
		"count":   len(txs),
	})
}

// requireUser reads the authenticated caller, answering 401 when there is none
func requireUser(c *gin.Context, handlerName string) (string, bool) {
	userID, ok := helpers.CurrentUser(c)
	if !ok {
		err := errors.New("missing authenticated user")
		utils.JSONError(c, http.StatusUnauthorized, err, "unauthorized")
		utils.Warn(handlerName+": unauthorized", map[string]any{"error": err.Error()})
		return "", false
	}
	return userID, true
}
