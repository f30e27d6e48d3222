package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"card-market/internal/marketerrors"
	"card-market/internal/metrics"
	"card-market/utils"

	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key the auth middleware stores the caller under
const UserIDKey = "user_id"

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, marketerrors.ErrInvariantViolation):
		return http.StatusInternalServerError, "internal server error"
	case errors.Is(err, marketerrors.ErrWalletNotFound):
		return http.StatusNotFound, "wallet not found"
	case errors.Is(err, marketerrors.ErrCardNotFound):
		return http.StatusNotFound, "card not found"
	case errors.Is(err, marketerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, marketerrors.ErrNoBids):
		return http.StatusNotFound, "no bids found for auction"
	case errors.Is(err, marketerrors.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid amount"
	case errors.Is(err, marketerrors.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, marketerrors.ErrNotOwner):
		return http.StatusForbidden, "not the owner"
	case errors.Is(err, marketerrors.ErrSelfTrade):
		return http.StatusForbidden, "cannot buy your own card"
	case errors.Is(err, marketerrors.ErrSelfBid):
		return http.StatusForbidden, "cannot bid on your own auction"
	case errors.Is(err, marketerrors.ErrInsufficientFunds):
		return http.StatusPaymentRequired, "insufficient funds"
	case errors.Is(err, marketerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, marketerrors.ErrWalletExists):
		return http.StatusConflict, "wallet already exists"
	case errors.Is(err, marketerrors.ErrCardExists):
		return http.StatusConflict, "card already minted"
	case errors.Is(err, marketerrors.ErrOwnershipMismatch):
		return http.StatusConflict, "ownership mismatch"
	case errors.Is(err, marketerrors.ErrAlreadyListed):
		return http.StatusConflict, "card already listed"
	case errors.Is(err, marketerrors.ErrNotForSale):
		return http.StatusConflict, "card not for sale"
	case errors.Is(err, marketerrors.ErrNotListed):
		return http.StatusConflict, "card not listed"
	case errors.Is(err, marketerrors.ErrInAuction):
		return http.StatusConflict, "card is in a live auction"
	case errors.Is(err, marketerrors.ErrNotLive):
		return http.StatusConflict, "auction is not live"
	case errors.Is(err, marketerrors.ErrExpired):
		return http.StatusConflict, "auction has expired"
	case errors.Is(err, marketerrors.ErrNotEnded):
		return http.StatusConflict, "auction has not ended yet"
	case errors.Is(err, marketerrors.ErrAlreadySettled):
		return http.StatusConflict, "auction already settled"
	case errors.Is(err, marketerrors.ErrHasBids):
		return http.StatusConflict, "auction has bids"
	case errors.Is(err, marketerrors.ErrNoBuyNowPrice):
		return http.StatusConflict, "auction has no buy-now price"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondError writes the error envelope for a failed operation, logs it and counts it.
// Server errors never expose the underlying error text.
func RespondError(c *gin.Context, handlerName, operation string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)

	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["status"] = status
	fields["error"] = err.Error()

	if status >= http.StatusInternalServerError {
		if errors.Is(err, marketerrors.ErrInvariantViolation) {
			metrics.InvariantViolationsTotal.Inc()
		}
		utils.JSONError(c, status, errors.New(message), message)
		utils.Error(handlerName+": "+message, fields)
		metrics.ObserveOperation(operation, "5xx")
		return
	}

	var tooLow *marketerrors.BidTooLowError
	if errors.As(err, &tooLow) {
		c.JSON(status, gin.H{
			"status":      status,
			"message":     message,
			"error":       fmt.Sprintf("%s: %s", message, tooLow.Error()),
			"minimum_bid": tooLow.Minimum,
		})
	} else {
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
	}
	utils.Warn(handlerName+": "+message, fields)
	metrics.ObserveOperation(operation, "4xx")
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

// RespondSuccess writes the success envelope, logs it and counts it
func RespondSuccess(c *gin.Context, handlerName, operation string, status int, data any, message string, fields map[string]any) {
	utils.JSONResponse(c, status, data, message)
	LogSuccess(handlerName, message, fields)
	metrics.ObserveOperation(operation, "ok")
}

// CurrentUser returns the authenticated caller set by the auth middleware
func CurrentUser(c *gin.Context) (string, bool) {
	userID := c.GetString(UserIDKey)
	return userID, userID != ""
}
