package server

import (
	"net/http"

	"card-market/internal/auth"
	"card-market/internal/metrics"
	handler "card-market/services/market/handler"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services groups what the HTTP layer depends on
type Services struct {
	Wallets     handler.WalletServiceInterface
	Marketplace handler.MarketplaceServiceInterface
	Auctions    handler.AuctionServiceInterface
	Tokens      *auth.Service
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(svc Services) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestIDMiddleware)
	router.Use(MetricsMiddleware)
	router.Use(RequestLoggerMiddleware) // custom request logging

	walletHandler := handler.NewWalletHandler(svc.Wallets)
	marketHandler := handler.NewMarketHandler(svc.Marketplace)
	auctionHandler := handler.NewAuctionHandler(svc.Auctions)
	requireAuth := AuthMiddleware(svc.Tokens)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	wallets := router.Group("/wallets", requireAuth)
	{
		wallets.POST("", walletHandler.OpenWalletHandler)
		wallets.GET("/me", walletHandler.GetBalanceHandler)
		wallets.POST("/me/deposits", walletHandler.DepositHandler)
		wallets.GET("/me/transactions", walletHandler.GetTransactionsHandler)
	}

	router.GET("/listings", marketHandler.GetListingsHandler)

	cards := router.Group("/cards")
	{
		cards.GET("/:card_id", marketHandler.GetCardHandler)
		cards.POST("/:card_id/listing", requireAuth, marketHandler.ListCardHandler)
		cards.DELETE("/:card_id/listing", requireAuth, marketHandler.CancelListingHandler)
		cards.POST("/:card_id/purchase", requireAuth, marketHandler.BuyCardHandler)
	}

	users := router.Group("/users")
	{
		users.GET("/:user_id/cards", marketHandler.GetCardsByOwnerHandler)
	}

	auctions := router.Group("/auctions")
	{
		auctions.GET("", auctionHandler.GetActiveAuctionsHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionHandler)
		auctions.GET("/:auction_id/bids", auctionHandler.GetBidsHandler)
		auctions.GET("/:auction_id/winning", auctionHandler.GetWinningBidHandler)
		auctions.POST("", requireAuth, auctionHandler.CreateAuctionHandler)
		auctions.POST("/:auction_id/bids", requireAuth, auctionHandler.PlaceBidHandler)
		auctions.POST("/:auction_id/buy-now", requireAuth, auctionHandler.BuyNowHandler)
		auctions.POST("/:auction_id/settle", requireAuth, auctionHandler.SettleAuctionHandler)
		auctions.DELETE("/:auction_id", requireAuth, auctionHandler.CancelAuctionHandler)
	}

	return router
}
