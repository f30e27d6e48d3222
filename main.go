package main

import (
	"context"
	"errors"
	"fmt"

	"card-market/internal/auction"
	"card-market/internal/auth"
	"card-market/internal/config"
	"card-market/internal/ledger"
	"card-market/internal/marketerrors"
	"card-market/internal/marketplace"
	model "card-market/internal/models"
	"card-market/internal/ownership"
	"card-market/internal/repository"
	"card-market/internal/repository/postgres"
	"card-market/internal/server"
	"card-market/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// demoCatalog names the cards minted for demo users
var demoCatalog = ownership.StaticCatalog{
	"card1": "Blue-Eyes Dragon",
	"card2": "Dark Magician",
	"card3": "Red Phoenix",
	"card4": "Ancient Golem",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Fatal("failed to load config", map[string]any{"error": err.Error()})
	}
	utils.SetLevel(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	if cfg.JWTSecret == config.DevJWTSecret {
		utils.Warn("using the development JWT secret; set JWT_SECRET", map[string]any{"gin_mode": cfg.GinMode})
	}

	store, err := openStore(cfg)
	if err != nil {
		utils.Fatal("failed to open store", map[string]any{"error": err.Error()})
	}

	wallets := ledger.NewService(store)
	market := marketplace.NewService(store, marketplace.WithCatalog(demoCatalog))
	auctions := auction.NewService(store, auction.WithCatalog(demoCatalog))
	tokens := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)

	if cfg.SeedDemo {
		if err := seedDemo(context.Background(), wallets, market, tokens); err != nil {
			utils.Fatal("failed to seed demo data", map[string]any{"error": err.Error()})
		}
	}

	router := server.SetupRouter(server.Services{
		Wallets:     wallets,
		Marketplace: market,
		Auctions:    auctions,
		Tokens:      tokens,
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	utils.Info("starting card market server", map[string]any{"addr": addr, "postgres": cfg.DatabaseDSN != ""})
	if err := router.Run(addr); err != nil {
		utils.Fatal("failed to start server", map[string]any{"error": err.Error()})
	}
}

// openStore returns the postgres store when a DSN is configured, else the in-memory one
func openStore(cfg *config.Config) (repository.Store, error) {
	if cfg.DatabaseDSN == "" {
		return repository.NewMemoryRepo(), nil
	}

	db, err := postgres.Open(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(db); err != nil {
		return nil, err
	}
	return postgres.New(db), nil
}

// seedDemo opens funded wallets for demo users and mints their cards.
// Data left by a previous run is kept.
func seedDemo(ctx context.Context, wallets *ledger.Service, market *marketplace.Service, tokens *auth.Service) error {
	funds := map[string]decimal.Decimal{
		"alice": decimal.NewFromInt(1000),
		"bob":   decimal.NewFromInt(1000),
		"carol": decimal.NewFromInt(500),
	}
	for _, userID := range []string{"alice", "bob", "carol"} {
		if _, err := wallets.OpenWallet(ctx, userID); err != nil {
			if errors.Is(err, marketerrors.ErrWalletExists) {
				continue
			}
			return err
		}
		if _, err := wallets.Deposit(ctx, userID, funds[userID]); err != nil {
			return err
		}
	}

	cards := []model.Card{
		{CardID: "card1", OwnerID: "alice"},
		{CardID: "card2", OwnerID: "alice"},
		{CardID: "card3", OwnerID: "bob"},
		{CardID: "card4", OwnerID: "bob"},
	}
	for _, card := range cards {
		if _, err := market.Mint(ctx, card); err != nil && !errors.Is(err, marketerrors.ErrCardExists) {
			return err
		}
	}

	for userID := range funds {
		token, err := tokens.GenerateToken(userID)
		if err != nil {
			return err
		}
		utils.Debug("demo token issued", map[string]any{"user_id": userID, "token": token})
	}
	utils.Info("demo data seeded", map[string]any{"users": len(funds), "cards": len(cards)})
	return nil
}
