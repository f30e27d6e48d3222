package perftests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"card-market/internal/auction"
	"card-market/internal/ledger"
	"card-market/internal/marketplace"
	model "card-market/internal/models"
	"card-market/internal/repository"
	"card-market/utils"

	"github.com/shopspring/decimal"
)

func init() {
	utils.SetLevel("error")
}

// market bundles the services of one in-memory store
type market struct {
	repo     *repository.MemoryRepo
	wallets  *ledger.Service
	cards    *marketplace.Service
	auctions *auction.Service
}

func newMarket() *market {
	repo := repository.NewMemoryRepo()
	return &market{
		repo:     repo,
		wallets:  ledger.NewService(repo),
		cards:    marketplace.NewService(repo),
		auctions: auction.NewService(repo),
	}
}

func (m *market) fund(tb testing.TB, userID string, amount int64) {
	tb.Helper()
	ctx := context.Background()
	if _, err := m.wallets.OpenWallet(ctx, userID); err != nil {
		tb.Fatalf("failed to open wallet %s: %v", userID, err)
	}
	if amount > 0 {
		if _, err := m.wallets.Deposit(ctx, userID, decimal.NewFromInt(amount)); err != nil {
			tb.Fatalf("failed to fund wallet %s: %v", userID, err)
		}
	}
}

func (m *market) mint(tb testing.TB, cardID, ownerID string) {
	tb.Helper()
	if _, err := m.cards.Mint(context.Background(), model.Card{CardID: cardID, OwnerID: ownerID}); err != nil {
		tb.Fatalf("failed to mint %s: %v", cardID, err)
	}
}

func (m *market) list(tb testing.TB, cardID, sellerID string, price int64) {
	tb.Helper()
	if _, err := m.cards.List(context.Background(), cardID, sellerID, decimal.NewFromInt(price)); err != nil {
		tb.Fatalf("failed to list %s: %v", cardID, err)
	}
}

// openAuction mints a card for sellerID and puts it up for a day
func (m *market) openAuction(tb testing.TB, cardID, sellerID string, startPrice int64) model.Auction {
	tb.Helper()
	m.mint(tb, cardID, sellerID)
	a, err := m.auctions.Create(context.Background(), auction.CreateAuctionInput{
		CardID:     cardID,
		SellerID:   sellerID,
		StartPrice: decimal.NewFromInt(startPrice),
		Duration:   24 * time.Hour,
	})
	if err != nil {
		tb.Fatalf("failed to create auction for %s: %v", cardID, err)
	}
	return a
}

// totalFunds sums the balances of userIDs plus collected fees; escrow is part of the balance
func (m *market) totalFunds(tb testing.TB, userIDs ...string) decimal.Decimal {
	tb.Helper()
	ctx := context.Background()

	total := decimal.Zero
	for _, id := range userIDs {
		w, err := m.repo.GetWallet(ctx, id)
		if err != nil {
			tb.Fatalf("failed to read wallet %s: %v", id, err)
		}
		total = total.Add(w.Balance)
	}

	fees, err := m.repo.ListTransactionsByUser(ctx, model.PlatformUserID)
	if err != nil {
		tb.Fatalf("failed to read fees: %v", err)
	}
	for _, f := range fees {
		total = total.Add(f.Amount)
	}
	return total
}

func bidderID(i int) string { return fmt.Sprintf("bidder_%d", i) }
