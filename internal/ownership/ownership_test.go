package ownership

import (
	"context"
	"errors"
	"testing"
	"time"

	"card-market/internal/marketerrors"
	model "card-market/internal/models"
	"card-market/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Registry, *repository.MemoryRepo) {
	t.Helper()
	repo := repository.NewMemoryRepo()
	reg := NewRegistry(repo, repo)

	ctx := context.Background()
	for _, c := range []model.Card{
		{CardID: "card1", Name: "Mbappe Gold", OwnerID: "alice"},
		{CardID: "card2", Name: "Haaland Rare", OwnerID: "alice"},
		{CardID: "card3", Name: "Pedri Limited", OwnerID: "bob"},
	} {
		_, err := reg.Mint(ctx, c)
		require.NoError(t, err)
	}

	// card2 is in a live auction
	require.NoError(t, repo.CreateAuction(ctx, model.Auction{
		AuctionID: "auction1",
		CardID:    "card2",
		SellerID:  "alice",
		Status:    model.AuctionLive,
		EndsAt:    time.Now().Add(time.Hour),
	}))
	return reg, repo
}

func TestRegistry_Mint(t *testing.T) {
	reg, repo := setup(t)
	ctx := context.Background()

	card, err := reg.Mint(ctx, model.Card{CardID: "card9", OwnerID: "carol", ForSale: true, Price: decimal.NewFromInt(5)})
	require.NoError(t, err)
	require.False(t, card.ForSale, "minted cards start unlisted")
	require.True(t, card.Price.IsZero())

	stored, err := repo.GetCard(ctx, "card9")
	require.NoError(t, err)
	require.Equal(t, "carol", stored.OwnerID)

	_, err = reg.Mint(ctx, model.Card{CardID: "card9", OwnerID: "dave"})
	require.ErrorIs(t, err, marketerrors.ErrCardExists)

	_, err = reg.Mint(ctx, model.Card{CardID: "card10"})
	require.ErrorIs(t, err, marketerrors.ErrInvalidRequest)
}

func TestRegistry_ListForSale(t *testing.T) {
	tests := []struct {
		name          string
		cardID        string
		ownerID       string
		price         decimal.Decimal
		expectedError error
	}{
		{name: "valid_listing", cardID: "card1", ownerID: "alice", price: decimal.NewFromInt(100)},
		{name: "not_owner", cardID: "card1", ownerID: "bob", price: decimal.NewFromInt(100), expectedError: marketerrors.ErrNotOwner},
		{name: "in_live_auction", cardID: "card2", ownerID: "alice", price: decimal.NewFromInt(100), expectedError: marketerrors.ErrInAuction},
		{name: "zero_price", cardID: "card1", ownerID: "alice", price: decimal.Zero, expectedError: marketerrors.ErrInvalidAmount},
		{name: "negative_price", cardID: "card1", ownerID: "alice", price: decimal.NewFromInt(-3), expectedError: marketerrors.ErrInvalidAmount},
		{name: "price_beyond_scale", cardID: "card1", ownerID: "alice", price: decimal.RequireFromString("9.99999"), expectedError: marketerrors.ErrInvalidAmount},
		{name: "unknown_card", cardID: "nope", ownerID: "alice", price: decimal.NewFromInt(1), expectedError: marketerrors.ErrNotFound},
	}

	for _, tc := range tests {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			reg, repo := setup(t)
			card, err := reg.ListForSale(context.Background(), tc.cardID, tc.ownerID, tc.price)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				return
			}
			require.NoError(t, err)
			require.True(t, card.ForSale)

			stored, err := repo.GetCard(context.Background(), tc.cardID)
			require.NoError(t, err)
			require.True(t, stored.ForSale)
			require.True(t, stored.Price.Equal(tc.price))
		})
	}
}

func TestRegistry_ListTwice(t *testing.T) {
	reg, _ := setup(t)
	ctx := context.Background()

	_, err := reg.ListForSale(ctx, "card1", "alice", decimal.NewFromInt(10))
	require.NoError(t, err)
	_, err = reg.ListForSale(ctx, "card1", "alice", decimal.NewFromInt(20))
	require.ErrorIs(t, err, marketerrors.ErrAlreadyListed)
}

func TestRegistry_CancelListing(t *testing.T) {
	reg, repo := setup(t)
	ctx := context.Background()

	_, err := reg.CancelListing(ctx, "card1", "alice")
	require.ErrorIs(t, err, marketerrors.ErrNotListed)

	_, err = reg.ListForSale(ctx, "card1", "alice", decimal.NewFromInt(10))
	require.NoError(t, err)

	_, err = reg.CancelListing(ctx, "card1", "bob")
	require.ErrorIs(t, err, marketerrors.ErrNotOwner)

	card, err := reg.CancelListing(ctx, "card1", "alice")
	require.NoError(t, err)
	require.False(t, card.ForSale)

	listed, err := repo.ListCardsForSale(ctx)
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestRegistry_TransferOwnership(t *testing.T) {
	reg, repo := setup(t)
	ctx := context.Background()

	_, err := reg.ListForSale(ctx, "card1", "alice", decimal.NewFromInt(10))
	require.NoError(t, err)

	_, err = reg.TransferOwnership(ctx, "card1", "bob", "carol")
	require.ErrorIs(t, err, marketerrors.ErrOwnershipMismatch)

	card, err := reg.TransferOwnership(ctx, "card1", "alice", "carol")
	require.NoError(t, err)
	require.Equal(t, "carol", card.OwnerID)
	require.False(t, card.ForSale)
	require.True(t, card.Price.IsZero())

	owned, err := repo.ListCardsByOwner(ctx, "carol")
	require.NoError(t, err)
	require.Len(t, owned, 1)
}

func TestRegistry_CheckAuctionable(t *testing.T) {
	reg, _ := setup(t)
	ctx := context.Background()

	_, err := reg.CheckAuctionable(ctx, "card1", "alice")
	require.NoError(t, err)

	_, err = reg.CheckAuctionable(ctx, "card2", "alice")
	require.ErrorIs(t, err, marketerrors.ErrInAuction)

	_, err = reg.CheckAuctionable(ctx, "card3", "alice")
	require.ErrorIs(t, err, marketerrors.ErrNotOwner)

	_, err = reg.ListForSale(ctx, "card1", "alice", decimal.NewFromInt(10))
	require.NoError(t, err)
	_, err = reg.CheckAuctionable(ctx, "card1", "alice")
	require.ErrorIs(t, err, marketerrors.ErrAlreadyListed)
}

func TestDisplayName(t *testing.T) {
	catalog := StaticCatalog{"card1": "Mbappe Gold"}

	require.Equal(t, "Mbappe Gold", DisplayName(catalog, model.Card{CardID: "card1", Name: "stale"}))
	require.Equal(t, "Haaland Rare", DisplayName(catalog, model.Card{CardID: "card2", Name: "Haaland Rare"}))
	require.Equal(t, "card3", DisplayName(catalog, model.Card{CardID: "card3"}))
	require.Equal(t, "card1", DisplayName(nil, model.Card{CardID: "card1"}))
}
