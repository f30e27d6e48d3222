package ownership

import (
	"context"
	"fmt"

	"card-market/internal/marketerrors"
	model "card-market/internal/models"
	"card-market/internal/repository"

	"github.com/shopspring/decimal"
)

// Catalog resolves a card's display name. Names are informational only.
type Catalog interface {
	Lookup(cardID string) (name string, ok bool)
}

// StaticCatalog is a Catalog backed by a fixed map of card ID to name
type StaticCatalog map[string]string

func (c StaticCatalog) Lookup(cardID string) (string, bool) {
	name, ok := c[cardID]
	return name, ok
}

// DisplayName returns the catalog name of a card, falling back to the
// name stored at mint time and then to the card ID
func DisplayName(c Catalog, card model.Card) string {
	if c != nil {
		if name, ok := c.Lookup(card.CardID); ok && name != "" {
			return name
		}
	}
	if card.Name != "" {
		return card.Name
	}
	return card.CardID
}

// Registry enforces the card ownership rules over the stores of one atomic unit
type Registry struct {
	cards    repository.CardStore
	auctions repository.AuctionStore
}

// NewRegistry creates a Registry over the given stores
func NewRegistry(cards repository.CardStore, auctions repository.AuctionStore) *Registry {
	return &Registry{cards: cards, auctions: auctions}
}

// Mint registers a new card owned by card.OwnerID. A card is minted only once.
func (r *Registry) Mint(ctx context.Context, card model.Card) (model.Card, error) {
	if card.CardID == "" || card.OwnerID == "" {
		return model.Card{}, fmt.Errorf("ownership: %w - card and owner IDs are required", marketerrors.ErrInvalidRequest)
	}
	card.ForSale = false
	card.Price = decimal.Zero

	if err := r.cards.CreateCard(ctx, card); err != nil {
		return model.Card{}, fmt.Errorf("ownership: mint card %s: %w", card.CardID, err)
	}
	return card, nil
}

// ListForSale puts an owned card on the fixed-price market
func (r *Registry) ListForSale(ctx context.Context, cardID, ownerID string, price decimal.Decimal) (model.Card, error) {
	if !price.IsPositive() {
		return model.Card{}, fmt.Errorf("ownership: %w - listing price must be positive, got %s", marketerrors.ErrInvalidAmount, price.String())
	}
	if !model.FitsScale(price) {
		return model.Card{}, fmt.Errorf("ownership: %w - listing price %s has more than %d decimal places",
			marketerrors.ErrInvalidAmount, price.String(), model.AmountScale)
	}

	card, err := r.checkFree(ctx, cardID, ownerID)
	if err != nil {
		return model.Card{}, err
	}

	card.ForSale = true
	card.Price = price
	if err := r.cards.UpdateCard(ctx, card); err != nil {
		return model.Card{}, fmt.Errorf("ownership: list card %s: %w", cardID, err)
	}
	return card, nil
}

// CancelListing takes a listed card off the market
func (r *Registry) CancelListing(ctx context.Context, cardID, ownerID string) (model.Card, error) {
	card, err := r.cards.GetCard(ctx, cardID)
	if err != nil {
		return model.Card{}, fmt.Errorf("ownership: %w", err)
	}
	if card.OwnerID != ownerID {
		return model.Card{}, fmt.Errorf("ownership: %w - card %s", marketerrors.ErrNotOwner, cardID)
	}
	if !card.ForSale {
		return model.Card{}, fmt.Errorf("ownership: %w - card %s", marketerrors.ErrNotListed, cardID)
	}

	card.ForSale = false
	card.Price = decimal.Zero
	if err := r.cards.UpdateCard(ctx, card); err != nil {
		return model.Card{}, fmt.Errorf("ownership: cancel listing of card %s: %w", cardID, err)
	}
	return card, nil
}

// TransferOwnership moves a card from one owner to another and clears any listing
func (r *Registry) TransferOwnership(ctx context.Context, cardID, fromID, toID string) (model.Card, error) {
	card, err := r.cards.GetCard(ctx, cardID)
	if err != nil {
		return model.Card{}, fmt.Errorf("ownership: %w", err)
	}
	if card.OwnerID != fromID {
		return model.Card{}, fmt.Errorf("ownership: %w - card %s is owned by %q, not %q", marketerrors.ErrOwnershipMismatch, cardID, card.OwnerID, fromID)
	}
	if toID == "" {
		return model.Card{}, fmt.Errorf("ownership: %w - empty new owner", marketerrors.ErrInvalidRequest)
	}

	card.OwnerID = toID
	card.ForSale = false
	card.Price = decimal.Zero
	if err := r.cards.UpdateCard(ctx, card); err != nil {
		return model.Card{}, fmt.Errorf("ownership: transfer card %s: %w", cardID, err)
	}
	return card, nil
}

// CheckAuctionable verifies the seller may put the card into a new auction
func (r *Registry) CheckAuctionable(ctx context.Context, cardID, sellerID string) (model.Card, error) {
	return r.checkFree(ctx, cardID, sellerID)
}

// checkFree loads a card owned by ownerID that is neither listed nor in a live auction
func (r *Registry) checkFree(ctx context.Context, cardID, ownerID string) (model.Card, error) {
	card, err := r.cards.GetCard(ctx, cardID)
	if err != nil {
		return model.Card{}, fmt.Errorf("ownership: %w", err)
	}
	if card.OwnerID != ownerID {
		return model.Card{}, fmt.Errorf("ownership: %w - card %s", marketerrors.ErrNotOwner, cardID)
	}
	if card.ForSale {
		return model.Card{}, fmt.Errorf("ownership: %w - card %s", marketerrors.ErrAlreadyListed, cardID)
	}

	live, ok, err := r.auctions.FindLiveAuctionByCard(ctx, cardID)
	if err != nil {
		return model.Card{}, fmt.Errorf("ownership: look up auctions for card %s: %w", cardID, err)
	}
	if ok {
		return model.Card{}, fmt.Errorf("ownership: %w - card %s is in auction %s", marketerrors.ErrInAuction, cardID, live.AuctionID)
	}
	return card, nil
}
