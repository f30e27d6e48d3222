package marketplace

import (
	"context"
	"fmt"
	"time"

	"card-market/internal/ledger"
	"card-market/internal/marketerrors"
	model "card-market/internal/models"
	"card-market/internal/ownership"
	"card-market/internal/repository"

	"github.com/shopspring/decimal"
)

// Purchase is the result of a completed fixed-price sale
type Purchase struct {
	Card           model.Card      `json:"card"`
	Price          decimal.Decimal `json:"price"`
	Fee            decimal.Decimal `json:"fee"`
	SellerReceives decimal.Decimal `json:"seller_receives"`
	BuyerBalance   ledger.Balance  `json:"buyer_balance"`
}

// Service implements listing, delisting and buying cards at a fixed price
type Service struct {
	store   repository.Store
	catalog ownership.Catalog
	now     func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithCatalog sets the catalog used for Transaction descriptions
func WithCatalog(c ownership.Catalog) Option {
	return func(s *Service) { s.catalog = c }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new marketplace Service instance
func NewService(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List puts the seller's card up for sale at price
func (s *Service) List(ctx context.Context, cardID, sellerID string, price decimal.Decimal) (model.Card, error) {
	if cardID == "" || sellerID == "" {
		return model.Card{}, fmt.Errorf("service: %w - missing cardID or sellerID", marketerrors.ErrInvalidRequest)
	}

	var card model.Card
	err := s.store.Atomic(ctx, func(tx repository.Tx) (err error) {
		card, err = ownership.NewRegistry(tx, tx).ListForSale(ctx, cardID, sellerID, price)
		return err
	})
	if err != nil {
		return model.Card{}, fmt.Errorf("service: failed to list card %s: %w", cardID, err)
	}
	return card, nil
}

// CancelListing takes the seller's card off the market
func (s *Service) CancelListing(ctx context.Context, cardID, sellerID string) (model.Card, error) {
	if cardID == "" || sellerID == "" {
		return model.Card{}, fmt.Errorf("service: %w - missing cardID or sellerID", marketerrors.ErrInvalidRequest)
	}

	var card model.Card
	err := s.store.Atomic(ctx, func(tx repository.Tx) (err error) {
		card, err = ownership.NewRegistry(tx, tx).CancelListing(ctx, cardID, sellerID)
		return err
	})
	if err != nil {
		return model.Card{}, fmt.Errorf("service: failed to cancel listing of card %s: %w", cardID, err)
	}
	return card, nil
}

// Buy transfers a listed card to the buyer. The buyer pays the full price,
// the seller receives price minus the platform fee.
func (s *Service) Buy(ctx context.Context, cardID, buyerID string) (Purchase, error) {
	if cardID == "" || buyerID == "" {
		return Purchase{}, fmt.Errorf("service: %w - missing cardID or buyerID", marketerrors.ErrInvalidRequest)
	}

	var out Purchase
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		card, err := tx.GetCard(ctx, cardID)
		if err != nil {
			return err
		}
		if !card.ForSale {
			return fmt.Errorf("%w - card %s", marketerrors.ErrNotForSale, cardID)
		}
		sellerID := card.OwnerID
		if sellerID == buyerID {
			return fmt.Errorf("%w - card %s", marketerrors.ErrSelfTrade, cardID)
		}
		if err := tx.LockWallets(ctx, buyerID, sellerID); err != nil {
			return err
		}

		price := card.Price
		fee, sellerReceives := ledger.SplitSale(price)
		name := ownership.DisplayName(s.catalog, card)
		l := ledger.New(tx, tx, s.now)

		buyer, err := l.Debit(ctx, buyerID, price, ledger.Entry{
			Type:        model.TxMarketPurchase,
			Description: fmt.Sprintf("Bought %s from %s", name, sellerID),
			Reference:   cardID,
		})
		if err != nil {
			return err
		}
		if _, err := l.Credit(ctx, sellerID, sellerReceives, ledger.Entry{
			Type:        model.TxMarketSale,
			Description: fmt.Sprintf("Sold %s to %s", name, buyerID),
			Reference:   cardID,
		}); err != nil {
			return err
		}
		if err := l.RecordFee(ctx, fee, ledger.Entry{
			Description: fmt.Sprintf("Fee on market sale of %s", name),
			Reference:   cardID,
		}); err != nil {
			return err
		}

		card, err = ownership.NewRegistry(tx, tx).TransferOwnership(ctx, cardID, sellerID, buyerID)
		if err != nil {
			return err
		}

		out = Purchase{
			Card:           card,
			Price:          price,
			Fee:            fee,
			SellerReceives: sellerReceives,
			BuyerBalance:   ledger.BalanceOf(buyer),
		}
		return nil
	})
	if err != nil {
		return Purchase{}, fmt.Errorf("service: failed to buy card %s for user %s: %w", cardID, buyerID, err)
	}
	return out, nil
}

// Listings returns all cards currently for sale
func (s *Service) Listings(ctx context.Context) ([]model.Card, error) {
	cards, err := s.store.ListCardsForSale(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get listings: %w", err)
	}
	return cards, nil
}

// Card returns a single card
func (s *Service) Card(ctx context.Context, cardID string) (model.Card, error) {
	if cardID == "" {
		return model.Card{}, fmt.Errorf("service: %w - empty card ID", marketerrors.ErrInvalidRequest)
	}

	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return model.Card{}, fmt.Errorf("service: failed to get card %s: %w", cardID, err)
	}
	return card, nil
}

// CardsByOwner returns every card owned by the user
func (s *Service) CardsByOwner(ctx context.Context, ownerID string) ([]model.Card, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", marketerrors.ErrInvalidRequest)
	}

	cards, err := s.store.ListCardsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get cards for user %s: %w", ownerID, err)
	}
	return cards, nil
}

// Mint registers a new card with its first owner
func (s *Service) Mint(ctx context.Context, card model.Card) (model.Card, error) {
	if card.Name == "" {
		card.Name = ownership.DisplayName(s.catalog, card)
	}

	var minted model.Card
	err := s.store.Atomic(ctx, func(tx repository.Tx) (err error) {
		minted, err = ownership.NewRegistry(tx, tx).Mint(ctx, card)
		return err
	})
	if err != nil {
		return model.Card{}, fmt.Errorf("service: failed to mint card %s: %w", card.CardID, err)
	}
	return minted, nil
}
