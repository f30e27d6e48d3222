package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"card-market/internal/marketerrors"
	model "card-market/internal/models"
	"card-market/internal/ownership"
	"card-market/internal/repository"
	"card-market/utils"

	"github.com/shopspring/decimal"
)

var (
	minIncrementFloor = decimal.NewFromInt(1)
	minIncrementRate  = decimal.RequireFromString("0.05")
)

// MaxDuration is the longest an auction may run
const MaxDuration = 30 * 24 * time.Hour

// MinIncrement is the smallest raise over the current price: 5% of the start price
// rounded up to the stored scale, at least 1
func MinIncrement(startPrice decimal.Decimal) decimal.Decimal {
	inc := startPrice.Mul(minIncrementRate).RoundCeil(model.AmountScale)
	if inc.LessThan(minIncrementFloor) {
		return minIncrementFloor
	}
	return inc
}

// CreateAuctionInput holds the seller's terms for a new auction
type CreateAuctionInput struct {
	CardID       string
	SellerID     string
	StartPrice   decimal.Decimal
	BuyNowPrice  *decimal.Decimal
	ReservePrice *decimal.Decimal
	Duration     time.Duration
}

// Outcome describes how an auction closed
type Outcome struct {
	Auction        model.Auction   `json:"auction"`
	WinningBid     *model.Bid      `json:"winning_bid,omitempty"`
	WinnerID       string          `json:"winner_id,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Fee            decimal.Decimal `json:"fee"`
	SellerReceives decimal.Decimal `json:"seller_receives"`
	Sold           bool            `json:"sold"`
}

// Service defines the business logic for auctions: lifecycle, bidding and settlement
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

// NewService creates a new auction Service instance
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

// Create opens a live auction for a card the seller owns
func (s *Service) Create(ctx context.Context, in CreateAuctionInput) (model.Auction, error) {
	reserve, err := validateCreate(in)
	if err != nil {
		return model.Auction{}, err
	}

	var created model.Auction
	err = s.store.Atomic(ctx, func(tx repository.Tx) error {
		if _, err := ownership.NewRegistry(tx, tx).CheckAuctionable(ctx, in.CardID, in.SellerID); err != nil {
			return err
		}

		now := s.now()
		created = model.Auction{
			AuctionID:    utils.GenerateID(),
			CardID:       in.CardID,
			SellerID:     in.SellerID,
			Status:       model.AuctionLive,
			ReservePrice: reserve,
			StartPrice:   in.StartPrice,
			BuyNowPrice:  in.BuyNowPrice,
			MinIncrement: MinIncrement(in.StartPrice),
			StartsAt:     now,
			EndsAt:       now.Add(in.Duration),
		}
		return tx.CreateAuction(ctx, created)
	})
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to create auction for card %s: %w", in.CardID, err)
	}
	return created, nil
}

// validateCreate checks the seller's terms and returns the effective reserve price
func validateCreate(in CreateAuctionInput) (decimal.Decimal, error) {
	if in.CardID == "" || in.SellerID == "" {
		return decimal.Zero, fmt.Errorf("service: %w - missing cardID or sellerID", marketerrors.ErrInvalidRequest)
	}
	if !in.StartPrice.IsPositive() {
		return decimal.Zero, fmt.Errorf("service: %w - start price must be positive", marketerrors.ErrInvalidAmount)
	}
	if in.Duration <= 0 || in.Duration > MaxDuration {
		return decimal.Zero, fmt.Errorf("service: %w - duration %s outside (0, %s]", marketerrors.ErrInvalidAmount, in.Duration, MaxDuration)
	}
	for _, price := range []*decimal.Decimal{&in.StartPrice, in.BuyNowPrice, in.ReservePrice} {
		if price != nil && !model.FitsScale(*price) {
			return decimal.Zero, fmt.Errorf("service: %w - price %s has more than %d decimal places",
				marketerrors.ErrInvalidAmount, price.String(), model.AmountScale)
		}
	}

	reserve := decimal.Zero
	if in.ReservePrice != nil {
		if in.ReservePrice.IsNegative() {
			return decimal.Zero, fmt.Errorf("service: %w - reserve price cannot be negative", marketerrors.ErrInvalidAmount)
		}
		reserve = *in.ReservePrice
	}
	if in.BuyNowPrice != nil && in.BuyNowPrice.LessThan(in.StartPrice) {
		return decimal.Zero, fmt.Errorf("service: %w - buy-now price %s is below start price %s",
			marketerrors.ErrInvalidAmount, in.BuyNowPrice.String(), in.StartPrice.String())
	}
	return reserve, nil
}

// Cancel withdraws a live auction that has no bids
func (s *Service) Cancel(ctx context.Context, auctionID, sellerID string) (model.Auction, error) {
	if auctionID == "" || sellerID == "" {
		return model.Auction{}, fmt.Errorf("service: %w - missing auctionID or sellerID", marketerrors.ErrInvalidRequest)
	}

	var a model.Auction
	err := s.store.Atomic(ctx, func(tx repository.Tx) (err error) {
		a, err = tx.GetAuction(ctx, auctionID)
		if err != nil {
			return err
		}
		if a.SellerID != sellerID {
			return fmt.Errorf("%w - auction %s", marketerrors.ErrNotOwner, auctionID)
		}
		if a.Status != model.AuctionLive {
			return fmt.Errorf("%w - auction %s is %s", marketerrors.ErrNotLive, auctionID, a.Status)
		}

		bids, err := tx.GetBidsByAuction(ctx, auctionID)
		if err != nil {
			return err
		}
		if len(bids) > 0 {
			return fmt.Errorf("%w - auction %s has %d bids", marketerrors.ErrHasBids, auctionID, len(bids))
		}
		return transition(ctx, tx, &a, model.AuctionCancelled)
	})
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to cancel auction %s: %w", auctionID, err)
	}
	return a, nil
}

// Get returns a single auction
func (s *Service) Get(ctx context.Context, auctionID string) (model.Auction, error) {
	if auctionID == "" {
		return model.Auction{}, fmt.Errorf("service: %w - empty auction ID", marketerrors.ErrInvalidRequest)
	}

	a, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return a, nil
}

// ActiveAuctions returns every live auction, soonest to end first
func (s *Service) ActiveAuctions(ctx context.Context) ([]model.Auction, error) {
	auctions, err := s.store.ListAuctionsByStatus(ctx, model.AuctionLive)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get active auctions: %w", err)
	}
	return auctions, nil
}

// Bids returns the bid history of an auction, oldest first
func (s *Service) Bids(ctx context.Context, auctionID string) ([]model.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", marketerrors.ErrInvalidRequest)
	}
	if _, err := s.store.GetAuction(ctx, auctionID); err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}

	bids, err := s.store.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}
	return bids, nil
}

// WinningBid returns the current highest bid of an auction
func (s *Service) WinningBid(ctx context.Context, auctionID string) (model.Bid, error) {
	if auctionID == "" {
		return model.Bid{}, fmt.Errorf("service: %w - empty auction ID", marketerrors.ErrInvalidRequest)
	}
	if _, err := s.store.GetAuction(ctx, auctionID); err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to get winning bid for auction %s: %w", auctionID, err)
	}

	bid, err := s.store.GetHighestBid(ctx, auctionID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to get winning bid for auction %s: %w", auctionID, err)
	}
	return bid, nil
}

// transition moves the auction forward and persists the new status
func transition(ctx context.Context, tx repository.Tx, a *model.Auction, next model.AuctionStatus) error {
	if !a.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: auction %s cannot move from %s to %s", marketerrors.ErrInvariantViolation, a.AuctionID, a.Status, next)
	}
	if err := tx.UpdateAuctionStatus(ctx, a.AuctionID, next); err != nil {
		return err
	}
	a.Status = next
	return nil
}

// standingBid checks the history and returns the current highest bid, if any.
// Accepted bids strictly increase, so the last one is the highest.
func standingBid(ctx context.Context, tx repository.Tx, a model.Auction) (*model.Bid, error) {
	bids, err := tx.GetBidsByAuction(ctx, a.AuctionID)
	if err != nil {
		return nil, err
	}
	if len(bids) == 0 {
		return nil, nil
	}
	for i := 1; i < len(bids); i++ {
		if !bids[i].Amount.GreaterThan(bids[i-1].Amount) {
			return nil, violation(a.AuctionID, fmt.Errorf("bid %s (%s) does not exceed bid %s (%s)",
				bids[i].BidID, bids[i].Amount.String(), bids[i-1].BidID, bids[i-1].Amount.String()))
		}
	}
	last := bids[len(bids)-1]
	return &last, nil
}

// violation logs and wraps a broken auction invariant. The cause is flattened
// so callers only ever match ErrInvariantViolation.
func violation(auctionID string, cause error) error {
	utils.Error("auction: internal invariant violated", map[string]any{
		"auction_id": auctionID,
		"error":      cause.Error(),
	})
	return fmt.Errorf("%w: auction %s: %v", marketerrors.ErrInvariantViolation, auctionID, cause)
}

// escrowViolation turns a hold that is smaller than the standing bid into a violation
func escrowViolation(auctionID string, err error) error {
	if errors.Is(err, marketerrors.ErrInvalidState) {
		return violation(auctionID, err)
	}
	return err
}
