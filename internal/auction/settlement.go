package auction

import (
	"context"
	"fmt"

	"card-market/internal/ledger"
	"card-market/internal/marketerrors"
	model "card-market/internal/models"
	"card-market/internal/ownership"
	"card-market/internal/repository"

	"github.com/shopspring/decimal"
)

// BuyNow sells the card immediately at the buy-now price. A standing bid is
// superseded and its hold released, not executed.
func (s *Service) BuyNow(ctx context.Context, auctionID, buyerID string) (Outcome, error) {
	if auctionID == "" || buyerID == "" {
		return Outcome{}, fmt.Errorf("service: %w - missing auctionID or buyerID", marketerrors.ErrInvalidRequest)
	}

	var out Outcome
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		a, err := tx.GetAuction(ctx, auctionID)
		if err != nil {
			return err
		}
		if a.BuyNowPrice == nil {
			return fmt.Errorf("%w - auction %s", marketerrors.ErrNoBuyNowPrice, auctionID)
		}
		if a.Status != model.AuctionLive {
			return fmt.Errorf("%w - auction %s is %s", marketerrors.ErrNotLive, auctionID, a.Status)
		}
		if s.now().After(a.EndsAt) {
			return fmt.Errorf("%w - auction %s", marketerrors.ErrExpired, auctionID)
		}
		if a.SellerID == buyerID {
			return fmt.Errorf("%w - auction %s", marketerrors.ErrSelfTrade, auctionID)
		}

		prev, err := standingBid(ctx, tx, a)
		if err != nil {
			return err
		}
		name := s.cardName(ctx, tx, a.CardID)
		users := []string{buyerID, a.SellerID}
		if prev != nil {
			users = append(users, prev.BidderID)
		}
		if err := tx.LockWallets(ctx, users...); err != nil {
			return err
		}

		price := *a.BuyNowPrice
		if err := checkSpendable(ctx, tx, buyerID, price, prev); err != nil {
			return err
		}

		l := ledger.New(tx, tx, s.now)
		if prev != nil {
			if _, err := l.Unlock(ctx, prev.BidderID, prev.Amount); err != nil {
				return escrowViolation(auctionID, err)
			}
		}

		fee, sellerReceives := ledger.SplitSale(price)
		if _, err := l.Debit(ctx, buyerID, price, ledger.Entry{
			Type:        model.TxBuyNowPurchase,
			Description: fmt.Sprintf("Bought %s now from %s", name, a.SellerID),
			Reference:   auctionID,
		}); err != nil {
			return err
		}
		if err := s.paySeller(ctx, l, a, name, buyerID, sellerReceives, fee, model.TxBuyNowSale); err != nil {
			return err
		}
		if _, err := ownership.NewRegistry(tx, tx).TransferOwnership(ctx, a.CardID, a.SellerID, buyerID); err != nil {
			return err
		}
		if err := transition(ctx, tx, &a, model.AuctionSettled); err != nil {
			return err
		}

		out = Outcome{
			Auction:        a,
			WinnerID:       buyerID,
			Price:          price,
			Fee:            fee,
			SellerReceives: sellerReceives,
			Sold:           true,
		}
		return nil
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("service: failed to buy now on auction %s by user %s: %w", auctionID, buyerID, err)
	}
	return out, nil
}

// Settle closes an auction after it ends. Without bids, or when the winning
// bid misses the reserve, the auction ends unsold and any hold is released.
func (s *Service) Settle(ctx context.Context, auctionID string) (Outcome, error) {
	if auctionID == "" {
		return Outcome{}, fmt.Errorf("service: %w - empty auction ID", marketerrors.ErrInvalidRequest)
	}

	var out Outcome
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		a, err := tx.GetAuction(ctx, auctionID)
		if err != nil {
			return err
		}
		switch a.Status {
		case model.AuctionEnded, model.AuctionSettled:
			return fmt.Errorf("%w - auction %s is %s", marketerrors.ErrAlreadySettled, auctionID, a.Status)
		case model.AuctionLive:
		default:
			return fmt.Errorf("%w - auction %s is %s", marketerrors.ErrNotLive, auctionID, a.Status)
		}
		if !s.now().After(a.EndsAt) {
			return fmt.Errorf("%w - auction %s ends at %s", marketerrors.ErrNotEnded, auctionID, a.EndsAt.Format("2006-01-02T15:04:05Z07:00"))
		}

		winner, err := standingBid(ctx, tx, a)
		if err != nil {
			return err
		}
		if winner == nil {
			if err := transition(ctx, tx, &a, model.AuctionEnded); err != nil {
				return err
			}
			out = Outcome{Auction: a}
			return nil
		}

		name := s.cardName(ctx, tx, a.CardID)
		if err := tx.LockWallets(ctx, winner.BidderID, a.SellerID); err != nil {
			return err
		}
		l := ledger.New(tx, tx, s.now)

		if winner.Amount.LessThan(a.ReservePrice) {
			if _, err := l.Unlock(ctx, winner.BidderID, winner.Amount); err != nil {
				return escrowViolation(auctionID, err)
			}
			if err := transition(ctx, tx, &a, model.AuctionEnded); err != nil {
				return err
			}
			out = Outcome{Auction: a, WinningBid: winner}
			return nil
		}

		fee, sellerReceives := ledger.SplitSale(winner.Amount)
		if _, err := l.SettleLock(ctx, winner.BidderID, winner.Amount, ledger.Entry{
			Type:        model.TxAuctionPurchase,
			Description: fmt.Sprintf("Won %s at auction from %s", name, a.SellerID),
			Reference:   auctionID,
		}); err != nil {
			return escrowViolation(auctionID, err)
		}
		if err := s.paySeller(ctx, l, a, name, winner.BidderID, sellerReceives, fee, model.TxAuctionSale); err != nil {
			return err
		}
		if _, err := ownership.NewRegistry(tx, tx).TransferOwnership(ctx, a.CardID, a.SellerID, winner.BidderID); err != nil {
			return err
		}
		if err := transition(ctx, tx, &a, model.AuctionSettled); err != nil {
			return err
		}

		out = Outcome{
			Auction:        a,
			WinningBid:     winner,
			WinnerID:       winner.BidderID,
			Price:          winner.Amount,
			Fee:            fee,
			SellerReceives: sellerReceives,
			Sold:           true,
		}
		return nil
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("service: failed to settle auction %s: %w", auctionID, err)
	}
	return out, nil
}

// paySeller credits the seller's share and records the platform fee
func (s *Service) paySeller(ctx context.Context, l *ledger.Ledger, a model.Auction, name, buyerID string,
	sellerReceives, fee decimal.Decimal, typ model.TransactionType) error {
	if _, err := l.Credit(ctx, a.SellerID, sellerReceives, ledger.Entry{
		Type:        typ,
		Description: fmt.Sprintf("Sold %s to %s", name, buyerID),
		Reference:   a.AuctionID,
	}); err != nil {
		return err
	}
	return l.RecordFee(ctx, fee, ledger.Entry{
		Description: fmt.Sprintf("Fee on auction sale of %s", name),
		Reference:   a.AuctionID,
	})
}

// cardName resolves a display name; a missing card only affects descriptions
func (s *Service) cardName(ctx context.Context, tx repository.Tx, cardID string) string {
	card, err := tx.GetCard(ctx, cardID)
	if err != nil {
		card = model.Card{CardID: cardID}
	}
	return ownership.DisplayName(s.catalog, card)
}
