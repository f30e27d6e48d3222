package auction

import (
	"context"
	"fmt"

	"card-market/internal/ledger"
	"card-market/internal/marketerrors"
	model "card-market/internal/models"
	"card-market/internal/repository"
	"card-market/utils"

	"github.com/shopspring/decimal"
)

// PlaceBid validates and records a bid, escrowing the bidder's funds and
// releasing the hold of the bid it supersedes
func (s *Service) PlaceBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal) (model.Bid, error) {
	if auctionID == "" || bidderID == "" {
		return model.Bid{}, fmt.Errorf("service: %w - missing auctionID or bidderID", marketerrors.ErrInvalidRequest)
	}
	if !amount.IsPositive() {
		return model.Bid{}, fmt.Errorf("service: %w - non-positive bid amount", marketerrors.ErrInvalidAmount)
	}
	if !model.FitsScale(amount) {
		return model.Bid{}, fmt.Errorf("service: %w - bid %s has more than %d decimal places",
			marketerrors.ErrInvalidAmount, amount.String(), model.AmountScale)
	}

	var bid model.Bid
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		a, err := tx.GetAuction(ctx, auctionID)
		if err != nil {
			return err
		}
		prev, err := s.validateBid(ctx, tx, a, bidderID, amount)
		if err != nil {
			return err
		}

		if prev != nil {
			if err := tx.LockWallets(ctx, bidderID, prev.BidderID); err != nil {
				return err
			}
		} else if err := tx.LockWallets(ctx, bidderID); err != nil {
			return err
		}
		if err := checkSpendable(ctx, tx, bidderID, amount, prev); err != nil {
			return err
		}

		l := ledger.New(tx, tx, s.now)
		if prev != nil {
			if _, err := l.Unlock(ctx, prev.BidderID, prev.Amount); err != nil {
				return escrowViolation(auctionID, err)
			}
		}
		if _, err := l.Lock(ctx, bidderID, amount); err != nil {
			return err
		}

		bid = model.Bid{
			BidID:     utils.GenerateID(),
			AuctionID: auctionID,
			BidderID:  bidderID,
			Amount:    amount,
			CreatedAt: s.now(),
		}
		return tx.RecordBid(ctx, bid)
	})
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to place bid on auction %s by user %s: %w", auctionID, bidderID, err)
	}
	return bid, nil
}

// validateBid checks the auction state and bid rules and returns the bid being superseded
func (s *Service) validateBid(ctx context.Context, tx repository.Tx, a model.Auction, bidderID string, amount decimal.Decimal) (*model.Bid, error) {
	if a.Status != model.AuctionLive {
		return nil, fmt.Errorf("%w - auction %s is %s", marketerrors.ErrNotLive, a.AuctionID, a.Status)
	}
	if s.now().After(a.EndsAt) {
		return nil, fmt.Errorf("%w - auction %s ended at %s", marketerrors.ErrExpired, a.AuctionID, a.EndsAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	if a.SellerID == bidderID {
		return nil, fmt.Errorf("%w - auction %s", marketerrors.ErrSelfBid, a.AuctionID)
	}

	prev, err := standingBid(ctx, tx, a)
	if err != nil {
		return nil, err
	}

	current := a.StartPrice
	if prev != nil {
		current = prev.Amount
	}
	if minimum := current.Add(a.MinIncrement); amount.LessThan(minimum) {
		return nil, &marketerrors.BidTooLowError{Minimum: minimum}
	}
	return prev, nil
}

// checkSpendable fails before any write when the user cannot cover amount.
// A hold the user already has on the standing bid counts towards it.
func checkSpendable(ctx context.Context, tx repository.Tx, userID string, amount decimal.Decimal, standing *model.Bid) error {
	w, err := tx.GetWallet(ctx, userID)
	if err != nil {
		return err
	}

	spendable := w.Spendable()
	if standing != nil && standing.BidderID == userID {
		spendable = spendable.Add(standing.Amount)
	}
	if spendable.LessThan(amount) {
		return fmt.Errorf("%w - spendable balance is %s, need %s", marketerrors.ErrInsufficientFunds, spendable.String(), amount.String())
	}
	return nil
}
