package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"card-market/internal/marketerrors"
	model "card-market/internal/models"
)

// MemoryRepo is a concurrency-safe in-memory implementation of Store.
// An atomic unit holds the write lock for its whole duration and stages its
// writes in an overlay that is applied only when the unit succeeds.
type MemoryRepo struct {
	mu       sync.RWMutex
	wallets  map[string]model.Wallet  // key: userID
	cards    map[string]model.Card    // key: cardID
	auctions map[string]model.Auction // key: auctionID
	bids     map[string][]model.Bid   // key: auctionID -> bids in insertion order
	txs      []model.Transaction
}

var _ Store = (*MemoryRepo)(nil)

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		wallets:  make(map[string]model.Wallet),
		cards:    make(map[string]model.Card),
		auctions: make(map[string]model.Auction),
		bids:     make(map[string][]model.Bid),
	}
}

// Atomic runs fn as one isolated unit
func (r *MemoryRepo) Atomic(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.write(func(tx *memTx) error { return fn(tx) })
}

func (r *MemoryRepo) read(fn func(tx *memTx) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fn(newMemTx(r))
}

func (r *MemoryRepo) write(fn func(tx *memTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := newMemTx(r)
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (r *MemoryRepo) GetWallet(ctx context.Context, userID string) (w model.Wallet, err error) {
	err = r.read(func(tx *memTx) error {
		w, err = tx.GetWallet(ctx, userID)
		return err
	})
	return w, err
}

func (r *MemoryRepo) CreateWallet(ctx context.Context, wallet model.Wallet) error {
	return r.write(func(tx *memTx) error { return tx.CreateWallet(ctx, wallet) })
}

func (r *MemoryRepo) UpdateWallet(ctx context.Context, wallet model.Wallet) error {
	return r.write(func(tx *memTx) error { return tx.UpdateWallet(ctx, wallet) })
}

// LockWallets is a no-op outside an atomic unit
func (r *MemoryRepo) LockWallets(ctx context.Context, userIDs ...string) error {
	return nil
}

func (r *MemoryRepo) GetCard(ctx context.Context, cardID string) (c model.Card, err error) {
	err = r.read(func(tx *memTx) error {
		c, err = tx.GetCard(ctx, cardID)
		return err
	})
	return c, err
}

func (r *MemoryRepo) CreateCard(ctx context.Context, card model.Card) error {
	return r.write(func(tx *memTx) error { return tx.CreateCard(ctx, card) })
}

func (r *MemoryRepo) UpdateCard(ctx context.Context, card model.Card) error {
	return r.write(func(tx *memTx) error { return tx.UpdateCard(ctx, card) })
}

func (r *MemoryRepo) ListCardsForSale(ctx context.Context) (cards []model.Card, err error) {
	err = r.read(func(tx *memTx) error {
		cards, err = tx.ListCardsForSale(ctx)
		return err
	})
	return cards, err
}

func (r *MemoryRepo) ListCardsByOwner(ctx context.Context, ownerID string) (cards []model.Card, err error) {
	err = r.read(func(tx *memTx) error {
		cards, err = tx.ListCardsByOwner(ctx, ownerID)
		return err
	})
	return cards, err
}

func (r *MemoryRepo) GetAuction(ctx context.Context, auctionID string) (a model.Auction, err error) {
	err = r.read(func(tx *memTx) error {
		a, err = tx.GetAuction(ctx, auctionID)
		return err
	})
	return a, err
}

func (r *MemoryRepo) CreateAuction(ctx context.Context, auction model.Auction) error {
	return r.write(func(tx *memTx) error { return tx.CreateAuction(ctx, auction) })
}

func (r *MemoryRepo) UpdateAuctionStatus(ctx context.Context, auctionID string, status model.AuctionStatus) error {
	return r.write(func(tx *memTx) error { return tx.UpdateAuctionStatus(ctx, auctionID, status) })
}

func (r *MemoryRepo) FindLiveAuctionByCard(ctx context.Context, cardID string) (a model.Auction, ok bool, err error) {
	err = r.read(func(tx *memTx) error {
		a, ok, err = tx.FindLiveAuctionByCard(ctx, cardID)
		return err
	})
	return a, ok, err
}

func (r *MemoryRepo) ListAuctionsByStatus(ctx context.Context, status model.AuctionStatus) (auctions []model.Auction, err error) {
	err = r.read(func(tx *memTx) error {
		auctions, err = tx.ListAuctionsByStatus(ctx, status)
		return err
	})
	return auctions, err
}

func (r *MemoryRepo) RecordBid(ctx context.Context, bid model.Bid) error {
	return r.write(func(tx *memTx) error { return tx.RecordBid(ctx, bid) })
}

func (r *MemoryRepo) GetBidsByAuction(ctx context.Context, auctionID string) (bids []model.Bid, err error) {
	err = r.read(func(tx *memTx) error {
		bids, err = tx.GetBidsByAuction(ctx, auctionID)
		return err
	})
	return bids, err
}

func (r *MemoryRepo) GetHighestBid(ctx context.Context, auctionID string) (b model.Bid, err error) {
	err = r.read(func(tx *memTx) error {
		b, err = tx.GetHighestBid(ctx, auctionID)
		return err
	})
	return b, err
}

func (r *MemoryRepo) AppendTransactions(ctx context.Context, txs ...model.Transaction) error {
	return r.write(func(tx *memTx) error { return tx.AppendTransactions(ctx, txs...) })
}

func (r *MemoryRepo) ListTransactionsByUser(ctx context.Context, userID string) (txs []model.Transaction, err error) {
	err = r.read(func(tx *memTx) error {
		txs, err = tx.ListTransactionsByUser(ctx, userID)
		return err
	})
	return txs, err
}

// memTx reads through its own staged writes to the repo underneath.
// The caller must hold the repo lock for the lifetime of the memTx.
type memTx struct {
	repo     *MemoryRepo
	wallets  map[string]model.Wallet
	cards    map[string]model.Card
	auctions map[string]model.Auction
	bids     map[string][]model.Bid
	txs      []model.Transaction
}

func newMemTx(r *MemoryRepo) *memTx {
	return &memTx{
		repo:     r,
		wallets:  make(map[string]model.Wallet),
		cards:    make(map[string]model.Card),
		auctions: make(map[string]model.Auction),
		bids:     make(map[string][]model.Bid),
	}
}

func (t *memTx) commit() {
	for id, w := range t.wallets {
		t.repo.wallets[id] = w
	}
	for id, c := range t.cards {
		t.repo.cards[id] = c
	}
	for id, a := range t.auctions {
		t.repo.auctions[id] = a
	}
	for id, bids := range t.bids {
		t.repo.bids[id] = append(t.repo.bids[id], bids...)
	}
	t.repo.txs = append(t.repo.txs, t.txs...)
}

func (t *memTx) wallet(userID string) (model.Wallet, bool) {
	if w, ok := t.wallets[userID]; ok {
		return w, true
	}
	w, ok := t.repo.wallets[userID]
	return w, ok
}

func (t *memTx) card(cardID string) (model.Card, bool) {
	if c, ok := t.cards[cardID]; ok {
		return c, true
	}
	c, ok := t.repo.cards[cardID]
	return c, ok
}

func (t *memTx) auction(auctionID string) (model.Auction, bool) {
	if a, ok := t.auctions[auctionID]; ok {
		return a, true
	}
	a, ok := t.repo.auctions[auctionID]
	return a, ok
}

func (t *memTx) allCards() []model.Card {
	cards := make([]model.Card, 0, len(t.repo.cards)+len(t.cards))
	for id, c := range t.repo.cards {
		if staged, ok := t.cards[id]; ok {
			c = staged
		}
		cards = append(cards, c)
	}
	for id, c := range t.cards {
		if _, ok := t.repo.cards[id]; !ok {
			cards = append(cards, c)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].CardID < cards[j].CardID })
	return cards
}

func (t *memTx) allAuctions() []model.Auction {
	auctions := make([]model.Auction, 0, len(t.repo.auctions)+len(t.auctions))
	for id, a := range t.repo.auctions {
		if staged, ok := t.auctions[id]; ok {
			a = staged
		}
		auctions = append(auctions, a)
	}
	for id, a := range t.auctions {
		if _, ok := t.repo.auctions[id]; !ok {
			auctions = append(auctions, a)
		}
	}
	return auctions
}

func (t *memTx) GetWallet(ctx context.Context, userID string) (model.Wallet, error) {
	w, ok := t.wallet(userID)
	if !ok {
		return model.Wallet{}, fmt.Errorf("get wallet %s: %w", userID, marketerrors.ErrWalletNotFound)
	}
	return w, nil
}

func (t *memTx) CreateWallet(ctx context.Context, wallet model.Wallet) error {
	if _, ok := t.wallet(wallet.UserID); ok {
		return fmt.Errorf("create wallet %s: %w", wallet.UserID, marketerrors.ErrWalletExists)
	}
	t.wallets[wallet.UserID] = wallet
	return nil
}

func (t *memTx) UpdateWallet(ctx context.Context, wallet model.Wallet) error {
	if _, ok := t.wallet(wallet.UserID); !ok {
		return fmt.Errorf("update wallet %s: %w", wallet.UserID, marketerrors.ErrWalletNotFound)
	}
	t.wallets[wallet.UserID] = wallet
	return nil
}

// LockWallets is satisfied by the unit-wide lock the memTx runs under
func (t *memTx) LockWallets(ctx context.Context, userIDs ...string) error {
	return nil
}

func (t *memTx) GetCard(ctx context.Context, cardID string) (model.Card, error) {
	c, ok := t.card(cardID)
	if !ok {
		return model.Card{}, fmt.Errorf("get card %s: %w", cardID, marketerrors.ErrCardNotFound)
	}
	return c, nil
}

func (t *memTx) CreateCard(ctx context.Context, card model.Card) error {
	if _, ok := t.card(card.CardID); ok {
		return fmt.Errorf("create card %s: %w", card.CardID, marketerrors.ErrCardExists)
	}
	t.cards[card.CardID] = card
	return nil
}

func (t *memTx) UpdateCard(ctx context.Context, card model.Card) error {
	if _, ok := t.card(card.CardID); !ok {
		return fmt.Errorf("update card %s: %w", card.CardID, marketerrors.ErrCardNotFound)
	}
	t.cards[card.CardID] = card
	return nil
}

func (t *memTx) ListCardsForSale(ctx context.Context) ([]model.Card, error) {
	cards := []model.Card{}
	for _, c := range t.allCards() {
		if c.ForSale {
			cards = append(cards, c)
		}
	}
	return cards, nil
}

func (t *memTx) ListCardsByOwner(ctx context.Context, ownerID string) ([]model.Card, error) {
	cards := []model.Card{}
	for _, c := range t.allCards() {
		if c.OwnerID == ownerID {
			cards = append(cards, c)
		}
	}
	return cards, nil
}

func (t *memTx) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	a, ok := t.auction(auctionID)
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, marketerrors.ErrAuctionNotFound)
	}
	return a, nil
}

func (t *memTx) CreateAuction(ctx context.Context, auction model.Auction) error {
	if _, ok := t.auction(auction.AuctionID); ok {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, marketerrors.ErrInvalidRequest)
	}
	t.auctions[auction.AuctionID] = auction
	return nil
}

func (t *memTx) UpdateAuctionStatus(ctx context.Context, auctionID string, status model.AuctionStatus) error {
	a, ok := t.auction(auctionID)
	if !ok {
		return fmt.Errorf("update auction %s: %w", auctionID, marketerrors.ErrAuctionNotFound)
	}
	a.Status = status
	t.auctions[auctionID] = a
	return nil
}

func (t *memTx) FindLiveAuctionByCard(ctx context.Context, cardID string) (model.Auction, bool, error) {
	for _, a := range t.allAuctions() {
		if a.CardID == cardID && a.Status == model.AuctionLive {
			return a, true, nil
		}
	}
	return model.Auction{}, false, nil
}

func (t *memTx) ListAuctionsByStatus(ctx context.Context, status model.AuctionStatus) ([]model.Auction, error) {
	auctions := []model.Auction{}
	for _, a := range t.allAuctions() {
		if a.Status == status {
			auctions = append(auctions, a)
		}
	}
	sort.Slice(auctions, func(i, j int) bool {
		if auctions[i].EndsAt.Equal(auctions[j].EndsAt) {
			return auctions[i].AuctionID < auctions[j].AuctionID
		}
		return auctions[i].EndsAt.Before(auctions[j].EndsAt)
	})
	return auctions, nil
}

func (t *memTx) RecordBid(ctx context.Context, bid model.Bid) error {
	if _, ok := t.auction(bid.AuctionID); !ok {
		return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, marketerrors.ErrAuctionNotFound)
	}
	t.bids[bid.AuctionID] = append(t.bids[bid.AuctionID], bid)
	return nil
}

func (t *memTx) GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error) {
	committed := t.repo.bids[auctionID]
	staged := t.bids[auctionID]
	bids := make([]model.Bid, 0, len(committed)+len(staged))
	bids = append(bids, committed...)
	return append(bids, staged...), nil
}

func (t *memTx) GetHighestBid(ctx context.Context, auctionID string) (model.Bid, error) {
	bids, _ := t.GetBidsByAuction(ctx, auctionID)
	if len(bids) == 0 {
		return model.Bid{}, fmt.Errorf("get highest bid for auction %s: %w", auctionID, marketerrors.ErrNoBids)
	}

	highest := bids[0]
	for _, b := range bids[1:] {
		if b.Amount.GreaterThan(highest.Amount) {
			highest = b
		}
	}
	return highest, nil
}

func (t *memTx) AppendTransactions(ctx context.Context, txs ...model.Transaction) error {
	t.txs = append(t.txs, txs...)
	return nil
}

func (t *memTx) ListTransactionsByUser(ctx context.Context, userID string) ([]model.Transaction, error) {
	all := make([]model.Transaction, 0, len(t.repo.txs)+len(t.txs))
	all = append(all, t.repo.txs...)
	all = append(all, t.txs...)

	txs := []model.Transaction{}
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].UserID == userID {
			txs = append(txs, all[i])
		}
	}
	return txs, nil
}
