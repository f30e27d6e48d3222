// Package postgres implements repository.Store on PostgreSQL through gorm.
// Reads made inside an atomic unit take row locks (SELECT ... FOR UPDATE).
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"card-market/internal/marketerrors"
	model "card-market/internal/models"
	"card-market/internal/repository"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Store is a gorm-backed repository.Store
type Store struct {
	db        *gorm.DB
	forUpdate bool
}

var _ repository.Store = (*Store)(nil)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}
}

// Open connects to dsn and sizes the connection pool
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("postgres: empty DSN")
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to get pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Migrate creates or updates the market tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&WalletRow{}, &CardRow{}, &AuctionRow{}, &BidRow{}, &TransactionRow{}); err != nil {
		return fmt.Errorf("postgres: failed to migrate: %w", err)
	}
	return nil
}

// New wraps an open gorm handle
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Atomic runs fn inside one database transaction
func (s *Store) Atomic(ctx context.Context, fn func(tx repository.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, forUpdate: true})
	})
}

// query starts a statement, locking the selected rows inside a unit
func (s *Store) query(ctx context.Context) *gorm.DB {
	q := s.db.WithContext(ctx)
	if s.forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (s *Store) GetWallet(ctx context.Context, userID string) (model.Wallet, error) {
	var row WalletRow
	if err := s.query(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return model.Wallet{}, fmt.Errorf("get wallet %s: %w", userID, notFound(err, marketerrors.ErrWalletNotFound))
	}
	return row.toModel(), nil
}

func (s *Store) CreateWallet(ctx context.Context, wallet model.Wallet) error {
	row := walletFromModel(wallet)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create wallet %s: %w", wallet.UserID, duplicate(err, marketerrors.ErrWalletExists))
	}
	return nil
}

func (s *Store) UpdateWallet(ctx context.Context, wallet model.Wallet) error {
	res := s.db.WithContext(ctx).Model(&WalletRow{}).
		Where("user_id = ?", wallet.UserID).
		Updates(map[string]any{"balance": wallet.Balance, "locked_balance": wallet.LockedBalance})
	if res.Error != nil {
		return fmt.Errorf("update wallet %s: %w", wallet.UserID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update wallet %s: %w", wallet.UserID, marketerrors.ErrWalletNotFound)
	}
	return nil
}

// LockWallets locks the wallet rows in user ID order; outside a unit it is a no-op
func (s *Store) LockWallets(ctx context.Context, userIDs ...string) error {
	if !s.forUpdate || len(userIDs) == 0 {
		return nil
	}

	ids := dedupeSorted(userIDs)
	var rows []WalletRow
	if err := s.query(ctx).Where("user_id IN ?", ids).Order("user_id").Find(&rows).Error; err != nil {
		return fmt.Errorf("lock wallets: %w", err)
	}
	return nil
}

func (s *Store) GetCard(ctx context.Context, cardID string) (model.Card, error) {
	var row CardRow
	if err := s.query(ctx).Where("card_id = ?", cardID).First(&row).Error; err != nil {
		return model.Card{}, fmt.Errorf("get card %s: %w", cardID, notFound(err, marketerrors.ErrCardNotFound))
	}
	return row.toModel(), nil
}

func (s *Store) CreateCard(ctx context.Context, card model.Card) error {
	row := cardFromModel(card)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create card %s: %w", card.CardID, duplicate(err, marketerrors.ErrCardExists))
	}
	return nil
}

func (s *Store) UpdateCard(ctx context.Context, card model.Card) error {
	res := s.db.WithContext(ctx).Model(&CardRow{}).
		Where("card_id = ?", card.CardID).
		Updates(map[string]any{
			"name":     card.Name,
			"owner_id": card.OwnerID,
			"for_sale": card.ForSale,
			"price":    card.Price,
		})
	if res.Error != nil {
		return fmt.Errorf("update card %s: %w", card.CardID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update card %s: %w", card.CardID, marketerrors.ErrCardNotFound)
	}
	return nil
}

func (s *Store) ListCardsForSale(ctx context.Context) ([]model.Card, error) {
	var rows []CardRow
	if err := s.db.WithContext(ctx).Where("for_sale = ?", true).Order("card_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list cards for sale: %w", err)
	}
	return cardsToModel(rows), nil
}

func (s *Store) ListCardsByOwner(ctx context.Context, ownerID string) ([]model.Card, error) {
	var rows []CardRow
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("card_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list cards of %s: %w", ownerID, err)
	}
	return cardsToModel(rows), nil
}

func (s *Store) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	var row AuctionRow
	if err := s.query(ctx).Where("auction_id = ?", auctionID).First(&row).Error; err != nil {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, notFound(err, marketerrors.ErrAuctionNotFound))
	}
	return row.toModel(), nil
}

func (s *Store) CreateAuction(ctx context.Context, auction model.Auction) error {
	row := auctionFromModel(auction)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, duplicate(err, marketerrors.ErrInvalidRequest))
	}
	return nil
}

func (s *Store) UpdateAuctionStatus(ctx context.Context, auctionID string, status model.AuctionStatus) error {
	res := s.db.WithContext(ctx).Model(&AuctionRow{}).
		Where("auction_id = ?", auctionID).
		Update("status", string(status))
	if res.Error != nil {
		return fmt.Errorf("update auction %s: %w", auctionID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update auction %s: %w", auctionID, marketerrors.ErrAuctionNotFound)
	}
	return nil
}

func (s *Store) FindLiveAuctionByCard(ctx context.Context, cardID string) (model.Auction, bool, error) {
	var rows []AuctionRow
	err := s.db.WithContext(ctx).
		Where("card_id = ? AND status = ?", cardID, string(model.AuctionLive)).
		Limit(1).Find(&rows).Error
	if err != nil {
		return model.Auction{}, false, fmt.Errorf("find live auction of card %s: %w", cardID, err)
	}
	if len(rows) == 0 {
		return model.Auction{}, false, nil
	}
	return rows[0].toModel(), true, nil
}

func (s *Store) ListAuctionsByStatus(ctx context.Context, status model.AuctionStatus) ([]model.Auction, error) {
	var rows []AuctionRow
	err := s.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("ends_at").Order("auction_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list %s auctions: %w", status, err)
	}

	auctions := make([]model.Auction, 0, len(rows))
	for _, r := range rows {
		auctions = append(auctions, r.toModel())
	}
	return auctions, nil
}

func (s *Store) RecordBid(ctx context.Context, bid model.Bid) error {
	row := bidFromModel(bid)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, err)
	}
	return nil
}

func (s *Store) GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error) {
	var rows []BidRow
	if err := s.db.WithContext(ctx).Where("auction_id = ?", auctionID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
	}

	bids := make([]model.Bid, 0, len(rows))
	for _, r := range rows {
		bids = append(bids, r.toModel())
	}
	return bids, nil
}

func (s *Store) GetHighestBid(ctx context.Context, auctionID string) (model.Bid, error) {
	var rows []BidRow
	err := s.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("amount DESC").Order("id").
		Limit(1).Find(&rows).Error
	if err != nil {
		return model.Bid{}, fmt.Errorf("get highest bid for auction %s: %w", auctionID, err)
	}
	if len(rows) == 0 {
		return model.Bid{}, fmt.Errorf("get highest bid for auction %s: %w", auctionID, marketerrors.ErrNoBids)
	}
	return rows[0].toModel(), nil
}

func (s *Store) AppendTransactions(ctx context.Context, txs ...model.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	rows := make([]TransactionRow, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, transactionFromModel(t))
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("append transactions: %w", err)
	}
	return nil
}

func (s *Store) ListTransactionsByUser(ctx context.Context, userID string) ([]model.Transaction, error) {
	var rows []TransactionRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list transactions of %s: %w", userID, err)
	}

	txs := make([]model.Transaction, 0, len(rows))
	for _, r := range rows {
		txs = append(txs, r.toModel())
	}
	return txs, nil
}

func cardsToModel(rows []CardRow) []model.Card {
	cards := make([]model.Card, 0, len(rows))
	for _, r := range rows {
		cards = append(cards, r.toModel())
	}
	return cards
}

func dedupeSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func duplicate(err, sentinel error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return sentinel
	}
	return err
}
