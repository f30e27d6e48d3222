package perftests

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// Benchmark 1: PlaceBid - one auction per bidder (low contention)
func Benchmark_PlaceBid_Isolated(b *testing.B) {
	m := newMarket()
	m.fund(b, "seller", 0)

	auctionIDs := make([]string, b.N)
	for i := 0; i < b.N; i++ {
		auctionIDs[i] = m.openAuction(b, fmt.Sprintf("card_%d", i), "seller", 50).AuctionID
		m.fund(b, bidderID(i), 1000)
	}

	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		amount := decimal.NewFromInt(int64(60 + rand.Intn(100)))
		if _, err := m.auctions.PlaceBid(ctx, auctionIDs[i], bidderID(i), amount); err != nil {
			b.Fatalf("failed to place bid: %v", err)
		}
	}
}

// Benchmark 2: PlaceBid - shared auction (high contention)
func Benchmark_PlaceBid_ConcurrentSharedAuction(b *testing.B) {
	const bidders = 64

	m := newMarket()
	m.fund(b, "seller", 0)
	a := m.openAuction(b, "shared_card", "seller", 50)
	for i := 0; i < bidders; i++ {
		m.fund(b, bidderID(i), 1_000_000_000)
	}

	ctx := context.Background()
	var lastBid int64 = 60

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			next := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+3))
			_, _ = m.auctions.PlaceBid(ctx, a.AuctionID, bidderID(rnd.Intn(bidders)), decimal.NewFromInt(next))
		}
	})
}

// Benchmark 3: Buy - one listing per iteration
func Benchmark_Buy_Isolated(b *testing.B) {
	m := newMarket()
	m.fund(b, "seller", 0)
	m.fund(b, "buyer", int64(b.N)*100)

	for i := 0; i < b.N; i++ {
		cardID := fmt.Sprintf("card_%d", i)
		m.mint(b, cardID, "seller")
		m.list(b, cardID, "seller", 100)
	}

	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := m.cards.Buy(ctx, fmt.Sprintf("card_%d", i), "buyer"); err != nil {
			b.Fatalf("failed to buy: %v", err)
		}
	}
}

// Benchmark 4: Deposit - concurrent deposits into separate wallets
func Benchmark_Deposit_Concurrent(b *testing.B) {
	const users = 128

	m := newMarket()
	for i := 0; i < users; i++ {
		m.fund(b, bidderID(i), 0)
	}

	ctx := context.Background()
	amount := decimal.NewFromInt(10)

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			if _, err := m.wallets.Deposit(ctx, bidderID(rnd.Intn(users)), amount); err != nil {
				b.Errorf("failed to deposit: %v", err)
				return
			}
		}
	})
}

// Benchmark 5: Mixed workload on a shared auction (readers + bidders)
func Benchmark_MixedWorkload_SharedAuction(b *testing.B) {
	const bidders = 32

	m := newMarket()
	m.fund(b, "seller", 0)
	a := m.openAuction(b, "shared_card", "seller", 50)
	for i := 0; i < bidders; i++ {
		m.fund(b, bidderID(i), 1_000_000_000)
	}

	ctx := context.Background()
	var lastBid int64 = 60

	b.ReportAllocs()
	b.ResetTimer()

	// 70% readers, 30% bidders
	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			if rnd.Intn(10) < 3 {
				next := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+3))
				_, _ = m.auctions.PlaceBid(ctx, a.AuctionID, bidderID(rnd.Intn(bidders)), decimal.NewFromInt(next))
				continue
			}
			_, _ = m.auctions.WinningBid(ctx, a.AuctionID)
		}
	})
}
