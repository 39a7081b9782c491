package router

import (
	"math/big"
	"testing"

	"github.com/luxfi/perpslab/internal/fixed"
	"github.com/luxfi/perpslab/slab"
	"github.com/stretchr/testify/require"
)

func seedLiquidity(t *testing.T, r *Router, shardIdx uint8, instrumentIdx uint16, maker fixed.ID, px, qty uint64) {
	t.Helper()
	shard, err := r.Registry.Get(shardIdx)
	require.NoError(t, err)
	accountIdx := shard.OpenAccount(maker)
	require.NoError(t, shard.DepositCash(accountIdx, big.NewInt(1_000_000_000_000)))
	_, err = shard.PlaceOrder(accountIdx, instrumentIdx, slab.Sell, px, qty, 0, 0)
	require.NoError(t, err)
}

func TestMultiSlabReserveAtomicRollback(t *testing.T) {
	r, shards := newTestRouter(t, 2)
	maker := fixed.ID{99}
	seedLiquidity(t, r, shards[0], 0, maker, 50_000_000_000, 10)
	// no liquidity seeded on shards[1] -> its Reserve should fail.

	user := fixed.ID{20}
	r.InitializePortfolio(user)
	require.NoError(t, r.Deposit(user, big.NewInt(1_000_000_000)))

	splits := []SplitRequest{
		{ShardIdx: shards[0], InstrumentIdx: 0, Side: slab.Buy, Qty: 5, LimitPx: 50_000_000_000, TtlMs: 0},
		{ShardIdx: shards[1], InstrumentIdx: 0, Side: slab.Buy, Qty: 5, LimitPx: 50_000_000_000, TtlMs: 0},
	}
	_, err := r.MultiSlabReserve(user, splits, 1, 1000)
	require.Error(t, err)

	// The first shard's reservation must have been rolled back by
	// compensate: the maker's order is fully live again with nothing
	// reserved against it.
	shard0, err := r.Registry.Get(shards[0])
	require.NoError(t, err)
	o, ok := shard0.Order(0)
	require.True(t, ok)
	require.EqualValues(t, 10, o.Qty)
	require.EqualValues(t, 0, o.ReservedQty)
}

func TestMultiSlabReserveAndCommitSucceeds(t *testing.T) {
	r, shards := newTestRouter(t, 2)
	maker := fixed.ID{99}
	seedLiquidity(t, r, shards[0], 0, maker, 50_000_000_000, 10)
	seedLiquidity(t, r, shards[1], 0, maker, 50_000_000_000, 10)

	user := fixed.ID{21}
	r.InitializePortfolio(user)
	// Covers the full notional debit of both legs (2 * 5 * 50_000_000_000)
	// plus taker fees.
	require.NoError(t, r.Deposit(user, big.NewInt(1_000_000_000_000)))

	splits := []SplitRequest{
		{ShardIdx: shards[0], InstrumentIdx: 0, Side: slab.Buy, Qty: 5, LimitPx: 50_000_000_000, TtlMs: 0},
		{ShardIdx: shards[1], InstrumentIdx: 0, Side: slab.Buy, Qty: 5, LimitPx: 50_000_000_000, TtlMs: 0},
	}
	reserveResult, err := r.MultiSlabReserve(user, splits, 1, 1000)
	require.NoError(t, err)
	require.EqualValues(t, 10, reserveResult.TotalFilled)
	require.Len(t, reserveResult.Holds, 2)

	commitResult, err := r.MultiSlabCommit(user, reserveResult.Holds, 1001)
	require.NoError(t, err)
	require.Equal(t, 2, commitResult.Committed)

	for _, split := range splits {
		require.NoError(t, r.UpdatePortfolioExposure(user, split.ShardIdx, split.InstrumentIdx, split.Side, 5))
	}

	p, err := r.Portfolio(user)
	require.NoError(t, err)
	require.Len(t, p.Exposures, 2)
	require.EqualValues(t, 5, p.Exposures[0].Qty)
}

func TestExecuteCrossSlabFillsAndUpdatesExposures(t *testing.T) {
	r, shards := newTestRouter(t, 2)
	maker := fixed.ID{99}
	seedLiquidity(t, r, shards[0], 0, maker, 50_000_000_000, 10)
	seedLiquidity(t, r, shards[1], 0, maker, 50_000_000_000, 10)

	user := fixed.ID{23}
	r.InitializePortfolio(user)
	require.NoError(t, r.Deposit(user, big.NewInt(1_000_000_000_000)))

	splits := []SplitRequest{
		{ShardIdx: shards[0], InstrumentIdx: 0, Side: slab.Buy, Qty: 5, LimitPx: 50_000_000_000, TtlMs: 0},
		{ShardIdx: shards[1], InstrumentIdx: 0, Side: slab.Buy, Qty: 5, LimitPx: 50_000_000_000, TtlMs: 0},
	}
	result, err := r.ExecuteCrossSlab(user, splits, 1, 1000)
	require.NoError(t, err)
	require.Equal(t, 2, result.Committed)

	p, err := r.Portfolio(user)
	require.NoError(t, err)
	require.Len(t, p.Exposures, 2)
	require.EqualValues(t, 5, p.Exposures[0].Qty)
	require.EqualValues(t, 5, p.Exposures[1].Qty)
}

func TestExecuteCrossSlabRefusesInsufficientMargin(t *testing.T) {
	r, shards := newTestRouter(t, 1)
	maker := fixed.ID{99}
	seedLiquidity(t, r, shards[0], 0, maker, 50_000_000_000, 10)

	user := fixed.ID{24}
	r.InitializePortfolio(user)
	require.NoError(t, r.Deposit(user, big.NewInt(10_000)))

	splits := []SplitRequest{
		{ShardIdx: shards[0], InstrumentIdx: 0, Side: slab.Buy, Qty: 5, LimitPx: 50_000_000_000, TtlMs: 0},
	}
	_, err := r.ExecuteCrossSlab(user, splits, 1, 1000)
	require.ErrorIs(t, err, ErrPortfolioInsufficientMargin)

	// The reservation was cancelled: the maker's order is fully available
	// again and nothing committed.
	shard0, err := r.Registry.Get(shards[0])
	require.NoError(t, err)
	o, ok := shard0.Order(0)
	require.True(t, ok)
	require.EqualValues(t, 0, o.ReservedQty)
	require.EqualValues(t, 10, o.Qty)
}

func TestMultiSlabCommitBestEffortOnExpiry(t *testing.T) {
	r, shards := newTestRouter(t, 2)
	maker := fixed.ID{99}
	seedLiquidity(t, r, shards[0], 0, maker, 50_000_000_000, 10)
	seedLiquidity(t, r, shards[1], 0, maker, 50_000_000_000, 10)

	user := fixed.ID{22}
	r.InitializePortfolio(user)
	require.NoError(t, r.Deposit(user, big.NewInt(1_000_000_000)))

	splits := []SplitRequest{
		{ShardIdx: shards[0], InstrumentIdx: 0, Side: slab.Buy, Qty: 5, LimitPx: 50_000_000_000, TtlMs: 500},
		{ShardIdx: shards[1], InstrumentIdx: 0, Side: slab.Buy, Qty: 5, LimitPx: 50_000_000_000, TtlMs: 0},
	}
	reserveResult, err := r.MultiSlabReserve(user, splits, 1, 1000)
	require.NoError(t, err)

	// Committing after shard0's TTL (1000+500) has elapsed must fail in the
	// expiry pre-check, before any hold is committed; shard1's hold is left
	// reserved, not committed.
	_, err = r.MultiSlabCommit(user, reserveResult.Holds, 2000)
	require.Error(t, err)
}
