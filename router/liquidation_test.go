package router

import (
	"math/big"
	"testing"

	"github.com/luxfi/perpslab/internal/fixed"
	"github.com/luxfi/perpslab/slab"
	"github.com/stretchr/testify/require"
)

func TestGlobalLiquidationRefusesHealthyPortfolio(t *testing.T) {
	r, shards := newTestRouter(t, 1)
	user := fixed.ID{30}
	r.InitializePortfolio(user)
	require.NoError(t, r.Deposit(user, big.NewInt(1_000_000_000_000)))

	_, err := r.GlobalLiquidation(user, 1000)
	require.ErrorIs(t, err, ErrPortfolioNotLiquidatable)
	_ = shards
}

func TestGlobalLiquidationRanksByNotionalAndClearsExposure(t *testing.T) {
	r, shards := newTestRouter(t, 2)
	user := fixed.ID{31}
	p := r.InitializePortfolio(user)
	// Thin collateral relative to two large exposures: equity is below the
	// netted maintenance margin, so the portfolio is liquidatable.
	require.NoError(t, r.Deposit(user, big.NewInt(1_000_000)))
	p.Exposures = []Exposure{
		{ShardIdx: shards[0], InstrumentIdx: 0, Qty: 3_000_000},
		{ShardIdx: shards[1], InstrumentIdx: 0, Qty: 1_000_000},
	}
	// Give the user an actual on-shard position/account so Shard.Liquidate
	// has something to close.
	for i, shardIdx := range shards {
		shard, err := r.Registry.Get(shardIdx)
		require.NoError(t, err)
		accountIdx := shard.OpenAccount(user)
		require.NoError(t, shard.DepositCash(accountIdx, big.NewInt(1_000_000)))
		maker := shard.OpenAccount(fixed.ID{byte(90 + i)})
		require.NoError(t, shard.DepositCash(maker, big.NewInt(1_000_000_000_000)))
		qty := uint64(3_000_000)
		if i == 1 {
			qty = 1_000_000
		}
		_, err = shard.PlaceOrder(maker, 0, slab.Buy, 50_000_000_000, qty, 0, 0)
		require.NoError(t, err)
		res, err := shard.Reserve(accountIdx, 0, slab.Sell, qty, 1, 0, fixed.ID{}, 1, 1000)
		require.NoError(t, err)
		_, err = shard.Commit(res.HoldID, 1001)
		require.NoError(t, err)
	}

	result, err := r.GlobalLiquidation(user, 2000)
	require.NoError(t, err)
	require.GreaterOrEqual(t, result.ShardsTouched, 1)

	// shards[0] carries the larger notional, so it is liquidated first and
	// its exposure cleared; that close covers the deficit, so shards[1]'s
	// exposure is left in place.
	require.Len(t, p.Exposures, 1)
	require.Equal(t, shards[1], p.Exposures[0].ShardIdx)
}
