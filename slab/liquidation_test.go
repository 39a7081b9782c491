package slab

import (
	"math/big"
	"testing"

	"github.com/luxfi/perpslab/internal/fixed"
	"github.com/stretchr/testify/require"
)

// Opens an under-margined short for user against maker's resting bid, so
// the account is below maintenance margin at the current mark.
func openUnderwaterShort(t *testing.T, s *Shard, instr uint16, user, maker uint32, qty uint64) {
	t.Helper()
	require.NoError(t, s.DepositCash(maker, big.NewInt(1_000_000_000_000)))
	require.NoError(t, s.DepositCash(user, big.NewInt(1_000_000)))

	_, err := s.PlaceOrder(maker, instr, Buy, 50_000_000_000, qty, 0, 0)
	require.NoError(t, err)
	res, err := s.Reserve(user, instr, Sell, qty, 1, 0, fixed.ID{}, 1, 1000)
	require.NoError(t, err)
	_, err = s.Commit(res.HoldID, 1001)
	require.NoError(t, err)
}

func TestLiquidateClosesPositionsAndCreditsInsurance(t *testing.T) {
	s, instr := newTestShard(t)
	s.InitInsurance(fixed.ID{7}, 50, 50, 600)
	require.NoError(t, s.UpdateMarkPrice(50_000_000_000))

	user := s.OpenAccount(fixed.ID{20})
	maker := s.OpenAccount(fixed.ID{21})
	openUnderwaterShort(t, s, instr, user, maker, 3_000_000)

	require.True(t, s.IsLiquidatable(user), "thin cash against a large short must be below MM")

	result, err := s.Liquidate(user, big.NewInt(1_000_000_000), 2000)
	require.NoError(t, err)
	require.EqualValues(t, 1, result.PositionsClosed)
	require.EqualValues(t, 3_000_000, result.TotalQtyLiquidated)
	require.Positive(t, result.InsuranceContrib.Sign())
	require.Equal(t, result.InsuranceContrib, s.Insurance.Balance)

	_, ok := s.Position(user, instr)
	require.False(t, ok, "liquidated position must be freed")
}

func TestLiquidateRefusesHealthyAccount(t *testing.T) {
	s, _ := newTestShard(t)
	require.NoError(t, s.UpdateMarkPrice(50_000_000_000))
	user := s.OpenAccount(fixed.ID{20})
	require.NoError(t, s.DepositCash(user, big.NewInt(1_000_000_000)))

	_, err := s.Liquidate(user, big.NewInt(1), 2000)
	require.ErrorIs(t, err, ErrInvalidAccount)
}

func TestLiquidationClosePriceBandsAgainstPosition(t *testing.T) {
	// A long is sold below mark, a short bought back above it, each by
	// the 5% impact band.
	require.EqualValues(t, 47_500_000_000, liquidationClosePrice(50_000_000_000, true))
	require.EqualValues(t, 52_500_000_000, liquidationClosePrice(50_000_000_000, false))
}
