package slab

import (
	"math/big"
	"testing"

	"github.com/luxfi/perpslab/internal/fixed"
	"github.com/stretchr/testify/require"
)

// Mark above index over a full interval produces a positive funding
// delta; longs pay (cash debit), shorts receive.
func TestFundingSigns(t *testing.T) {
	s, instr := newTestShard(t)
	long := s.OpenAccount(fixed.ID{11})
	short := s.OpenAccount(fixed.ID{12})

	_, err := s.updatePosition(long, instr, 1_000_000_000_000, 50_000_000_000)
	require.NoError(t, err)
	_, err = s.updatePosition(short, instr, -1_000_000_000_000, 50_000_000_000)
	require.NoError(t, err)

	require.NoError(t, s.UpdateMarkPrice(51_000_000_000))
	require.NoError(t, s.UpdateFunding(instr, 50_000_000_000, FundingIntervalMs))

	// premium = 200 bps, hourly rate = 25, full interval elapsed -> delta 25.
	i, ok := s.Instrument(instr)
	require.True(t, ok)
	require.Equal(t, big.NewInt(25), i.CumFunding)

	longAcc, ok := s.Account(long)
	require.True(t, ok)
	require.Negative(t, longAcc.Cash.Sign(), "long pays positive funding")

	shortAcc, ok := s.Account(short)
	require.True(t, ok)
	require.Positive(t, shortAcc.Cash.Sign(), "short receives positive funding")

	require.Equal(t, new(big.Int).Neg(longAcc.Cash), shortAcc.Cash, "funding is zero-sum across equal opposing positions")
}

func TestFundingRefusedWithinInterval(t *testing.T) {
	s, instr := newTestShard(t)
	require.NoError(t, s.UpdateMarkPrice(50_000_000_000))
	require.NoError(t, s.UpdateFunding(instr, 50_000_000_000, FundingIntervalMs))

	err := s.UpdateFunding(instr, 50_000_000_000, FundingIntervalMs+1000)
	require.ErrorIs(t, err, ErrInvalidInstruction)
}

func TestCalculateFundingRateHalfInterval(t *testing.T) {
	// Half the interval elapsed halves the accrued delta.
	full := calculateFundingRate(51_000_000_000, 50_000_000_000, FundingIntervalMs)
	half := calculateFundingRate(51_000_000_000, 50_000_000_000, FundingIntervalMs/2)
	require.Equal(t, new(big.Int).Quo(full, big.NewInt(2)), half)
}

func TestFundingNegativePremium(t *testing.T) {
	// Mark below index: delta is negative, longs receive, shorts pay.
	delta := calculateFundingRate(49_000_000_000, 50_000_000_000, FundingIntervalMs)
	require.Negative(t, delta.Sign())
}
