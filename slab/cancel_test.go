package slab

import (
	"testing"

	"github.com/luxfi/perpslab/internal/fixed"
	"github.com/stretchr/testify/require"
)

func TestCancelOrderUnreserved(t *testing.T) {
	s, instr := newTestShard(t)
	maker := s.OpenAccount(fixed.ID{9})

	ord, err := s.PlaceOrder(maker, instr, Sell, 100, 10, 0, 0)
	require.NoError(t, err)

	require.NoError(t, s.CancelOrder(ord, maker, instr))
	_, ok := s.Order(ord)
	require.False(t, ok)

	i, _ := s.Instrument(instr)
	require.Equal(t, invalid, i.AsksLiveHead)
}

func TestCancelOrderRequiresOwner(t *testing.T) {
	s, instr := newTestShard(t)
	maker := s.OpenAccount(fixed.ID{9})
	other := s.OpenAccount(fixed.ID{10})

	ord, err := s.PlaceOrder(maker, instr, Sell, 100, 10, 0, 0)
	require.NoError(t, err)

	require.ErrorIs(t, s.CancelOrder(ord, other, instr), ErrUnauthorized)
}

// Cancelling a partially-reserved order shrinks it to the reserved size;
// cancelling a fully-reserved order is refused outright.
func TestCancelOrderShrinksToReservedQty(t *testing.T) {
	s, instr := newTestShard(t)
	maker := s.OpenAccount(fixed.ID{9})
	taker := s.OpenAccount(fixed.ID{10})

	ord, err := s.PlaceOrder(maker, instr, Sell, 100, 10, 0, 0)
	require.NoError(t, err)
	res, err := s.Reserve(taker, instr, Buy, 6, 100, 0, fixed.ID{}, 1, 1000)
	require.NoError(t, err)

	require.NoError(t, s.CancelOrder(ord, maker, instr))
	o, ok := s.Order(ord)
	require.True(t, ok, "reserved portion must survive the cancel")
	require.EqualValues(t, 6, o.Qty)
	require.EqualValues(t, 6, o.QtyOrig)
	require.EqualValues(t, 6, o.ReservedQty)

	// Now fully reserved: a second cancel has nothing to remove.
	require.ErrorIs(t, s.CancelOrder(ord, maker, instr), ErrReservedQtyExceeded)

	// Releasing the hold makes the remainder cancellable.
	require.NoError(t, s.Cancel(res.HoldID))
	require.NoError(t, s.CancelOrder(ord, maker, instr))
	_, ok = s.Order(ord)
	require.False(t, ok)
}

func TestCleanupExpiredSweep(t *testing.T) {
	s, instr := newTestShard(t)
	maker := s.OpenAccount(fixed.ID{9})
	taker := s.OpenAccount(fixed.ID{10})

	ord, err := s.PlaceOrder(maker, instr, Sell, 100, 10, 0, 0)
	require.NoError(t, err)
	res, err := s.Reserve(taker, instr, Buy, 10, 100, 500, fixed.ID{}, 1, 1000)
	require.NoError(t, err)
	require.EqualValues(t, 1500, res.ExpiryMs)

	// Not yet expired: nothing swept, seqno untouched.
	seqnoBefore := s.Seqno()
	require.EqualValues(t, 0, s.CleanupExpired(1400, 16))
	require.Equal(t, seqnoBefore, s.Seqno())

	require.EqualValues(t, 1, s.CleanupExpired(1600, 16))
	require.Equal(t, seqnoBefore+1, s.Seqno(), "one seqno bump per sweep batch")

	_, _, ok := s.findReservationByHoldID(res.HoldID)
	require.False(t, ok)
	o, _ := s.Order(ord)
	require.EqualValues(t, 0, o.ReservedQty, "slices released back to the maker")
}
