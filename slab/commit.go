package slab

import (
	"math/big"

	"github.com/luxfi/perpslab/internal/fixed"
)

// CommitResult is phase-2's receipt. The wire-encoded 64-byte form carries
// FilledQty/VwapPx/Notional/Fees/RealizedPnL only; MakerFee is an
// internal-only field for the Router, which settles maker balances against
// its vault — the shard computes the figure but never credits a maker's
// cash directly.
type CommitResult struct {
	FilledQty   uint64
	VwapPx      uint64
	Notional    *big.Int
	Fees        *big.Int
	RealizedPnL *big.Int
	MakerFee    *big.Int
}

// Commit is phase 2: it finds the reservation by hold id, validates it
// hasn't expired or already been committed, re-checks the kill band
// against the header's current mark state, executes every slice at its
// maker's resting price, updates the taker's position, and frees the
// reservation.
func (s *Shard) Commit(holdID, currentTs uint64) (*CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resvIdx, resv, ok := s.findReservationByHoldID(holdID)
	if !ok {
		return nil, ErrReservationNotFound
	}
	if resv.Committed {
		return nil, ErrInvalidReservation
	}
	if resv.ExpiryMs > 0 && currentTs > resv.ExpiryMs {
		s.releaseReservationSlices(resvIdx)
		s.Reservations.Free(resvIdx)
		return nil, ErrReservationExpired
	}

	if !s.Header.CheckKillBand() {
		s.releaseReservationSlices(resvIdx)
		s.Reservations.Free(resvIdx)
		return nil, ErrKillBandExceeded
	}

	accountIdx := resv.AccountIdx
	instrumentIdx := resv.InstrumentIdx
	side := resv.Side
	sliceHead := resv.SliceHead
	commitHash := resv.CommitmentHash

	filledQty, totalNotional, fees, makerFee, err := s.executeFills(sliceHead, instrumentIdx, side, commitHash, currentTs)
	if err != nil {
		return nil, err
	}

	var vwapPx uint64
	if filledQty > 0 {
		vwapPx = new(big.Int).Div(totalNotional, big.NewInt(int64(filledQty))).Uint64()
	}

	realizedPnL := big.NewInt(0)
	if filledQty > 0 {
		qtyChange := int64(filledQty)
		if side == Sell {
			qtyChange = -qtyChange
		}
		realizedPnL, err = s.updatePosition(accountIdx, instrumentIdx, qtyChange, vwapPx)
		if err != nil {
			return nil, err
		}
		if acc, ok := s.Accounts.Get(accountIdx); ok {
			acc.IM, acc.MM = s.recalculateMarginRequirements(accountIdx)
		}
	}

	resv.Committed = true
	s.Reservations.Free(resvIdx)
	s.Header.IncrementSeqno()

	return &CommitResult{
		FilledQty:   filledQty,
		VwapPx:      vwapPx,
		Notional:    totalNotional,
		Fees:        fees,
		RealizedPnL: realizedPnL,
		MakerFee:    makerFee,
	}, nil
}

// findReservationByHoldID is a linear scan over the reservation pool; the
// pool carries no hold-id index at this capacity.
func (s *Shard) findReservationByHoldID(holdID uint64) (uint32, *Reservation, bool) {
	var foundIdx uint32 = invalid
	var found *Reservation
	s.Reservations.Each(func(idx uint32, rec *Reservation) {
		if found == nil && rec.HoldID == holdID {
			foundIdx = idx
			found = rec
		}
	})
	if found == nil {
		return invalid, nil, false
	}
	return foundIdx, found, true
}

// releaseReservationSlices restores each maker order's reserved_qty and
// frees every slice in the reservation's chain.
func (s *Shard) releaseReservationSlices(resvIdx uint32) {
	resv, ok := s.Reservations.Get(resvIdx)
	if !ok {
		return
	}
	s.releaseSliceChain(resv.SliceHead)
}

// releaseSliceChain walks a slice chain by head index, restoring each maker
// order's reserved_qty and freeing the slices. Also used by Reserve to
// unwind a partially built chain when the slice pool runs out mid-walk.
func (s *Shard) releaseSliceChain(head uint32) {
	idx := head
	for idx != invalid {
		slice, ok := s.Slices.Get(idx)
		if !ok {
			break
		}
		next := slice.Next
		if order, ok := s.Orders.Get(slice.OrderIdx); ok {
			order.ReservedQty = fixed.SaturatingSubU64(order.ReservedQty, slice.Qty)
		}
		s.Slices.Free(idx)
		idx = next
	}
}

// executeFills walks the reservation's slice chain, executing each at its
// maker order's resting price (never the taker's limit). A slice whose
// maker order has since been cancelled is skipped and freed with no error.
func (s *Shard) executeFills(sliceHead uint32, instrumentIdx uint16, takerSide Side, commitHash fixed.ID, currentTs uint64) (filledQty uint64, totalNotional, totalFees, totalMakerFee *big.Int, err error) {
	totalNotional = big.NewInt(0)
	totalFees = big.NewInt(0)
	totalMakerFee = big.NewInt(0)

	instr := &s.Instruments[instrumentIdx]

	idx := sliceHead
	for idx != invalid {
		slice, ok := s.Slices.Get(idx)
		if !ok {
			break
		}
		next := slice.Next
		orderIdx := slice.OrderIdx
		fillQty := slice.Qty

		order, ok := s.Orders.Get(orderIdx)
		if !ok {
			s.Slices.Free(idx)
			idx = next
			continue
		}

		fillPrice := order.Price
		orderCreatedMs := order.CreatedMs
		orderID := order.OrderID

		fillNotional := fixed.U256ToBig(fixed.MulU64(fillQty, fillPrice))
		takerFee := fixed.BpsOfBig(fillNotional, int64(s.Header.TakerFeeBps))

		var makerFee *big.Int
		if s.Header.IsJITOrder(orderCreatedMs, currentTs) {
			makerFee = big.NewInt(0)
		} else {
			makerFee = fixed.BpsOfBig(fillNotional, s.Header.MakerFeeBps)
		}

		order.Qty = fixed.SaturatingSubU64(order.Qty, fillQty)
		order.ReservedQty = fixed.SaturatingSubU64(order.ReservedQty, fillQty)
		if order.Qty == 0 {
			s.removeOrderFromBook(instr, orderIdx)
			s.Orders.Free(orderIdx)
		}

		s.recordTrade(Trade{
			Ts:            currentTs,
			MakerOrderID:  orderID,
			InstrumentIdx: instrumentIdx,
			Side:          takerSide,
			Price:         fillPrice,
			Qty:           fillQty,
			CommitHash:    commitHash,
			RevealMs:      currentTs,
		})

		filledQty += fillQty
		totalNotional.Add(totalNotional, fillNotional)
		totalFees.Add(totalFees, takerFee)
		totalMakerFee.Add(totalMakerFee, makerFee)

		s.Slices.Free(idx)
		idx = next
	}
	return
}
