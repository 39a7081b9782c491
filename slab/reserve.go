package slab

import (
	"math/big"

	"github.com/luxfi/perpslab/internal/fixed"
)

// ReserveResult is phase-1's receipt: the reservation handle plus the
// pricing/capacity figures the Router needs to create escrow. Wire-encoded
// as 64 bytes.
type ReserveResult struct {
	HoldID    uint64
	VwapPx    uint64
	WorstPx   uint64
	FilledQty uint64
	MaxCharge *big.Int
	ExpiryMs  uint64
	BookSeqno uint64
}

// Reserve is phase 1 of two-phase execution: it walks the contra side of
// the book, locks maker quantity into slices up to qty at a price no worse
// than limitPx, and computes the VWAP/worst price and max charge a taker
// would owe if every slice later fills. It does not move any quantity out
// of the maker orders' qty — only reserved_qty is bumped, so makers keep
// resting until commit, cancel, or expiry.
func (s *Shard) Reserve(accountIdx uint32, instrumentIdx uint16, side Side, qty, limitPx, ttlMs uint64, commitmentHash fixed.ID, routeID, currentTs uint64) (*ReserveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	instr, ok := s.getInstrument(instrumentIdx)
	if !ok {
		return nil, ErrInvalidInstrument
	}
	if qty == 0 {
		return nil, ErrInvalidQuantity
	}
	if limitPx == 0 {
		return nil, ErrInvalidPrice
	}

	resvIdx, resv, err := s.Reservations.Alloc()
	if err != nil {
		return nil, ErrPoolFull
	}

	holdID := s.Header.NextHoldID()
	bookSeqno := s.Header.Seqno

	// Expiry is absolute: commit's expiry check compares against wall
	// time, and ttl_ms==0 means "never expires".
	var expiryMs uint64
	if ttlMs > 0 {
		expiryMs = currentTs + ttlMs
	}

	// Post-batch freeze: for batch_ms/2 after an open, the top freeze_levels
	// price levels of the contra book may not be taken.
	var frozenLevels uint32
	if currentTs < instr.FreezeUntilMs {
		frozenLevels = s.Header.FreezeLevels
	}

	filledQty, totalNotional, worstPx, sliceHead, err := s.walkAndReserve(instr, side, qty, limitPx, frozenLevels)
	if err != nil {
		s.releaseSliceChain(sliceHead)
		s.Reservations.Free(resvIdx)
		return nil, err
	}
	if filledQty == 0 {
		s.Reservations.Free(resvIdx)
		return nil, ErrInsufficientLiquidity
	}

	vwapPx := new(big.Int).Div(totalNotional, big.NewInt(int64(filledQty))).Uint64()
	fee := fixed.BpsOfBig(totalNotional, int64(s.Header.TakerFeeBps))
	maxCharge := new(big.Int).Add(totalNotional, fee)

	*resv = Reservation{
		HoldID:         holdID,
		RouteID:        routeID,
		AccountIdx:     accountIdx,
		InstrumentIdx:  instrumentIdx,
		Side:           side,
		Qty:            filledQty,
		VwapPx:         vwapPx,
		WorstPx:        worstPx,
		MaxCharge:      maxCharge,
		CommitmentHash: commitmentHash,
		// Salt is left zero; no code in this module sets it.
		BookSeqno: bookSeqno,
		ExpiryMs:  expiryMs,
		SliceHead: sliceHead,
		Committed: false,
	}

	s.Header.IncrementSeqno()

	return &ReserveResult{
		HoldID:    holdID,
		VwapPx:    vwapPx,
		WorstPx:   worstPx,
		FilledQty: filledQty,
		MaxCharge: maxCharge,
		ExpiryMs:  expiryMs,
		BookSeqno: bookSeqno,
	}, nil
}

// walkAndReserve walks the contra side of instr, locking slices up to qty
// at a price no worse than limitPx. The first frozenLevels distinct price
// levels are skipped (post-batch freeze). Returns filled quantity, total
// notional, the worst (last) price walked, and the head of the slice
// chain built.
func (s *Shard) walkAndReserve(instr *Instrument, side Side, qtyRemaining, limitPx uint64, frozenLevels uint32) (filledQty uint64, totalNotional *big.Int, worstPx uint64, sliceHead uint32, err error) {
	totalNotional = big.NewInt(0)
	sliceHead = invalid
	prevSliceIdx := invalid

	var levelsSkipped uint32
	var lastSkippedPx uint64
	haveSkipped := false

	orderIdx := s.getBestContra(instr, side)
	for qtyRemaining > 0 && orderIdx != invalid {
		order, ok := s.Orders.Get(orderIdx)
		if !ok {
			break
		}

		frozen := false
		if levelsSkipped < frozenLevels {
			if !haveSkipped || order.Price != lastSkippedPx {
				levelsSkipped++
			}
			lastSkippedPx = order.Price
			haveSkipped = true
			frozen = true
		} else if frozenLevels > 0 && haveSkipped && order.Price == lastSkippedPx {
			frozen = true
		}
		if frozen {
			orderIdx = order.Next
			continue
		}

		priceOK := false
		if side == Buy {
			priceOK = order.Price <= limitPx
		} else {
			priceOK = order.Price >= limitPx
		}
		if !priceOK {
			break
		}

		available := fixed.SaturatingSubU64(order.Qty, order.ReservedQty)
		if available == 0 {
			orderIdx = order.Next
			continue
		}

		take := fixed.MinU64(available, qtyRemaining)

		sliceIdx, slice, allocErr := s.Slices.Alloc()
		if allocErr != nil {
			err = ErrPoolFull
			return
		}
		*slice = Slice{OrderIdx: orderIdx, Qty: take, Next: invalid}

		if sliceHead == invalid {
			sliceHead = sliceIdx
		} else if prev, ok := s.Slices.Get(prevSliceIdx); ok {
			prev.Next = sliceIdx
		}
		prevSliceIdx = sliceIdx

		order.ReservedQty += take

		orderPrice := order.Price
		filledQty += take
		totalNotional.Add(totalNotional, fixed.U256ToBig(fixed.MulU64(take, orderPrice)))
		worstPx = orderPrice
		qtyRemaining -= take

		orderIdx = order.Next
	}
	return
}
