package slab

import "github.com/luxfi/perpslab/internal/fixed"

// Cancel cancels a reservation by hold id, releasing all locked slices and
// restoring available quantity on the maker orders. Refuses reservations
// that have already committed.
func (s *Shard) Cancel(holdID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	resvIdx, resv, ok := s.findReservationByHoldID(holdID)
	if !ok {
		return ErrReservationNotFound
	}
	if resv.Committed {
		return ErrInvalidReservation
	}

	s.releaseReservationSlices(resvIdx)
	s.Reservations.Free(resvIdx)
	s.Header.IncrementSeqno()
	return nil
}

// CancelOrder cancels a resting order. Only the owning account may cancel.
// If the order has a reserved portion, only the unreserved remainder is
// removed: the order's qty (and qty_orig, so future slices cannot
// over-draw it) shrinks to the reserved amount instead of being removed
// from the book.
func (s *Shard) CancelOrder(orderIdx, accountIdx uint32, instrumentIdx uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.Orders.Get(orderIdx)
	if !ok {
		return ErrOrderNotFound
	}
	if order.InstrumentIdx != instrumentIdx {
		return ErrOrderNotFound
	}
	if order.AccountIdx != accountIdx {
		return ErrUnauthorized
	}

	if order.ReservedQty > 0 {
		unreserved := fixed.SaturatingSubU64(order.Qty, order.ReservedQty)
		if unreserved == 0 {
			return ErrReservedQtyExceeded
		}
		order.Qty = order.ReservedQty
		order.QtyOrig = order.ReservedQty
	} else {
		instr := &s.Instruments[instrumentIdx]
		s.removeOrderFromBook(instr, orderIdx)
		s.Orders.Free(orderIdx)
	}

	s.Header.IncrementSeqno()
	return nil
}

// CleanupExpired walks the full reservation pool and frees every
// uncommitted reservation whose expiry has passed, up to maxCleanup
// entries. It bumps seqno once for the whole batch, only if anything was
// freed.
func (s *Shard) CleanupExpired(currentTs uint64, maxCleanup uint32) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cleaned uint32
	var toFree []uint32
	s.Reservations.Each(func(idx uint32, rec *Reservation) {
		if cleaned >= maxCleanup || len(toFree) >= int(maxCleanup) {
			return
		}
		if rec.Committed {
			return
		}
		if rec.ExpiryMs > 0 && currentTs > rec.ExpiryMs {
			toFree = append(toFree, idx)
		}
	})
	for _, idx := range toFree {
		if cleaned >= maxCleanup {
			break
		}
		s.releaseReservationSlices(idx)
		s.Reservations.Free(idx)
		cleaned++
	}
	if cleaned > 0 {
		s.Header.IncrementSeqno()
	}
	return cleaned
}
