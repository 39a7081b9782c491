package slab

// PlaceOrder rests a new limit order in instrumentIdx's order book, the
// maker-side counterpart to Reserve/Commit. State defaults to LIVE unless
// eligibleEpoch is in the future, in which case the order rests PENDING
// until a batch open promotes it.
func (s *Shard) PlaceOrder(accountIdx uint32, instrumentIdx uint16, side Side, price, qty uint64, eligibleEpoch, createdMs uint64) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	instr, ok := s.getInstrument(instrumentIdx)
	if !ok {
		return 0, ErrInvalidInstrument
	}
	if qty == 0 {
		return 0, ErrInvalidQuantity
	}
	if price == 0 {
		return 0, ErrInvalidPrice
	}

	state := Live
	if eligibleEpoch > s.Header.CurrentEpoch {
		state = Pending
	}

	orderIdx, order, err := s.Orders.Alloc()
	if err != nil {
		return 0, ErrPoolFull
	}

	*order = Order{
		OrderID:       s.Header.NextOrderID(),
		AccountIdx:    accountIdx,
		InstrumentIdx: instrumentIdx,
		Side:          side,
		State:         state,
		Price:         price,
		QtyOrig:       qty,
		Qty:           qty,
		EligibleEpoch: eligibleEpoch,
		CreatedMs:     createdMs,
		Prev:          invalid,
		Next:          invalid,
	}
	s.insertOrderIntoBook(instr, orderIdx)
	s.Header.IncrementSeqno()
	return orderIdx, nil
}
