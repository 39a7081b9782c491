package slab

// headFor returns a pointer to the instrument's head-index field for
// (state, side), the four-way dispatch insert/remove/getBestContra all
// share.
func headFor(instr *Instrument, state OrderState, side Side) *uint32 {
	switch {
	case state == Live && side == Buy:
		return &instr.BidsLiveHead
	case state == Live && side == Sell:
		return &instr.AsksLiveHead
	case state == Pending && side == Buy:
		return &instr.BidsPendingHead
	default:
		return &instr.AsksPendingHead
	}
}

// insertOrderIntoBook inserts orderIdx into the (state, side) list of instr,
// price-time priority: the list is scanned for the first strictly
// better-priced resting node and the new order is linked before it, so
// equal prices insert after existing orders (FIFO at a price level). Bids
// are price-descending; asks price-ascending.
func (s *Shard) insertOrderIntoBook(instr *Instrument, orderIdx uint32) {
	order, _ := s.Orders.Get(orderIdx)
	head := headFor(instr, order.State, order.Side)

	var prev uint32 = invalid
	curr := *head
	for curr != invalid {
		co, ok := s.Orders.Get(curr)
		if !ok {
			break
		}
		betterForInsert := false
		if order.Side == Buy {
			betterForInsert = order.Price > co.Price
		} else {
			betterForInsert = order.Price < co.Price
		}
		if betterForInsert {
			break
		}
		prev = curr
		curr = co.Next
	}

	order.Prev = prev
	order.Next = curr
	if prev == invalid {
		*head = orderIdx
	} else {
		if po, ok := s.Orders.Get(prev); ok {
			po.Next = orderIdx
		}
	}
	if curr != invalid {
		if co, ok := s.Orders.Get(curr); ok {
			co.Prev = orderIdx
		}
	}
}

// removeOrderFromBook re-stitches prev/next and updates the instrument's
// head pointer if the removed node was head.
func (s *Shard) removeOrderFromBook(instr *Instrument, orderIdx uint32) {
	order, ok := s.Orders.Get(orderIdx)
	if !ok {
		return
	}
	head := headFor(instr, order.State, order.Side)

	if order.Prev != invalid {
		if po, ok := s.Orders.Get(order.Prev); ok {
			po.Next = order.Next
		}
	} else if *head == orderIdx {
		*head = order.Next
	}
	if order.Next != invalid {
		if no, ok := s.Orders.Get(order.Next); ok {
			no.Prev = order.Prev
		}
	}
	order.Prev = invalid
	order.Next = invalid
}

// getBestContra returns the head order index of the contra side for a
// taker of the given side: a Buy taker walks the live asks, a Sell taker
// walks the live bids.
func (s *Shard) getBestContra(instr *Instrument, side Side) uint32 {
	if side == Buy {
		return instr.AsksLiveHead
	}
	return instr.BidsLiveHead
}

// promotePendingOrders walks the pending-bid then pending-ask lists and
// promotes every order with EligibleEpoch <= currentEpoch: unlink from the
// pending list, flip state to Live, and re-insert into the live book
// (batch-open promotion).
func (s *Shard) promotePendingOrders(instrumentIdx uint16, currentEpoch uint64) {
	instr := &s.Instruments[instrumentIdx]
	for _, side := range []Side{Buy, Sell} {
		head := headFor(instr, Pending, side)
		idx := *head
		for idx != invalid {
			order, ok := s.Orders.Get(idx)
			if !ok {
				break
			}
			next := order.Next
			if order.EligibleEpoch <= currentEpoch {
				s.removeOrderFromBook(instr, idx)
				order.State = Live
				s.insertOrderIntoBook(instr, idx)
			}
			idx = next
		}
	}
}
