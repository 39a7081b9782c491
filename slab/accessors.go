package slab

import (
	"math/big"

	"github.com/luxfi/perpslab/internal/fixed"
)

// OpenAccount returns (creating if needed) the account index for key.
func (s *Shard) OpenAccount(key fixed.ID) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, _ := s.getOrCreateAccount(key)
	return idx
}

// DepositCash credits amount to accountIdx's cash balance (collateral
// deposit plumbing is a host/router concern; this is the shard-side
// ledger entry it drives).
func (s *Shard) DepositCash(accountIdx uint32, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.Accounts.Get(accountIdx)
	if !ok {
		return ErrInvalidAccount
	}
	acc.Cash.Add(acc.Cash, amount)
	return nil
}

// Account returns a copy of accountIdx's account state.
func (s *Shard) Account(accountIdx uint32) (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.Accounts.Get(accountIdx)
	if !ok {
		return Account{}, false
	}
	return *acc, true
}

// Order returns a copy of an order record by index.
func (s *Shard) Order(orderIdx uint32) (Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Orders.Get(orderIdx)
	if !ok {
		return Order{}, false
	}
	return *o, true
}

// Position returns a copy of accountIdx's position on instrumentIdx, if any.
func (s *Shard) Position(accountIdx uint32, instrumentIdx uint16) (Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.findPosition(accountIdx, instrumentIdx)
	if !ok {
		return Position{}, false
	}
	p, _ := s.Positions.Get(idx)
	return *p, true
}

// Instrument returns a copy of instrumentIdx's state.
func (s *Shard) Instrument(instrumentIdx uint16) (Instrument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	instr, ok := s.getInstrument(instrumentIdx)
	if !ok {
		return Instrument{}, false
	}
	return *instr, true
}

// UpdateMarkPrice sets the header's mark price, shifting the previous mark
// into prev_mark_px. The mark feed is an exogenous input; negative marks
// are undefined by the protocol and rejected here rather than carried into
// the kill-band arithmetic.
func (s *Shard) UpdateMarkPrice(newMarkPx int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if newMarkPx < 0 {
		return ErrInvalidPrice
	}
	s.Header.UpdateMarkPx(newMarkPx)
	return nil
}

// ReservationExpiryMs returns the expiry timestamp of an uncommitted
// reservation, for callers (the Router's multi-shard coordinator) that
// need to verify every leg of a multi-shard commit is still live before
// issuing any commit.
func (s *Shard) ReservationExpiryMs(holdID uint64) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, resv, ok := s.findReservationByHoldID(holdID)
	if !ok || resv.Committed {
		return 0, false
	}
	return resv.ExpiryMs, true
}

// Seqno returns the shard's current sequence number.
func (s *Shard) Seqno() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Header.Seqno
}
