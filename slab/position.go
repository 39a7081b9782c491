package slab

import (
	"math/big"

	"github.com/luxfi/perpslab/internal/fixed"
)

// calculatePnL returns signedQty * (closePx - entryPx), the long-convention
// realized-PnL formula used for both commit-time reductions and
// liquidation closes.
func calculatePnL(signedQty int64, entryPx, closePx uint64) *big.Int {
	diff := new(big.Int).Sub(big.NewInt(int64(closePx)), big.NewInt(int64(entryPx)))
	return diff.Mul(diff, big.NewInt(signedQty))
}

// findPosition walks the account's position chain for instrumentIdx.
func (s *Shard) findPosition(accountIdx uint32, instrumentIdx uint16) (uint32, bool) {
	acc, ok := s.Accounts.Get(accountIdx)
	if !ok {
		return invalid, false
	}
	idx := acc.PositionHead
	for idx != invalid {
		pos, ok := s.Positions.Get(idx)
		if !ok {
			return invalid, false
		}
		if pos.InstrumentIdx == instrumentIdx {
			return idx, true
		}
		idx = pos.NextInAccount
	}
	return invalid, false
}

// updatePosition applies a signed fill to the account's position in
// instrumentIdx, returning realized PnL. The entry price is recomputed
// only on a same-sign addition; every reduction branch, including a
// sign-flip that leaves a residual, keeps the old entry price rather than
// resetting it to fill_px.
func (s *Shard) updatePosition(accountIdx uint32, instrumentIdx uint16, qtyChange int64, fillPx uint64) (*big.Int, error) {
	if idx, ok := s.findPosition(accountIdx, instrumentIdx); ok {
		pos, _ := s.Positions.Get(idx)
		oldQty := pos.Qty
		oldEntry := pos.EntryPx
		newQty := oldQty + qtyChange

		realizedPnL := big.NewInt(0)
		reducing := (oldQty > 0 && qtyChange < 0) || (oldQty < 0 && qtyChange > 0)
		if reducing {
			reducedQty := fixed.MinU64(fixed.AbsI64(oldQty), fixed.AbsI64(qtyChange))
			signedReduced := int64(reducedQty)
			if oldQty < 0 {
				signedReduced = -signedReduced
			}
			realizedPnL = calculatePnL(signedReduced, oldEntry, fillPx)
		}

		if newQty == 0 {
			s.removeFromPositionChain(accountIdx, idx)
			s.Positions.Free(idx)
			return realizedPnL, nil
		}

		pos.Qty = newQty
		sameSignAdd := (oldQty > 0 && qtyChange > 0) || (oldQty < 0 && qtyChange < 0)
		if sameSignAdd {
			oldNotional := new(big.Int).Mul(big.NewInt(int64(fixed.AbsI64(oldQty))), big.NewInt(int64(oldEntry)))
			addNotional := new(big.Int).Mul(big.NewInt(int64(fixed.AbsI64(qtyChange))), big.NewInt(int64(fillPx)))
			newNotional := oldNotional.Add(oldNotional, addNotional)
			newAbsQty := fixed.AbsI64(newQty)
			if newAbsQty > 0 {
				pos.EntryPx = new(big.Int).Div(newNotional, big.NewInt(int64(newAbsQty))).Uint64()
			}
		}
		// Reductions leave pos.EntryPx untouched.
		return realizedPnL, nil
	}

	// No existing position: open a new one at fillPx, linked at the head
	// of the account's position chain.
	newIdx, pos, err := s.Positions.Alloc()
	if err != nil {
		return nil, ErrPoolFull
	}
	acc, ok := s.Accounts.Get(accountIdx)
	if !ok {
		s.Positions.Free(newIdx)
		return nil, ErrInvalidAccount
	}
	*pos = Position{
		AccountIdx:    accountIdx,
		InstrumentIdx: instrumentIdx,
		Qty:           qtyChange,
		EntryPx:       fillPx,
		LastFunding:   big.NewInt(0),
		NextInAccount: acc.PositionHead,
	}
	acc.PositionHead = newIdx
	return big.NewInt(0), nil
}

// removeFromPositionChain unlinks idx from account's position chain. Must
// be called before the position record is freed — Pool.Free marks the slot
// unused immediately, so a freed index can no longer be read via Get.
func (s *Shard) removeFromPositionChain(accountIdx, idx uint32) {
	acc, ok := s.Accounts.Get(accountIdx)
	if !ok {
		return
	}
	pos, ok := s.Positions.Get(idx)
	if !ok {
		return
	}
	next := pos.NextInAccount

	if acc.PositionHead == idx {
		acc.PositionHead = next
		return
	}
	curr := acc.PositionHead
	for curr != invalid {
		cp, ok := s.Positions.Get(curr)
		if !ok {
			return
		}
		if cp.NextInAccount == idx {
			cp.NextInAccount = next
			return
		}
		curr = cp.NextInAccount
	}
}
