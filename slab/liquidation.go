package slab

import (
	"math/big"

	"github.com/luxfi/perpslab/internal/fixed"
)

// Liquidation impact/fee constants.
const (
	MaxLiquidationImpactBps uint64 = 500 // 5% max slippage band
	LiquidationFeeBps       uint64 = 50  // 0.5%
	InsuranceFundBps        uint64 = 25  // 0.25%
)

// LiquidationResult summarizes one Liquidate call. The wire-encoded form
// is 48 bytes: filled_qty, avg_price, notional(u128),
// remaining_deficit(u128).
type LiquidationResult struct {
	PositionsClosed    uint32
	TotalQtyLiquidated uint64
	TotalNotional      *big.Int
	LiquidationFees    *big.Int
	InsuranceContrib   *big.Int
	RemainingDeficit   *big.Int
}

// AccountEquity returns cash + sum of unrealized PnL across all open
// positions, at the header's current mark price.
func (s *Shard) AccountEquity(accountIdx uint32) (*big.Int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accountEquityLocked(accountIdx)
}

func (s *Shard) accountEquityLocked(accountIdx uint32) (*big.Int, bool) {
	acc, ok := s.Accounts.Get(accountIdx)
	if !ok {
		return nil, false
	}
	equity := new(big.Int).Set(acc.Cash)
	idx := acc.PositionHead
	for idx != invalid {
		pos, ok := s.Positions.Get(idx)
		if !ok {
			break
		}
		equity.Add(equity, calculatePnL(pos.Qty, pos.EntryPx, uint64(s.Header.MarkPx)))
		idx = pos.NextInAccount
	}
	return equity, true
}

// IsLiquidatable reports whether accountIdx's equity has fallen below its
// maintenance margin requirement.
func (s *Shard) IsLiquidatable(accountIdx uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLiquidatableLocked(accountIdx)
}

func (s *Shard) isLiquidatableLocked(accountIdx uint32) bool {
	acc, ok := s.Accounts.Get(accountIdx)
	if !ok {
		return false
	}
	equity, ok := s.accountEquityLocked(accountIdx)
	if !ok {
		return false
	}
	return equity.Cmp(acc.MM) < 0
}

// liquidationClosePrice applies the slippage band: worse for the side
// being closed out. A long (qty>0) is sold down; a short is bought up.
func liquidationClosePrice(markPx int64, isLong bool) uint64 {
	mark := uint64(markPx)
	impact := (mark * MaxLiquidationImpactBps) / 10_000
	if isLong {
		return fixed.SaturatingSubU64(mark, impact)
	}
	return mark + impact
}

// Liquidate closes accountIdx's positions at price-banded close prices
// until deficitTarget is covered or no positions remain, deducting a
// liquidation fee and an insurance-fund contribution from each close's
// notional and recomputing the account's margin requirements.
func (s *Shard) Liquidate(accountIdx uint32, deficitTarget *big.Int, currentTs uint64) (*LiquidationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.Accounts.Get(accountIdx)
	if !ok {
		return nil, ErrInvalidAccount
	}
	if !s.isLiquidatableLocked(accountIdx) {
		return nil, ErrInvalidAccount
	}

	result := &LiquidationResult{
		TotalNotional:    big.NewInt(0),
		LiquidationFees:  big.NewInt(0),
		InsuranceContrib: big.NewInt(0),
		RemainingDeficit: new(big.Int).Set(deficitTarget),
	}

	posIdx := acc.PositionHead
	for posIdx != invalid && result.RemainingDeficit.Sign() > 0 {
		pos, ok := s.Positions.Get(posIdx)
		if !ok {
			break
		}
		qty := pos.Qty
		entryPx := pos.EntryPx
		instrumentIdx := pos.InstrumentIdx
		next := pos.NextInAccount

		if qty == 0 {
			posIdx = next
			continue
		}

		closePx := liquidationClosePrice(s.Header.MarkPx, qty > 0)
		absQty := fixed.AbsI64(qty)
		positionValue := fixed.U256ToBig(fixed.MulU64(absQty, closePx))
		realizedPnL := calculatePnL(qty, entryPx, closePx)
		fee := fixed.BpsOfBig(positionValue, int64(LiquidationFeeBps))
		insuranceContrib := fixed.BpsOfBig(positionValue, int64(InsuranceFundBps))

		s.recordTrade(Trade{
			Ts:            currentTs,
			InstrumentIdx: instrumentIdx,
			Side:          closingSide(qty),
			Price:         closePx,
			Qty:           absQty,
		})
		s.removeFromPositionChain(accountIdx, posIdx)
		s.Positions.Free(posIdx)

		result.PositionsClosed++
		result.TotalQtyLiquidated += absQty
		result.TotalNotional.Add(result.TotalNotional, positionValue)
		result.LiquidationFees.Add(result.LiquidationFees, fee)
		result.InsuranceContrib.Add(result.InsuranceContrib, insuranceContrib)
		result.RemainingDeficit.Sub(result.RemainingDeficit, realizedPnL)

		posIdx = next
	}

	totalDeduction := new(big.Int).Add(result.LiquidationFees, result.InsuranceContrib)
	acc.Cash.Sub(acc.Cash, totalDeduction)
	acc.IM, acc.MM = s.recalculateMarginRequirements(accountIdx)

	if s.Insurance != nil && result.InsuranceContrib.Sign() > 0 {
		s.Insurance.CreditFromLiquidation(result.InsuranceContrib, accountIdx, 0, currentTs)
	}

	s.Header.IncrementSeqno()
	return result, nil
}

func closingSide(qty int64) Side {
	if qty > 0 {
		return Sell
	}
	return Buy
}

// recalculateMarginRequirements sums IM/MM across every open position of
// accountIdx at the current mark price and risk params.
func (s *Shard) recalculateMarginRequirements(accountIdx uint32) (*big.Int, *big.Int) {
	acc, ok := s.Accounts.Get(accountIdx)
	if !ok {
		return big.NewInt(0), big.NewInt(0)
	}
	totalIM := big.NewInt(0)
	totalMM := big.NewInt(0)
	idx := acc.PositionHead
	for idx != invalid {
		pos, ok := s.Positions.Get(idx)
		if !ok {
			break
		}
		contractSize := uint64(1_000_000)
		if instr, ok := s.getInstrument(pos.InstrumentIdx); ok {
			contractSize = instr.ContractSize
		}
		notional := positionNotional(pos.Qty, contractSize, uint64(s.Header.MarkPx))
		totalIM.Add(totalIM, fixed.BpsOfBig(notional, int64(s.Header.IMRBps)))
		totalMM.Add(totalMM, fixed.BpsOfBig(notional, int64(s.Header.MMRBps)))
		idx = pos.NextInAccount
	}
	return totalIM, totalMM
}

// positionNotional returns |qty| * contractSize * markPx / 1e12, the same
// scale-down the router uses for gross IM.
func positionNotional(qty int64, contractSize, markPx uint64) *big.Int {
	n := fixed.U256ToBig(fixed.MulU64(fixed.AbsI64(qty), contractSize))
	n.Mul(n, big.NewInt(int64(markPx)))
	return n.Quo(n, big.NewInt(1_000_000_000_000))
}
