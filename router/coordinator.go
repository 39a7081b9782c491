// Multi-shard coordination: atomic reserve across N shards (any failure
// rolls every reservation back), and best-effort commit (a mid-sequence
// failure cancels the remainder but cannot unwind prior commits, so
// callers must treat a commit failure as a partial-state outcome).
package router

import (
	"math/big"

	"github.com/luxfi/perpslab/internal/fixed"
	"github.com/luxfi/perpslab/slab"
)

// SplitRequest is one shard's leg of a cross-shard order.
type SplitRequest struct {
	ShardIdx       uint8
	InstrumentIdx  uint16
	Side           slab.Side
	Qty            uint64
	LimitPx        uint64
	TtlMs          uint64
	CommitmentHash fixed.ID
}

// HoldRef identifies one shard's reservation, the unit MultiSlabCommit and
// MultiSlabCancel operate over.
type HoldRef struct {
	ShardIdx uint8
	HoldID   uint64
}

// MultiReserveResult is the atomic reserve's aggregate receipt.
type MultiReserveResult struct {
	Holds         []HoldRef
	PerShard      []*slab.ReserveResult
	TotalFilled   uint64
	AggregateVwap uint64
	NetExposureIM *big.Int
}

// MultiSlabReserve validates and reserves across every split in order,
// compensating (best-effort cancel) any prior reservation if a later one
// fails — reserve is the atomic half of cross-shard execution: it either
// fully succeeds or fully rolls back. Router discriminator 5.
func (r *Router) MultiSlabReserve(user fixed.ID, splits []SplitRequest, routeID, currentTs uint64) (*MultiReserveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(splits) == 0 || len(splits) > MaxSlabCount {
		return nil, ErrInvalidSlabCount
	}
	p, err := r.getPortfolio(user)
	if err != nil {
		return nil, err
	}

	result := &MultiReserveResult{}
	for _, split := range splits {
		shard, err := r.Registry.Get(split.ShardIdx)
		if err != nil {
			r.compensate(result.Holds)
			return nil, err
		}
		accountIdx := shard.OpenAccount(user)
		res, err := shard.Reserve(accountIdx, split.InstrumentIdx, split.Side, split.Qty, split.LimitPx, split.TtlMs, split.CommitmentHash, routeID, currentTs)
		if err != nil {
			r.compensate(result.Holds)
			return nil, err
		}
		result.Holds = append(result.Holds, HoldRef{ShardIdx: split.ShardIdx, HoldID: res.HoldID})
		result.PerShard = append(result.PerShard, res)
		result.TotalFilled += res.FilledQty
	}

	if result.TotalFilled > 0 {
		weighted := big.NewInt(0)
		for _, res := range result.PerShard {
			weighted.Add(weighted, new(big.Int).Mul(big.NewInt(int64(res.FilledQty)), big.NewInt(int64(res.VwapPx))))
		}
		result.AggregateVwap = new(big.Int).Quo(weighted, big.NewInt(int64(result.TotalFilled))).Uint64()
	}

	projected := cloneExposures(p)
	for i, split := range splits {
		qtyChange := int64(result.PerShard[i].FilledQty)
		if split.Side == slab.Sell {
			qtyChange = -qtyChange
		}
		projected.applyFill(split.ShardIdx, split.InstrumentIdx, qtyChange)
	}
	netIM, err := r.NetIM(projected)
	if err != nil {
		r.compensate(result.Holds)
		return nil, err
	}
	result.NetExposureIM = netIM
	return result, nil
}

// compensate best-effort cancels every hold already taken; failures are
// swallowed and do not alter the surfaced error.
func (r *Router) compensate(holds []HoldRef) {
	for _, h := range holds {
		shard, err := r.Registry.Get(h.ShardIdx)
		if err != nil {
			continue
		}
		_ = shard.Cancel(h.HoldID)
	}
}

func cloneExposures(p *Portfolio) *Portfolio {
	clone := newPortfolio(p.User)
	clone.Exposures = append([]Exposure(nil), p.Exposures...)
	clone.CorrelationTable = p.CorrelationTable
	return clone
}

// MultiCommitResult is the best-effort commit's aggregate receipt.
type MultiCommitResult struct {
	PerShard      []*slab.CommitResult
	TotalNotional *big.Int
	TotalFees     *big.Int
	RealizedPnL   *big.Int
	Committed     int // number of holds actually committed before any failure
}

// MultiSlabCommit commits every hold in order. Before committing anything,
// it verifies every hold is still within its expiry window. A failure at
// the k-th commit cancels the remaining holds — prior commits are already
// irreversible — and this function returns the partial MultiCommitResult
// alongside the error so the caller can see exactly what was realized.
// Router discriminator 6.
func (r *Router) MultiSlabCommit(user fixed.ID, holds []HoldRef, currentTs uint64) (*MultiCommitResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.getPortfolio(user)
	if err != nil {
		return nil, err
	}

	shards := make([]*slab.Shard, len(holds))
	for i, h := range holds {
		shard, err := r.Registry.Get(h.ShardIdx)
		if err != nil {
			return nil, err
		}
		shards[i] = shard
		expiry, ok := shard.ReservationExpiryMs(h.HoldID)
		if !ok {
			return nil, slab.ErrReservationNotFound
		}
		if expiry > 0 && currentTs > expiry {
			return nil, slab.ErrReservationExpired
		}
	}

	result := &MultiCommitResult{
		TotalNotional: big.NewInt(0),
		TotalFees:     big.NewInt(0),
		RealizedPnL:   big.NewInt(0),
	}

	for i, h := range holds {
		res, err := shards[i].Commit(h.HoldID, currentTs)
		if err != nil {
			r.compensate(holds[i+1:])
			return result, err
		}
		result.PerShard = append(result.PerShard, res)
		result.Committed++
		result.TotalNotional.Add(result.TotalNotional, res.Notional)
		result.TotalFees.Add(result.TotalFees, res.Fees)
		result.RealizedPnL.Add(result.RealizedPnL, res.RealizedPnL)
		p.RealizedPnL.Add(p.RealizedPnL, res.RealizedPnL)
	}

	debit := new(big.Int).Add(result.TotalNotional, result.TotalFees)
	if err := r.Vault.Debit(debit); err != nil {
		return result, err
	}
	p.CollateralBalance.Sub(p.CollateralBalance, debit)

	netIM, err := r.NetIM(p)
	if err != nil {
		return result, err
	}
	equity, err := r.Equity(p)
	if err != nil {
		return result, err
	}
	if equity.Cmp(netIM) < 0 {
		return result, ErrPortfolioInsufficientMargin
	}
	return result, nil
}

// UpdatePortfolioExposure applies a committed fill's signed qty to a
// portfolio's (shardIdx, instrumentIdx) exposure. Callers invoke this once
// per filled split right after MultiSlabCommit succeeds for that split,
// using the same SplitRequest.Side they reserved with — split out as its
// own call since CommitResult alone doesn't carry the side.
func (r *Router) UpdatePortfolioExposure(user fixed.ID, shardIdx uint8, instrumentIdx uint16, side slab.Side, filledQty uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.getPortfolio(user)
	if err != nil {
		return err
	}
	qtyChange := int64(filledQty)
	if side == slab.Sell {
		qtyChange = -qtyChange
	}
	p.applyFill(shardIdx, instrumentIdx, qtyChange)
	return nil
}

// MultiSlabCancel best-effort cancels every hold (Router discriminator 7).
// Individual failures are swallowed, matching compensate's semantics.
func (r *Router) MultiSlabCancel(holds []HoldRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.compensate(holds)
}

// ExecuteCrossSlab runs the full cross-shard order flow in one call
// (Router discriminator 4): atomic reserve across every split, an
// aggregate margin check against the projected post-trade exposure, then
// best-effort commit with exposure bookkeeping. If the margin check
// fails, every reservation is cancelled and nothing commits.
func (r *Router) ExecuteCrossSlab(user fixed.ID, splits []SplitRequest, routeID, currentTs uint64) (*MultiCommitResult, error) {
	reserveResult, err := r.MultiSlabReserve(user, splits, routeID, currentTs)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	p, err := r.getPortfolio(user)
	var equity *big.Int
	if err == nil {
		equity, err = r.Equity(p)
	}
	r.mu.Unlock()
	if err != nil {
		r.MultiSlabCancel(reserveResult.Holds)
		return nil, err
	}
	if equity.Cmp(reserveResult.NetExposureIM) < 0 {
		r.MultiSlabCancel(reserveResult.Holds)
		return nil, ErrPortfolioInsufficientMargin
	}

	commitResult, err := r.MultiSlabCommit(user, reserveResult.Holds, currentTs)
	if err != nil {
		return commitResult, err
	}
	for i, split := range splits {
		if uerr := r.UpdatePortfolioExposure(user, split.ShardIdx, split.InstrumentIdx, split.Side, reserveResult.PerShard[i].FilledQty); uerr != nil {
			return commitResult, uerr
		}
	}
	return commitResult, nil
}
