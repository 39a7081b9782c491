// Global liquidation: drives each affected shard's own per-shard
// Liquidate in priority order (largest notional exposure first) until the
// portfolio's maintenance-margin deficit is covered or every exposure is
// exhausted.
package router

import (
	"math/big"
	"sort"

	"github.com/luxfi/perpslab/internal/fixed"
)

// GlobalLiquidationResult is the aggregate receipt across every shard
// touched by one GlobalLiquidation call.
type GlobalLiquidationResult struct {
	ShardsTouched    int
	TotalNotional    *big.Int
	TotalFees        *big.Int
	TotalInsurance   *big.Int
	RealizedPnL      *big.Int
	RemainingDeficit *big.Int
}

// GlobalLiquidation checks user's portfolio health (equity < net MM),
// ranks its exposures by notional descending, and liquidates shard by
// shard until the deficit is covered or exposures run out. Router
// discriminator 8.
func (r *Router) GlobalLiquidation(user fixed.ID, currentTs uint64) (*GlobalLiquidationResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.getPortfolio(user)
	if err != nil {
		return nil, err
	}
	equity, err := r.Equity(p)
	if err != nil {
		return nil, err
	}
	mm, err := r.NetMM(p)
	if err != nil {
		return nil, err
	}
	if equity.Cmp(mm) >= 0 {
		return nil, ErrPortfolioNotLiquidatable
	}
	deficit := new(big.Int).Sub(mm, equity)

	type ranked struct {
		shardIdx uint8
		notional *big.Int
	}
	var rankedShards []ranked
	seen := make(map[uint8]bool)
	for _, e := range p.Exposures {
		if seen[e.ShardIdx] {
			continue
		}
		seen[e.ShardIdx] = true
		l, err := r.resolveLeg(e)
		if err != nil {
			return nil, err
		}
		rankedShards = append(rankedShards, ranked{shardIdx: e.ShardIdx, notional: l.Notional})
	}
	sort.SliceStable(rankedShards, func(i, j int) bool {
		return rankedShards[i].notional.Cmp(rankedShards[j].notional) > 0
	})

	result := &GlobalLiquidationResult{
		TotalNotional:  big.NewInt(0),
		TotalFees:      big.NewInt(0),
		TotalInsurance: big.NewInt(0),
		RealizedPnL:    big.NewInt(0),
	}

	remaining := new(big.Int).Set(deficit)
	for _, rs := range rankedShards {
		if remaining.Sign() <= 0 {
			break
		}
		shard, err := r.Registry.Get(rs.shardIdx)
		if err != nil {
			return nil, err
		}
		accountIdx := shard.OpenAccount(user)
		lr, err := shard.Liquidate(accountIdx, remaining, currentTs)
		if err != nil {
			continue // account not liquidatable on this shard's local view; try the next
		}
		result.ShardsTouched++
		result.TotalNotional.Add(result.TotalNotional, lr.TotalNotional)
		result.TotalFees.Add(result.TotalFees, lr.LiquidationFees)
		result.TotalInsurance.Add(result.TotalInsurance, lr.InsuranceContrib)

		var toClear []Exposure
		for _, e := range p.Exposures {
			if e.ShardIdx == rs.shardIdx {
				toClear = append(toClear, e)
			}
		}
		for _, e := range toClear {
			p.applyFill(e.ShardIdx, e.InstrumentIdx, -e.Qty)
		}
		remaining.Sub(remaining, lr.TotalNotional)
	}

	if remaining.Sign() < 0 {
		remaining = big.NewInt(0)
	}
	result.RemainingDeficit = remaining
	return result, nil
}
