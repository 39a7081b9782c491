// Portfolio margin: per-exposure gross IM/MM, netting by underlying, and
// an optional correlation-benefit adjustment over the Router's cross-shard
// Exposure list.
package router

import (
	"math/big"

	"github.com/luxfi/perpslab/internal/fixed"
	"github.com/luxfi/perpslab/slab"
)

// Conservative defaults: the correlation benefit is capped, and weakly
// correlated pairs are not netted at all.
const (
	MaxCorrelationBenefitBps = 2000 // cap: correlation benefit never exceeds 20% of the smaller leg's notional
	MinCorrelationBps        = 300  // correlation 0.3 on the ±1000 scale: weaker pairs are not netted for capital efficiency
)

// CorrelationPair is one entry of the router's optional correlation
// table, keyed by the same group key the netting pass uses.
type CorrelationPair struct {
	GroupA, GroupB string
	CorrelationBps int64 // signed, [-1000, 1000]
}

// leg is one exposure's margin inputs, resolved against its shard's live
// mark price and risk params.
type leg struct {
	Qty          int64
	Mark         uint64
	ContractSize uint64
	IMRBps       uint64
	MMRBps       uint64
	Notional     *big.Int
}

// exposureNotional computes |qty| * contractSize * markPx / 1e12, the same
// scale-down the slab uses for position notionals.
func exposureNotional(qty int64, contractSize, markPx uint64) *big.Int {
	n := fixed.U256ToBig(fixed.MulU64(fixed.AbsI64(qty), contractSize))
	n.Mul(n, big.NewInt(int64(markPx)))
	return n.Quo(n, big.NewInt(1_000_000_000_000))
}

func (r *Router) resolveLeg(e Exposure) (leg, error) {
	shard, err := r.Registry.Get(e.ShardIdx)
	if err != nil {
		return leg{}, err
	}
	instr, ok := shard.Instrument(e.InstrumentIdx)
	if !ok {
		return leg{}, ErrInvalidPortfolio
	}
	mark := uint64(shard.Header.MarkPx)
	return leg{
		Qty:          e.Qty,
		Mark:         mark,
		ContractSize: instr.ContractSize,
		IMRBps:       shard.Header.IMRBps,
		MMRBps:       shard.Header.MMRBps,
		Notional:     exposureNotional(e.Qty, instr.ContractSize, mark),
	}, nil
}

// GrossIM sums IM across every exposure independently (no netting) — the
// "IM on each position summed" half of the netting-benefit definition.
func (r *Router) GrossIM(p *Portfolio) (*big.Int, error) {
	total := big.NewInt(0)
	for _, e := range p.Exposures {
		l, err := r.resolveLeg(e)
		if err != nil {
			return nil, err
		}
		total.Add(total, fixed.BpsOfBig(l.Notional, int64(l.IMRBps)))
	}
	return total, nil
}

// GrossMM is GrossIM's maintenance-margin counterpart.
func (r *Router) GrossMM(p *Portfolio) (*big.Int, error) {
	total := big.NewInt(0)
	for _, e := range p.Exposures {
		l, err := r.resolveLeg(e)
		if err != nil {
			return nil, err
		}
		total.Add(total, fixed.BpsOfBig(l.Notional, int64(l.MMRBps)))
	}
	return total, nil
}

// underlyingGroup accumulates net signed qty and |qty|-weighted margin
// inputs for one netting group.
type underlyingGroup struct {
	netQty      int64
	weight      uint64 // sum of |qty|
	markNum     *big.Int
	imrNum      *big.Int
	mmrNum      *big.Int
	contractNum *big.Int
}

// groupExposures buckets every exposure by Router.GroupKey (the implicit
// underlying; the default key collapses every instrument into one
// bucket). Returns groups keyed by that string, in no particular order
// (net IM is summed across all of them).
func (r *Router) groupExposures(p *Portfolio) (map[string]*underlyingGroup, error) {
	groups := make(map[string]*underlyingGroup)
	for _, e := range p.Exposures {
		l, err := r.resolveLeg(e)
		if err != nil {
			return nil, err
		}
		key := r.GroupKey(e.ShardIdx, e.InstrumentIdx)
		g, ok := groups[key]
		if !ok {
			g = &underlyingGroup{markNum: big.NewInt(0), imrNum: big.NewInt(0), mmrNum: big.NewInt(0), contractNum: big.NewInt(0)}
			groups[key] = g
		}
		absQty := fixed.AbsI64(e.Qty)
		g.netQty += e.Qty
		g.weight += absQty
		g.markNum.Add(g.markNum, new(big.Int).Mul(big.NewInt(int64(absQty)), big.NewInt(int64(l.Mark))))
		g.imrNum.Add(g.imrNum, new(big.Int).Mul(big.NewInt(int64(absQty)), big.NewInt(int64(l.IMRBps))))
		g.mmrNum.Add(g.mmrNum, new(big.Int).Mul(big.NewInt(int64(absQty)), big.NewInt(int64(l.MMRBps))))
		g.contractNum.Add(g.contractNum, new(big.Int).Mul(big.NewInt(int64(absQty)), big.NewInt(int64(l.ContractSize))))
	}
	return groups, nil
}

func avg(num *big.Int, weight uint64) uint64 {
	if weight == 0 {
		return 0
	}
	return new(big.Int).Quo(num, big.NewInt(int64(weight))).Uint64()
}

// notionalAndMargin returns the netted group's notional and IM/MM, using
// the |qty|-weighted average mark/contract-size/risk-bps across its legs
// (identical when every leg shares the same instrument).
func (g *underlyingGroup) notionalAndMargin() (notional, im, mm *big.Int) {
	if g.weight == 0 {
		z := big.NewInt(0)
		return z, z, z
	}
	avgMark := avg(g.markNum, g.weight)
	avgContract := avg(g.contractNum, g.weight)
	avgIMR := avg(g.imrNum, g.weight)
	avgMMR := avg(g.mmrNum, g.weight)
	notional = exposureNotional(g.netQty, avgContract, avgMark)
	im = fixed.BpsOfBig(notional, int64(avgIMR))
	mm = fixed.BpsOfBig(notional, int64(avgMMR))
	return
}

// NetIM computes the netted initial margin: group by underlying, sum
// signed qty per group, IM on the net.
func (r *Router) NetIM(p *Portfolio) (*big.Int, error) {
	netIM, _, err := r.netMargins(p)
	return netIM, err
}

// NetMM is NetIM's maintenance-margin counterpart.
func (r *Router) NetMM(p *Portfolio) (*big.Int, error) {
	_, netMM, err := r.netMargins(p)
	return netMM, err
}

func (r *Router) netMargins(p *Portfolio) (netIM, netMM *big.Int, err error) {
	groups, err := r.groupExposures(p)
	if err != nil {
		return nil, nil, err
	}
	netIM = big.NewInt(0)
	netMM = big.NewInt(0)
	type groupNotional struct {
		key      string
		sign     int
		notional *big.Int
	}
	var notionals []groupNotional
	for key, g := range groups {
		n, im, mm := g.notionalAndMargin()
		netIM.Add(netIM, im)
		netMM.Add(netMM, mm)
		sign := 0
		if g.netQty > 0 {
			sign = 1
		} else if g.netQty < 0 {
			sign = -1
		}
		notionals = append(notionals, groupNotional{key: key, sign: sign, notional: n})
	}

	if len(p.CorrelationTable) > 0 {
		benefitIM := big.NewInt(0)
		benefitMM := big.NewInt(0)
		for _, pair := range p.CorrelationTable {
			abs := pair.CorrelationBps
			if abs < 0 {
				abs = -abs
			}
			if abs < MinCorrelationBps {
				continue
			}
			var a, b *groupNotional
			for i := range notionals {
				if notionals[i].key == pair.GroupA {
					a = &notionals[i]
				}
				if notionals[i].key == pair.GroupB {
					b = &notionals[i]
				}
			}
			if a == nil || b == nil || a.sign == 0 || b.sign == 0 || a.sign == b.sign {
				continue
			}
			minNotional := a.notional
			if b.notional.Cmp(minNotional) < 0 {
				minNotional = b.notional
			}
			benefit := new(big.Int).Mul(minNotional, big.NewInt(MaxCorrelationBenefitBps*abs))
			benefit.Quo(benefit, big.NewInt(10_000*1000))
			benefitIM.Add(benefitIM, benefit)
			benefitMM.Add(benefitMM, new(big.Int).Quo(benefit, big.NewInt(2)))
		}
		netIM.Sub(netIM, benefitIM)
		if netIM.Sign() < 0 {
			netIM.SetInt64(0)
		}
		netMM.Sub(netMM, benefitMM)
		if netMM.Sign() < 0 {
			netMM.SetInt64(0)
		}
	}
	return netIM, netMM, nil
}

// NettingBenefit returns gross_im - net_im. net_im never exceeds
// gross_im; they are equal exactly when no netting is possible.
func (r *Router) NettingBenefit(p *Portfolio) (*big.Int, error) {
	gross, err := r.GrossIM(p)
	if err != nil {
		return nil, err
	}
	net, err := r.NetIM(p)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Sub(gross, net), nil
}

// MaxOrderSize returns the largest quantity (at priceU64, on the given
// instrument's risk params) free_margin can support: free_margin /
// (price * imr / (10000*1e6)). When the order is opposite to the
// portfolio's current net exposure on that underlying, the unit allows 2x
// to reflect the netting benefit a hedge would realize.
func (r *Router) MaxOrderSize(p *Portfolio, shardIdx uint8, instrumentIdx uint16, price uint64, side slab.Side) (uint64, error) {
	equity, err := r.Equity(p)
	if err != nil {
		return 0, err
	}
	netIM, err := r.NetIM(p)
	if err != nil {
		return 0, err
	}
	freeMargin := new(big.Int).Sub(equity, netIM)
	if freeMargin.Sign() <= 0 {
		return 0, nil
	}

	shard, err := r.Registry.Get(shardIdx)
	if err != nil {
		return 0, err
	}
	imrBps := shard.Header.IMRBps
	if price == 0 || imrBps == 0 {
		return 0, nil
	}

	// unit = price * imr / (10000*1e6), the per-contract margin requirement.
	unit := new(big.Int).Mul(big.NewInt(int64(price)), big.NewInt(int64(imrBps)))
	unit.Quo(unit, big.NewInt(10_000*1_000_000))
	if unit.Sign() == 0 {
		return 0, nil
	}

	maxQty := new(big.Int).Quo(freeMargin, unit)

	key := r.GroupKey(shardIdx, instrumentIdx)
	groups, err := r.groupExposures(p)
	if err != nil {
		return 0, err
	}
	if g, ok := groups[key]; ok {
		opposite := (g.netQty > 0 && side == slab.Sell) || (g.netQty < 0 && side == slab.Buy)
		if opposite {
			maxQty.Mul(maxQty, big.NewInt(2))
		}
	}
	return maxQty.Uint64(), nil
}
