package router

import (
	"math/big"

	"github.com/luxfi/perpslab/internal/fixed"
)

// Vault is the Router's single shared collateral pool. It backs every
// portfolio's free_collateral; shard-local Account.Cash, by contrast,
// only ever moves through Shard.DepositCash and shard-local funding and
// liquidation-fee debits —
// the router, not the shard, is where cross-account balances are held.
type Vault struct {
	Balance *big.Int
}

// NewVault returns an empty vault.
func NewVault() *Vault {
	return &Vault{Balance: big.NewInt(0)}
}

func (v *Vault) Credit(amount *big.Int) {
	v.Balance.Add(v.Balance, amount)
}

// Debit fails with InsufficientFunds rather than letting the balance go
// negative.
func (v *Vault) Debit(amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if v.Balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	v.Balance.Sub(v.Balance, amount)
	return nil
}

// Exposure is one (shard, instrument) leg of a portfolio's cross-shard
// position.
type Exposure struct {
	ShardIdx      uint8
	InstrumentIdx uint16
	Qty           int64 // signed: positive long
}

// Portfolio is the Router's cross-shard view of one user. Its per-shard
// account index is never cached here — slab.Shard.OpenAccount is
// idempotent (find-or-create by key), so the Router re-derives it on
// demand from Portfolio.User instead of keeping a second source of truth
// that could drift.
type Portfolio struct {
	User              fixed.ID
	CollateralBalance *big.Int
	RealizedPnL       *big.Int
	Exposures         []Exposure

	InitialMarginUsed     *big.Int
	MaintenanceMarginUsed *big.Int
	LastMarkTs            uint64

	// CorrelationTable is this portfolio's optional correlation-benefit
	// table. Empty by default — only the underlying-netting benefit
	// applies then.
	CorrelationTable []CorrelationPair
}

func newPortfolio(user fixed.ID) *Portfolio {
	return &Portfolio{
		User:                  user,
		CollateralBalance:     big.NewInt(0),
		RealizedPnL:           big.NewInt(0),
		InitialMarginUsed:     big.NewInt(0),
		MaintenanceMarginUsed: big.NewInt(0),
	}
}

// exposure returns a pointer to the (shardIdx, instrumentIdx) exposure,
// creating a zero-qty one if absent.
func (p *Portfolio) exposure(shardIdx uint8, instrumentIdx uint16) *Exposure {
	for i := range p.Exposures {
		e := &p.Exposures[i]
		if e.ShardIdx == shardIdx && e.InstrumentIdx == instrumentIdx {
			return e
		}
	}
	p.Exposures = append(p.Exposures, Exposure{ShardIdx: shardIdx, InstrumentIdx: instrumentIdx})
	return &p.Exposures[len(p.Exposures)-1]
}

// applyFill adjusts the (shardIdx, instrumentIdx) exposure by a signed
// qty delta, pruning the entry if it nets to zero — qty=0 means not
// present, the same convention slab.Position uses.
func (p *Portfolio) applyFill(shardIdx uint8, instrumentIdx uint16, qtyDelta int64) {
	e := p.exposure(shardIdx, instrumentIdx)
	e.Qty += qtyDelta
	if e.Qty == 0 {
		for i := range p.Exposures {
			if p.Exposures[i].ShardIdx == shardIdx && p.Exposures[i].InstrumentIdx == instrumentIdx {
				p.Exposures = append(p.Exposures[:i], p.Exposures[i+1:]...)
				break
			}
		}
	}
}
