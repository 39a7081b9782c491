// Package router implements the cross-shard coordination layer: portfolio
// margin, atomic N-shard reserve/commit, and global liquidation. Package
// slab is the per-shard half it orchestrates.
package router

import (
	"math/big"
	"sync"

	"github.com/luxfi/perpslab/insurance"
	"github.com/luxfi/perpslab/internal/fixed"
)

// Router ties a shard registry, a shared vault, and a set of cross-shard
// portfolios together. One mutex guards the Router's own state (vault,
// portfolio map); each exported state-changing method holds it for its
// whole call, the same serialized-per-instruction model slab.Shard uses.
// The margin and equity readers (Equity, GrossIM, GrossMM, NetIM, NetMM,
// NettingBenefit, MaxOrderSize) take no lock of their own, and
// ExecuteCrossSlab takes it in separate steps (reserve, margin check,
// commit), not once for the whole flow.
type Router struct {
	mu sync.Mutex

	Registry   *SlabRegistry
	Vault      *Vault
	Portfolios map[fixed.ID]*Portfolio

	// GroupKey buckets an exposure into its netting "underlying". The
	// default collapses every instrument into one bucket; a production
	// deployment swaps this func for one keyed by symbol family without
	// touching the netting math in portfolio.go.
	GroupKey func(shardIdx uint8, instrumentIdx uint16) string

	// GlobalInsurance is an optional shard-agnostic insurance pool. No
	// Router method reads or updates it: GlobalLiquidation credits only each
	// shard's own pool, through that shard's Liquidate.
	GlobalInsurance *insurance.Pool
}

// NewRouter constructs an empty router with the default (single-bucket)
// grouping key.
func NewRouter() *Router {
	return &Router{
		Registry:   NewSlabRegistry(),
		Vault:      NewVault(),
		Portfolios: make(map[fixed.ID]*Portfolio),
		GroupKey: func(shardIdx uint8, instrumentIdx uint16) string {
			return "default"
		},
	}
}

// InitializePortfolio creates (or returns the existing) portfolio for
// user. Router discriminator 1.
func (r *Router) InitializePortfolio(user fixed.ID) *Portfolio {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.Portfolios[user]; ok {
		return p
	}
	p := newPortfolio(user)
	r.Portfolios[user] = p
	return p
}

func (r *Router) getPortfolio(user fixed.ID) (*Portfolio, error) {
	p, ok := r.Portfolios[user]
	if !ok {
		return nil, ErrInvalidPortfolio
	}
	return p, nil
}

// Deposit credits user's portfolio collateral and the shared vault.
// Router discriminator 2.
func (r *Router) Deposit(user fixed.ID, amount *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if amount == nil || amount.Sign() <= 0 {
		return ErrInsufficientFunds
	}
	p, err := r.getPortfolio(user)
	if err != nil {
		return err
	}
	p.CollateralBalance.Add(p.CollateralBalance, amount)
	r.Vault.Credit(amount)
	return nil
}

// Withdraw debits user's portfolio collateral and the vault, refusing to
// leave free_collateral negative. Router discriminator 3.
func (r *Router) Withdraw(user fixed.ID, amount *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if amount == nil || amount.Sign() <= 0 {
		return ErrInsufficientFunds
	}
	p, err := r.getPortfolio(user)
	if err != nil {
		return err
	}
	free, err := r.freeCollateralLocked(p)
	if err != nil {
		return err
	}
	if amount.Cmp(free) > 0 {
		return ErrInsufficientFunds
	}
	if err := r.Vault.Debit(amount); err != nil {
		return err
	}
	p.CollateralBalance.Sub(p.CollateralBalance, amount)
	return nil
}

// Equity returns a portfolio's equity: collateral + realized PnL +
// unrealized PnL summed across every exposure.
func (r *Router) Equity(p *Portfolio) (*big.Int, error) {
	equity := new(big.Int).Add(p.CollateralBalance, p.RealizedPnL)
	for _, e := range p.Exposures {
		shard, err := r.Registry.Get(e.ShardIdx)
		if err != nil {
			return nil, err
		}
		accountIdx := shard.OpenAccount(p.User)
		pos, ok := shard.Position(accountIdx, e.InstrumentIdx)
		if !ok {
			continue
		}
		mark := shard.Header.MarkPx
		diff := new(big.Int).Sub(big.NewInt(mark), big.NewInt(int64(pos.EntryPx)))
		equity.Add(equity, diff.Mul(diff, big.NewInt(pos.Qty)))
	}
	return equity, nil
}

// FreeCollateral returns equity - net_im when equity >= net_im, else 0.
func (r *Router) FreeCollateral(p *Portfolio) (*big.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.freeCollateralLocked(p)
}

func (r *Router) freeCollateralLocked(p *Portfolio) (*big.Int, error) {
	equity, err := r.Equity(p)
	if err != nil {
		return nil, err
	}
	netIM, err := r.NetIM(p)
	if err != nil {
		return nil, err
	}
	if equity.Cmp(netIM) < 0 {
		return big.NewInt(0), nil
	}
	return new(big.Int).Sub(equity, netIM), nil
}

// MarkToMarket refreshes a portfolio's cached IM/MM snapshot and
// LastMarkTs against every registered shard's current mark prices. Router
// discriminator 9.
func (r *Router) MarkToMarket(user fixed.ID, currentTs uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.getPortfolio(user)
	if err != nil {
		return err
	}
	im, err := r.NetIM(p)
	if err != nil {
		return err
	}
	mm, err := r.NetMM(p)
	if err != nil {
		return err
	}
	p.InitialMarginUsed = im
	p.MaintenanceMarginUsed = mm
	p.LastMarkTs = currentTs
	return nil
}

// IsLiquidatable reports whether a portfolio's equity has fallen below its
// netted maintenance margin, and by how much.
func (r *Router) IsLiquidatable(user fixed.ID) (bool, *big.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.getPortfolio(user)
	if err != nil {
		return false, nil, err
	}
	equity, err := r.Equity(p)
	if err != nil {
		return false, nil, err
	}
	mm, err := r.NetMM(p)
	if err != nil {
		return false, nil, err
	}
	if equity.Cmp(mm) >= 0 {
		return false, big.NewInt(0), nil
	}
	return true, new(big.Int).Sub(mm, equity), nil
}

// Portfolio returns user's portfolio record itself, not a copy: changes
// made through the returned pointer change the Router's state.
func (r *Router) Portfolio(user fixed.ID) (*Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getPortfolio(user)
}
