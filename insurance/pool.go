// Package insurance implements the per-shard insurance pool: liquidation
// contributions, shortfall payouts with an ADL escalation signal, ADL
// victim selection, and timelocked LP withdrawals.
package insurance

import (
	"math/big"

	"github.com/luxfi/perpslab/internal/fixed"
)

// EventRingSize is the fixed capacity of the insurance event ring.
const EventRingSize = 100

// EventType distinguishes the kind of balance-affecting or state-machine
// event recorded into the ring.
type EventType uint8

const (
	EventContribution EventType = iota
	EventPayout
	EventADLTriggered
	EventWithdrawalInitiated
	EventWithdrawalCompleted
	EventWithdrawalCancelled
)

// Event is one ring entry; the oldest is overwritten once the ring fills.
type Event struct {
	Type              EventType
	Ts                uint64
	Amount            *big.Int // signed: negative for payouts/withdrawals
	BalanceAfter      *big.Int
	RelatedAccountIdx uint32
	RelatedInstrument uint16
}

// Stats tallies lifetime pool activity.
type Stats struct {
	TotalContributions *big.Int
	TotalPayouts       *big.Int
	EventCount         uint64
}

// Pool is one shard's insurance fund.
type Pool struct {
	Balance                *big.Int
	TargetBalance          *big.Int // 1% of OI, refreshed by UpdateOpenInterest
	ContributionRateBps    uint64
	ADLThresholdBps        uint64
	WithdrawalTimelockSecs uint64

	PendingWithdrawal  *big.Int
	WithdrawalUnlockTs uint64

	LPOwner           fixed.ID
	TotalOpenInterest *big.Int

	Stats Stats

	events    [EventRingSize]Event
	eventHead uint64 // next write index, monotonic
}

// NewPool constructs an empty insurance pool with the given LP owner and
// config. contributionRateBps/adlThresholdBps come from the per-shard
// Insurance Init instruction (discriminator 8).
func NewPool(lpOwner fixed.ID, contributionRateBps, adlThresholdBps, withdrawalTimelockSecs uint64) *Pool {
	return &Pool{
		Balance:                big.NewInt(0),
		TargetBalance:          big.NewInt(0),
		ContributionRateBps:    contributionRateBps,
		ADLThresholdBps:        adlThresholdBps,
		WithdrawalTimelockSecs: withdrawalTimelockSecs,
		LPOwner:                lpOwner,
		TotalOpenInterest:      big.NewInt(0),
		Stats: Stats{
			TotalContributions: big.NewInt(0),
			TotalPayouts:       big.NewInt(0),
		},
	}
}

// recordEvent appends to the ring, overwriting the oldest slot once full.
func (p *Pool) recordEvent(evt Event) {
	idx := p.eventHead % EventRingSize
	p.events[idx] = evt
	p.eventHead++
	p.Stats.EventCount++
}

// Events returns the ring's entries in chronological order (oldest first),
// capped at whatever has actually been written.
func (p *Pool) Events() []Event {
	n := p.eventHead
	if n > EventRingSize {
		n = EventRingSize
	}
	out := make([]Event, 0, n)
	if p.eventHead <= EventRingSize {
		for i := uint64(0); i < n; i++ {
			out = append(out, p.events[i])
		}
		return out
	}
	start := p.eventHead % EventRingSize
	for i := uint64(0); i < EventRingSize; i++ {
		out = append(out, p.events[(start+i)%EventRingSize])
	}
	return out
}

// Contribute credits an explicit LP contribution (not liquidation-driven).
func (p *Pool) Contribute(amount *big.Int, ts uint64) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	p.Balance.Add(p.Balance, amount)
	p.Stats.TotalContributions.Add(p.Stats.TotalContributions, amount)
	p.recordEvent(Event{
		Type:         EventContribution,
		Ts:           ts,
		Amount:       new(big.Int).Set(amount),
		BalanceAfter: new(big.Int).Set(p.Balance),
	})
	return nil
}

// CreditFromLiquidation records a liquidation-driven credit: a bps cut of
// the liquidated notional, already computed by the calling shard. This
// applies the balance change and the ring event.
func (p *Pool) CreditFromLiquidation(amount *big.Int, accountIdx uint32, instrumentIdx uint16, ts uint64) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	p.Balance.Add(p.Balance, amount)
	p.Stats.TotalContributions.Add(p.Stats.TotalContributions, amount)
	p.recordEvent(Event{
		Type:              EventContribution,
		Ts:                ts,
		Amount:            new(big.Int).Set(amount),
		BalanceAfter:      new(big.Int).Set(p.Balance),
		RelatedAccountIdx: accountIdx,
		RelatedInstrument: instrumentIdx,
	})
}

// Payout pays up to requested out of the pool, returning the amount
// actually paid and whether ADL is now required to cover the remaining
// shortfall.
func (p *Pool) Payout(requested *big.Int, accountIdx uint32, instrumentIdx uint16, ts uint64) (paid *big.Int, adlRequired bool) {
	if requested == nil || requested.Sign() <= 0 {
		return big.NewInt(0), false
	}
	paid = new(big.Int).Set(requested)
	if paid.Cmp(p.Balance) > 0 {
		paid = new(big.Int).Set(p.Balance)
	}
	p.Balance.Sub(p.Balance, paid)
	p.Stats.TotalPayouts.Add(p.Stats.TotalPayouts, paid)

	p.recordEvent(Event{
		Type:              EventPayout,
		Ts:                ts,
		Amount:            new(big.Int).Neg(paid),
		BalanceAfter:      new(big.Int).Set(p.Balance),
		RelatedAccountIdx: accountIdx,
		RelatedInstrument: instrumentIdx,
	})

	shortfall := new(big.Int).Sub(requested, paid)
	adlRequired = shortfall.Sign() > 0
	if adlRequired {
		p.recordEvent(Event{
			Type:         EventADLTriggered,
			Ts:           ts,
			Amount:       new(big.Int).Set(shortfall),
			BalanceAfter: new(big.Int).Set(p.Balance),
		})
	}
	return paid, adlRequired
}

// UpdateOpenInterest refreshes the pool's view of total OI and recomputes
// TargetBalance as 1% of it.
func (p *Pool) UpdateOpenInterest(oi *big.Int) {
	p.TotalOpenInterest = new(big.Int).Set(oi)
	p.TargetBalance = fixed.BpsOfBig(oi, 100) // 1% == 100 bps
}

// ShouldTriggerADL reports whether the current balance has fallen below
// OI * adl_threshold_bps / 10000.
func (p *Pool) ShouldTriggerADL() bool {
	threshold := fixed.BpsOfBig(p.TotalOpenInterest, int64(p.ADLThresholdBps))
	return p.Balance.Cmp(threshold) < 0
}

// wouldBreachThreshold reports whether withdrawing amount from Balance
// would leave it below the ADL threshold.
func (p *Pool) wouldBreachThreshold(amount *big.Int) bool {
	remaining := new(big.Int).Sub(p.Balance, amount)
	threshold := fixed.BpsOfBig(p.TotalOpenInterest, int64(p.ADLThresholdBps))
	return remaining.Cmp(threshold) < 0
}

// InitiateWithdrawal starts the LP withdrawal timelock. Only
// one withdrawal may be pending at a time; it is refused up-front if it
// would immediately breach the ADL threshold.
func (p *Pool) InitiateWithdrawal(amount *big.Int, now uint64) error {
	if amount == nil || amount.Sign() <= 0 || amount.Cmp(p.Balance) > 0 {
		return ErrInvalidAmount
	}
	if p.wouldBreachThreshold(amount) {
		return ErrInsuranceBelowThreshold
	}
	p.PendingWithdrawal = new(big.Int).Set(amount)
	p.WithdrawalUnlockTs = now + p.WithdrawalTimelockSecs
	p.recordEvent(Event{
		Type:         EventWithdrawalInitiated,
		Ts:           now,
		Amount:       new(big.Int).Neg(amount),
		BalanceAfter: new(big.Int).Set(p.Balance),
	})
	return nil
}

// CompleteWithdrawal finalizes a pending withdrawal once the timelock has
// elapsed, rechecking the ADL threshold against the balance at completion
// time (the pool's balance may have moved since InitiateWithdrawal).
func (p *Pool) CompleteWithdrawal(now uint64) (*big.Int, error) {
	if p.PendingWithdrawal == nil {
		return nil, ErrNoPendingWithdrawal
	}
	if now < p.WithdrawalUnlockTs {
		return nil, ErrWithdrawalLocked
	}
	amount := p.PendingWithdrawal
	if amount.Cmp(p.Balance) > 0 {
		amount = new(big.Int).Set(p.Balance)
	}
	if p.wouldBreachThreshold(amount) {
		return nil, ErrInsuranceBelowThreshold
	}
	p.Balance.Sub(p.Balance, amount)
	p.PendingWithdrawal = nil
	p.WithdrawalUnlockTs = 0
	p.recordEvent(Event{
		Type:         EventWithdrawalCompleted,
		Ts:           now,
		Amount:       new(big.Int).Neg(amount),
		BalanceAfter: new(big.Int).Set(p.Balance),
	})
	return amount, nil
}

// CancelWithdrawal clears a pending withdrawal without moving funds.
func (p *Pool) CancelWithdrawal(now uint64) error {
	if p.PendingWithdrawal == nil {
		return ErrNoPendingWithdrawal
	}
	p.PendingWithdrawal = nil
	p.WithdrawalUnlockTs = 0
	p.recordEvent(Event{
		Type:         EventWithdrawalCancelled,
		Ts:           now,
		Amount:       big.NewInt(0),
		BalanceAfter: new(big.Int).Set(p.Balance),
	})
	return nil
}

// UpdateConfig applies the Insurance UpdateConfig instruction
// (discriminator 13). The caller is compared against the LP owner as a
// full 32-byte value, never a byte prefix.
func (p *Pool) UpdateConfig(caller fixed.ID, contributionRateBps, adlThresholdBps, withdrawalTimelockSecs uint64) error {
	if !caller.Equal(p.LPOwner) {
		return ErrUnauthorized
	}
	p.ContributionRateBps = contributionRateBps
	p.ADLThresholdBps = adlThresholdBps
	p.WithdrawalTimelockSecs = withdrawalTimelockSecs
	return nil
}
