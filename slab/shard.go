package slab

import (
	"math/big"
	"sync"

	"github.com/luxfi/perpslab/insurance"
	"github.com/luxfi/perpslab/internal/fixed"
)

// Shard is one independent matching and risk domain: a header plus the six
// fixed-capacity pools. Every exported method is a single exclusive
// mutation — callers (a router, or tests) serialize calls against one
// Shard the way a host program serializes instructions against one account
// set; the mutex enforces that for in-process use.
type Shard struct {
	mu sync.Mutex

	Header      *Header
	Instruments [PoolInstruments]Instrument

	Orders        *fixed.Pool[Order]
	Positions     *fixed.Pool[Position]
	Reservations  *fixed.Pool[Reservation]
	Slices        *fixed.Pool[Slice]
	Accounts      *fixed.Pool[Account]
	Trades        [PoolTrades]Trade
	tradeWriteIdx uint64

	// Insurance is the shard's insurance fund. It is nil until
	// InitInsurance runs (the Insurance Init instruction, discriminator
	// 8) — Liquidate is a no-op toward it until then.
	Insurance *insurance.Pool
}

// NewShard constructs an empty shard with the given identities and risk
// parameters (the Initialize instruction, discriminator 4).
func NewShard(program, owner, router fixed.ID, imrBps, mmrBps uint64, makerFeeBps int64, takerFeeBps, batchMs uint64) *Shard {
	s := &Shard{
		Header:       NewHeader(program, owner, router, imrBps, mmrBps, makerFeeBps, takerFeeBps, batchMs),
		Orders:       fixed.NewPool[Order](PoolOrders),
		Positions:    fixed.NewPool[Position](PoolPositions),
		Reservations: fixed.NewPool[Reservation](PoolReservations),
		Slices:       fixed.NewPool[Slice](PoolSlices),
		Accounts:     fixed.NewPool[Account](PoolAccounts),
	}
	for i := range s.Instruments {
		s.Instruments[i] = Instrument{
			BidsLiveHead: invalid, AsksLiveHead: invalid,
			BidsPendingHead: invalid, AsksPendingHead: invalid,
		}
	}
	return s
}

// AddInstrument registers a new market (discriminator 5). Returns its
// index, ErrPoolFull if the instrument table is full, ErrInvalidInstrument
// for a duplicate symbol, or ErrInvalidRiskParams if contract size, tick or
// lot is zero.
func (s *Shard) AddInstrument(symbol [8]byte, contractSize, tick, lot, initialMark uint64) (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if contractSize == 0 || tick == 0 || lot == 0 {
		return 0, ErrInvalidRiskParams
	}
	if int(s.Header.InstrumentCount) >= PoolInstruments {
		return 0, ErrPoolFull
	}
	for i := uint16(0); i < s.Header.InstrumentCount; i++ {
		if s.Instruments[i].Symbol == symbol {
			return 0, ErrInvalidInstrument
		}
	}
	idx := s.Header.InstrumentCount
	s.Instruments[idx] = Instrument{
		Used:            true,
		Symbol:          symbol,
		ContractSize:    contractSize,
		Tick:            tick,
		Lot:             lot,
		IndexPrice:      initialMark,
		CumFunding:      big.NewInt(0),
		BidsLiveHead:    invalid,
		AsksLiveHead:    invalid,
		BidsPendingHead: invalid,
		AsksPendingHead: invalid,
	}
	s.Header.InstrumentCount++
	s.Header.IncrementSeqno()
	return idx, nil
}

func (s *Shard) getInstrument(idx uint16) (*Instrument, bool) {
	if int(idx) >= int(s.Header.InstrumentCount) || int(idx) >= PoolInstruments {
		return nil, false
	}
	if !s.Instruments[idx].Used {
		return nil, false
	}
	return &s.Instruments[idx], true
}

// getOrCreateAccount finds an account by key via linear scan (the account
// pool has no delete path, so live accounts are always a dense prefix), or
// allocates a new one appended at AccountCount.
func (s *Shard) getOrCreateAccount(key fixed.ID) (uint32, *Account) {
	for i := uint32(0); i < s.Header.AccountCount; i++ {
		if acc, ok := s.Accounts.Get(i); ok && acc.Key == key {
			return i, acc
		}
	}
	idx, acc, err := s.Accounts.Alloc()
	if err != nil {
		return invalid, nil
	}
	acc.Used = true
	acc.Key = key
	acc.Cash = big.NewInt(0)
	acc.IM = big.NewInt(0)
	acc.MM = big.NewInt(0)
	acc.PositionHead = invalid
	s.Header.AccountCount++
	return idx, acc
}

// InitInsurance installs this shard's insurance pool (Insurance Init,
// discriminator 8). A shard has exactly one insurance pool for its
// lifetime; calling this twice replaces it.
func (s *Shard) InitInsurance(lpOwner fixed.ID, contributionRateBps, adlThresholdBps, withdrawalTimelockSecs uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Insurance = insurance.NewPool(lpOwner, contributionRateBps, adlThresholdBps, withdrawalTimelockSecs)
}

// recordTrade appends into the ring buffer, overwriting the oldest entry.
func (s *Shard) recordTrade(t Trade) {
	idx := s.tradeWriteIdx % PoolTrades
	s.Trades[idx] = t
	s.tradeWriteIdx++
}
