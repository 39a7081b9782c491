package slab

import (
	"math/big"

	"github.com/luxfi/perpslab/internal/fixed"
)

// Pool capacities. Fixed at build time so a shard is a single bounded
// record.
const (
	PoolInstruments   = 32
	PoolOrders        = 30_000
	PoolPositions     = 30_000
	PoolReservations  = 4_000
	PoolSlices        = 16_000
	PoolTrades        = 10_000
	PoolAccounts      = 5_000
)

const invalid = fixed.InvalidIndex

// Side is the direction of an order or a position-closing action.
type Side uint8

const (
	Buy Side = iota
	Sell
)

// OrderState distinguishes an order resting in the live book from one
// waiting for the next batch open (anti-sandwich staging).
type OrderState uint8

const (
	Live OrderState = iota
	Pending
)

// Instrument is a per-shard market definition with four orderbook heads
// (live/pending, bid/ask).
type Instrument struct {
	Used bool

	Symbol       [8]byte
	ContractSize uint64
	Tick         uint64
	Lot          uint64

	IndexPrice    uint64
	FundingRate   int64
	CumFunding    *big.Int
	LastFundingTs uint64

	BidsLiveHead    uint32
	AsksLiveHead    uint32
	BidsPendingHead uint32
	AsksPendingHead uint32

	Epoch         uint16
	BatchOpenMs   uint64
	FreezeUntilMs uint64
}

// Order is a resting limit order, addressed by pool index and linked into
// its instrument's price-time-priority list.
type Order struct {
	OrderID       uint64
	AccountIdx    uint32
	InstrumentIdx uint16
	Side          Side
	State         OrderState
	Price         uint64
	QtyOrig       uint64
	Qty           uint64
	ReservedQty   uint64
	EligibleEpoch uint64
	CreatedMs     uint64

	Prev uint32
	Next uint32
}

// Slice binds a reserved quantity to one maker order within a reservation's
// slice chain.
type Slice struct {
	OrderIdx uint32
	Qty      uint64
	Next     uint32
}

// Reservation is the phase-1 hold produced by Reserve and consumed by
// Commit or Cancel.
type Reservation struct {
	HoldID         uint64
	RouteID        uint64
	AccountIdx     uint32
	InstrumentIdx  uint16
	Side           Side
	Qty            uint64
	VwapPx         uint64
	WorstPx        uint64
	MaxCharge      *big.Int
	CommitmentHash fixed.ID
	Salt           [16]byte
	BookSeqno      uint64
	ExpiryMs       uint64
	SliceHead      uint32
	Committed      bool
}

// Position is a per-account, per-instrument signed position with a VWAP
// entry price, linked into the account's position chain.
type Position struct {
	AccountIdx    uint32
	InstrumentIdx uint16
	Qty           int64
	EntryPx       uint64
	LastFunding   *big.Int
	NextInAccount uint32
}

// Account is the per-shard view of a user.
type Account struct {
	Used         bool
	Key          fixed.ID
	Cash         *big.Int
	IM           *big.Int
	MM           *big.Int
	PositionHead uint32
}

// Trade is a ring-buffer fill record.
type Trade struct {
	Ts             uint64
	MakerOrderID   uint64
	TakerOrderID   uint64
	InstrumentIdx  uint16
	Side           Side
	Price          uint64
	Qty            uint64
	CommitHash     fixed.ID
	RevealMs       uint64
}
