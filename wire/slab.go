package wire

import (
	"encoding/binary"
	"math/big"

	"github.com/luxfi/perpslab/internal/fixed"
)

// Slab instruction discriminators.
const (
	SlabReserve uint8 = iota
	SlabCommit
	SlabCancel
	SlabBatchOpen
	SlabInitialize
	SlabAddInstrument
	SlabUpdateFunding
	SlabLiquidation
	SlabInsuranceInit
	SlabInsuranceContribute
	SlabInsuranceInitiateWithdraw
	SlabInsuranceCompleteWithdraw
	SlabInsuranceCancelWithdraw
	SlabInsuranceUpdateConfig
)

// ReserveBody is discriminator 0's fixed-layout body: account_idx:u32,
// instrument_idx:u16, side:u8, qty:u64, limit_px:u64, ttl_ms:u64,
// commitment_hash:[32], route_id:u64.
type ReserveBody struct {
	AccountIdx     uint32
	InstrumentIdx  uint16
	Side           uint8
	Qty            uint64
	LimitPx        uint64
	TtlMs          uint64
	CommitmentHash fixed.ID
	RouteID        uint64
}

const reserveBodyLen = 4 + 2 + 1 + 8 + 8 + 8 + 32 + 8

func (b ReserveBody) Encode() []byte {
	buf := make([]byte, reserveBodyLen)
	i := 0
	binary.LittleEndian.PutUint32(buf[i:], b.AccountIdx)
	i += 4
	binary.LittleEndian.PutUint16(buf[i:], b.InstrumentIdx)
	i += 2
	buf[i] = b.Side
	i++
	binary.LittleEndian.PutUint64(buf[i:], b.Qty)
	i += 8
	binary.LittleEndian.PutUint64(buf[i:], b.LimitPx)
	i += 8
	binary.LittleEndian.PutUint64(buf[i:], b.TtlMs)
	i += 8
	copy(buf[i:i+32], b.CommitmentHash[:])
	i += 32
	binary.LittleEndian.PutUint64(buf[i:], b.RouteID)
	return buf
}

func DecodeReserveBody(data []byte) (ReserveBody, error) {
	if len(data) < reserveBodyLen {
		return ReserveBody{}, ErrBufferTooShort
	}
	var b ReserveBody
	i := 0
	b.AccountIdx = binary.LittleEndian.Uint32(data[i:])
	i += 4
	b.InstrumentIdx = binary.LittleEndian.Uint16(data[i:])
	i += 2
	b.Side = data[i]
	i++
	b.Qty = binary.LittleEndian.Uint64(data[i:])
	i += 8
	b.LimitPx = binary.LittleEndian.Uint64(data[i:])
	i += 8
	b.TtlMs = binary.LittleEndian.Uint64(data[i:])
	i += 8
	b.CommitmentHash = fixed.IDFromBytes(data[i : i+32])
	i += 32
	b.RouteID = binary.LittleEndian.Uint64(data[i:])
	return b, nil
}

// CommitBody is discriminator 1's body: hold_id:u64, current_ts:u64.
type CommitBody struct {
	HoldID    uint64
	CurrentTs uint64
}

const commitBodyLen = 8 + 8

func (b CommitBody) Encode() []byte {
	buf := make([]byte, commitBodyLen)
	binary.LittleEndian.PutUint64(buf[0:], b.HoldID)
	binary.LittleEndian.PutUint64(buf[8:], b.CurrentTs)
	return buf
}

func DecodeCommitBody(data []byte) (CommitBody, error) {
	if len(data) < commitBodyLen {
		return CommitBody{}, ErrBufferTooShort
	}
	return CommitBody{
		HoldID:    binary.LittleEndian.Uint64(data[0:]),
		CurrentTs: binary.LittleEndian.Uint64(data[8:]),
	}, nil
}

// CancelBody is discriminator 2's body: hold_id:u64.
type CancelBody struct {
	HoldID uint64
}

const cancelBodyLen = 8

func (b CancelBody) Encode() []byte {
	buf := make([]byte, cancelBodyLen)
	binary.LittleEndian.PutUint64(buf, b.HoldID)
	return buf
}

func DecodeCancelBody(data []byte) (CancelBody, error) {
	if len(data) < cancelBodyLen {
		return CancelBody{}, ErrBufferTooShort
	}
	return CancelBody{HoldID: binary.LittleEndian.Uint64(data)}, nil
}

// BatchOpenBody is discriminator 3's body: instrument_idx:u16, current_ts:u64.
type BatchOpenBody struct {
	InstrumentIdx uint16
	CurrentTs     uint64
}

const batchOpenBodyLen = 2 + 8

func (b BatchOpenBody) Encode() []byte {
	buf := make([]byte, batchOpenBodyLen)
	binary.LittleEndian.PutUint16(buf[0:], b.InstrumentIdx)
	binary.LittleEndian.PutUint64(buf[2:], b.CurrentTs)
	return buf
}

func DecodeBatchOpenBody(data []byte) (BatchOpenBody, error) {
	if len(data) < batchOpenBodyLen {
		return BatchOpenBody{}, ErrBufferTooShort
	}
	return BatchOpenBody{
		InstrumentIdx: binary.LittleEndian.Uint16(data[0:]),
		CurrentTs:     binary.LittleEndian.Uint64(data[2:]),
	}, nil
}

// InitializeBody is discriminator 4's body: market_id:[32], lp_owner:[32],
// router_id:[32], imr:u64, mmr:u64, maker_fee:i64, taker_fee:u64, batch_ms:u64.
type InitializeBody struct {
	MarketID    fixed.ID
	LPOwner     fixed.ID
	RouterID    fixed.ID
	ImrBps      uint64
	MmrBps      uint64
	MakerFeeBps int64
	TakerFeeBps uint64
	BatchMs     uint64
}

const initializeBodyLen = 32 + 32 + 32 + 8 + 8 + 8 + 8 + 8

func (b InitializeBody) Encode() []byte {
	buf := make([]byte, initializeBodyLen)
	i := 0
	copy(buf[i:i+32], b.MarketID[:])
	i += 32
	copy(buf[i:i+32], b.LPOwner[:])
	i += 32
	copy(buf[i:i+32], b.RouterID[:])
	i += 32
	binary.LittleEndian.PutUint64(buf[i:], b.ImrBps)
	i += 8
	binary.LittleEndian.PutUint64(buf[i:], b.MmrBps)
	i += 8
	binary.LittleEndian.PutUint64(buf[i:], uint64(b.MakerFeeBps))
	i += 8
	binary.LittleEndian.PutUint64(buf[i:], b.TakerFeeBps)
	i += 8
	binary.LittleEndian.PutUint64(buf[i:], b.BatchMs)
	return buf
}

func DecodeInitializeBody(data []byte) (InitializeBody, error) {
	if len(data) < initializeBodyLen {
		return InitializeBody{}, ErrBufferTooShort
	}
	var b InitializeBody
	i := 0
	b.MarketID = fixed.IDFromBytes(data[i : i+32])
	i += 32
	b.LPOwner = fixed.IDFromBytes(data[i : i+32])
	i += 32
	b.RouterID = fixed.IDFromBytes(data[i : i+32])
	i += 32
	b.ImrBps = binary.LittleEndian.Uint64(data[i:])
	i += 8
	b.MmrBps = binary.LittleEndian.Uint64(data[i:])
	i += 8
	b.MakerFeeBps = int64(binary.LittleEndian.Uint64(data[i:]))
	i += 8
	b.TakerFeeBps = binary.LittleEndian.Uint64(data[i:])
	i += 8
	b.BatchMs = binary.LittleEndian.Uint64(data[i:])
	return b, nil
}

// AddInstrumentBody is discriminator 5's body: symbol:[8], contract_size:u64,
// tick:u64, lot:u64, initial_mark:u64.
type AddInstrumentBody struct {
	Symbol       [8]byte
	ContractSize uint64
	Tick         uint64
	Lot          uint64
	InitialMark  uint64
}

const addInstrumentBodyLen = 8 + 8 + 8 + 8 + 8

func (b AddInstrumentBody) Encode() []byte {
	buf := make([]byte, addInstrumentBodyLen)
	i := 0
	copy(buf[i:i+8], b.Symbol[:])
	i += 8
	binary.LittleEndian.PutUint64(buf[i:], b.ContractSize)
	i += 8
	binary.LittleEndian.PutUint64(buf[i:], b.Tick)
	i += 8
	binary.LittleEndian.PutUint64(buf[i:], b.Lot)
	i += 8
	binary.LittleEndian.PutUint64(buf[i:], b.InitialMark)
	return buf
}

func DecodeAddInstrumentBody(data []byte) (AddInstrumentBody, error) {
	if len(data) < addInstrumentBodyLen {
		return AddInstrumentBody{}, ErrBufferTooShort
	}
	var b AddInstrumentBody
	i := 0
	copy(b.Symbol[:], data[i:i+8])
	i += 8
	b.ContractSize = binary.LittleEndian.Uint64(data[i:])
	i += 8
	b.Tick = binary.LittleEndian.Uint64(data[i:])
	i += 8
	b.Lot = binary.LittleEndian.Uint64(data[i:])
	i += 8
	b.InitialMark = binary.LittleEndian.Uint64(data[i:])
	return b, nil
}

// UpdateFundingBody is discriminator 6's body: instrument_idx:u16,
// index_price:u64, current_ts:u64.
type UpdateFundingBody struct {
	InstrumentIdx uint16
	IndexPrice    uint64
	CurrentTs     uint64
}

const updateFundingBodyLen = 2 + 8 + 8

func (b UpdateFundingBody) Encode() []byte {
	buf := make([]byte, updateFundingBodyLen)
	binary.LittleEndian.PutUint16(buf[0:], b.InstrumentIdx)
	binary.LittleEndian.PutUint64(buf[2:], b.IndexPrice)
	binary.LittleEndian.PutUint64(buf[10:], b.CurrentTs)
	return buf
}

func DecodeUpdateFundingBody(data []byte) (UpdateFundingBody, error) {
	if len(data) < updateFundingBodyLen {
		return UpdateFundingBody{}, ErrBufferTooShort
	}
	return UpdateFundingBody{
		InstrumentIdx: binary.LittleEndian.Uint16(data[0:]),
		IndexPrice:    binary.LittleEndian.Uint64(data[2:]),
		CurrentTs:     binary.LittleEndian.Uint64(data[10:]),
	}, nil
}

// LiquidationBody is discriminator 7's body: account_idx:u32, deficit:i128,
// current_ts:u64. i128 is encoded as 16 little-endian bytes, two's
// complement, matching the other 128-bit fields' on-wire width.
type LiquidationBody struct {
	AccountIdx uint32
	Deficit    *big.Int
	CurrentTs  uint64
}

const liquidationBodyLen = 4 + 16 + 8

func (b LiquidationBody) Encode() []byte {
	buf := make([]byte, liquidationBodyLen)
	binary.LittleEndian.PutUint32(buf[0:], b.AccountIdx)
	putI128LE(buf[4:20], b.Deficit)
	binary.LittleEndian.PutUint64(buf[20:], b.CurrentTs)
	return buf
}

func DecodeLiquidationBody(data []byte) (LiquidationBody, error) {
	if len(data) < liquidationBodyLen {
		return LiquidationBody{}, ErrBufferTooShort
	}
	return LiquidationBody{
		AccountIdx: binary.LittleEndian.Uint32(data[0:]),
		Deficit:    getI128LE(data[4:20]),
		CurrentTs:  binary.LittleEndian.Uint64(data[20:]),
	}, nil
}
