// Return-data encode/decode for the three fixed-width receipts: Reserve
// (64 bytes), Commit (64 bytes), Liquidation (48 bytes). Each
// Encode/Decode pair is exercised by a round-trip identity test.
package wire

import (
	"encoding/binary"
	"math/big"
)

// ReserveReturn is Reserve's 64-byte receipt: hold_id:u64, vwap_px:u64,
// worst_px:u64, filled_qty:u64, max_charge:u128, expiry_ms:u64, book_seqno:u64.
type ReserveReturn struct {
	HoldID    uint64
	VwapPx    uint64
	WorstPx   uint64
	FilledQty uint64
	MaxCharge *big.Int
	ExpiryMs  uint64
	BookSeqno uint64
}

const ReserveReturnLen = 8 + 8 + 8 + 8 + 16 + 8 + 8 // 64

func (r ReserveReturn) Encode() []byte {
	buf := make([]byte, ReserveReturnLen)
	binary.LittleEndian.PutUint64(buf[0:], r.HoldID)
	binary.LittleEndian.PutUint64(buf[8:], r.VwapPx)
	binary.LittleEndian.PutUint64(buf[16:], r.WorstPx)
	binary.LittleEndian.PutUint64(buf[24:], r.FilledQty)
	putU128LE(buf[32:48], r.MaxCharge)
	binary.LittleEndian.PutUint64(buf[48:], r.ExpiryMs)
	binary.LittleEndian.PutUint64(buf[56:], r.BookSeqno)
	return buf
}

func DecodeReserveReturn(data []byte) (ReserveReturn, error) {
	if len(data) < ReserveReturnLen {
		return ReserveReturn{}, ErrBufferTooShort
	}
	return ReserveReturn{
		HoldID:    binary.LittleEndian.Uint64(data[0:]),
		VwapPx:    binary.LittleEndian.Uint64(data[8:]),
		WorstPx:   binary.LittleEndian.Uint64(data[16:]),
		FilledQty: binary.LittleEndian.Uint64(data[24:]),
		MaxCharge: getU128LE(data[32:48]),
		ExpiryMs:  binary.LittleEndian.Uint64(data[48:]),
		BookSeqno: binary.LittleEndian.Uint64(data[56:]),
	}, nil
}

// CommitReturn is Commit's 64-byte receipt: filled_qty:u64, vwap_px:u64,
// notional:u128, fees:u128, realized_pnl:i128.
type CommitReturn struct {
	FilledQty   uint64
	VwapPx      uint64
	Notional    *big.Int
	Fees        *big.Int
	RealizedPnL *big.Int
}

const CommitReturnLen = 8 + 8 + 16 + 16 + 16 // 64

func (r CommitReturn) Encode() []byte {
	buf := make([]byte, CommitReturnLen)
	binary.LittleEndian.PutUint64(buf[0:], r.FilledQty)
	binary.LittleEndian.PutUint64(buf[8:], r.VwapPx)
	putU128LE(buf[16:32], r.Notional)
	putU128LE(buf[32:48], r.Fees)
	putI128LE(buf[48:64], r.RealizedPnL)
	return buf
}

func DecodeCommitReturn(data []byte) (CommitReturn, error) {
	if len(data) < CommitReturnLen {
		return CommitReturn{}, ErrBufferTooShort
	}
	return CommitReturn{
		FilledQty:   binary.LittleEndian.Uint64(data[0:]),
		VwapPx:      binary.LittleEndian.Uint64(data[8:]),
		Notional:    getU128LE(data[16:32]),
		Fees:        getU128LE(data[32:48]),
		RealizedPnL: getI128LE(data[48:64]),
	}, nil
}

// LiquidationReturn is Liquidation's 48-byte receipt: filled_qty:u64,
// avg_price:u64, notional:u128, remaining_deficit:u128.
type LiquidationReturn struct {
	FilledQty        uint64
	AvgPrice         uint64
	Notional         *big.Int
	RemainingDeficit *big.Int
}

const LiquidationReturnLen = 8 + 8 + 16 + 16 // 48

func (r LiquidationReturn) Encode() []byte {
	buf := make([]byte, LiquidationReturnLen)
	binary.LittleEndian.PutUint64(buf[0:], r.FilledQty)
	binary.LittleEndian.PutUint64(buf[8:], r.AvgPrice)
	putU128LE(buf[16:32], r.Notional)
	putU128LE(buf[32:48], r.RemainingDeficit)
	return buf
}

func DecodeLiquidationReturn(data []byte) (LiquidationReturn, error) {
	if len(data) < LiquidationReturnLen {
		return LiquidationReturn{}, ErrBufferTooShort
	}
	return LiquidationReturn{
		FilledQty:        binary.LittleEndian.Uint64(data[0:]),
		AvgPrice:         binary.LittleEndian.Uint64(data[8:]),
		Notional:         getU128LE(data[16:32]),
		RemainingDeficit: getU128LE(data[32:48]),
	}, nil
}
