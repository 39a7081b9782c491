package slab

import "github.com/luxfi/perpslab/internal/fixed"

// Magic identifies the persistent shard record format. A mismatch on load
// is a fatal refusal to proceed.
var Magic = [8]byte{'P', 'E', 'R', 'P', '1', '0', 0, 0}

const HeaderVersion = 1

// Header carries the shard's risk/anti-toxicity configuration, monotonic
// counters, and mark-price state.
type Header struct {
	Magic   [8]byte
	Version uint32
	Seqno   uint64

	Program fixed.ID
	Owner   fixed.ID
	Router  fixed.ID

	// Risk params.
	IMRBps      uint64
	MMRBps      uint64
	MakerFeeBps int64 // signed: negative is a rebate
	TakerFeeBps uint64

	// Anti-toxicity params.
	BatchMs          uint64
	KillBandBps      uint64
	FreezeLevels     uint32
	JitPenaltyOn     bool
	MakerRebateMinMs uint64
	ArgEnabled       bool
	ArgTaxBps        uint64

	CurrentEpoch uint64
	nextOrderID  uint64
	nextHoldID   uint64

	MarkPx     int64
	PrevMarkPx int64

	InstrumentCount uint16
	AccountCount    uint32

	LastBatchOpenTs uint64
	LastFundingTs   uint64
}

// NewHeader constructs a header with the protocol's default anti-toxicity
// parameters: kill_band_bps=100 (1%), freeze_levels=3, jit_penalty_on=true,
// maker_rebate_min_ms=50, arg_enabled=true, arg_tax_bps=50.
func NewHeader(program, owner, router fixed.ID, imrBps, mmrBps uint64, makerFeeBps int64, takerFeeBps, batchMs uint64) *Header {
	return &Header{
		Magic:            Magic,
		Version:          HeaderVersion,
		Program:          program,
		Owner:            owner,
		Router:           router,
		IMRBps:           imrBps,
		MMRBps:           mmrBps,
		MakerFeeBps:      makerFeeBps,
		TakerFeeBps:      takerFeeBps,
		BatchMs:          batchMs,
		KillBandBps:      100,
		FreezeLevels:     3,
		JitPenaltyOn:     true,
		MakerRebateMinMs: 50,
		ArgEnabled:       true,
		ArgTaxBps:        50,
		nextOrderID:      1,
		nextHoldID:       1,
	}
}

// IncrementSeqno bumps the shard's total-order counter. Every state-mutating
// operation calls this exactly once (or, for batch sweeps, once per batch).
func (h *Header) IncrementSeqno() {
	h.Seqno++
}

// NextOrderID returns the next monotonic order id, post-increment. Ids
// start at 1.
func (h *Header) NextOrderID() uint64 {
	id := h.nextOrderID
	h.nextOrderID++
	return id
}

func (h *Header) NextHoldID() uint64 {
	id := h.nextHoldID
	h.nextHoldID++
	return id
}

// CheckKillBand reports whether the header's current mark_px is within the
// configured band of prev_mark_px — the signal compared at commit time,
// never a per-reservation book_seqno snapshot (book_seqno already gives
// callers a staleness signal). If either mark hasn't been set yet, the
// check passes.
func (h *Header) CheckKillBand() bool {
	if h.PrevMarkPx == 0 || h.MarkPx == 0 {
		return true
	}
	diff := h.MarkPx - h.PrevMarkPx
	if diff < 0 {
		diff = -diff
	}
	prevAbs := h.PrevMarkPx
	if prevAbs < 0 {
		prevAbs = -prevAbs
	}
	threshold := (uint64(prevAbs) * h.KillBandBps) / 10_000
	return uint64(diff) <= threshold
}

// UpdateMarkPx shifts mark_px into prev_mark_px before setting the new
// value, so the next CheckKillBand call compares against what was current
// just before this update.
func (h *Header) UpdateMarkPx(newMarkPx int64) {
	h.PrevMarkPx = h.MarkPx
	h.MarkPx = newMarkPx
}

// IsJITOrder reports whether an order created at createdMs would still be
// within the maker-rebate-withholding window at currentMs.
func (h *Header) IsJITOrder(createdMs, currentMs uint64) bool {
	if !h.JitPenaltyOn {
		return false
	}
	return fixed.SaturatingSubU64(currentMs, createdMs) < h.MakerRebateMinMs
}
