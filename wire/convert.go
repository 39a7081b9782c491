// Adapters from slab's in-process receipts to their wire-encoded form — the
// boundary a host actually reads return data across, kept as a thin
// conversion layer so slab itself never imports wire.
package wire

import (
	"math/big"

	"github.com/luxfi/perpslab/slab"
)

func ReserveReturnFrom(r *slab.ReserveResult) ReserveReturn {
	return ReserveReturn{
		HoldID:    r.HoldID,
		VwapPx:    r.VwapPx,
		WorstPx:   r.WorstPx,
		FilledQty: r.FilledQty,
		MaxCharge: r.MaxCharge,
		ExpiryMs:  r.ExpiryMs,
		BookSeqno: r.BookSeqno,
	}
}

func CommitReturnFrom(r *slab.CommitResult) CommitReturn {
	return CommitReturn{
		FilledQty:   r.FilledQty,
		VwapPx:      r.VwapPx,
		Notional:    r.Notional,
		Fees:        r.Fees,
		RealizedPnL: r.RealizedPnL,
	}
}

func LiquidationReturnFrom(r *slab.LiquidationResult) LiquidationReturn {
	var avgPx uint64
	if r.TotalQtyLiquidated > 0 {
		avgPx = new(big.Int).Quo(r.TotalNotional, big.NewInt(int64(r.TotalQtyLiquidated))).Uint64()
	}
	return LiquidationReturn{
		FilledQty:        r.TotalQtyLiquidated,
		AvgPrice:         avgPx,
		Notional:         r.TotalNotional,
		RemainingDeficit: r.RemainingDeficit,
	}
}
