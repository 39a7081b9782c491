package insurance

import "sort"

// ADLCandidate is one opposing position eligible for forced deleverage,
// ranked by profitability and leverage. RoiBps and LeverageRatioBps
// are computed by the caller (slab or router, which owns position/mark
// state); this package only ranks and selects among candidates it's given.
type ADLCandidate struct {
	AccountIdx       uint32
	InstrumentIdx    uint16
	Qty              uint64 // absolute size available to close
	RoiBps           int64
	LeverageRatioBps int64 // leverage expressed as bps, e.g. 5x = 50000

	score int64
}

// scoreADL computes min(roi_bps,5000) + min(leverage_ratio*100,5000),
// where leverage_ratio is LeverageRatioBps/10000 (e.g. 50000 bps = 5x).
func scoreADL(roiBps, leverageRatioBps int64) int64 {
	roiTerm := roiBps
	if roiTerm > 5000 {
		roiTerm = 5000
	}
	if roiTerm < 0 {
		roiTerm = 0
	}
	leverageRatio := leverageRatioBps / 100 // e.g. 50000 bps -> 500 ("5.00x" *100)
	levTerm := leverageRatio
	if levTerm > 5000 {
		levTerm = 5000
	}
	if levTerm < 0 {
		levTerm = 0
	}
	return roiTerm + levTerm
}

// SelectADL scores every candidate and returns, in descending-score order,
// the prefix whose cumulative Qty reaches targetQty (or all candidates, if
// the pool can't cover it — the caller reports the shortfall). Profitable
// and highly-leveraged positions deleverage first.
func SelectADL(candidates []ADLCandidate, targetQty uint64) []ADLCandidate {
	scored := make([]ADLCandidate, len(candidates))
	copy(scored, candidates)
	for i := range scored {
		scored[i].score = scoreADL(scored[i].RoiBps, scored[i].LeverageRatioBps)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	var selected []ADLCandidate
	var accumulated uint64
	for _, c := range scored {
		if accumulated >= targetQty {
			break
		}
		selected = append(selected, c)
		accumulated += c.Qty
	}
	return selected
}
