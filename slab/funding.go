package slab

import "math/big"

// FundingIntervalMs is the minimum spacing between funding updates for one
// instrument (1 hour).
const FundingIntervalMs uint64 = 3_600_000

// UpdateFunding accrues a time-weighted funding payment into instrumentIdx's
// cumulative funding and settles it against every open position on that
// instrument. Longs pay positive funding when mark > index; shorts pay
// when mark < index. At most once per FundingIntervalMs.
func (s *Shard) UpdateFunding(instrumentIdx uint16, indexPrice, currentTs uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	instr, ok := s.getInstrument(instrumentIdx)
	if !ok {
		return ErrInvalidInstrument
	}

	elapsed := currentTs - instr.LastFundingTs
	if instr.LastFundingTs > 0 && elapsed < FundingIntervalMs {
		return ErrInvalidInstruction
	}
	if s.Header.MarkPx == 0 {
		return ErrInvalidPrice
	}

	fundingDelta := calculateFundingRate(uint64(s.Header.MarkPx), indexPrice, elapsed)

	oldCum := new(big.Int).Set(instr.CumFunding)
	instr.CumFunding = new(big.Int).Add(instr.CumFunding, fundingDelta)
	instr.FundingRate = fundingDelta.Int64()
	instr.IndexPrice = indexPrice
	instr.LastFundingTs = currentTs

	s.applyFundingToPositions(instrumentIdx, oldCum, instr.CumFunding)

	s.Header.LastFundingTs = currentTs
	s.Header.IncrementSeqno()
	return nil
}

// calculateFundingRate computes the time-weighted premium-based funding
// delta: premium (bps) = (mark-index)*10000/index; hourly rate =
// premium/8 (8-hour full cycle); scaled by elapsed/interval.
func calculateFundingRate(markPrice, indexPrice, elapsedMs uint64) *big.Int {
	if indexPrice == 0 {
		return big.NewInt(0)
	}
	mark := big.NewInt(int64(markPrice))
	index := big.NewInt(int64(indexPrice))

	premiumBps := new(big.Int).Sub(mark, index)
	premiumBps.Mul(premiumBps, big.NewInt(10_000))
	premiumBps.Quo(premiumBps, index)

	hourlyRate := new(big.Int).Quo(premiumBps, big.NewInt(8))

	timeFactor := new(big.Int).Mul(big.NewInt(int64(elapsedMs)), big.NewInt(1_000_000))
	timeFactor.Quo(timeFactor, big.NewInt(int64(FundingIntervalMs)))

	delta := hourlyRate.Mul(hourlyRate, timeFactor)
	return delta.Quo(delta, big.NewInt(1_000_000))
}

// applyFundingToPositions debits/credits every open position on
// instrumentIdx by its signed share of the funding delta, and records the
// new cum_funding as each position's settlement checkpoint.
func (s *Shard) applyFundingToPositions(instrumentIdx uint16, oldCum, newCum *big.Int) {
	fundingDelta := new(big.Int).Sub(newCum, oldCum)

	for accIdx := uint32(0); accIdx < s.Header.AccountCount; accIdx++ {
		acc, ok := s.Accounts.Get(accIdx)
		if !ok {
			continue
		}
		totalPayment := big.NewInt(0)
		posIdx := acc.PositionHead
		for posIdx != invalid {
			pos, ok := s.Positions.Get(posIdx)
			if !ok {
				break
			}
			next := pos.NextInAccount
			if pos.InstrumentIdx == instrumentIdx {
				payment := fundingPayment(pos.Qty, fundingDelta)
				totalPayment.Add(totalPayment, payment)
				pos.LastFunding = new(big.Int).Set(newCum)
			}
			posIdx = next
		}
		if totalPayment.Sign() != 0 {
			acc.Cash.Sub(acc.Cash, totalPayment)
		}
	}
}

// GetPendingFunding returns the unsettled funding owed by (positive) or
// owed to (negative) a position: qty * (cum_funding_now - last_funding),
// scaled down by 1e12 the same way fundingPayment scales settlement.
func (s *Shard) GetPendingFunding(posIdx uint32) (*big.Int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.Positions.Get(posIdx)
	if !ok {
		return nil, false
	}
	instr, ok := s.getInstrument(pos.InstrumentIdx)
	if !ok {
		return nil, false
	}
	delta := new(big.Int).Sub(instr.CumFunding, pos.LastFunding)
	return fundingPayment(pos.Qty, delta), true
}

// fundingPayment applies the settlement scale:
// qty_signed * funding_delta / 1e6 / 1e6.
func fundingPayment(qty int64, fundingDelta *big.Int) *big.Int {
	p := new(big.Int).Mul(big.NewInt(qty), fundingDelta)
	million := big.NewInt(1_000_000)
	p.Quo(p, million)
	return p.Quo(p, million)
}
