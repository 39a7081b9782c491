package wire

import (
	"encoding/binary"
	"math/big"

	"github.com/luxfi/perpslab/internal/fixed"
)

// InsuranceInitBody is discriminator 8's body: lp_owner:[32],
// contribution_rate_bps:u64, adl_threshold_bps:u64,
// withdrawal_timelock_secs:u64.
type InsuranceInitBody struct {
	LPOwner                fixed.ID
	ContributionRateBps    uint64
	ADLThresholdBps        uint64
	WithdrawalTimelockSecs uint64
}

const insuranceInitBodyLen = 32 + 8 + 8 + 8

func (b InsuranceInitBody) Encode() []byte {
	buf := make([]byte, insuranceInitBodyLen)
	copy(buf[0:32], b.LPOwner[:])
	binary.LittleEndian.PutUint64(buf[32:], b.ContributionRateBps)
	binary.LittleEndian.PutUint64(buf[40:], b.ADLThresholdBps)
	binary.LittleEndian.PutUint64(buf[48:], b.WithdrawalTimelockSecs)
	return buf
}

func DecodeInsuranceInitBody(data []byte) (InsuranceInitBody, error) {
	if len(data) < insuranceInitBodyLen {
		return InsuranceInitBody{}, ErrBufferTooShort
	}
	return InsuranceInitBody{
		LPOwner:                fixed.IDFromBytes(data[0:32]),
		ContributionRateBps:    binary.LittleEndian.Uint64(data[32:]),
		ADLThresholdBps:        binary.LittleEndian.Uint64(data[40:]),
		WithdrawalTimelockSecs: binary.LittleEndian.Uint64(data[48:]),
	}, nil
}

// InsuranceAmountBody is the shared body shape of discriminators 9
// (Contribute) and 10 (InitiateWithdraw): amount:u128.
type InsuranceAmountBody struct {
	Amount *big.Int
}

const insuranceAmountBodyLen = 16

func (b InsuranceAmountBody) Encode() []byte {
	buf := make([]byte, insuranceAmountBodyLen)
	putU128LE(buf, b.Amount)
	return buf
}

func DecodeInsuranceAmountBody(data []byte) (InsuranceAmountBody, error) {
	if len(data) < insuranceAmountBodyLen {
		return InsuranceAmountBody{}, ErrBufferTooShort
	}
	return InsuranceAmountBody{Amount: getU128LE(data[0:16])}, nil
}

// InsuranceUpdateConfigBody is discriminator 13's body: caller:[32],
// contribution_rate_bps:u64, adl_threshold_bps:u64,
// withdrawal_timelock_secs:u64.
type InsuranceUpdateConfigBody struct {
	Caller                 fixed.ID
	ContributionRateBps    uint64
	ADLThresholdBps        uint64
	WithdrawalTimelockSecs uint64
}

const insuranceUpdateConfigBodyLen = 32 + 8 + 8 + 8

func (b InsuranceUpdateConfigBody) Encode() []byte {
	buf := make([]byte, insuranceUpdateConfigBodyLen)
	copy(buf[0:32], b.Caller[:])
	binary.LittleEndian.PutUint64(buf[32:], b.ContributionRateBps)
	binary.LittleEndian.PutUint64(buf[40:], b.ADLThresholdBps)
	binary.LittleEndian.PutUint64(buf[48:], b.WithdrawalTimelockSecs)
	return buf
}

func DecodeInsuranceUpdateConfigBody(data []byte) (InsuranceUpdateConfigBody, error) {
	if len(data) < insuranceUpdateConfigBodyLen {
		return InsuranceUpdateConfigBody{}, ErrBufferTooShort
	}
	return InsuranceUpdateConfigBody{
		Caller:                 fixed.IDFromBytes(data[0:32]),
		ContributionRateBps:    binary.LittleEndian.Uint64(data[32:]),
		ADLThresholdBps:        binary.LittleEndian.Uint64(data[40:]),
		WithdrawalTimelockSecs: binary.LittleEndian.Uint64(data[48:]),
	}, nil
}

// InsuranceCompleteWithdrawBody and InsuranceCancelWithdrawBody
// (discriminators 11, 12) carry no fields beyond the discriminator byte —
// the pending withdrawal amount and unlock time are already pool state.
type InsuranceCompleteWithdrawBody struct{}

func (InsuranceCompleteWithdrawBody) Encode() []byte { return nil }

type InsuranceCancelWithdrawBody struct{}

func (InsuranceCancelWithdrawBody) Encode() []byte { return nil }
