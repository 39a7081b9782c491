package wire

import (
	"math/big"
	"testing"

	"github.com/luxfi/perpslab/internal/fixed"
	"github.com/stretchr/testify/require"
)

func TestReserveBodyRoundTrip(t *testing.T) {
	b := ReserveBody{
		AccountIdx:     7,
		InstrumentIdx:  3,
		Side:           1,
		Qty:            25,
		LimitPx:        102,
		TtlMs:          5000,
		CommitmentHash: fixed.ID{1, 2, 3},
		RouteID:        99,
	}
	buf := EncodeSlabInstruction(SlabReserve, b)
	require.Len(t, buf, 1+reserveBodyLen)

	decoded, err := DecodeSlabInstruction(buf)
	require.NoError(t, err)
	require.Equal(t, SlabReserve, decoded.Discriminator)
	require.NotNil(t, decoded.Reserve)
	require.Equal(t, b, *decoded.Reserve)
}

func TestInitializeBodyRoundTripNegativeMakerFee(t *testing.T) {
	b := InitializeBody{
		MarketID:    fixed.ID{1},
		LPOwner:     fixed.ID{2},
		RouterID:    fixed.ID{3},
		ImrBps:      1000,
		MmrBps:      500,
		MakerFeeBps: -10,
		TakerFeeBps: 20,
		BatchMs:     1000,
	}
	buf := EncodeSlabInstruction(SlabInitialize, b)
	decoded, err := DecodeSlabInstruction(buf)
	require.NoError(t, err)
	require.Equal(t, b, *decoded.Initialize)
}

func TestLiquidationBodyRoundTrip(t *testing.T) {
	b := LiquidationBody{
		AccountIdx: 42,
		Deficit:    big.NewInt(-555_000),
		CurrentTs:  123456,
	}
	buf := EncodeSlabInstruction(SlabLiquidation, b)
	decoded, err := DecodeSlabInstruction(buf)
	require.NoError(t, err)
	require.Equal(t, b, *decoded.Liquidation)
}

func TestDecodeSlabInstructionRejectsTrailingBytes(t *testing.T) {
	b := CancelBody{HoldID: 1}
	buf := EncodeSlabInstruction(SlabCancel, b)
	buf = append(buf, 0xFF)
	_, err := DecodeSlabInstruction(buf)
	require.ErrorIs(t, err, ErrTrailingBytes)
}

func TestDecodeSlabInstructionRejectsUnknownDiscriminator(t *testing.T) {
	_, err := DecodeSlabInstruction([]byte{200})
	require.ErrorIs(t, err, ErrUnknownDiscriminator)
}

func TestDecodeSlabInstructionRejectsShortBuffer(t *testing.T) {
	_, err := DecodeSlabInstruction([]byte{SlabReserve, 1, 2})
	require.ErrorIs(t, err, ErrBufferTooShort)
}

func TestInsuranceBodiesRoundTrip(t *testing.T) {
	init := InsuranceInitBody{
		LPOwner:                fixed.ID{7},
		ContributionRateBps:    25,
		ADLThresholdBps:        2000,
		WithdrawalTimelockSecs: 86400,
	}
	buf := EncodeSlabInstruction(SlabInsuranceInit, init)
	decoded, err := DecodeSlabInstruction(buf)
	require.NoError(t, err)
	require.Equal(t, init, *decoded.InsuranceInit)

	amt := InsuranceAmountBody{Amount: big.NewInt(500_000)}
	buf = EncodeSlabInstruction(SlabInsuranceContribute, amt)
	decoded, err = DecodeSlabInstruction(buf)
	require.NoError(t, err)
	require.Equal(t, amt, *decoded.InsuranceContribute)

	cfg := InsuranceUpdateConfigBody{
		Caller:                 fixed.ID{7},
		ContributionRateBps:    50,
		ADLThresholdBps:        1500,
		WithdrawalTimelockSecs: 3600,
	}
	buf = EncodeSlabInstruction(SlabInsuranceUpdateConfig, cfg)
	decoded, err = DecodeSlabInstruction(buf)
	require.NoError(t, err)
	require.Equal(t, cfg, *decoded.InsuranceUpdateConfig)
}
