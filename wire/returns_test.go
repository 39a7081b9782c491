package wire

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReserveReturnRoundTrip(t *testing.T) {
	r := ReserveReturn{
		HoldID:    1234,
		VwapPx:    50_000_000_000,
		WorstPx:   50_100_000_000,
		FilledQty: 25,
		MaxCharge: big.NewInt(1_250_000_000_000),
		ExpiryMs:  9999,
		BookSeqno: 42,
	}
	buf := r.Encode()
	require.Len(t, buf, ReserveReturnLen)
	got, err := DecodeReserveReturn(buf)
	require.NoError(t, err)
	require.Equal(t, r, got)
}

func TestCommitReturnRoundTripNegativePnL(t *testing.T) {
	c := CommitReturn{
		FilledQty:   25,
		VwapPx:      100,
		Notional:    big.NewInt(2_500),
		Fees:        big.NewInt(5),
		RealizedPnL: big.NewInt(-12_345),
	}
	buf := c.Encode()
	require.Len(t, buf, CommitReturnLen)
	got, err := DecodeCommitReturn(buf)
	require.NoError(t, err)
	require.Equal(t, c, got)
}

func TestLiquidationReturnRoundTrip(t *testing.T) {
	l := LiquidationReturn{
		FilledQty:        10,
		AvgPrice:         49_500_000_000,
		Notional:         big.NewInt(495_000_000_000),
		RemainingDeficit: big.NewInt(0),
	}
	buf := l.Encode()
	require.Len(t, buf, LiquidationReturnLen)
	got, err := DecodeLiquidationReturn(buf)
	require.NoError(t, err)
	require.Equal(t, l, got)
}

func TestI128RoundTripLargeMagnitudes(t *testing.T) {
	values := []*big.Int{
		big.NewInt(0),
		big.NewInt(-1),
		big.NewInt(1),
		new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 100)),
		new(big.Int).Lsh(big.NewInt(1), 100),
	}
	for _, v := range values {
		buf := make([]byte, 16)
		putI128LE(buf, v)
		got := getI128LE(buf)
		require.Equal(t, v, got)
	}
}
