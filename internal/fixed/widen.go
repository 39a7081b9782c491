package fixed

import (
	"math/big"

	"github.com/holiman/uint256"
)

// MulU64 computes a*b in a widened integer: quantities multiply into the
// 256-bit lane before any scale-down, so a price*qty product can never
// silently wrap.
func MulU64(a, b uint64) *uint256.Int {
	x := new(uint256.Int).SetUint64(a)
	y := new(uint256.Int).SetUint64(b)
	return x.Mul(x, y)
}

// BpsOfU256 returns value*bps/10000, truncating.
func BpsOfU256(value *uint256.Int, bps uint64) *uint256.Int {
	n := new(uint256.Int).Mul(value, new(uint256.Int).SetUint64(bps))
	return n.Div(n, tenThousand)
}

var tenThousand = uint256.NewInt(10_000)

// U256ToBig converts a widened unsigned product to a signed big.Int for
// mixing with signed quantities (realized PnL, funding, deficits).
func U256ToBig(v *uint256.Int) *big.Int {
	return v.ToBig()
}

// SignedMulDiv computes (a*b)/c using big.Int, where a may be signed
// (quantity) and b, c are unsigned scale factors. Used for funding payment
// and PnL math, which the protocol defines over i128.
func SignedMulDiv(a int64, b, c int64) *big.Int {
	x := big.NewInt(a)
	y := big.NewInt(b)
	x.Mul(x, y)
	if c == 0 {
		return big.NewInt(0)
	}
	return x.Quo(x, big.NewInt(c))
}

// BpsOfBig returns value*bps/10000 for a signed big.Int notional.
func BpsOfBig(value *big.Int, bps int64) *big.Int {
	n := new(big.Int).Mul(value, big.NewInt(bps))
	return n.Quo(n, big.NewInt(10_000))
}

// AbsI64 returns the absolute value of a signed quantity as uint64.
func AbsI64(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}

func MinU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func MaxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// SaturatingSubU64 clamps at zero instead of wrapping on underflow.
func SaturatingSubU64(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}
