package wire

import "math/big"

// putU128LE and friends write little-endian two's-complement (for signed)
// or unsigned 16-byte integers — the u128/i128 return-data fields. dst
// must be exactly 16 bytes.

func putU128LE(dst []byte, v *big.Int) {
	if v == nil {
		return
	}
	be := v.Bytes()
	for i, j := 0, len(be)-1; j >= 0 && i < len(dst); i, j = i+1, j-1 {
		dst[i] = be[j]
	}
}

func getU128LE(src []byte) *big.Int {
	be := make([]byte, len(src))
	for i, j := 0, len(src)-1; j >= 0; i, j = i+1, j-1 {
		be[i] = src[j]
	}
	v := new(big.Int).SetBytes(be)
	if v.Sign() == 0 {
		// Same zero value big.NewInt(0) builds, so a decoded zero field is
		// identical to the one that was encoded.
		return new(big.Int)
	}
	return v
}

// putI128LE writes v as a 16-byte little-endian two's-complement integer.
func putI128LE(dst []byte, v *big.Int) {
	if v == nil {
		v = big.NewInt(0)
	}
	if v.Sign() >= 0 {
		putU128LE(dst, v)
		return
	}
	mod := new(big.Int).Lsh(big.NewInt(1), 128)
	twos := new(big.Int).Add(mod, v)
	putU128LE(dst, twos)
}

// getI128LE reads a 16-byte little-endian two's-complement integer.
func getI128LE(src []byte) *big.Int {
	u := getU128LE(src)
	top := new(big.Int).Lsh(big.NewInt(1), 127)
	if u.Cmp(top) < 0 {
		return u
	}
	mod := new(big.Int).Lsh(big.NewInt(1), 128)
	return new(big.Int).Sub(u, mod)
}
