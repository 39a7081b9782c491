// Package fixed provides the shared fixed-point and fixed-capacity building
// blocks used by both the slab and router packages: widened-integer math for
// products that would overflow a 64-bit lane, a 32-byte identity type, and a
// generic freelist-backed arena.
package fixed

import "encoding/hex"

// ID is a 32-byte identity used for shard/router/LP-owner identities and
// content-addressed keys. Comparisons are always over the full value —
// never a byte prefix.
type ID [32]byte

// InvalidIndex is the sentinel meaning "no index" in every arena, mirroring
// the protocol's use of u32::MAX as a none-pointer.
const InvalidIndex uint32 = ^uint32(0)

func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

func (id ID) Equal(other ID) bool {
	return id == other
}

func (id ID) IsZero() bool {
	return id == ID{}
}

func IDFromBytes(b []byte) ID {
	var id ID
	copy(id[:], b)
	return id
}
