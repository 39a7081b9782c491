// Commitment-hash and namespaced-ID helpers: each hashes a tuple of
// fixed-width fields with blake3 into a 32-byte identifier. Reserve's
// commitment_hash field is normally supplied by a caller that already
// committed to a pre-image elsewhere; this is the fallback path for
// callers (tests, simple integrations) that want one derived
// deterministically from the reservation's own fields instead.
package wire

import (
	"encoding/binary"

	"github.com/luxfi/perpslab/internal/fixed"
	"github.com/zeebo/blake3"
)

// CommitmentHash derives a reservation's commitment_hash from
// (accountIdx, instrumentIdx, side, qty, salt), the tuple a client
// commits to before submitting Reserve.
func CommitmentHash(accountIdx uint32, instrumentIdx uint16, side uint8, qty uint64, salt fixed.ID) fixed.ID {
	h := blake3.New()
	var accountBuf [4]byte
	binary.LittleEndian.PutUint32(accountBuf[:], accountIdx)
	h.Write(accountBuf[:])

	var instrBuf [2]byte
	binary.LittleEndian.PutUint16(instrBuf[:], instrumentIdx)
	h.Write(instrBuf[:])

	h.Write([]byte{side})

	var qtyBuf [8]byte
	binary.LittleEndian.PutUint64(qtyBuf[:], qty)
	h.Write(qtyBuf[:])

	h.Write(salt[:])

	var out fixed.ID
	h.Digest().Read(out[:])
	return out
}

// OrderID namespaces a shard identity and a raw order counter into a
// collision-resistant 32-byte ID — useful for tests and multi-shard
// tooling that want a globally unique handle for an order without
// threading (shardID, orderID) pairs everywhere.
func OrderID(shardID fixed.ID, rawOrderID uint64) fixed.ID {
	h := blake3.New()
	h.Write(shardID[:])
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], rawOrderID)
	h.Write(buf[:])
	var out fixed.ID
	h.Digest().Read(out[:])
	return out
}

// PositionKey namespaces a shard identity, account index, and instrument
// index into a collision-resistant 32-byte key, mirroring OrderID's shape
// for position-level lookups across shards.
func PositionKey(shardID fixed.ID, accountIdx uint32, instrumentIdx uint16) fixed.ID {
	h := blake3.New()
	h.Write(shardID[:])
	var accountBuf [4]byte
	binary.LittleEndian.PutUint32(accountBuf[:], accountIdx)
	h.Write(accountBuf[:])
	var instrBuf [2]byte
	binary.LittleEndian.PutUint16(instrBuf[:], instrumentIdx)
	h.Write(instrBuf[:])
	var out fixed.ID
	h.Digest().Read(out[:])
	return out
}
