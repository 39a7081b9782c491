// Package wire is the external-interface layer: instruction
// discriminators, fixed-layout little-endian encode/decode, and the
// return-data structs a host (or a test) reads back after a call into
// slab/router.
package wire

import "errors"

var (
	ErrBufferTooShort       = errors.New("wire: buffer too short")
	ErrUnknownDiscriminator = errors.New("wire: unknown instruction discriminator")
	ErrTrailingBytes        = errors.New("wire: trailing bytes after body")
)
