// constants.go: Block geometry, key sizes and the opaque mode/padding/direction identifiers.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package talos

import "fmt"

// BlockSize is the AES block size in bytes. The IV size always equals it.
const BlockSize = 16

// AlgorithmName is the name reported by every engine in this package.
const AlgorithmName = "AES"

// KeySizes lists the accepted AES key lengths in bytes (AES-128/192/256).
var KeySizes = [...]int{16, 24, 32}

// IsKeySizeValid reports whether n is one of KeySizes.
func IsKeySizeValid(n int) bool {
	for _, size := range KeySizes {
		if n == size {
			return true
		}
	}
	return false
}

// Direction selects encryption or decryption when an engine is initialized.
type Direction bool

const (
	Decrypt Direction = false
	Encrypt Direction = true
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	if d {
		return "encrypt"
	}
	return "decrypt"
}

// Mode is an opaque block-mode identifier owned by the surrounding provider.
// The engine passes it through unchanged; only the native module interprets it.
type Mode int

const (
	ModeECB Mode = iota
	ModeCBC
	ModeCTR
	ModeCFB
	ModeOFB
	ModeXTS
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeECB:
		return "ECB"
	case ModeCBC:
		return "CBC"
	case ModeCTR:
		return "CTR"
	case ModeCFB:
		return "CFB"
	case ModeOFB:
		return "OFB"
	case ModeXTS:
		return "XTS"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Padding is an opaque padding identifier, passed through to the native module.
// The zero value is PKCS5Padding, the default for new engines.
type Padding int

const (
	PKCS5Padding Padding = iota
	NoPadding
)

// DefaultPadding is applied to engines that never call SetPadding.
const DefaultPadding = PKCS5Padding

// String implements fmt.Stringer.
func (p Padding) String() string {
	switch p {
	case NoPadding:
		return "NoPadding"
	case PKCS5Padding:
		return "PKCS5Padding"
	default:
		return fmt.Sprintf("Padding(%d)", int(p))
	}
}
