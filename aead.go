// aead.go: AEAD operations, kept apart from the block-cipher contract.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package talos

// BlockCipher is the contract every engine in this package satisfies.
type BlockCipher interface {
	Init(dir Direction, params CipherParameters) error
	ProcessBlock(in []byte, inOff, inLen int, out []byte, outOff int) (int, error)
	ProcessBuffer(in, out *Buffer, isUpdate bool) (int, error)
	DoFinal(out []byte, outOff int) (int, error)
	Reset() error
	SetIV(iv []byte)
	SetPadding(p Padding)
	AlgorithmName() string
	BlockSize() int
	IVSize() int
	Mode() Mode
	Padding() Padding
}

// AEADOperations are the tag and associated-data calls of an authenticated mode.
type AEADOperations interface {
	SetTag(tag []byte, off, n int) error
	GetTag(out []byte, off, n int) error
	TagLen() (int, error)
	UpdateAAD(src []byte, off, n int) error
	UpdateAADBuffer(src *Buffer) error
}

// AEADCipher is a BlockCipher that supports authenticated modes.
// Engine does not implement it; a type assertion to AEADCipher fails at
// compile time or run time rather than at the first tag call.
type AEADCipher interface {
	BlockCipher
	AEADOperations
}

// unsupportedAEAD is what Engine.AEAD hands to callers that need a uniform
// surface anyway. Every call fails with ErrUnsupportedOperation and has no
// side effects.
type unsupportedAEAD struct{}

func (unsupportedAEAD) SetTag([]byte, int, int) error    { return unsupported("SetTag") }
func (unsupportedAEAD) GetTag([]byte, int, int) error    { return unsupported("GetTag") }
func (unsupportedAEAD) TagLen() (int, error)             { return 0, unsupported("TagLen") }
func (unsupportedAEAD) UpdateAAD([]byte, int, int) error { return unsupported("UpdateAAD") }
func (unsupportedAEAD) UpdateAADBuffer(*Buffer) error    { return unsupported("UpdateAADBuffer") }
