// native.go: The boundary between the engine and an accelerated cipher module.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package talos

// Handle is an opaque token naming a live context inside a native module.
// NoHandle means no live state. Handles are not pointers and must never be
// interpreted outside the module that issued them.
type Handle uintptr

// NoHandle is the empty sentinel.
const NoHandle Handle = 0

// ContextConfig is everything a native module needs to build a cipher context.
// The module must copy Key and IV if it keeps them.
type ContextConfig struct {
	Direction Direction
	Mode      Mode
	Padding   Padding
	Key       []byte
	IV        []byte
}

// Native is the function set an accelerated module exposes.
//
// Engines call it from a single goroutine at a time per handle, but a module
// is process-wide and serves many engines, so implementations must be safe
// for concurrent use across handles.
//
// Offsets and lengths are validated by the engine before every call. A module
// may still reject a request (short output for padded encryption, bad IV for
// the mode), in which case it should wrap ErrLengthMismatch or
// ErrInvalidArgument so the classification survives.
type Native interface {
	// Name identifies the module in logs and capability reports.
	Name() string

	// NewContext creates a context and returns its non-zero handle.
	NewContext(cfg ContextConfig) (Handle, error)

	// TransformBlock runs one complete single-shot transform of in[inOff:inOff+inLen]
	// into out starting at outOff and returns the bytes written.
	TransformBlock(h Handle, in []byte, inOff, inLen int, out []byte, outOff int) (int, error)

	// TransformBuffer is the buffer form of TransformBlock. inStart and outStart
	// are the buffers' positions.
	TransformBuffer(h Handle, in []byte, inStart, inLen int, out []byte, outStart int, isUpdate bool) (int, error)

	// DestroyContext releases h. It is called exactly once per live handle.
	DestroyContext(h Handle) error
}

// Loader loads a native module and resolves its entry points.
// It is called at most once per Capability.
type Loader func() (Native, error)
