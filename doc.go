// Package talos provides a single-shot AES engine over a hardware-accelerated native module.
//
// The package does not implement AES. It manages the lifecycle and calling
// contract of an opaque cipher context owned by an accelerated module:
//   - Capability detection once per process, with failures reported as "unavailable"
//   - Parameter validation before anything crosses the native boundary
//   - Lazy creation and re-creation of the native context
//   - Bounds-checked hand-off of byte slices and position/limit buffers
//   - Deterministic, exactly-once release of the context
//
// # Quick Start
//
//	// Probe once at startup and share the capability
//	capability := talos.NewAcceleratedCapability()
//	if !capability.Probe() {
//		log.Println("no hardware AES:", capability.Report().Error)
//	}
//
//	eng, err := talos.NewEngine(capability, &talos.EngineConfig{
//		Mode:    talos.ModeECB,
//		Padding: talos.NoPadding,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer eng.Close()
//
//	key, _ := talos.GenerateKeyParameter(32)
//	if err := eng.Init(talos.Encrypt, key); err != nil {
//		log.Fatal(err)
//	}
//
//	out := make([]byte, len(block))
//	n, err := eng.ProcessBlock(block, 0, len(block), out, 0)
//
// # Single-shot model
//
// Every ProcessBlock or ProcessBuffer call is a complete message. Chained
// modes restart from the configured IV on each call, ProcessBuffer rejects
// isUpdate=true, and DoFinal always returns zero bytes. Callers that need
// streaming semantics must use a different engine.
//
// # Buffers
//
// ProcessBuffer takes *Buffer values with a position and a limit. The input
// length is derived from the input window, never passed separately:
//
//	in := talos.NewBuffer(plaintext)
//	out := talos.AllocateBuffer(len(plaintext) + talos.BlockSize)
//	defer out.Release()
//
//	n, err := eng.ProcessBuffer(in, out, false)
//	out.Flip() // out.Bytes() now holds the n result bytes
//
// # Error Handling
//
// Errors wrap one of four sentinels and a github.com/agilira/go-errors rich
// error with a stable code:
//
//	n, err := eng.ProcessBlock(in, 0, len(in), out, 0)
//	switch {
//	case errors.Is(err, talos.ErrInvalidArgument):
//		// bad key, IV or parameter type; engine unchanged
//	case errors.Is(err, talos.ErrLengthMismatch):
//		// offsets do not fit the buffers; nothing reached the module
//	case errors.Is(err, talos.ErrUnsupportedOperation):
//		// AEAD call or streaming update
//	case errors.Is(err, talos.ErrNativeFailure):
//		// module unavailable or failed: an environment problem
//	}
//
// # Authenticated modes
//
// Engine does not implement AEADCipher. Code that needs the AEAD surface
// regardless can call Engine.AEAD, whose operations all return
// ErrUnsupportedOperation.
//
// # Concurrency
//
// Capability is safe for concurrent use; the module loads once and later
// probes take no lock. Engine is not: its context handle is mutable state and
// concurrent Init, Reset and process calls on the same engine race. Use one
// engine per goroutine or serialize access externally.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package talos
