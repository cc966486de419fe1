// engine.go: Single-shot AES engine driving an opaque accelerated context.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package talos

import (
	"fmt"
	"log/slog"
	"runtime"

	goerrors "github.com/agilira/go-errors"
	"github.com/google/uuid"
)

// ErrCodeEngineClosed is attached to calls made on an engine after Close.
const ErrCodeEngineClosed = "TALOS_ENGINE_CLOSED"

// Engine is a single-shot AES engine. Each ProcessBlock or ProcessBuffer call
// transforms one complete message; there are no streaming updates and DoFinal
// has nothing to flush.
//
// The engine owns at most one native context. It is created by Init, released
// by Reset, and recreated on demand: a process call on an engine whose context
// was reset re-initializes it from the last accepted direction and key.
//
// An Engine is not safe for concurrent use. Init, Reset and the process calls
// all touch the context handle, so callers sharing an engine must serialize
// access themselves. Use one engine per goroutine instead.
//
// Always Close an engine. A GC cleanup releases a context leaked by a dropped
// engine, but only at some unspecified later time.
//
// Example:
//
//	capability := talos.NewAcceleratedCapability()
//	if !capability.Probe() {
//		// no hardware AES: pick another implementation
//	}
//	eng, err := talos.NewEngine(capability, &talos.EngineConfig{Mode: talos.ModeCBC, IV: iv})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer eng.Close()
//
//	if err := eng.Init(talos.Encrypt, talos.NewKeyParameter(key)); err != nil {
//		log.Fatal(err)
//	}
//	n, err := eng.ProcessBlock(plaintext, 0, len(plaintext), out, 0)
type Engine struct {
	id         string
	capability *Capability
	logger     *slog.Logger

	mode      Mode
	padding   Padding
	iv        []byte
	direction Direction
	key       *KeyParameter // engine-owned copy of the last accepted key

	ctx     *ownedContext
	cleanup runtime.Cleanup
	closed  bool
}

var _ BlockCipher = (*Engine)(nil)

// NewEngine creates an engine bound to capability. A nil config selects the
// defaults described on EngineConfig.
//
// The capability is not probed here. An engine over an unavailable module is
// created normally and reports ErrNativeFailure from its first native call.
func NewEngine(capability *Capability, config *EngineConfig) (*Engine, error) {
	if capability == nil {
		return nil, invalidArgument(goerrors.New(ErrCodeInvalidArgument, "capability cannot be nil"))
	}
	if config == nil {
		config = &EngineConfig{}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		id:         uuid.NewString(),
		capability: capability,
		logger:     logger,
		mode:       config.Mode,
		padding:    config.Padding,
		iv:         cloneBytes(config.IV),
	}
	e.ctx = &ownedContext{engineID: e.id, logger: logger}
	e.cleanup = runtime.AddCleanup(e, releaseLeaked, e.ctx)
	return e, nil
}

// releaseLeaked runs when an engine is garbage collected without Close.
func releaseLeaked(ctx *ownedContext) {
	if ctx.live() {
		ctx.logger.Warn("engine dropped without Close, releasing native context",
			slog.String("engine", ctx.engineID))
		_ = ctx.release()
	}
}

// Init binds a direction and key and creates a fresh native context.
//
// params must be a *KeyParameter or *ParametersWithIV with a key of 16, 24 or
// 32 bytes; a ParametersWithIV also replaces the configured IV. Any IV in use
// must be exactly BlockSize bytes. All of this is checked before the native
// module is touched, and a rejected call leaves the engine unchanged.
//
// A live context is destroyed before the replacement is created, so the
// engine never depends on the module to reclaim it.
func (e *Engine) Init(dir Direction, params CipherParameters) error {
	if e.closed {
		return invalidArgument(goerrors.New(ErrCodeEngineClosed, "engine is closed"))
	}

	var (
		kp    *KeyParameter
		iv    = e.iv
		setIV bool
	)
	switch p := params.(type) {
	case *KeyParameter:
		kp = p
	case *ParametersWithIV:
		if p != nil {
			kp, iv, setIV = p.key, p.iv, true
		}
	}
	if kp == nil {
		return invalidArgument(goerrors.New(ErrCodeInvalidArgument,
			fmt.Sprintf("invalid parameter passed to AES init: %T", params)))
	}
	if err := ValidateKeySize(kp.Len()); err != nil {
		return err
	}
	if len(iv) != 0 && len(iv) != BlockSize {
		return invalidArgument(goerrors.New(ErrCodeInvalidIV,
			fmt.Sprintf("IV must be %d bytes, got %d", BlockSize, len(iv))))
	}

	if e.key != nil {
		e.key.Destroy()
	}
	e.direction = dir
	e.key = NewKeyParameter(kp.key)
	if setIV {
		e.iv = cloneBytes(iv)
	}
	return e.createContext()
}

// createContext replaces any live context with one built from the current
// direction, key, IV and padding.
func (e *Engine) createContext() error {
	native, err := e.capability.Native()
	if err != nil {
		return err
	}

	if e.ctx.live() {
		if err := e.ctx.release(); err != nil {
			e.logger.Warn("replacing context after failed destroy", slog.String("engine", e.id))
		}
	}

	cfg := ContextConfig{
		Direction: e.direction,
		Mode:      e.mode,
		Padding:   e.padding,
		Key:       e.key.key,
		IV:        e.iv,
	}
	var h Handle
	err = guardNative(func() error {
		var callErr error
		h, callErr = native.NewContext(cfg)
		return callErr
	})
	if err != nil {
		return nativeFailure(err, "failed to create native context")
	}
	if h == NoHandle {
		richErr := goerrors.New(ErrCodeNativeFailure, native.Name()+" returned an empty context handle")
		return fmt.Errorf("%w: %w", ErrNativeFailure, richErr)
	}

	e.ctx.acquire(native, h)
	e.logger.Debug("native context created",
		slog.String("engine", e.id),
		slog.String("module", native.Name()),
		slog.String("direction", e.direction.String()),
		slog.String("mode", e.mode.String()),
		slog.String("padding", e.padding.String()),
		slog.String("key_fingerprint", e.key.Fingerprint()))
	return nil
}

// ensureContext re-initializes a reset engine from its last accepted
// direction and key.
func (e *Engine) ensureContext() error {
	if e.ctx.live() {
		return nil
	}
	if e.closed {
		return invalidArgument(goerrors.New(ErrCodeEngineClosed, "engine is closed"))
	}
	if e.key == nil {
		return invalidArgument(goerrors.New(ErrCodeNotInitialized, "engine has not been initialized"))
	}
	e.logger.Debug("re-initializing native context", slog.String("engine", e.id))
	return e.createContext()
}

// ProcessBlock transforms in[inOff:inOff+inLen] as one complete message and
// writes the result to out starting at outOff. It returns the bytes written.
//
// out must have at least inLen bytes from outOff; with PKCS5 padding an
// encryption needs up to one extra block, which the native module checks.
// Offsets are validated before any native call, including the lazy
// re-initialization of a reset engine.
func (e *Engine) ProcessBlock(in []byte, inOff, inLen int, out []byte, outOff int) (int, error) {
	if err := checkArrayBounds(in, inOff, inLen, out, outOff); err != nil {
		return 0, err
	}
	if err := e.ensureContext(); err != nil {
		return 0, err
	}

	var n int
	err := guardNative(func() error {
		var callErr error
		n, callErr = e.ctx.native.TransformBlock(e.ctx.handle, in, inOff, inLen, out, outOff)
		return callErr
	})
	if err != nil {
		return 0, nativeFailure(err, "native block transform failed")
	}
	return n, nil
}

// ProcessBuffer transforms the input window [Position, Limit) as one complete
// message and writes the result at the output position.
//
// isUpdate must be false: streaming updates are not supported and fail with
// ErrUnsupportedOperation before anything else is looked at. On success the
// input position moves to its limit and the output position advances by the
// returned byte count. On failure neither buffer is moved.
func (e *Engine) ProcessBuffer(in, out *Buffer, isUpdate bool) (int, error) {
	if isUpdate {
		return 0, unsupported("update")
	}
	inStart, inLen, outStart, err := checkBufferBounds(in, out)
	if err != nil {
		return 0, err
	}
	if err := e.ensureContext(); err != nil {
		return 0, err
	}

	var n int
	err = guardNative(func() error {
		var callErr error
		n, callErr = e.ctx.native.TransformBuffer(e.ctx.handle,
			in.buf[:in.limit], inStart, inLen,
			out.buf[:out.limit], outStart, false)
		return callErr
	})
	if err != nil {
		return 0, nativeFailure(err, "native buffer transform failed")
	}
	in.advance(inLen)
	out.advance(n)
	return n, nil
}

// DoFinal writes nothing and returns 0. Single-shot transforms have no
// trailing block to flush.
func (e *Engine) DoFinal(out []byte, outOff int) (int, error) {
	return 0, nil
}

// Reset releases the native context. It is idempotent.
//
// The handle is cleared even when the module fails to destroy it; that
// failure is logged and returned as ErrNativeFailure. The direction and key
// are kept, so the next process call re-initializes.
func (e *Engine) Reset() error {
	return e.ctx.release()
}

// Close resets the engine, wipes its key copy and cancels the GC cleanup.
// The engine cannot be used afterwards. Close is idempotent.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	err := e.Reset()
	e.cleanup.Stop()
	if e.key != nil {
		e.key.Destroy()
		e.key = nil
	}
	Zeroize(e.iv)
	e.closed = true
	return err
}

// SetIV sets the IV used by the next Init. The bytes are copied as given;
// a length other than BlockSize is rejected by Init, never padded or cut.
// A nil iv clears it.
func (e *Engine) SetIV(iv []byte) {
	e.iv = cloneBytes(iv)
}

// SetPadding sets the padding used by the next Init.
func (e *Engine) SetPadding(p Padding) {
	e.padding = p
}

// AEAD returns the engine's authenticated-mode operations, all of which fail
// with ErrUnsupportedOperation.
func (e *Engine) AEAD() AEADOperations {
	return unsupportedAEAD{}
}

// AlgorithmName returns "AES".
func (e *Engine) AlgorithmName() string { return AlgorithmName }

// BlockSize returns 16.
func (e *Engine) BlockSize() int { return BlockSize }

// IVSize returns the IV size, which equals the block size.
func (e *Engine) IVSize() int { return BlockSize }

// Mode returns the mode fixed at construction.
func (e *Engine) Mode() Mode { return e.mode }

// Padding returns the padding used by the next Init.
func (e *Engine) Padding() Padding { return e.padding }

// Direction returns the direction of the last accepted Init.
func (e *Engine) Direction() Direction { return e.direction }

// IV returns a copy of the IV used by the next Init.
func (e *Engine) IV() []byte { return cloneBytes(e.iv) }

// ID returns the engine identifier used in log records.
func (e *Engine) ID() string { return e.id }

// Initialized reports whether the engine holds a live native context.
func (e *Engine) Initialized() bool { return e.ctx.live() }

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
