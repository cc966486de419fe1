// accel.go: Built-in native module backed by the CPU's AES instructions.
//
// The module owns a handle arena: every context it creates gets a non-zero
// handle that callers treat as opaque. There is deliberately no software path;
// when the CPU lacks AES instructions the module refuses to load and the
// capability that wraps it reports false.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package talos

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	goerrors "github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
	"golang.org/x/crypto/xts"
	"golang.org/x/sys/cpu"
)

// AcceleratedModuleName is the name reported by the built-in module.
const AcceleratedModuleName = "talos-aesni"

var (
	// ErrNoHardwareAES is returned by LoadAccelerated, alongside ErrNativeFailure,
	// when the CPU has no AES instructions.
	ErrNoHardwareAES = errors.New("talos: CPU has no AES instructions")

	// ErrUnknownHandle is returned, alongside ErrNativeFailure, when a handle is
	// not live in the module, typically because it was already destroyed.
	ErrUnknownHandle = errors.New("talos: unknown context handle")
)

// hardwareAESFeatures lists the AES instruction sets the CPU reports.
func hardwareAESFeatures() []string {
	var features []string
	switch runtime.GOARCH {
	case "amd64", "386":
		if cpu.X86.HasAES {
			features = append(features, "aes-ni")
		}
		if cpu.X86.HasPCLMULQDQ {
			features = append(features, "pclmulqdq")
		}
	case "arm64":
		if cpu.ARM64.HasAES {
			features = append(features, "arm64-aes")
		}
		if cpu.ARM64.HasPMULL {
			features = append(features, "pmull")
		}
	case "s390x":
		if cpu.S390X.HasAES {
			features = append(features, "km-aes")
		}
		if cpu.S390X.HasAESCBC {
			features = append(features, "kmc-aes")
		}
	}
	return features
}

// detectFeatures is swapped by tests to simulate other CPUs.
var detectFeatures = hardwareAESFeatures

// hasAESInstructions reports whether features contains an AES instruction set,
// as opposed to only carry-less multiply support.
func hasAESInstructions(features []string) bool {
	for _, f := range features {
		switch f {
		case "aes-ni", "arm64-aes", "km-aes":
			return true
		}
	}
	return false
}

// Accelerated is the built-in Native implementation.
// It is safe for concurrent use; each handle must still be used by one engine at a time.
type Accelerated struct {
	mu       sync.Mutex
	next     Handle
	contexts map[Handle]*accelContext
	features []string
}

var _ Native = (*Accelerated)(nil)

type accelContext struct {
	direction Direction
	mode      Mode
	padding   Padding
	key       []byte
	iv        []byte
	block     cipher.Block
	xts       *xts.Cipher
	createdAt time.Time
}

// LoadAccelerated is the Loader for the built-in module.
func LoadAccelerated() (Native, error) {
	features := detectFeatures()
	if !hasAESInstructions(features) {
		richErr := goerrors.New(ErrCodeNativeUnavailable, fmt.Sprintf("no AES instructions on %s/%s", runtime.GOOS, runtime.GOARCH))
		return nil, fmt.Errorf("%w: %w: %w", ErrNativeFailure, ErrNoHardwareAES, richErr)
	}
	return newAccelerated(features), nil
}

// NewAcceleratedCapability returns a capability over the built-in module.
// Build it once at startup and share it between engines.
func NewAcceleratedCapability() *Capability {
	return NewCapability(AcceleratedModuleName, LoadAccelerated)
}

func newAccelerated(features []string) *Accelerated {
	return &Accelerated{
		contexts: make(map[Handle]*accelContext),
		features: features,
	}
}

// Name implements Native.
func (a *Accelerated) Name() string {
	return AcceleratedModuleName
}

// Features returns the AES-related CPU features detected at load time.
func (a *Accelerated) Features() []string {
	out := make([]string, len(a.features))
	copy(out, a.features)
	return out
}

// LiveContexts returns the number of contexts not yet destroyed.
func (a *Accelerated) LiveContexts() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.contexts)
}

// NewContext implements Native.
func (a *Accelerated) NewContext(cfg ContextConfig) (Handle, error) {
	ctx, err := newAccelContext(cfg)
	if err != nil {
		return NoHandle, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.next++
	if a.next == NoHandle {
		a.next++
	}
	h := a.next
	a.contexts[h] = ctx
	return h, nil
}

func newAccelContext(cfg ContextConfig) (*accelContext, error) {
	if cfg.Padding != NoPadding && cfg.Padding != PKCS5Padding {
		return nil, invalidArgument(goerrors.New(ErrCodeInvalidArgument, fmt.Sprintf("unsupported padding %s", cfg.Padding)))
	}

	ctx := &accelContext{
		direction: cfg.Direction,
		mode:      cfg.Mode,
		padding:   cfg.Padding,
		key:       append([]byte(nil), cfg.Key...),
		iv:        append([]byte(nil), cfg.IV...),
		createdAt: timecache.CachedTime(),
	}

	switch cfg.Mode {
	case ModeECB:
	case ModeCBC, ModeCTR, ModeCFB, ModeOFB:
		if len(ctx.iv) != BlockSize {
			ctx.wipe()
			return nil, invalidArgument(goerrors.New(ErrCodeInvalidIV,
				fmt.Sprintf("%s requires a %d-byte IV, got %d", cfg.Mode, BlockSize, len(ctx.iv))))
		}
	case ModeXTS:
		if len(ctx.iv) != 0 && len(ctx.iv) != BlockSize {
			ctx.wipe()
			return nil, invalidArgument(goerrors.New(ErrCodeInvalidIV,
				fmt.Sprintf("XTS tweak must be empty or %d bytes, got %d", BlockSize, len(ctx.iv))))
		}
		c, err := xts.NewCipher(aes.NewCipher, ctx.key)
		if err != nil {
			ctx.wipe()
			return nil, invalidArgument(goerrors.Wrap(err, ErrCodeInvalidKey, "XTS needs two equal AES keys"))
		}
		ctx.xts = c
		return ctx, nil
	default:
		ctx.wipe()
		return nil, invalidArgument(goerrors.New(ErrCodeInvalidArgument, fmt.Sprintf("unsupported mode %s", cfg.Mode)))
	}

	block, err := aes.NewCipher(ctx.key)
	if err != nil {
		ctx.wipe()
		return nil, invalidArgument(goerrors.Wrap(err, ErrCodeInvalidKey, "failed to expand AES key"))
	}
	ctx.block = block
	return ctx, nil
}

func (c *accelContext) wipe() {
	Zeroize(c.key)
	Zeroize(c.iv)
	c.block = nil
	c.xts = nil
}

func (a *Accelerated) lookup(h Handle) (*accelContext, error) {
	a.mu.Lock()
	ctx, ok := a.contexts[h]
	a.mu.Unlock()
	if !ok {
		richErr := goerrors.New(ErrCodeNativeFailure, fmt.Sprintf("handle %d is not live", h))
		return nil, fmt.Errorf("%w: %w: %w", ErrNativeFailure, ErrUnknownHandle, richErr)
	}
	return ctx, nil
}

// TransformBlock implements Native.
func (a *Accelerated) TransformBlock(h Handle, in []byte, inOff, inLen int, out []byte, outOff int) (int, error) {
	if err := checkRegions(in, inOff, inLen, out, outOff); err != nil {
		return 0, err
	}
	ctx, err := a.lookup(h)
	if err != nil {
		return 0, err
	}
	return ctx.transform(in[inOff:inOff+inLen], out[outOff:])
}

// TransformBuffer implements Native. Streaming updates are refused here too,
// so the module is safe to drive from callers other than Engine.
func (a *Accelerated) TransformBuffer(h Handle, in []byte, inStart, inLen int, out []byte, outStart int, isUpdate bool) (int, error) {
	if isUpdate {
		return 0, unsupported("update")
	}
	if err := checkRegions(in, inStart, inLen, out, outStart); err != nil {
		return 0, err
	}
	ctx, err := a.lookup(h)
	if err != nil {
		return 0, err
	}
	return ctx.transform(in[inStart:inStart+inLen], out[outStart:])
}

// DestroyContext implements Native. Destroying a handle twice is an error.
func (a *Accelerated) DestroyContext(h Handle) error {
	a.mu.Lock()
	ctx, ok := a.contexts[h]
	delete(a.contexts, h)
	a.mu.Unlock()

	if !ok {
		richErr := goerrors.New(ErrCodeDestroyFailed, fmt.Sprintf("handle %d is not live", h))
		return fmt.Errorf("%w: %w: %w", ErrNativeFailure, ErrUnknownHandle, richErr)
	}
	ctx.wipe()
	return nil
}
