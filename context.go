// context.go: Exclusive ownership of a native context handle.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package talos

import (
	"fmt"
	"log/slog"

	goerrors "github.com/agilira/go-errors"
)

// ownedContext is the only place a live Handle is stored. It is referenced
// through a pointer by exactly one Engine and never copied, so the handle can
// only be released once.
//
// It holds no reference back to its Engine: the GC cleanup registered by
// NewEngine receives the ownedContext and must not keep the engine reachable.
type ownedContext struct {
	native   Native
	handle   Handle
	engineID string
	logger   *slog.Logger
}

func (c *ownedContext) live() bool {
	return c.handle != NoHandle
}

// acquire takes ownership of a freshly created handle.
func (c *ownedContext) acquire(native Native, h Handle) {
	c.native = native
	c.handle = h
}

// release destroys the live handle exactly once. The handle is cleared
// before the destroy call so that a failing module can never leave the
// engine stuck with a dead token. Without a live handle it is a no-op.
func (c *ownedContext) release() error {
	if c.handle == NoHandle {
		return nil
	}
	h, native := c.handle, c.native
	c.handle, c.native = NoHandle, nil

	err := guardNative(func() error { return native.DestroyContext(h) })
	if err != nil {
		c.logger.Warn("native context destroy failed",
			slog.String("engine", c.engineID),
			slog.String("module", native.Name()),
			slog.Any("error", err))
		richErr := goerrors.Wrap(err, ErrCodeDestroyFailed, "failed to destroy native context")
		return fmt.Errorf("%w: %w", ErrNativeFailure, richErr)
	}
	c.logger.Debug("native context destroyed",
		slog.String("engine", c.engineID),
		slog.String("module", native.Name()))
	return nil
}

// guardNative runs a boundary call and turns a panic inside the module into
// an ErrNativeFailure error instead of crashing the caller.
func guardNative(call func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			richErr := goerrors.New(ErrCodeNativeFailure, fmt.Sprintf("native module panicked: %v", r))
			err = fmt.Errorf("%w: %w", ErrNativeFailure, richErr)
		}
	}()
	return call()
}
