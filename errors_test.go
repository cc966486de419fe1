// errors_test.go: Error classification tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package talos

import (
	"errors"
	"testing"

	goerrors "github.com/agilira/go-errors"
	"github.com/stretchr/testify/assert"
)

func TestNativeFailureClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"plain error", errMockFailure, ErrNativeFailure},
		{"length", lengthMismatch(goerrors.New(ErrCodeLengthMismatch, "short")), ErrLengthMismatch},
		{"argument", invalidArgument(goerrors.New(ErrCodeInvalidIV, "iv")), ErrInvalidArgument},
		{"already native", badPadding(), ErrNativeFailure},
		{"unknown handle", ErrUnknownHandle, ErrNativeFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := nativeFailure(tt.err, "boundary call failed")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestErrorClassesAreDistinct(t *testing.T) {
	sentinels := []error{ErrInvalidArgument, ErrLengthMismatch, ErrUnsupportedOperation, ErrNativeFailure}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v must not match %v", a, b)
			}
		}
	}

	err := unsupported("SetTag")
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
	assert.NotErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "unsupported operation")
}

func TestGuardNative(t *testing.T) {
	assert.NoError(t, guardNative(func() error { return nil }))
	assert.ErrorIs(t, guardNative(func() error { return errMockFailure }), errMockFailure)

	var err error
	assert.NotPanics(t, func() {
		err = guardNative(func() error { panic("segfault in module") })
	})
	assert.ErrorIs(t, err, ErrNativeFailure)
}

func TestOwnedContext_ReleaseOnce(t *testing.T) {
	m := newMockNative()
	h, err := m.NewContext(ContextConfig{Key: testKey(16).Key()})
	assert.NoError(t, err)

	ctx := &ownedContext{engineID: "test", logger: quietLogger()}
	ctx.acquire(m, h)
	assert.True(t, ctx.live())

	assert.NoError(t, ctx.release())
	assert.NoError(t, ctx.release())
	assert.False(t, ctx.live())
	assert.Equal(t, 1, m.destroyCount())
}
