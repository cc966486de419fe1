// aead_test.go: Authenticated-mode surface tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package talos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_IsNotAEADCipher(t *testing.T) {
	eng := newMockEngine(t, newMockNative(), nil)

	_, ok := any(eng).(AEADCipher)
	assert.False(t, ok)

	_, ok = any(eng).(BlockCipher)
	assert.True(t, ok)
}

func TestEngine_AEADOperationsAlwaysFail(t *testing.T) {
	states := map[string]func(e *Engine) error{
		"uninitialized": func(*Engine) error { return nil },
		"initialized":   func(e *Engine) error { return e.Init(Encrypt, testKey(16)) },
		"reset": func(e *Engine) error {
			if err := e.Init(Decrypt, testKey(32)); err != nil {
				return err
			}
			return e.Reset()
		},
	}

	for name, setup := range states {
		t.Run(name, func(t *testing.T) {
			m := newMockNative()
			eng := newMockEngine(t, m, nil)
			require.NoError(t, setup(eng))
			calls := m.calls()
			handle := eng.ctx.handle

			aead := eng.AEAD()
			tag := []byte{1, 2, 3, 4}

			assert.ErrorIs(t, aead.SetTag(tag, 0, len(tag)), ErrUnsupportedOperation)
			assert.ErrorIs(t, aead.GetTag(tag, 0, len(tag)), ErrUnsupportedOperation)
			n, err := aead.TagLen()
			assert.Zero(t, n)
			assert.ErrorIs(t, err, ErrUnsupportedOperation)
			assert.ErrorIs(t, aead.UpdateAAD([]byte("aad"), 0, 3), ErrUnsupportedOperation)
			assert.ErrorIs(t, aead.UpdateAADBuffer(NewBuffer([]byte("aad"))), ErrUnsupportedOperation)
			assert.ErrorIs(t, aead.UpdateAADBuffer(nil), ErrUnsupportedOperation)

			assert.Equal(t, []byte{1, 2, 3, 4}, tag)
			assert.Equal(t, calls, m.calls())
			assert.Equal(t, handle, eng.ctx.handle)
		})
	}
}
