// buffer.go: Position/limit buffers for the pre-allocated calling convention.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package talos

import (
	"fmt"
	"io"

	goerrors "github.com/agilira/go-errors"
)

// Buffer is a fixed-capacity byte buffer with a position and a limit, the
// form in which callers hand pre-allocated memory to Engine.ProcessBuffer.
//
// The readable or writable window is [Position, Limit). Invariant:
// 0 <= Position <= Limit <= Capacity. A Buffer is not safe for concurrent use.
type Buffer struct {
	buf    []byte
	pos    int
	limit  int
	pooled *[]byte
}

// NewBuffer wraps b. Position is 0 and limit is len(b).
// The buffer shares memory with b.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{buf: b, limit: len(b)}
}

// AllocateBuffer returns a zeroed buffer of the given capacity drawn from the
// package pools. Call Release when done; the memory is wiped before reuse.
func AllocateBuffer(size int) *Buffer {
	if size < 0 {
		size = 0
	}
	p := getBuffer(size)
	b := (*p)[:size]
	clearBuffer(b)
	return &Buffer{buf: b, limit: size, pooled: p}
}

// Release wipes a pooled buffer and returns its memory to the pool.
// The Buffer must not be used afterwards. Release on a buffer created by
// NewBuffer only detaches it; the caller's slice is left untouched.
func (b *Buffer) Release() {
	if b.pooled != nil {
		*b.pooled = (*b.pooled)[:cap(*b.pooled)]
		putBuffer(b.pooled)
		b.pooled = nil
	}
	b.buf = nil
	b.pos, b.limit = 0, 0
}

// Capacity returns the size of the backing memory.
func (b *Buffer) Capacity() int { return len(b.buf) }

// Position returns the index of the next byte to read or write.
func (b *Buffer) Position() int { return b.pos }

// Limit returns the index of the first byte that must not be read or written.
func (b *Buffer) Limit() int { return b.limit }

// Remaining returns Limit - Position.
func (b *Buffer) Remaining() int { return b.limit - b.pos }

// HasRemaining reports whether Remaining is positive.
func (b *Buffer) HasRemaining() bool { return b.pos < b.limit }

// SetPosition moves the position. It must stay within [0, Limit].
func (b *Buffer) SetPosition(pos int) error {
	if pos < 0 || pos > b.limit {
		return lengthMismatch(goerrors.New(ErrCodeLengthMismatch,
			fmt.Sprintf("position %d outside [0, %d]", pos, b.limit)))
	}
	b.pos = pos
	return nil
}

// SetLimit moves the limit. It must stay within [0, Capacity]; the position
// is pulled back if it would exceed the new limit.
func (b *Buffer) SetLimit(limit int) error {
	if limit < 0 || limit > len(b.buf) {
		return lengthMismatch(goerrors.New(ErrCodeLengthMismatch,
			fmt.Sprintf("limit %d outside [0, %d]", limit, len(b.buf))))
	}
	b.limit = limit
	if b.pos > limit {
		b.pos = limit
	}
	return nil
}

// Flip sets the limit to the current position and the position to zero,
// turning a freshly written buffer into a readable one.
func (b *Buffer) Flip() {
	b.limit = b.pos
	b.pos = 0
}

// Clear resets position to zero and limit to capacity. Contents are kept.
func (b *Buffer) Clear() {
	b.pos = 0
	b.limit = len(b.buf)
}

// Bytes returns the window [Position, Limit). It aliases the buffer memory.
func (b *Buffer) Bytes() []byte {
	return b.buf[b.pos:b.limit]
}

// Write copies p at the position and advances it. It fails without writing
// anything when p does not fit in the remaining window.
func (b *Buffer) Write(p []byte) (int, error) {
	if len(p) > b.Remaining() {
		return 0, lengthMismatch(goerrors.New(ErrCodeLengthMismatch,
			fmt.Sprintf("write of %d bytes exceeds %d remaining", len(p), b.Remaining())))
	}
	n := copy(b.buf[b.pos:b.limit], p)
	b.pos += n
	return n, nil
}

// Read copies from the position into p and advances it.
func (b *Buffer) Read(p []byte) (int, error) {
	if !b.HasRemaining() {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, b.buf[b.pos:b.limit])
	b.pos += n
	return n, nil
}

var (
	_ io.Reader = (*Buffer)(nil)
	_ io.Writer = (*Buffer)(nil)
)

// check re-validates the invariant before the buffer crosses the boundary.
// Setters keep it, so a failure here means a released or corrupted buffer.
func (b *Buffer) check(what string) error {
	if b.pos < 0 || b.pos > b.limit || b.limit > len(b.buf) {
		return lengthMismatch(goerrors.New(ErrCodeLengthMismatch,
			fmt.Sprintf("%s buffer position %d / limit %d / capacity %d are inconsistent", what, b.pos, b.limit, len(b.buf))))
	}
	return nil
}

// advance moves the position after a successful transform.
func (b *Buffer) advance(n int) {
	b.pos += n
	if b.pos > b.limit {
		b.pos = b.limit
	}
}
