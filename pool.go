// pool.go: Buffer pooling for transform scratch space and pre-allocated buffers
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package talos

import (
	"sync"
)

// Pool size classes. A single AES block, a typical record, and a page.
const (
	smallBufferSize  = 32
	mediumBufferSize = 512
	largeBufferSize  = 4 * 1024
)

var (
	smallBufferPool = sync.Pool{
		New: func() interface{} {
			buf := make([]byte, smallBufferSize)
			return &buf
		},
	}

	mediumBufferPool = sync.Pool{
		New: func() interface{} {
			buf := make([]byte, mediumBufferSize)
			return &buf
		},
	}

	largeBufferPool = sync.Pool{
		New: func() interface{} {
			buf := make([]byte, largeBufferSize)
			return &buf
		},
	}
)

func init() {
	WarmupPools(4)
}

// getBuffer retrieves a buffer from the pool matching size, sliced to size.
// Sizes above the largest class are allocated directly.
func getBuffer(size int) *[]byte {
	switch {
	case size <= smallBufferSize:
		buf := smallBufferPool.Get().(*[]byte)
		*buf = (*buf)[:size]
		return buf
	case size <= mediumBufferSize:
		buf := mediumBufferPool.Get().(*[]byte)
		*buf = (*buf)[:size]
		return buf
	case size <= largeBufferSize:
		buf := largeBufferPool.Get().(*[]byte)
		*buf = (*buf)[:size]
		return buf
	default:
		buf := make([]byte, size)
		return &buf
	}
}

// clearBuffer zeroes buf, unrolled over 8 bytes for buffers past a cache line.
func clearBuffer(buf []byte) {
	if len(buf) <= 64 {
		for i := range buf {
			buf[i] = 0
		}
		return
	}

	i := 0
	for i < len(buf)-7 {
		buf[i] = 0
		buf[i+1] = 0
		buf[i+2] = 0
		buf[i+3] = 0
		buf[i+4] = 0
		buf[i+5] = 0
		buf[i+6] = 0
		buf[i+7] = 0
		i += 8
	}
	for i < len(buf) {
		buf[i] = 0
		i++
	}
}

// putBuffer wipes the used part of buf and returns it to its pool.
// Buffers whose capacity is not a pool class are dropped.
func putBuffer(buf *[]byte) {
	if buf == nil {
		return
	}

	if len(*buf) > 0 {
		clearBuffer(*buf)
	}

	switch cap(*buf) {
	case smallBufferSize:
		smallBufferPool.Put(buf)
	case mediumBufferSize:
		mediumBufferPool.Put(buf)
	case largeBufferSize:
		largeBufferPool.Put(buf)
	}
}

// WarmupPools pre-allocates count buffers per size class to avoid cold-start
// allocations on the first transforms.
func WarmupPools(count int) {
	bufs := make([]*[]byte, 0, 3*count)
	for i := 0; i < count; i++ {
		bufs = append(bufs,
			getBuffer(smallBufferSize),
			getBuffer(mediumBufferSize),
			getBuffer(largeBufferSize))
	}
	for _, b := range bufs {
		putBuffer(b)
	}
}
