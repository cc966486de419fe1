// pool_test.go: Buffer pooling tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package talos

import (
	"sync"
	"testing"
)

// TestBufferPoolBasic verifies basic get/put operations of the buffer pools
func TestBufferPoolBasic(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantCap int
	}{
		{"One block", 16, smallBufferSize},
		{"Small buffer (32B)", 32, smallBufferSize},
		{"Medium buffer (512B)", 512, mediumBufferSize},
		{"Large buffer (4KB)", 4096, largeBufferSize},
		{"Oversized buffer (64KB)", 64 * 1024, 64 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := getBuffer(tt.size)
			if buf == nil {
				t.Fatal("getBuffer returned nil")
			}
			if len(*buf) != tt.size {
				t.Errorf("Buffer length %d, want %d", len(*buf), tt.size)
			}
			if cap(*buf) != tt.wantCap {
				t.Errorf("Buffer capacity %d, want %d", cap(*buf), tt.wantCap)
			}

			for i := range *buf {
				(*buf)[i] = byte(i % 256)
			}
			putBuffer(buf)
		})
	}
}

// TestBufferPoolSafety verifies that returned buffers are wiped
func TestBufferPoolSafety(t *testing.T) {
	buf := getBuffer(64)
	sensitiveData := []byte("secret-key-material-12345")
	copy(*buf, sensitiveData)
	putBuffer(buf)

	// The same backing array may come back; it must be zero either way.
	buf2 := getBuffer(64)
	defer putBuffer(buf2)

	for i := 0; i < len(sensitiveData) && i < len(*buf2); i++ {
		if (*buf2)[i] != 0 {
			t.Errorf("Buffer not zeroed at position %d: got %v, want 0", i, (*buf2)[i])
		}
	}
}

func TestClearBuffer(t *testing.T) {
	for _, size := range []int{0, 1, 7, 64, 65, 100, 4096} {
		buf := make([]byte, size)
		for i := range buf {
			buf[i] = 0xFF
		}
		clearBuffer(buf)
		for i, b := range buf {
			if b != 0 {
				t.Fatalf("size %d: byte %d not cleared", size, i)
			}
		}
	}
}

func TestPutBufferIgnoresNil(t *testing.T) {
	putBuffer(nil) // Should not panic
}

// TestBufferPoolConcurrency verifies thread-safety
func TestBufferPoolConcurrency(t *testing.T) {
	const numGoroutines = 100
	const numOpsPerGoroutine = 50

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()

			for j := 0; j < numOpsPerGoroutine; j++ {
				smallBuf := getBuffer(BlockSize)
				(*smallBuf)[0] = byte(id)
				putBuffer(smallBuf)

				medBuf := getBuffer(300)
				(*medBuf)[0] = byte(j)
				putBuffer(medBuf)

				b := AllocateBuffer(1000)
				_, _ = b.Write([]byte{byte(id), byte(j)})
				b.Release()
			}
		}(i)
	}

	wg.Wait()
}

// TestWarmupPools verifies the warmup function
func TestWarmupPools(t *testing.T) {
	WarmupPools(10)

	for i := 0; i < 5; i++ {
		buf := getBuffer(64)
		putBuffer(buf)
	}
}

func BenchmarkBufferPoolOperations(b *testing.B) {
	sizes := []struct {
		name string
		size int
	}{
		{"Block", BlockSize},
		{"Record", 512},
		{"Page", 4096},
	}

	for _, s := range sizes {
		b.Run(s.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				buf := getBuffer(s.size)
				putBuffer(buf)
			}
		})
	}
}

func BenchmarkAllocateBuffer(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf := AllocateBuffer(1024)
		buf.Release()
	}
}
