// mock_native_test.go: Counting Native double for engine tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package talos

import (
	"errors"
	"sync"
)

var errMockFailure = errors.New("mock: injected failure")

// mockNative implements Native by XOR-ing bytes with 0xAA and records every
// boundary call so tests can assert how often the engine crossed it.
type mockNative struct {
	mu       sync.Mutex
	next     Handle
	live     map[Handle]ContextConfig
	events   []string
	configs  []ContextConfig
	newCalls int
	blocks   int
	buffers  int
	destroys int

	failNew       error
	failDestroy   error
	failTransform error
	panicOnBlock  bool
	emptyHandle   bool
}

func newMockNative() *mockNative {
	return &mockNative{live: make(map[Handle]ContextConfig)}
}

func newMockCapability(m *mockNative) *Capability {
	return NewCapability("mock", func() (Native, error) { return m, nil })
}

func (m *mockNative) Name() string { return "mock" }

func (m *mockNative) NewContext(cfg ContextConfig) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.newCalls++
	m.events = append(m.events, "new")
	if m.failNew != nil {
		return NoHandle, m.failNew
	}
	if m.emptyHandle {
		return NoHandle, nil
	}
	cfg.Key = cloneBytes(cfg.Key)
	cfg.IV = cloneBytes(cfg.IV)
	m.configs = append(m.configs, cfg)
	m.next++
	m.live[m.next] = cfg
	return m.next, nil
}

func (m *mockNative) TransformBlock(h Handle, in []byte, inOff, inLen int, out []byte, outOff int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocks++
	m.events = append(m.events, "block")
	if m.panicOnBlock {
		panic("mock: boundary fault")
	}
	if m.failTransform != nil {
		return 0, m.failTransform
	}
	if _, ok := m.live[h]; !ok {
		return 0, ErrUnknownHandle
	}
	for i := 0; i < inLen; i++ {
		out[outOff+i] = in[inOff+i] ^ 0xAA
	}
	return inLen, nil
}

func (m *mockNative) TransformBuffer(h Handle, in []byte, inStart, inLen int, out []byte, outStart int, isUpdate bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buffers++
	m.events = append(m.events, "buffer")
	if m.failTransform != nil {
		return 0, m.failTransform
	}
	if _, ok := m.live[h]; !ok {
		return 0, ErrUnknownHandle
	}
	for i := 0; i < inLen; i++ {
		out[outStart+i] = in[inStart+i] ^ 0xAA
	}
	return inLen, nil
}

func (m *mockNative) DestroyContext(h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroys++
	m.events = append(m.events, "destroy")
	delete(m.live, h)
	return m.failDestroy
}

// calls returns the total number of boundary calls so far.
func (m *mockNative) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.newCalls + m.blocks + m.buffers + m.destroys
}

func (m *mockNative) destroyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.destroys
}

func (m *mockNative) liveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

func (m *mockNative) lastConfig() ContextConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.configs[len(m.configs)-1]
}

// bogusParams is a CipherParameters that carries no key.
type bogusParams struct{}

func (bogusParams) cipherParameters() {}
