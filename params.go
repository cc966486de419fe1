// params.go: Cipher parameters accepted by Engine.Init.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package talos

// CipherParameters is the marker interface for values accepted by Init.
// Only *KeyParameter and *ParametersWithIV carry a key; any other
// implementation is rejected with ErrInvalidArgument.
type CipherParameters interface {
	cipherParameters()
}

// KeyParameter is an immutable holder of raw AES key material.
//
// The constructor copies the caller's bytes, so later changes to the source
// slice never reach the engine. Key returns a fresh copy for the same reason.
type KeyParameter struct {
	key []byte
}

// NewKeyParameter copies key into a new KeyParameter.
//
// No size check happens here: the length is validated by Engine.Init, which
// is where an invalid key must be rejected before any native call.
func NewKeyParameter(key []byte) *KeyParameter {
	k := make([]byte, len(key))
	copy(k, key)
	return &KeyParameter{key: k}
}

// Key returns a copy of the key material.
func (p *KeyParameter) Key() []byte {
	k := make([]byte, len(p.key))
	copy(k, p.key)
	return k
}

// Len returns the key length in bytes.
func (p *KeyParameter) Len() int {
	return len(p.key)
}

// Fingerprint returns the non-secret identifier of the key, see GetKeyFingerprint.
func (p *KeyParameter) Fingerprint() string {
	return GetKeyFingerprint(p.key)
}

// Destroy zeroizes the key material held by p.
// Engines keep their own copy, so destroying a parameter after Init is safe.
func (p *KeyParameter) Destroy() {
	Zeroize(p.key)
}

func (*KeyParameter) cipherParameters() {}

// ParametersWithIV pairs a key with an initialization vector.
// Passing it to Init replaces the engine's configured IV, as SetIV would.
type ParametersWithIV struct {
	key *KeyParameter
	iv  []byte
}

// NewParametersWithIV copies iv and binds it to key.
func NewParametersWithIV(key *KeyParameter, iv []byte) *ParametersWithIV {
	v := make([]byte, len(iv))
	copy(v, iv)
	return &ParametersWithIV{key: key, iv: v}
}

// Parameters returns the wrapped key parameter.
func (p *ParametersWithIV) Parameters() *KeyParameter {
	return p.key
}

// IV returns a copy of the initialization vector.
func (p *ParametersWithIV) IV() []byte {
	v := make([]byte, len(p.iv))
	copy(v, p.iv)
	return v
}

func (*ParametersWithIV) cipherParameters() {}
