// keyutils.go: Key utilities for import, generation, zeroization, and fingerprinting.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package talos

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	goerrors "github.com/agilira/go-errors"
)

// KeyParameterFromBase64 decodes a base64 string into a KeyParameter.
//
// The decoded length is not checked; Engine.Init rejects sizes outside KeySizes.
// The intermediate decoded slice is zeroized before returning.
//
// Example:
//
//	kp, err := talos.KeyParameterFromBase64(os.Getenv("AES_KEY"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = eng.Init(talos.Encrypt, kp)
func KeyParameterFromBase64(s string) (*KeyParameter, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		richErr := goerrors.Wrap(err, "BASE64_DECODE_ERROR", "failed to decode base64 key")
		return nil, invalidArgument(richErr)
	}
	defer Zeroize(key)
	return NewKeyParameter(key), nil
}

// KeyParameterFromHex decodes a hexadecimal string into a KeyParameter.
// Both uppercase and lowercase digits are accepted.
func KeyParameterFromHex(s string) (*KeyParameter, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		richErr := goerrors.Wrap(err, "HEX_DECODE_ERROR", "failed to decode hex key")
		return nil, invalidArgument(richErr)
	}
	defer Zeroize(key)
	return NewKeyParameter(key), nil
}

// GenerateKeyParameter creates a random key of the given size from crypto/rand.
//
// Parameters:
//   - size: 16, 24 or 32 bytes for AES-128, AES-192 or AES-256
//
// Returns:
//   - A KeyParameter holding the new key
//   - ErrInvalidArgument if size is not in KeySizes, or ErrNativeFailure if the
//     random source fails
func GenerateKeyParameter(size int) (*KeyParameter, error) {
	if err := ValidateKeySize(size); err != nil {
		return nil, err
	}
	key := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		richErr := goerrors.Wrap(err, "KEY_GEN_ERROR", "failed to generate key")
		return nil, fmt.Errorf("%w: %w", ErrNativeFailure, richErr)
	}
	return &KeyParameter{key: key}, nil
}

// ValidateKeySize checks that n is an accepted AES key length.
func ValidateKeySize(n int) error {
	if !IsKeySizeValid(n) {
		return invalidArgument(goerrors.New(ErrCodeInvalidKey, fmt.Sprintf("invalid AES key length: %d bytes", n)))
	}
	return nil
}

// Zeroize overwrites b with zeros in place.
//
// Engines zeroize their key copy when Init replaces it and on Close; Reset
// keeps it for the next re-initialization. Callers should zeroize any key
// bytes they still hold.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// GetKeyFingerprint returns the first 8 bytes of SHA-256(key) as 16 hex characters,
// or the empty string for an empty key.
//
// It is what this package logs in place of key material.
func GetKeyFingerprint(key []byte) string {
	if len(key) == 0 {
		return ""
	}
	hash := sha256.Sum256(key)
	return fmt.Sprintf("%016x", hash[:8])
}
