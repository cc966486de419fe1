// accel_modes.go: Single-shot mode transforms and PKCS#5 padding for the built-in module.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package talos

import (
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

// ErrCodeBadPadding marks ciphertext whose PKCS#5 trailer is malformed.
const ErrCodeBadPadding = "TALOS_BAD_PADDING"

// padded reports whether the context applies PKCS#5 padding.
// Only the block modes ECB and CBC pad; stream modes and XTS never do.
func (c *accelContext) padded() bool {
	return c.padding == PKCS5Padding && (c.mode == ModeECB || c.mode == ModeCBC)
}

// outputSize returns the number of bytes a transform of n input bytes writes,
// or a length error when n cannot be processed in this mode.
func (c *accelContext) outputSize(n int) (int, error) {
	switch c.mode {
	case ModeCTR, ModeCFB, ModeOFB:
		return n, nil
	case ModeXTS:
		if n == 0 || n%BlockSize != 0 {
			return 0, lengthMismatch(goerrors.New(ErrCodeLengthMismatch,
				fmt.Sprintf("XTS input must be a non-empty multiple of %d bytes, got %d", BlockSize, n)))
		}
		return n, nil
	}

	if c.direction == Encrypt && c.padded() {
		return n + BlockSize - n%BlockSize, nil
	}
	if n%BlockSize != 0 {
		return 0, lengthMismatch(goerrors.New(ErrCodeLengthMismatch,
			fmt.Sprintf("%s input must be a multiple of %d bytes, got %d", c.mode, BlockSize, n)))
	}
	if c.direction == Decrypt && c.padded() && n == 0 {
		return 0, lengthMismatch(goerrors.New(ErrCodeLengthMismatch, "padded ciphertext cannot be empty"))
	}
	return n, nil
}

// transform runs one complete message from src into dst. Every call starts
// from the configured IV; there is no chaining state between calls.
//
// Work happens in a pooled scratch buffer so that src and dst may overlap in
// any way, and dst is only written once the whole transform succeeded.
func (c *accelContext) transform(src, dst []byte) (int, error) {
	size, err := c.outputSize(len(src))
	if err != nil {
		return 0, err
	}
	scratchLen := size
	if len(src) > scratchLen {
		scratchLen = len(src)
	}
	scratchBuf := getBuffer(scratchLen)
	defer putBuffer(scratchBuf)
	scratch := (*scratchBuf)[:scratchLen]
	copy(scratch, src)

	n := len(src)
	if c.direction == Encrypt && c.padded() {
		n = pkcs5Pad(scratch, len(src))
	}

	switch c.mode {
	case ModeECB:
		c.ecb(scratch[:n])
	case ModeCBC:
		if c.direction == Encrypt {
			cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(scratch[:n], scratch[:n])
		} else {
			cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(scratch[:n], scratch[:n])
		}
	case ModeCTR:
		cipher.NewCTR(c.block, c.iv).XORKeyStream(scratch[:n], scratch[:n])
	case ModeCFB:
		if c.direction == Encrypt {
			cipher.NewCFBEncrypter(c.block, c.iv).XORKeyStream(scratch[:n], scratch[:n]) //nolint:staticcheck // provider-defined mode
		} else {
			cipher.NewCFBDecrypter(c.block, c.iv).XORKeyStream(scratch[:n], scratch[:n]) //nolint:staticcheck // provider-defined mode
		}
	case ModeOFB:
		cipher.NewOFB(c.block, c.iv).XORKeyStream(scratch[:n], scratch[:n]) //nolint:staticcheck // provider-defined mode
	case ModeXTS:
		sector := c.sector()
		if c.direction == Encrypt {
			c.xts.Encrypt(scratch[:n], scratch[:n], sector)
		} else {
			c.xts.Decrypt(scratch[:n], scratch[:n], sector)
		}
	}

	if c.direction == Decrypt && c.padded() {
		n, err = pkcs5Unpad(scratch[:n])
		if err != nil {
			return 0, err
		}
	}

	if len(dst) < n {
		return 0, lengthMismatch(goerrors.New(ErrCodeLengthMismatch,
			fmt.Sprintf("output too small: need %d bytes, have %d", n, len(dst))))
	}
	copy(dst, scratch[:n])
	return n, nil
}

func (c *accelContext) ecb(buf []byte) {
	for i := 0; i < len(buf); i += BlockSize {
		if c.direction == Encrypt {
			c.block.Encrypt(buf[i:i+BlockSize], buf[i:i+BlockSize])
		} else {
			c.block.Decrypt(buf[i:i+BlockSize], buf[i:i+BlockSize])
		}
	}
}

// sector derives the XTS sector number from the first 8 IV bytes (little endian).
func (c *accelContext) sector() uint64 {
	if len(c.iv) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(c.iv[:8])
}

// pkcs5Pad appends the padding for a message of length n in place.
// buf must have room for the padded length, which is returned.
func pkcs5Pad(buf []byte, n int) int {
	pad := BlockSize - n%BlockSize
	for i := n; i < n+pad; i++ {
		buf[i] = byte(pad)
	}
	return n + pad
}

// pkcs5Unpad returns the message length inside a padded plaintext.
// The trailer is checked without early exit on the padding bytes.
func pkcs5Unpad(buf []byte) (int, error) {
	n := len(buf)
	pad := int(buf[n-1])
	if pad == 0 || pad > BlockSize || pad > n {
		return 0, badPadding()
	}
	var diff byte
	for _, b := range buf[n-pad:] {
		diff |= b ^ byte(pad)
	}
	if subtle.ConstantTimeByteEq(diff, 0) != 1 {
		return 0, badPadding()
	}
	return n - pad, nil
}

func badPadding() error {
	return fmt.Errorf("%w: %w", ErrNativeFailure, goerrors.New(ErrCodeBadPadding, "invalid PKCS#5 padding"))
}
