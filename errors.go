// errors.go: Error taxonomy guarding the native boundary.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package talos

import (
	"errors"
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

// Public standard errors. Every error returned by this package wraps exactly
// one of them, so callers can branch with errors.Is.
var (
	// ErrInvalidArgument is returned when Init receives a parameter type it does not
	// recognize, a key outside KeySizes, or an IV that is not BlockSize bytes.
	// It is also returned when an engine has to re-initialize but was never initialized.
	ErrInvalidArgument = errors.New("talos: invalid argument")

	// ErrLengthMismatch is returned when an offset or length does not fit the
	// buffer it refers to. It is always detected before the native call.
	ErrLengthMismatch = errors.New("talos: length mismatch")

	// ErrUnsupportedOperation is returned for AEAD operations and for streaming
	// update calls, neither of which this engine supports.
	ErrUnsupportedOperation = errors.New("talos: unsupported operation")

	// ErrNativeFailure is returned when the accelerated module is unavailable or
	// reports a failure. It signals an environment problem, not a usage error.
	ErrNativeFailure = errors.New("talos: native failure")
)

// Error codes for rich error handling
const (
	ErrCodeInvalidArgument   = "TALOS_INVALID_ARGUMENT"
	ErrCodeInvalidKey        = "TALOS_INVALID_KEY"
	ErrCodeInvalidIV         = "TALOS_INVALID_IV"
	ErrCodeInvalidConfig     = "TALOS_INVALID_CONFIG"
	ErrCodeNotInitialized    = "TALOS_NOT_INITIALIZED"
	ErrCodeLengthMismatch    = "TALOS_LENGTH_MISMATCH"
	ErrCodeUnsupported       = "TALOS_UNSUPPORTED"
	ErrCodeNativeUnavailable = "TALOS_NATIVE_UNAVAILABLE"
	ErrCodeNativeFailure     = "TALOS_NATIVE_FAILURE"
	ErrCodeDestroyFailed     = "TALOS_DESTROY_FAILED"
)

// invalidArgument, lengthMismatch and unsupported attach the taxonomy sentinel
// to a rich error carrying the code.
func invalidArgument(richErr error) error {
	return fmt.Errorf("%w: %w", ErrInvalidArgument, richErr)
}

func lengthMismatch(richErr error) error {
	return fmt.Errorf("%w: %w", ErrLengthMismatch, richErr)
}

func unsupported(op string) error {
	richErr := goerrors.New(ErrCodeUnsupported, op+" is not supported by the single-shot AES engine")
	return fmt.Errorf("%w: %w", ErrUnsupportedOperation, richErr)
}

// nativeFailure classifies an error coming back from a Native implementation.
// Validation errors raised by the module keep their class; everything else is
// reported as ErrNativeFailure.
func nativeFailure(err error, msg string) error {
	if errors.Is(err, ErrLengthMismatch) || errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrNativeFailure) {
		return err
	}
	richErr := goerrors.Wrap(err, ErrCodeNativeFailure, msg)
	return fmt.Errorf("%w: %w", ErrNativeFailure, richErr)
}
