// bounds.go: Offset and length validation performed before every boundary call.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package talos

import (
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

// checkRegion verifies that [off, off+n) lies inside a buffer of the given size.
// The comparison is written so that huge values cannot overflow.
func checkRegion(what string, size, off, n int) error {
	if off < 0 || n < 0 || off > size || n > size-off {
		return lengthMismatch(goerrors.New(ErrCodeLengthMismatch,
			fmt.Sprintf("%s region [%d:+%d] exceeds buffer of %d bytes", what, off, n, size)))
	}
	return nil
}

// checkRegions validates the input region and the output start offset.
// It is the minimum a native module needs to slice safely.
func checkRegions(in []byte, inOff, inLen int, out []byte, outOff int) error {
	if err := checkRegion("input", len(in), inOff, inLen); err != nil {
		return err
	}
	return checkRegion("output", len(out), outOff, 0)
}

// checkArrayBounds is the byte-slice calling convention check: the input
// region must fit in, and out must have at least inLen bytes from outOff.
// Padding expansion beyond inLen is the native module's concern.
func checkArrayBounds(in []byte, inOff, inLen int, out []byte, outOff int) error {
	if err := checkRegions(in, inOff, inLen, out, outOff); err != nil {
		return err
	}
	if room := len(out) - outOff; room < inLen {
		return lengthMismatch(goerrors.New(ErrCodeLengthMismatch,
			fmt.Sprintf("output has %d bytes from offset %d, input is %d bytes", room, outOff, inLen)))
	}
	return nil
}

// checkBufferBounds is the Buffer calling convention check. The input length
// is derived from the input's position and limit, never supplied by the caller.
func checkBufferBounds(in, out *Buffer) (inStart, inLen, outStart int, err error) {
	if in == nil || out == nil {
		return 0, 0, 0, invalidArgument(goerrors.New(ErrCodeInvalidArgument, "input and output buffers are required"))
	}
	if err := in.check("input"); err != nil {
		return 0, 0, 0, err
	}
	if err := out.check("output"); err != nil {
		return 0, 0, 0, err
	}

	inStart, inLen = in.Position(), in.Remaining()
	outStart = out.Position()
	if room := out.Remaining(); room < inLen {
		return 0, 0, 0, lengthMismatch(goerrors.New(ErrCodeLengthMismatch,
			fmt.Sprintf("output buffer has %d bytes remaining, input has %d", room, inLen)))
	}
	return inStart, inLen, outStart, nil
}
