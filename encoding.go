package mqttpub

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrEncoding is the root of every error caused by input that exceeds the
// protocol's size limits. Check with errors.Is.
var ErrEncoding = errors.New("encoding error")

// Encoding errors.
var (
	ErrStringTooLong           = fmt.Errorf("%w: string exceeds maximum length of 65535 bytes", ErrEncoding)
	ErrRemainingLengthTooLarge = fmt.Errorf("%w: remaining length exceeds 268435455", ErrEncoding)
	ErrMalformedLength         = errors.New("malformed remaining length")
)

const (
	maxUint16            = 65535
	maxRemainingLength   = 268435455 // 0x0FFFFFFF
	maxRemainingLenBytes = 4
	lengthContinueBit    = 0x80
	lengthValueMask      = 0x7F
)

// EncodeRemainingLength returns the variable length encoding of n: seven bits
// per byte, low group first, with the high bit set on every byte but the last.
func EncodeRemainingLength(n uint32) ([]byte, error) {
	if n > maxRemainingLength {
		return nil, ErrRemainingLengthTooLarge
	}

	return appendRemainingLength(make([]byte, 0, maxRemainingLenBytes), n), nil
}

// appendRemainingLength appends the encoding of n to dst.
// The caller guarantees n <= maxRemainingLength.
func appendRemainingLength(dst []byte, n uint32) []byte {
	for {
		encodedByte := byte(n & lengthValueMask)
		n >>= 7

		if n > 0 {
			encodedByte |= lengthContinueBit
		}

		dst = append(dst, encodedByte)

		if n == 0 {
			return dst
		}
	}
}

// DecodeRemainingLength reads a variable length integer from r.
// Returns the value and the number of bytes consumed.
func DecodeRemainingLength(r io.ByteReader) (uint32, int, error) {
	var value uint32
	var shift uint

	for i := range maxRemainingLenBytes {
		b, err := r.ReadByte()
		if err != nil {
			return 0, i, err
		}

		value |= uint32(b&lengthValueMask) << shift

		if b&lengthContinueBit == 0 {
			return value, i + 1, nil
		}

		shift += 7
	}

	return 0, maxRemainingLenBytes, ErrMalformedLength
}

// remainingLengthSize returns the number of bytes needed to encode n.
func remainingLengthSize(n uint32) int {
	switch {
	case n < 128:
		return 1
	case n < 16384:
		return 2
	case n < 2097152:
		return 3
	default:
		return 4
	}
}

// appendString appends s with its 2-byte big-endian length prefix.
// The caller checks len(s) <= maxUint16 first.
func appendString(dst []byte, s string) []byte {
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(s)))
	return append(dst, s...)
}

func checkStringLength(s string) error {
	if len(s) > maxUint16 {
		return ErrStringTooLong
	}
	return nil
}
