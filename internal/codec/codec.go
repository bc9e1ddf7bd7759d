// Package codec implements the fixed-width and length-prefixed primitives of
// the parley wire format. Every Read function is the exact inverse of its
// Write counterpart; a value that cannot be fully decoded yields ErrMalformed
// and no partial result. All multi-byte integers are big-endian.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrMalformed is returned (wrapped) whenever a stream does not contain the
// expected shape: truncated input, a negative length or count, or a presence
// flag outside {0, 1}.
var ErrMalformed = errors.New("malformed message")

// maxLen bounds string byte lengths and sequence counts so a corrupt prefix
// cannot ask for a multi-gigabyte allocation.
const maxLen = 1 << 20

// WriteInt32 writes v as 4 big-endian bytes.
func WriteInt32(w io.Writer, v int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

// ReadInt32 reads 4 big-endian bytes as a signed integer.
func ReadInt32(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: int32: %v", ErrMalformed, err)
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

// WriteInt64 writes v as 8 big-endian bytes.
func WriteInt64(w io.Writer, v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	_, err := w.Write(buf[:])
	return err
}

// ReadInt64 reads 8 big-endian bytes as a signed integer.
func ReadInt64(r io.Reader) (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: int64: %v", ErrMalformed, err)
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

// WriteString writes the UTF-8 bytes of s prefixed with their int32 count.
func WriteString(w io.Writer, s string) error {
	if err := WriteInt32(w, int32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// ReadString reads a length-prefixed UTF-8 string.
func ReadString(r io.Reader) (string, error) {
	n, err := ReadInt32(r)
	if err != nil {
		return "", err
	}
	if n < 0 || n > maxLen {
		return "", fmt.Errorf("%w: string length %d", ErrMalformed, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("%w: string body: %v", ErrMalformed, err)
	}
	return string(buf), nil
}

// WriteID writes the 16 raw bytes of an identifier.
func WriteID(w io.Writer, id uuid.UUID) error {
	_, err := w.Write(id[:])
	return err
}

// ReadID reads a 16-byte identifier.
func ReadID(r io.Reader) (uuid.UUID, error) {
	var id uuid.UUID
	if _, err := io.ReadFull(r, id[:]); err != nil {
		return uuid.Nil, fmt.Errorf("%w: identifier: %v", ErrMalformed, err)
	}
	return id, nil
}

// WriteTime writes t as int64 epoch milliseconds.
func WriteTime(w io.Writer, t time.Time) error {
	return WriteInt64(w, t.UnixMilli())
}

// ReadTime reads an int64 epoch-millisecond timestamp.
func ReadTime(r io.Reader) (time.Time, error) {
	ms, err := ReadInt64(r)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

// WriteNullable writes a one-byte presence flag, then v via elem iff v is
// non-nil.
func WriteNullable[T any](w io.Writer, v *T, elem func(io.Writer, T) error) error {
	if v == nil {
		_, err := w.Write([]byte{0})
		return err
	}
	if _, err := w.Write([]byte{1}); err != nil {
		return err
	}
	return elem(w, *v)
}

// ReadNullable reads a presence flag and, when set, one element. A flag
// outside {0, 1} is malformed.
func ReadNullable[T any](r io.Reader, elem func(io.Reader) (T, error)) (*T, error) {
	var flag [1]byte
	if _, err := io.ReadFull(r, flag[:]); err != nil {
		return nil, fmt.Errorf("%w: presence flag: %v", ErrMalformed, err)
	}
	switch flag[0] {
	case 0:
		return nil, nil
	case 1:
		v, err := elem(r)
		if err != nil {
			return nil, err
		}
		return &v, nil
	default:
		return nil, fmt.Errorf("%w: presence flag %d", ErrMalformed, flag[0])
	}
}

// WriteSequence writes an int32 count followed by the elements in order.
func WriteSequence[T any](w io.Writer, items []T, elem func(io.Writer, T) error) error {
	if err := WriteInt32(w, int32(len(items))); err != nil {
		return err
	}
	for _, item := range items {
		if err := elem(w, item); err != nil {
			return err
		}
	}
	return nil
}

// ReadSequence reads an int32 count and that many elements, preserving order.
func ReadSequence[T any](r io.Reader, elem func(io.Reader) (T, error)) ([]T, error) {
	n, err := ReadInt32(r)
	if err != nil {
		return nil, err
	}
	if n < 0 || n > maxLen {
		return nil, fmt.Errorf("%w: sequence count %d", ErrMalformed, n)
	}
	items := make([]T, 0, n)
	for i := int32(0); i < n; i++ {
		v, err := elem(r)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}
