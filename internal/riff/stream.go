package riff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"

	"github.com/klauspost/compress/zlib"
)

// Endianness selects the byte order used by every multi-byte fixed-width
// read on a ByteStream. Varints and raw byte copies are endianness-agnostic.
type Endianness int

const (
	BigEndian Endianness = iota
	LittleEndian
)

func (e Endianness) order() binary.ByteOrder {
	if e == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// inflateSlack bounds the extra bytes (beyond the declared uncompressed
// length) an inflate is allowed to produce before it is treated as a
// runaway decompression and aborted. The archive's source material
// occasionally under-reports uncompressed lengths by a handful of bytes
// (see InflateFailedError and the length-mismatch warning policy), so the
// slack has to be generous enough to tolerate that while still bounding
// adversarial input.
const inflateSlack = 4096

// ByteStream is an endianness-aware, seekable reader over an in-memory
// byte buffer. Every chunk payload, inflated or not, is read through one
// of these; sub-streams produced by ReadBytes/ReadZlib are independent
// owned buffers and can be read and seeked without disturbing the parent.
type ByteStream struct {
	data   []byte
	pos    int
	endian Endianness
}

// NewByteStream wraps data (not copied) in a ByteStream using the given
// endianness.
func NewByteStream(data []byte, endian Endianness) *ByteStream {
	return &ByteStream{data: data, endian: endian}
}

func (s *ByteStream) Len() int { return len(s.data) }

func (s *ByteStream) Pos() int64 { return int64(s.pos) }

func (s *ByteStream) Endianness() Endianness { return s.endian }

func (s *ByteStream) SetEndianness(e Endianness) { s.endian = e }

func (s *ByteStream) Eof() bool { return s.pos >= len(s.data) }

// Seek repositions the stream to an absolute byte offset.
func (s *ByteStream) Seek(pos int64) error {
	if pos < 0 || pos > int64(len(s.data)) {
		return fmt.Errorf("riff: seek to %d out of range [0, %d]: %w", pos, len(s.data), ErrTruncated)
	}
	s.pos = int(pos)
	return nil
}

// Skip advances the stream by n bytes without returning them.
func (s *ByteStream) Skip(n int64) error {
	return s.Seek(s.Pos() + n)
}

func (s *ByteStream) require(n int) error {
	if n < 0 || s.pos+n > len(s.data) {
		return fmt.Errorf("riff: need %d bytes at pos %d, have %d: %w", n, s.pos, len(s.data)-s.pos, ErrTruncated)
	}
	return nil
}

// ReadU8 reads a single byte.
func (s *ByteStream) ReadU8() (uint8, error) {
	if err := s.require(1); err != nil {
		return 0, err
	}
	v := s.data[s.pos]
	s.pos++
	return v, nil
}

// ReadU16 reads a 16-bit unsigned integer under the stream's current
// endianness.
func (s *ByteStream) ReadU16() (uint16, error) {
	if err := s.require(2); err != nil {
		return 0, err
	}
	v := s.endian.order().Uint16(s.data[s.pos:])
	s.pos += 2
	return v, nil
}

// ReadU32 reads a 32-bit unsigned integer under the stream's current
// endianness. FourCC tags are read through this: once endianness has been
// detected, every FourCC comparison lines up regardless of on-disk byte
// order.
func (s *ByteStream) ReadU32() (uint32, error) {
	if err := s.require(4); err != nil {
		return 0, err
	}
	v := s.endian.order().Uint32(s.data[s.pos:])
	s.pos += 4
	return v, nil
}

// ReadI32 reads a 32-bit signed integer under the stream's current
// endianness.
func (s *ByteStream) ReadI32() (int32, error) {
	v, err := s.ReadU32()
	return int32(v), err
}

// ReadFourCC reads a FourCC the same way as ReadU32.
func (s *ByteStream) ReadFourCC() (FourCC, error) {
	v, err := s.ReadU32()
	return FourCC(v), err
}

// ReadVarint reads a 7-bit little-endian continuation-coded unsigned
// integer: the first byte carries the least-significant 7 bits, each
// subsequent byte carries the next-more-significant 7 bits, and the high
// bit of a byte signals that another, more significant byte follows. The
// format imposes no maximum byte count; this implementation caps at 5
// bytes (32 bits of payload) and reports overflow as a parse error rather
// than reading unboundedly.
func (s *ByteStream) ReadVarint() (uint32, error) {
	const maxBytes = 5
	var result uint32
	for i := 0; i < maxBytes; i++ {
		b, err := s.ReadU8()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return result, nil
		}
	}
	return 0, &VarintOverflowError{MaxBytes: maxBytes}
}

// ReadBytes returns a new ByteStream over a copy of the next n bytes,
// inheriting this stream's endianness, and advances this stream past them.
func (s *ByteStream) ReadBytes(n int) (*ByteStream, error) {
	buf, err := s.CopyBytes(n)
	if err != nil {
		return nil, err
	}
	return NewByteStream(buf, s.endian), nil
}

// CopyBytes returns a copy of the next n bytes and advances past them.
func (s *ByteStream) CopyBytes(n int) ([]byte, error) {
	if err := s.require(n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	copy(buf, s.data[s.pos:s.pos+n])
	s.pos += n
	return buf, nil
}

// ReadZlib consumes exactly n bytes of input, inflates them, and returns a
// fresh ByteStream over the inflated bytes inheriting the parent's
// endianness. Output is capped at expectedUncompressedLen+inflateSlack
// bytes to bound adversarial or corrupt input; exceeding the cap or any
// zlib error is reported as InflateFailedError. A mismatch between the
// observed and expected uncompressed length is reported to logger as a
// warning, not returned as an error: source archives are known to report
// slightly inaccurate lengths.
func (s *ByteStream) ReadZlib(n int, expectedUncompressedLen int, logger *slog.Logger) (*ByteStream, error) {
	raw, err := s.CopyBytes(n)
	if err != nil {
		return nil, err
	}

	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &InflateFailedError{Err: err}
	}
	defer zr.Close()

	budget := expectedUncompressedLen + inflateSlack
	limited := io.LimitReader(zr, int64(budget)+1)
	out, err := io.ReadAll(limited)
	if err != nil {
		return nil, &InflateFailedError{Err: err}
	}
	if len(out) > budget {
		return nil, &InflateFailedError{Err: fmt.Errorf("inflated output exceeds %d byte budget", budget)}
	}

	if logger != nil && len(out) != expectedUncompressedLen {
		logger.Warn("inflated length mismatch",
			"expected", expectedUncompressedLen,
			"actual", len(out),
		)
	}

	return NewByteStream(out, s.endian), nil
}
