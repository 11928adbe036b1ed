// Package wirecodec implements the little-endian fixed-width and varint
// read/write primitives the transaction wire format is built from.
// Varint encoding/decoding is delegated to github.com/btcsuite/btcd/wire,
// which implements exactly the standard Bitcoin varint rules (1/3/5/9-byte
// forms) this format requires, rather than re-implementing them.
package wirecodec

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/wire"
)

// protocolVersion is passed through to the btcd/wire varint helpers; the
// varint encoding itself carries no protocol-version dependence, so a
// fixed sentinel is used throughout.
const protocolVersion = 0

// MaxScriptSize bounds a single script read to guard against a corrupt
// length prefix forcing an enormous allocation.
const MaxScriptSize = 10_000_000

// Reader reads the little-endian/varint primitives of the wire format
// from an underlying io.Reader.
type Reader struct {
	r io.Reader
}

// NewReader wraps r for wire-format decoding.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadInt32LE reads a signed 32-bit little-endian integer (the
// transaction version field).
func (rd *Reader) ReadInt32LE() (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(rd.r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

// ReadUint32LE reads an unsigned 32-bit little-endian integer (output
// index, sequence number, locktime).
func (rd *Reader) ReadUint32LE() (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(rd.r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// ReadInt64LE reads a signed 64-bit little-endian integer (an output
// value).
func (rd *Reader) ReadInt64LE() (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(rd.r, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(buf[:])), nil
}

// ReadHash reads a fixed 32-byte field (a previous transaction id, stored
// internally little-endian).
func (rd *Reader) ReadHash() ([32]byte, error) {
	var h [32]byte
	if _, err := io.ReadFull(rd.r, h[:]); err != nil {
		return h, err
	}
	return h, nil
}

// ReadVarInt reads a standard Bitcoin varint.
func (rd *Reader) ReadVarInt() (uint64, error) {
	return wire.ReadVarInt(rd.r, protocolVersion)
}

// ReadVarBytes reads a varint-length-prefixed byte string (a script).
func (rd *Reader) ReadVarBytes() ([]byte, error) {
	n, err := rd.ReadVarInt()
	if err != nil {
		return nil, err
	}
	if n > MaxScriptSize {
		return nil, fmt.Errorf("script length %d exceeds maximum %d", n, MaxScriptSize)
	}
	buf := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(rd.r, buf); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// Writer writes the little-endian/varint primitives of the wire format to
// an underlying io.Writer.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w for wire-format encoding.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (wr *Writer) WriteInt32LE(v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	_, err := wr.w.Write(buf[:])
	return err
}

func (wr *Writer) WriteUint32LE(v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := wr.w.Write(buf[:])
	return err
}

func (wr *Writer) WriteInt64LE(v int64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	_, err := wr.w.Write(buf[:])
	return err
}

func (wr *Writer) WriteHash(h [32]byte) error {
	_, err := wr.w.Write(h[:])
	return err
}

func (wr *Writer) WriteVarInt(v uint64) error {
	return wire.WriteVarInt(wr.w, protocolVersion, v)
}

func (wr *Writer) WriteVarBytes(b []byte) error {
	return wire.WriteVarBytes(wr.w, protocolVersion, b)
}

// VarIntSize returns the number of bytes the given value would occupy
// when varint-encoded (1, 3, 5, or 9).
func VarIntSize(v uint64) int {
	return wire.VarIntSerializeSize(v)
}
