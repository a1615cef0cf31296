package fed

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"gfx.cafe/gfx/pgdial/lib/util/decorator"
)

var ErrWrongNumberOfBytes = errors.New("wrong number of bytes written")

// Encoder writes packets to an underlying stream. Next declares the packet
// header; the declared length must be written exactly before the next packet
// starts.
type Encoder struct {
	noCopy decorator.NoCopy

	writer bufio.Writer

	packetType   Type
	packetLength int
	packetPos    int
	encodeBuf    [8]byte
}

func NewEncoder(w io.Writer) *Encoder {
	e := new(Encoder)
	e.Reset(w)
	return e
}

func (T *Encoder) Reset(w io.Writer) {
	T.packetType = 0
	T.packetLength = 0
	T.packetPos = 0
	T.writer.Reset(w)
}

func (T *Encoder) Flush() error {
	return T.writer.Flush()
}

// Next starts a packet with the given type and body length. A zero typ
// writes an untyped (startup) header.
func (T *Encoder) Next(typ Type, length int) error {
	if T.packetPos != T.packetLength {
		return ErrWrongNumberOfBytes
	}

	if typ != 0 {
		if err := T.writer.WriteByte(byte(typ)); err != nil {
			return err
		}
	}
	binary.BigEndian.PutUint32(T.encodeBuf[:4], uint32(length+4))
	if _, err := T.writer.Write(T.encodeBuf[:4]); err != nil {
		return err
	}

	T.packetType = typ
	T.packetLength = length
	T.packetPos = 0
	return nil
}

// WriteByte writes a single byte that is not part of a packet.
func (T *Encoder) WriteByte(b byte) error {
	if T.packetPos != T.packetLength {
		return ErrWrongNumberOfBytes
	}

	T.packetType = 0
	T.packetLength = 0
	T.packetPos = 0
	return T.writer.WriteByte(b)
}

func (T *Encoder) Type() Type {
	return T.packetType
}

func (T *Encoder) Length() int {
	return T.packetLength
}

func (T *Encoder) Position() int {
	return T.packetPos
}

func (T *Encoder) Write(b []byte) (int, error) {
	n, err := T.writer.Write(b)
	T.packetPos += n
	return n, err
}

func (T *Encoder) Uint8(v uint8) error {
	err := T.writer.WriteByte(v)
	T.packetPos += 1
	return err
}

func (T *Encoder) Uint16(v uint16) error {
	binary.BigEndian.PutUint16(T.encodeBuf[:2], v)
	_, err := T.Write(T.encodeBuf[:2])
	return err
}

func (T *Encoder) Uint32(v uint32) error {
	binary.BigEndian.PutUint32(T.encodeBuf[:4], v)
	_, err := T.Write(T.encodeBuf[:4])
	return err
}

func (T *Encoder) Uint64(v uint64) error {
	binary.BigEndian.PutUint64(T.encodeBuf[:8], v)
	_, err := T.Write(T.encodeBuf[:8])
	return err
}

func (T *Encoder) Int8(v int8) error {
	return T.Uint8(uint8(v))
}

func (T *Encoder) Int16(v int16) error {
	return T.Uint16(uint16(v))
}

func (T *Encoder) Int32(v int32) error {
	return T.Uint32(uint32(v))
}

func (T *Encoder) Int64(v int64) error {
	return T.Uint64(uint64(v))
}

// String writes a NUL terminated string.
func (T *Encoder) String(v string) error {
	n, err := T.writer.WriteString(v)
	T.packetPos += n
	if err != nil {
		return err
	}
	if err = T.writer.WriteByte(0); err != nil {
		return err
	}
	T.packetPos += 1
	return nil
}

var _ io.Writer = (*Encoder)(nil)
