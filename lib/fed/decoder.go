package fed

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"gfx.cafe/gfx/pgdial/lib/util/decorator"
)

var (
	ErrOverranPacket  = errors.New("overran packet")
	ErrNegativeLength = errors.New("negative packet length")
)

// Decoder reads packets from an underlying stream. Exactly one packet is in
// flight at a time: Next discards whatever is left of the previous body.
type Decoder struct {
	noCopy decorator.NoCopy

	reader bufio.Reader

	packetType   Type
	packetLength int
	packetPos    int
	decodeBuf    [8]byte
}

func NewDecoder(r io.Reader) *Decoder {
	d := new(Decoder)
	d.Reset(r)
	return d
}

func (T *Decoder) Reset(r io.Reader) {
	T.packetType = 0
	T.packetLength = 0
	T.packetPos = 0
	T.reader.Reset(r)
}

func (T *Decoder) Buffered() int {
	return T.reader.Buffered()
}

func (T *Decoder) discardRemaining() error {
	rem := T.packetLength - T.packetPos
	if rem < 0 {
		return ErrOverranPacket
	}
	if rem > 0 {
		if _, err := T.reader.Discard(rem); err != nil {
			return err
		}
		T.packetPos = T.packetLength
	}
	return nil
}

// ReadByte reads a single byte that is not part of a packet, such as the
// server's reply to an SSL request.
func (T *Decoder) ReadByte() (byte, error) {
	if err := T.discardRemaining(); err != nil {
		return 0, err
	}
	T.packetType = 0
	T.packetLength = 0
	T.packetPos = 0
	return T.reader.ReadByte()
}

// Next advances to the header of the next packet.
func (T *Decoder) Next(typed bool) error {
	if err := T.discardRemaining(); err != nil {
		return err
	}

	var err error
	if typed {
		_, err = io.ReadFull(&T.reader, T.decodeBuf[:5])
	} else {
		T.decodeBuf[0] = 0
		_, err = io.ReadFull(&T.reader, T.decodeBuf[1:5])
	}
	if err != nil {
		return err
	}
	T.packetType = Type(T.decodeBuf[0])
	T.packetLength = int(binary.BigEndian.Uint32(T.decodeBuf[1:5])) - 4
	T.packetPos = 0
	if T.packetLength < 0 {
		return ErrNegativeLength
	}
	return nil
}

func (T *Decoder) Type() Type {
	return T.packetType
}

func (T *Decoder) Length() int {
	return T.packetLength
}

func (T *Decoder) Position() int {
	return T.packetPos
}

// Read reads from the remaining packet body, returning io.EOF once the body
// is consumed.
func (T *Decoder) Read(b []byte) (int, error) {
	rem := T.packetLength - T.packetPos
	if rem <= 0 {
		return 0, io.EOF
	}
	if len(b) > rem {
		b = b[:rem]
	}
	n, err := T.reader.Read(b)
	T.packetPos += n
	return n, err
}

func (T *Decoder) readFull(b []byte) error {
	n, err := io.ReadFull(&T.reader, b)
	T.packetPos += n
	return err
}

func (T *Decoder) Uint8() (uint8, error) {
	err := T.readFull(T.decodeBuf[:1])
	return T.decodeBuf[0], err
}

func (T *Decoder) Uint16() (uint16, error) {
	err := T.readFull(T.decodeBuf[:2])
	return binary.BigEndian.Uint16(T.decodeBuf[:2]), err
}

func (T *Decoder) Uint32() (uint32, error) {
	err := T.readFull(T.decodeBuf[:4])
	return binary.BigEndian.Uint32(T.decodeBuf[:4]), err
}

func (T *Decoder) Uint64() (uint64, error) {
	err := T.readFull(T.decodeBuf[:8])
	return binary.BigEndian.Uint64(T.decodeBuf[:8]), err
}

func (T *Decoder) Int8() (int8, error) {
	v, err := T.Uint8()
	return int8(v), err
}

func (T *Decoder) Int16() (int16, error) {
	v, err := T.Uint16()
	return int16(v), err
}

func (T *Decoder) Int32() (int32, error) {
	v, err := T.Uint32()
	return int32(v), err
}

func (T *Decoder) Int64() (int64, error) {
	v, err := T.Uint64()
	return int64(v), err
}

// String reads a NUL terminated string.
func (T *Decoder) String() (string, error) {
	s, err := T.reader.ReadString(0)
	T.packetPos += len(s)
	if err != nil {
		return "", err
	}
	return s[:len(s)-1], nil
}

// Bytes fills b from the packet body.
func (T *Decoder) Bytes(b []byte) error {
	return T.readFull(b)
}

// Remaining reads the rest of the packet body.
func (T *Decoder) Remaining() ([]byte, error) {
	rem := T.packetLength - T.packetPos
	if rem <= 0 {
		return nil, nil
	}
	b := make([]byte, rem)
	err := T.readFull(b)
	return b, err
}
