package fed

import "io"

// Type is the tag byte of a protocol 3.0 packet. Untyped packets (startup
// messages) use the zero Type.
type Type byte

type Packet interface {
	Type() Type
	Length() int

	WriteTo(encoder *Encoder) error
}

type ReadablePacket interface {
	Packet

	ReadFrom(decoder *Decoder) error
}

// PendingPacket is a packet whose body is still sitting in the decoder. It
// is only valid until the decoder is advanced.
type PendingPacket struct {
	Decoder *Decoder
}

func (T PendingPacket) Type() Type {
	return T.Decoder.Type()
}

func (T PendingPacket) Length() int {
	return T.Decoder.Length()
}

func (T PendingPacket) WriteTo(encoder *Encoder) error {
	_, err := io.Copy(encoder, T.Decoder)
	return err
}

var _ Packet = PendingPacket{}

// RawPacket buffers an entire packet body, so it stays valid after the
// decoder moves on.
type RawPacket struct {
	PacketType Type
	Payload    []byte
}

func (T *RawPacket) Type() Type {
	return T.PacketType
}

func (T *RawPacket) Length() int {
	return len(T.Payload)
}

func (T *RawPacket) ReadFrom(decoder *Decoder) (err error) {
	T.PacketType = decoder.Type()
	T.Payload, err = decoder.Remaining()
	return
}

func (T *RawPacket) WriteTo(encoder *Encoder) error {
	_, err := encoder.Write(T.Payload)
	return err
}

var _ ReadablePacket = (*RawPacket)(nil)

// ToConcrete decodes packet into value, avoiding a decode round trip if
// packet is already concrete.
func ToConcrete[T any, PT interface {
	ReadFrom(decoder *Decoder) error
	*T
}](value PT, packet Packet) error {
	switch p := packet.(type) {
	case PT:
		*value = *p
		return nil
	case PendingPacket:
		return value.ReadFrom(p.Decoder)
	default:
		panic("incompatible packet types")
	}
}
