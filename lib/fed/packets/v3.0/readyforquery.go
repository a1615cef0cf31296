package packets

import "gfx.cafe/gfx/pgdial/lib/fed"

// ReadyForQuery carries the backend transaction status: 'I', 'T' or 'E'.
type ReadyForQuery uint8

func (T *ReadyForQuery) Type() fed.Type {
	return TypeReadyForQuery
}

func (T *ReadyForQuery) Length() int {
	return 1
}

func (T *ReadyForQuery) ReadFrom(decoder *fed.Decoder) error {
	if decoder.Type() != T.Type() {
		return ErrUnexpectedPacket
	}

	status, err := decoder.Uint8()
	*T = ReadyForQuery(status)
	return err
}

func (T *ReadyForQuery) WriteTo(encoder *fed.Encoder) error {
	return encoder.Uint8(uint8(*T))
}

var _ fed.ReadablePacket = (*ReadyForQuery)(nil)
