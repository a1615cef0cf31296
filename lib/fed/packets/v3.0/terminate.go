package packets

import "gfx.cafe/gfx/pgdial/lib/fed"

type Terminate struct{}

func (T *Terminate) Type() fed.Type {
	return TypeTerminate
}

func (T *Terminate) Length() int {
	return 0
}

func (T *Terminate) ReadFrom(decoder *fed.Decoder) error {
	if decoder.Type() != T.Type() {
		return ErrUnexpectedPacket
	}
	return nil
}

func (T *Terminate) WriteTo(encoder *fed.Encoder) error {
	return nil
}

var _ fed.ReadablePacket = (*Terminate)(nil)
