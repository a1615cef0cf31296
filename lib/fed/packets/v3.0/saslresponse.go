package packets

import "gfx.cafe/gfx/pgdial/lib/fed"

type SASLResponse []byte

func (T *SASLResponse) Type() fed.Type {
	return TypeSASLResponse
}

func (T *SASLResponse) Length() int {
	return len(*T)
}

func (T *SASLResponse) ReadFrom(decoder *fed.Decoder) (err error) {
	if decoder.Type() != T.Type() {
		return ErrUnexpectedPacket
	}

	*T, err = decoder.Remaining()
	return
}

func (T *SASLResponse) WriteTo(encoder *fed.Encoder) error {
	_, err := encoder.Write(*T)
	return err
}

var _ fed.ReadablePacket = (*SASLResponse)(nil)
