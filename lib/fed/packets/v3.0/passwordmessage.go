package packets

import "gfx.cafe/gfx/pgdial/lib/fed"

type PasswordMessage string

func (T *PasswordMessage) Type() fed.Type {
	return TypePasswordMessage
}

func (T *PasswordMessage) Length() int {
	return len(*T) + 1
}

func (T *PasswordMessage) ReadFrom(decoder *fed.Decoder) error {
	if decoder.Type() != T.Type() {
		return ErrUnexpectedPacket
	}

	password, err := decoder.String()
	*T = PasswordMessage(password)
	return err
}

func (T *PasswordMessage) WriteTo(encoder *fed.Encoder) error {
	return encoder.String(string(*T))
}

var _ fed.ReadablePacket = (*PasswordMessage)(nil)
