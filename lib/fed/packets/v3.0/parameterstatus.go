package packets

import "gfx.cafe/gfx/pgdial/lib/fed"

type ParameterStatus struct {
	Key   string
	Value string
}

func (T *ParameterStatus) Type() fed.Type {
	return TypeParameterStatus
}

func (T *ParameterStatus) Length() int {
	return len(T.Key) + 1 + len(T.Value) + 1
}

func (T *ParameterStatus) ReadFrom(decoder *fed.Decoder) (err error) {
	if decoder.Type() != T.Type() {
		return ErrUnexpectedPacket
	}

	if T.Key, err = decoder.String(); err != nil {
		return
	}
	T.Value, err = decoder.String()
	return
}

func (T *ParameterStatus) WriteTo(encoder *fed.Encoder) error {
	if err := encoder.String(T.Key); err != nil {
		return err
	}
	return encoder.String(T.Value)
}

var _ fed.ReadablePacket = (*ParameterStatus)(nil)
