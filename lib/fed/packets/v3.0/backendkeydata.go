package packets

import "gfx.cafe/gfx/pgdial/lib/fed"

type BackendKeyData fed.BackendKey

func (T *BackendKeyData) Type() fed.Type {
	return TypeBackendKeyData
}

func (T *BackendKeyData) Length() int {
	return 8
}

func (T *BackendKeyData) ReadFrom(decoder *fed.Decoder) (err error) {
	if decoder.Type() != T.Type() {
		return ErrUnexpectedPacket
	}

	if T.ProcessID, err = decoder.Int32(); err != nil {
		return
	}
	T.SecretKey, err = decoder.Int32()
	return
}

func (T *BackendKeyData) WriteTo(encoder *fed.Encoder) error {
	if err := encoder.Int32(T.ProcessID); err != nil {
		return err
	}
	return encoder.Int32(T.SecretKey)
}

var _ fed.ReadablePacket = (*BackendKeyData)(nil)
