package packets

import (
	"gfx.cafe/gfx/pgdial/lib/fed"
	"gfx.cafe/gfx/pgdial/lib/util/slices"
)

type SASLInitialResponse struct {
	Mechanism       string
	InitialResponse []byte
}

func (T *SASLInitialResponse) Type() fed.Type {
	return TypeSASLInitialResponse
}

func (T *SASLInitialResponse) Length() int {
	return len(T.Mechanism) + 1 + 4 + len(T.InitialResponse)
}

func (T *SASLInitialResponse) ReadFrom(decoder *fed.Decoder) (err error) {
	if decoder.Type() != T.Type() {
		return ErrUnexpectedPacket
	}

	if T.Mechanism, err = decoder.String(); err != nil {
		return
	}
	var size int32
	if size, err = decoder.Int32(); err != nil {
		return
	}
	if size == -1 {
		T.InitialResponse = nil
		return
	}
	T.InitialResponse = slices.Resize(T.InitialResponse, int(size))
	err = decoder.Bytes(T.InitialResponse)
	return
}

func (T *SASLInitialResponse) WriteTo(encoder *fed.Encoder) error {
	if err := encoder.String(T.Mechanism); err != nil {
		return err
	}
	size := int32(len(T.InitialResponse))
	if T.InitialResponse == nil {
		size = -1
	}
	if err := encoder.Int32(size); err != nil {
		return err
	}
	_, err := encoder.Write(T.InitialResponse)
	return err
}

var _ fed.ReadablePacket = (*SASLInitialResponse)(nil)
