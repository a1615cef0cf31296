package packets

import "gfx.cafe/gfx/pgdial/lib/fed"

type NoticeResponseField struct {
	Code  uint8
	Value string
}

type NoticeResponse []NoticeResponseField

func (T *NoticeResponse) Type() fed.Type {
	return TypeNoticeResponse
}

func (T *NoticeResponse) Length() int {
	length := 1
	for _, field := range *T {
		length += 1 + len(field.Value) + 1
	}
	return length
}

func (T *NoticeResponse) ReadFrom(decoder *fed.Decoder) error {
	if decoder.Type() != T.Type() {
		return ErrUnexpectedPacket
	}

	*T = (*T)[:0]
	for {
		code, err := decoder.Uint8()
		if err != nil {
			return err
		}
		if code == 0 {
			return nil
		}
		value, err := decoder.String()
		if err != nil {
			return err
		}
		*T = append(*T, NoticeResponseField{
			Code:  code,
			Value: value,
		})
	}
}

func (T *NoticeResponse) WriteTo(encoder *fed.Encoder) error {
	for _, field := range *T {
		if err := encoder.Uint8(field.Code); err != nil {
			return err
		}
		if err := encoder.String(field.Value); err != nil {
			return err
		}
	}
	return encoder.Uint8(0)
}

var _ fed.ReadablePacket = (*NoticeResponse)(nil)
