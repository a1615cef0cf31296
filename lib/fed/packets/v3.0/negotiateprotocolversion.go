package packets

import (
	"gfx.cafe/gfx/pgdial/lib/fed"
	"gfx.cafe/gfx/pgdial/lib/util/slices"
)

type NegotiateProtocolVersion struct {
	MinorProtocolVersion int32
	UnrecognizedOptions  []string
}

func (T *NegotiateProtocolVersion) Type() fed.Type {
	return TypeNegotiateProtocolVersion
}

func (T *NegotiateProtocolVersion) Length() int {
	length := 4 + 4
	for _, option := range T.UnrecognizedOptions {
		length += len(option) + 1
	}
	return length
}

func (T *NegotiateProtocolVersion) ReadFrom(decoder *fed.Decoder) (err error) {
	if decoder.Type() != T.Type() {
		return ErrUnexpectedPacket
	}

	if T.MinorProtocolVersion, err = decoder.Int32(); err != nil {
		return
	}
	var count uint32
	if count, err = decoder.Uint32(); err != nil {
		return
	}
	// each option is at least a NUL, so count is bounded by the body
	if int64(count) > int64(decoder.Length()-decoder.Position()) {
		return ErrInvalidFormat
	}
	T.UnrecognizedOptions = slices.Resize(T.UnrecognizedOptions, int(count))
	for i := range T.UnrecognizedOptions {
		if T.UnrecognizedOptions[i], err = decoder.String(); err != nil {
			return
		}
	}
	return
}

func (T *NegotiateProtocolVersion) WriteTo(encoder *fed.Encoder) error {
	if err := encoder.Int32(T.MinorProtocolVersion); err != nil {
		return err
	}
	if err := encoder.Uint32(uint32(len(T.UnrecognizedOptions))); err != nil {
		return err
	}
	for _, option := range T.UnrecognizedOptions {
		if err := encoder.String(option); err != nil {
			return err
		}
	}
	return nil
}

var _ fed.ReadablePacket = (*NegotiateProtocolVersion)(nil)
