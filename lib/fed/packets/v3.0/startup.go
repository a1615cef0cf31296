package packets

import "gfx.cafe/gfx/pgdial/lib/fed"

// StartupMode is the discriminated payload of the untyped startup packet,
// keyed on the most significant half of the version word.
type StartupMode interface {
	StartupMode() int16

	Length() int
	ReadFrom(decoder *fed.Decoder) error
	WriteTo(encoder *fed.Encoder) error
}

type Startup struct {
	Mode StartupMode
}

func (T *Startup) Type() fed.Type {
	return 0
}

func (T *Startup) Length() int {
	return 2 + T.Mode.Length()
}

func (T *Startup) ReadFrom(decoder *fed.Decoder) error {
	if decoder.Type() != T.Type() {
		return ErrUnexpectedPacket
	}

	major, err := decoder.Int16()
	if err != nil {
		return err
	}

	switch major {
	case 3:
		T.Mode = new(StartupVersion3)
	case 1234:
		T.Mode = new(StartupControl)
	default:
		return ErrInvalidFormat
	}

	return T.Mode.ReadFrom(decoder)
}

func (T *Startup) WriteTo(encoder *fed.Encoder) error {
	if err := encoder.Int16(T.Mode.StartupMode()); err != nil {
		return err
	}
	return T.Mode.WriteTo(encoder)
}

var _ fed.ReadablePacket = (*Startup)(nil)

type StartupParameter struct {
	Key   string
	Value string
}

// StartupVersion3 is a protocol 3.x startup message. Parameter order is
// preserved on the wire.
type StartupVersion3 struct {
	MinorVersion int16
	Parameters   []StartupParameter
}

func (*StartupVersion3) StartupMode() int16 {
	return 3
}

func (T *StartupVersion3) Length() int {
	length := 2
	for _, parameter := range T.Parameters {
		length += len(parameter.Key) + 1
		length += len(parameter.Value) + 1
	}
	length += 1
	return length
}

func (T *StartupVersion3) ReadFrom(decoder *fed.Decoder) (err error) {
	if T.MinorVersion, err = decoder.Int16(); err != nil {
		return
	}
	T.Parameters = T.Parameters[:0]
	for {
		var key string
		if key, err = decoder.String(); err != nil {
			return
		}
		if key == "" {
			return
		}
		var value string
		if value, err = decoder.String(); err != nil {
			return
		}
		T.Parameters = append(T.Parameters, StartupParameter{
			Key:   key,
			Value: value,
		})
	}
}

func (T *StartupVersion3) WriteTo(encoder *fed.Encoder) error {
	if err := encoder.Int16(T.MinorVersion); err != nil {
		return err
	}
	for _, parameter := range T.Parameters {
		if err := encoder.String(parameter.Key); err != nil {
			return err
		}
		if err := encoder.String(parameter.Value); err != nil {
			return err
		}
	}
	return encoder.Uint8(0)
}

// StartupControlMode is the second half of a 1234.xxxx control word.
type StartupControlMode interface {
	StartupControlMode() int16

	Length() int
	ReadFrom(decoder *fed.Decoder) error
	WriteTo(encoder *fed.Encoder) error
}

type StartupControl struct {
	Mode StartupControlMode
}

func (*StartupControl) StartupMode() int16 {
	return 1234
}

func (T *StartupControl) Length() int {
	return 2 + T.Mode.Length()
}

func (T *StartupControl) ReadFrom(decoder *fed.Decoder) error {
	minor, err := decoder.Int16()
	if err != nil {
		return err
	}

	switch minor {
	case 5678:
		T.Mode = new(StartupControlCancel)
	case 5679:
		T.Mode = new(StartupControlSSL)
	case 5680:
		T.Mode = new(StartupControlGSSAPI)
	default:
		return ErrInvalidFormat
	}

	return T.Mode.ReadFrom(decoder)
}

func (T *StartupControl) WriteTo(encoder *fed.Encoder) error {
	if err := encoder.Int16(T.Mode.StartupControlMode()); err != nil {
		return err
	}
	return T.Mode.WriteTo(encoder)
}

type StartupControlCancel fed.BackendKey

func (*StartupControlCancel) StartupControlMode() int16 {
	return 5678
}

func (T *StartupControlCancel) Length() int {
	return 8
}

func (T *StartupControlCancel) ReadFrom(decoder *fed.Decoder) (err error) {
	if T.ProcessID, err = decoder.Int32(); err != nil {
		return
	}
	T.SecretKey, err = decoder.Int32()
	return
}

func (T *StartupControlCancel) WriteTo(encoder *fed.Encoder) error {
	if err := encoder.Int32(T.ProcessID); err != nil {
		return err
	}
	return encoder.Int32(T.SecretKey)
}

type StartupControlSSL struct{}

func (*StartupControlSSL) StartupControlMode() int16 {
	return 5679
}

func (*StartupControlSSL) Length() int {
	return 0
}

func (*StartupControlSSL) ReadFrom(decoder *fed.Decoder) error {
	return nil
}

func (*StartupControlSSL) WriteTo(encoder *fed.Encoder) error {
	return nil
}

type StartupControlGSSAPI struct{}

func (*StartupControlGSSAPI) StartupControlMode() int16 {
	return 5680
}

func (*StartupControlGSSAPI) Length() int {
	return 0
}

func (*StartupControlGSSAPI) ReadFrom(decoder *fed.Decoder) error {
	return nil
}

func (*StartupControlGSSAPI) WriteTo(encoder *fed.Encoder) error {
	return nil
}
