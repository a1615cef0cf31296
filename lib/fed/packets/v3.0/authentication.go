package packets

import "gfx.cafe/gfx/pgdial/lib/fed"

// AuthenticationMode is the discriminated payload of an Authentication
// request.
type AuthenticationMode interface {
	AuthenticationMode() int32

	Length() int
	ReadFrom(decoder *fed.Decoder) error
	WriteTo(encoder *fed.Encoder) error
}

type Authentication struct {
	Mode AuthenticationMode
}

func (T *Authentication) Type() fed.Type {
	return TypeAuthentication
}

func (T *Authentication) Length() int {
	return 4 + T.Mode.Length()
}

func (T *Authentication) ReadFrom(decoder *fed.Decoder) error {
	if decoder.Type() != T.Type() {
		return ErrUnexpectedPacket
	}

	mode, err := decoder.Int32()
	if err != nil {
		return err
	}

	switch mode {
	case 0:
		T.Mode = new(AuthenticationOk)
	case 2:
		T.Mode = new(AuthenticationKerberosV5)
	case 3:
		T.Mode = new(AuthenticationCleartextPassword)
	case 5:
		T.Mode = new(AuthenticationMD5Password)
	case 6:
		T.Mode = new(AuthenticationSCMCredential)
	case 7:
		T.Mode = new(AuthenticationGSS)
	case 8:
		T.Mode = new(AuthenticationGSSContinue)
	case 9:
		T.Mode = new(AuthenticationSSPI)
	case 10:
		T.Mode = new(AuthenticationSASL)
	case 11:
		T.Mode = new(AuthenticationSASLContinue)
	case 12:
		T.Mode = new(AuthenticationSASLFinal)
	default:
		return ErrInvalidFormat
	}

	return T.Mode.ReadFrom(decoder)
}

func (T *Authentication) WriteTo(encoder *fed.Encoder) error {
	if err := encoder.Int32(T.Mode.AuthenticationMode()); err != nil {
		return err
	}
	return T.Mode.WriteTo(encoder)
}

var _ fed.ReadablePacket = (*Authentication)(nil)

type AuthenticationOk struct{}

func (*AuthenticationOk) AuthenticationMode() int32 {
	return 0
}

func (*AuthenticationOk) Length() int {
	return 0
}

func (*AuthenticationOk) ReadFrom(decoder *fed.Decoder) error {
	return nil
}

func (*AuthenticationOk) WriteTo(encoder *fed.Encoder) error {
	return nil
}

type AuthenticationKerberosV5 struct{}

func (*AuthenticationKerberosV5) AuthenticationMode() int32 {
	return 2
}

func (*AuthenticationKerberosV5) Length() int {
	return 0
}

func (*AuthenticationKerberosV5) ReadFrom(decoder *fed.Decoder) error {
	return nil
}

func (*AuthenticationKerberosV5) WriteTo(encoder *fed.Encoder) error {
	return nil
}

type AuthenticationCleartextPassword struct{}

func (*AuthenticationCleartextPassword) AuthenticationMode() int32 {
	return 3
}

func (*AuthenticationCleartextPassword) Length() int {
	return 0
}

func (*AuthenticationCleartextPassword) ReadFrom(decoder *fed.Decoder) error {
	return nil
}

func (*AuthenticationCleartextPassword) WriteTo(encoder *fed.Encoder) error {
	return nil
}

type AuthenticationMD5Password struct {
	Salt [4]byte
}

func (*AuthenticationMD5Password) AuthenticationMode() int32 {
	return 5
}

func (T *AuthenticationMD5Password) Length() int {
	return 4
}

func (T *AuthenticationMD5Password) ReadFrom(decoder *fed.Decoder) error {
	return decoder.Bytes(T.Salt[:])
}

func (T *AuthenticationMD5Password) WriteTo(encoder *fed.Encoder) error {
	_, err := encoder.Write(T.Salt[:])
	return err
}

type AuthenticationSCMCredential struct{}

func (*AuthenticationSCMCredential) AuthenticationMode() int32 {
	return 6
}

func (*AuthenticationSCMCredential) Length() int {
	return 0
}

func (*AuthenticationSCMCredential) ReadFrom(decoder *fed.Decoder) error {
	return nil
}

func (*AuthenticationSCMCredential) WriteTo(encoder *fed.Encoder) error {
	return nil
}

type AuthenticationGSS struct{}

func (*AuthenticationGSS) AuthenticationMode() int32 {
	return 7
}

func (*AuthenticationGSS) Length() int {
	return 0
}

func (*AuthenticationGSS) ReadFrom(decoder *fed.Decoder) error {
	return nil
}

func (*AuthenticationGSS) WriteTo(encoder *fed.Encoder) error {
	return nil
}

type AuthenticationGSSContinue []byte

func (*AuthenticationGSSContinue) AuthenticationMode() int32 {
	return 8
}

func (T *AuthenticationGSSContinue) Length() int {
	return len(*T)
}

func (T *AuthenticationGSSContinue) ReadFrom(decoder *fed.Decoder) (err error) {
	*T, err = decoder.Remaining()
	return
}

func (T *AuthenticationGSSContinue) WriteTo(encoder *fed.Encoder) error {
	_, err := encoder.Write(*T)
	return err
}

type AuthenticationSSPI struct{}

func (*AuthenticationSSPI) AuthenticationMode() int32 {
	return 9
}

func (*AuthenticationSSPI) Length() int {
	return 0
}

func (*AuthenticationSSPI) ReadFrom(decoder *fed.Decoder) error {
	return nil
}

func (*AuthenticationSSPI) WriteTo(encoder *fed.Encoder) error {
	return nil
}

// AuthenticationSASL lists the server's advertised mechanisms.
type AuthenticationSASL []string

func (*AuthenticationSASL) AuthenticationMode() int32 {
	return 10
}

func (T *AuthenticationSASL) Length() int {
	length := 1
	for _, mechanism := range *T {
		length += len(mechanism) + 1
	}
	return length
}

func (T *AuthenticationSASL) ReadFrom(decoder *fed.Decoder) error {
	*T = (*T)[:0]
	for {
		mechanism, err := decoder.String()
		if err != nil {
			return err
		}
		if mechanism == "" {
			return nil
		}
		*T = append(*T, mechanism)
	}
}

func (T *AuthenticationSASL) WriteTo(encoder *fed.Encoder) error {
	for _, mechanism := range *T {
		if err := encoder.String(mechanism); err != nil {
			return err
		}
	}
	return encoder.Uint8(0)
}

type AuthenticationSASLContinue []byte

func (*AuthenticationSASLContinue) AuthenticationMode() int32 {
	return 11
}

func (T *AuthenticationSASLContinue) Length() int {
	return len(*T)
}

func (T *AuthenticationSASLContinue) ReadFrom(decoder *fed.Decoder) (err error) {
	*T, err = decoder.Remaining()
	return
}

func (T *AuthenticationSASLContinue) WriteTo(encoder *fed.Encoder) error {
	_, err := encoder.Write(*T)
	return err
}

type AuthenticationSASLFinal []byte

func (*AuthenticationSASLFinal) AuthenticationMode() int32 {
	return 12
}

func (T *AuthenticationSASLFinal) Length() int {
	return len(*T)
}

func (T *AuthenticationSASLFinal) ReadFrom(decoder *fed.Decoder) (err error) {
	*T, err = decoder.Remaining()
	return
}

func (T *AuthenticationSASLFinal) WriteTo(encoder *fed.Encoder) error {
	_, err := encoder.Write(*T)
	return err
}
