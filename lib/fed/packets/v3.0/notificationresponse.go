package packets

import "gfx.cafe/gfx/pgdial/lib/fed"

type NotificationResponse struct {
	ProcessID int32
	Channel   string
	Payload   string
}

func (T *NotificationResponse) Type() fed.Type {
	return TypeNotificationResponse
}

func (T *NotificationResponse) Length() int {
	return 4 + len(T.Channel) + 1 + len(T.Payload) + 1
}

func (T *NotificationResponse) ReadFrom(decoder *fed.Decoder) (err error) {
	if decoder.Type() != T.Type() {
		return ErrUnexpectedPacket
	}

	if T.ProcessID, err = decoder.Int32(); err != nil {
		return
	}
	if T.Channel, err = decoder.String(); err != nil {
		return
	}
	T.Payload, err = decoder.String()
	return
}

func (T *NotificationResponse) WriteTo(encoder *fed.Encoder) error {
	if err := encoder.Int32(T.ProcessID); err != nil {
		return err
	}
	if err := encoder.String(T.Channel); err != nil {
		return err
	}
	return encoder.String(T.Payload)
}

var _ fed.ReadablePacket = (*NotificationResponse)(nil)
