package packets

import (
	"errors"

	"gfx.cafe/gfx/pgdial/lib/fed"
)

var (
	ErrUnexpectedPacket = errors.New("unexpected packet")
	ErrInvalidFormat    = errors.New("invalid packet format")
)

const (
	TypeAuthentication           fed.Type = 'R'
	TypeBackendKeyData           fed.Type = 'K'
	TypeCommandComplete          fed.Type = 'C'
	TypeDataRow                  fed.Type = 'D'
	TypeEmptyQueryResponse       fed.Type = 'I'
	TypeErrorResponse            fed.Type = 'E'
	TypeNegotiateProtocolVersion fed.Type = 'v'
	TypeNoticeResponse           fed.Type = 'N'
	TypeNotificationResponse     fed.Type = 'A'
	TypeParameterStatus          fed.Type = 'S'
	TypePasswordMessage          fed.Type = 'p'
	TypeQuery                    fed.Type = 'Q'
	TypeReadyForQuery            fed.Type = 'Z'
	TypeRowDescription           fed.Type = 'T'
	TypeSASLInitialResponse      fed.Type = 'p'
	TypeSASLResponse             fed.Type = 'p'
	TypeTerminate                fed.Type = 'X'
)
