package tracing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gfx.cafe/gfx/pgdial/lib/fed"
	packets "gfx.cafe/gfx/pgdial/lib/fed/packets/v3.0"
)

type packetTrace struct{}

// NewPacketTrace returns a middleware that logs every packet crossing the
// connection. Meant for debugging, it is not installed by default.
func NewPacketTrace() fed.Middleware {
	return &packetTrace{}
}

func (t *packetTrace) ReadPacket(ctx context.Context, packet fed.Packet) (fed.Packet, error) {
	logPacket("Read ", packet)
	return packet, nil
}

func (t *packetTrace) WritePacket(ctx context.Context, packet fed.Packet) (fed.Packet, error) {
	logPacket("Write", packet)
	return packet, nil
}

var packetTypeNames = map[fed.Type]string{
	packets.TypeAuthentication:           "Authentication",
	packets.TypeBackendKeyData:           "BackendKeyData",
	packets.TypeParameterStatus:          "ParameterStatus",
	packets.TypeReadyForQuery:            "ReadyForQuery",
	packets.TypeErrorResponse:            "ErrorResponse",
	packets.TypeNoticeResponse:           "NoticeResponse",
	packets.TypeNotificationResponse:     "NotificationResponse",
	packets.TypeNegotiateProtocolVersion: "NegotiateProtocolVersion",
	packets.TypePasswordMessage:          "PasswordMessage",
	packets.TypeTerminate:                "Terminate",
}

func getPacketTypeName(t fed.Type) string {
	if str, ok := packetTypeNames[t]; ok {
		return str
	}

	return "<unknown type>"
}

func logPacket(msg string, packet fed.Packet) {
	switch p := packet.(type) {
	case *packets.ParameterStatus:
		logNamed(msg, packet, "key", p.Key, "value", p.Value)
	case *packets.ReadyForQuery:
		logNamed(msg, packet, "status", string(rune(*p)))
	case *packets.ErrorResponse:
		var message string
		for _, field := range *p {
			if field.Code == 'M' {
				message = field.Value
				break
			}
		}
		logNamed(msg, packet, "message", message)
	default:
		logNamed(msg, packet)
	}
}

func logNamed(msg string, packet fed.Packet, args ...any) {
	typeName := getPacketTypeName(packet.Type())

	args = append([]any{
		"type", packet.Type(),
		"typename", typeName,
		"length", packet.Length(),
	}, args...)
	slog.Info(
		fmt.Sprintf("%s: %s", msg, strings.ToUpper(typeName)),
		args...)
}
