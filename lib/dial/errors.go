package dial

import (
	"fmt"

	"gfx.cafe/gfx/pgdial/lib/perror"
)

type ErrorKind uint8

const (
	KindIO ErrorKind = iota
	KindDisconnected
	KindProtocol
	KindTLS
	KindConfig
	KindMissingCredentials
	KindUnsupportedAuthMethod
	KindAuthentication
	KindServer
	KindMissingKeyData
	KindEncode
)

func (T ErrorKind) String() string {
	switch T {
	case KindIO:
		return "io error"
	case KindDisconnected:
		return "server disconnected"
	case KindProtocol:
		return "protocol violation"
	case KindTLS:
		return "tls error"
	case KindConfig:
		return "invalid configuration"
	case KindMissingCredentials:
		return "credentials required"
	case KindUnsupportedAuthMethod:
		return "unsupported auth method"
	case KindAuthentication:
		return "authentication failed"
	case KindServer:
		return "server error"
	case KindMissingKeyData:
		return "server did not send backend key data"
	case KindEncode:
		return "encode error"
	default:
		return "unknown error"
	}
}

// Error tags every failure mode of the handshake with a kind, so callers can
// tell a refused password from a dead socket.
type Error struct {
	Kind  ErrorKind
	Cause error
}

func (T *Error) Error() string {
	if T.Cause == nil {
		return T.Kind.String()
	}
	return T.Kind.String() + ": " + T.Cause.Error()
}

func (T *Error) Unwrap() error {
	return T.Cause
}

func newError(kind ErrorKind, cause error) *Error {
	return &Error{
		Kind:  kind,
		Cause: cause,
	}
}

// ServerError carries an ErrorResponse the server sent during the handshake.
type ServerError struct {
	Response perror.Error
}

func (T *ServerError) Error() string {
	return fmt.Sprintf(
		"%s: %s (SQLSTATE %s)",
		T.Response.Severity(),
		T.Response.Message(),
		T.Response.Code(),
	)
}

// IsAuthenticationFailure reports whether the server rejected the role or
// its credentials, rather than failing for some other reason.
func (T *ServerError) IsAuthenticationFailure() bool {
	switch T.Response.Code() {
	case perror.InvalidPassword, perror.InvalidAuthorizationSpecification:
		return true
	}
	return false
}
