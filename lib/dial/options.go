package dial

import (
	"crypto/tls"

	"go.uber.org/zap"

	"gfx.cafe/gfx/pgdial/lib/auth"
	"gfx.cafe/gfx/pgdial/lib/fed"
	packets "gfx.cafe/gfx/pgdial/lib/fed/packets/v3.0"
)

type SSLMode string

const (
	// SSLModeDisable never sends an SSLRequest.
	SSLModeDisable SSLMode = "disable"
	// SSLModePrefer upgrades when the server accepts and falls back to
	// plaintext when it refuses. The zero SSLMode behaves like prefer.
	SSLModePrefer SSLMode = "prefer"
	// SSLModeRequire fails the handshake unless the connection upgrades.
	SSLModeRequire SSLMode = "require"
)

func (T SSLMode) ShouldAttempt() bool {
	return T != SSLModeDisable
}

func (T SSLMode) IsRequired() bool {
	return T == SSLModeRequire
}

type Options struct {
	// Network is "tcp" or "unix".
	Network string
	Address string

	Username string
	// Credentials answers password requests from the server. Capability is
	// discovered per method, see auth.CleartextClient and friends.
	Credentials auth.Credentials
	Database    string
	// Parameters are extra startup parameters (e.g. application_name),
	// sent before the session defaults in the order given.
	Parameters []packets.StartupParameter

	SSLMode   SSLMode
	SSLConfig *tls.Config

	// Middleware is installed on the connection before the handshake, e.g.
	// tracing.NewPacketTrace.
	Middleware []fed.Middleware

	Logger *zap.Logger
}

func (T Options) logger() *zap.Logger {
	if T.Logger != nil {
		return T.Logger
	}
	return zap.NewNop()
}
