package dial

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"gfx.cafe/gfx/pgdial/lib/auth"
	"gfx.cafe/gfx/pgdial/lib/auth/sasl"
	"gfx.cafe/gfx/pgdial/lib/fed"
	packets "gfx.cafe/gfx/pgdial/lib/fed/packets/v3.0"
	"gfx.cafe/gfx/pgdial/lib/perror"
	"gfx.cafe/gfx/pgdial/lib/util/strutil"
)

const (
	protocolMajor int16 = 3
	protocolMinor int16 = 0
)

// Result is everything a successful handshake learns about the session.
type Result struct {
	Parameters map[strutil.CIString]string
	BackendKey fed.BackendKey

	// AuthMethod names the method the server settled on, for reporting. It
	// is filled in even when the handshake fails after method selection.
	AuthMethod string
}

// Handshake runs the startup sequence on conn: optional TLS negotiation,
// the startup packet, authentication, and session info collection, leaving
// the connection ready for queries.
func Handshake(ctx context.Context, conn *fed.Conn, options Options) (Result, error) {
	var result Result

	if err := negotiateSSL(ctx, conn, options); err != nil {
		return result, err
	}
	if err := sendStartup(ctx, conn, options); err != nil {
		return result, err
	}
	if err := authenticate(ctx, conn, options, &result); err != nil {
		return result, err
	}
	return result, readSessionInfo(ctx, conn, options, &result)
}

func negotiateSSL(ctx context.Context, conn *fed.Conn, options Options) error {
	if !options.SSLMode.ShouldAttempt() {
		return nil
	}

	request := &packets.Startup{
		Mode: &packets.StartupControl{
			Mode: &packets.StartupControlSSL{},
		},
	}
	if err := conn.WritePacket(ctx, request); err != nil {
		return ioError(err)
	}
	response, err := conn.ReadByte(ctx)
	if err != nil {
		return ioError(err)
	}

	switch response {
	case 'S':
		if options.Network == "unix" {
			return newError(KindTLS, errors.New("tls is not supported on unix sockets"))
		}
		config := options.SSLConfig
		if config == nil {
			// matches the libpq default for prefer/require: encrypt
			// without authenticating the server
			config = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		}
		if err = conn.EnableSSL(ctx, config, true); err != nil {
			return newError(KindTLS, err)
		}
		return nil
	case 'N':
		if options.SSLMode.IsRequired() {
			return newError(KindTLS, errors.New("server refused tls"))
		}
		return nil
	default:
		return newError(KindProtocol, fmt.Errorf("unexpected response to ssl request: %q", response))
	}
}

func sendStartup(ctx context.Context, conn *fed.Conn, options Options) error {
	if options.Username == "" {
		return newError(KindConfig, errors.New("username is required"))
	}

	parameters := make([]packets.StartupParameter, 0, len(options.Parameters)+4)
	for _, parameter := range options.Parameters {
		if parameter.Key == "" {
			return newError(KindEncode, errors.New("startup parameter key is empty"))
		}
		parameters = append(parameters, parameter)
	}
	parameters = append(parameters,
		packets.StartupParameter{Key: "client_encoding", Value: "UTF8"},
		packets.StartupParameter{Key: "timezone", Value: "GMT"},
		packets.StartupParameter{Key: "user", Value: options.Username},
	)
	if options.Database != "" {
		parameters = append(parameters, packets.StartupParameter{
			Key:   "database",
			Value: options.Database,
		})
	}
	for _, parameter := range parameters {
		if strings.ContainsRune(parameter.Key, 0) || strings.ContainsRune(parameter.Value, 0) {
			return newError(KindEncode, fmt.Errorf("startup parameter %q contains a nul byte", parameter.Key))
		}
	}

	startup := &packets.Startup{
		Mode: &packets.StartupVersion3{
			MinorVersion: protocolMinor,
			Parameters:   parameters,
		},
	}
	if err := conn.WritePacket(ctx, startup); err != nil {
		return ioError(err)
	}
	return nil
}

func authenticate(ctx context.Context, conn *fed.Conn, options Options, result *Result) error {
	packet, err := readHandshakePacket(ctx, conn)
	if err != nil {
		return err
	}

	var request packets.Authentication
	switch packet.Type() {
	case packets.TypeAuthentication:
		if err = fed.ToConcrete(&request, packet); err != nil {
			return newError(KindProtocol, err)
		}
	case packets.TypeErrorResponse:
		return serverError(packet, KindServer)
	default:
		return unexpectedPacket(packet)
	}

	switch mode := request.Mode.(type) {
	case *packets.AuthenticationOk:
		result.AuthMethod = "trust"
		return nil
	case *packets.AuthenticationCleartextPassword:
		result.AuthMethod = "cleartext"
		client, err := credentialsAs[auth.CleartextClient](options)
		if err != nil {
			return err
		}
		password := packets.PasswordMessage(client.EncodeCleartext())
		if err = conn.WritePacket(ctx, &password); err != nil {
			return ioError(err)
		}
		return readAuthCompletion(ctx, conn)
	case *packets.AuthenticationMD5Password:
		result.AuthMethod = "md5"
		client, err := credentialsAs[auth.MD5Client](options)
		if err != nil {
			return err
		}
		password := packets.PasswordMessage(client.EncodeMD5(mode.Salt))
		if err = conn.WritePacket(ctx, &password); err != nil {
			return ioError(err)
		}
		return readAuthCompletion(ctx, conn)
	case *packets.AuthenticationSASL:
		if err := authenticateSASL(ctx, conn, options, []sasl.Mechanism(*mode), result); err != nil {
			return err
		}
		return readAuthCompletion(ctx, conn)
	default:
		return newError(
			KindUnsupportedAuthMethod,
			fmt.Errorf("%w: authentication mode %d", auth.ErrMethodNotSupported, request.Mode.AuthenticationMode()),
		)
	}
}

func authenticateSASL(
	ctx context.Context,
	conn *fed.Conn,
	options Options,
	mechanisms []sasl.Mechanism,
	result *Result,
) error {
	client, err := credentialsAs[auth.SASLClient](options)
	if err != nil {
		return err
	}

	var material sasl.BindingMaterial
	if binder, ok := conn.Codec().(interface {
		ChannelBinding() (string, []byte)
	}); ok && conn.SSL() {
		material.Name, material.Data = binder.ChannelBinding()
	}

	engine, err := client.EncodeSASL(mechanisms, material)
	if err != nil {
		return newError(KindUnsupportedAuthMethod, err)
	}
	result.AuthMethod = strings.ToLower(engine.Name())

	initial, err := engine.InitialResponse()
	if err != nil {
		return newError(KindAuthentication, err)
	}
	if err = conn.WritePacket(ctx, &packets.SASLInitialResponse{
		Mechanism:       engine.Name(),
		InitialResponse: initial,
	}); err != nil {
		return ioError(err)
	}

	challenge, err := readSASLChallenge[*packets.AuthenticationSASLContinue](ctx, conn)
	if err != nil {
		return err
	}
	response, err := engine.Continue(*challenge)
	if err != nil {
		return newError(KindAuthentication, err)
	}
	saslResponse := packets.SASLResponse(response)
	if err = conn.WritePacket(ctx, &saslResponse); err != nil {
		return ioError(err)
	}

	final, err := readSASLChallenge[*packets.AuthenticationSASLFinal](ctx, conn)
	if err != nil {
		return err
	}
	if err = engine.Final(*final); err != nil {
		return newError(KindAuthentication, err)
	}
	return nil
}

func readSASLChallenge[M packets.AuthenticationMode](ctx context.Context, conn *fed.Conn) (M, error) {
	var challenge M

	packet, err := readHandshakePacket(ctx, conn)
	if err != nil {
		return challenge, err
	}

	switch packet.Type() {
	case packets.TypeAuthentication:
		var request packets.Authentication
		if err = fed.ToConcrete(&request, packet); err != nil {
			return challenge, newError(KindProtocol, err)
		}
		mode, ok := request.Mode.(M)
		if !ok {
			return challenge, newError(
				KindProtocol,
				fmt.Errorf("unexpected authentication mode %d", request.Mode.AuthenticationMode()),
			)
		}
		return mode, nil
	case packets.TypeErrorResponse:
		return challenge, serverError(packet, KindAuthentication)
	default:
		return challenge, unexpectedPacket(packet)
	}
}

// readAuthCompletion expects AuthenticationOk and nothing else. A server
// that asks for a second method after accepting a password is broken.
func readAuthCompletion(ctx context.Context, conn *fed.Conn) error {
	packet, err := readHandshakePacket(ctx, conn)
	if err != nil {
		return err
	}

	switch packet.Type() {
	case packets.TypeAuthentication:
		var request packets.Authentication
		if err = fed.ToConcrete(&request, packet); err != nil {
			return newError(KindProtocol, err)
		}
		if _, ok := request.Mode.(*packets.AuthenticationOk); !ok {
			return newError(
				KindProtocol,
				fmt.Errorf("expected authentication ok, got mode %d", request.Mode.AuthenticationMode()),
			)
		}
		return nil
	case packets.TypeErrorResponse:
		return serverError(packet, KindAuthentication)
	default:
		return unexpectedPacket(packet)
	}
}

func readSessionInfo(ctx context.Context, conn *fed.Conn, options Options, result *Result) error {
	logger := options.logger()
	result.Parameters = make(map[strutil.CIString]string)
	var haveKey bool

	for {
		packet, err := readHandshakePacket(ctx, conn)
		if err != nil {
			return err
		}

		switch packet.Type() {
		case packets.TypeParameterStatus:
			var status packets.ParameterStatus
			if err = fed.ToConcrete(&status, packet); err != nil {
				return newError(KindProtocol, err)
			}
			// servers may report the same parameter more than once, the
			// last value wins
			result.Parameters[strutil.MakeCIString(status.Key)] = status.Value
		case packets.TypeBackendKeyData:
			var keyData packets.BackendKeyData
			if err = fed.ToConcrete(&keyData, packet); err != nil {
				return newError(KindProtocol, err)
			}
			result.BackendKey = fed.BackendKey(keyData)
			haveKey = true
		case packets.TypeNoticeResponse:
			var notice packets.NoticeResponse
			if err = fed.ToConcrete(&notice, packet); err != nil {
				return newError(KindProtocol, err)
			}
			response := perror.FromNotice(&notice)
			logger.Debug("server notice",
				zap.String("severity", string(response.Severity())),
				zap.String("message", response.Message()),
			)
		case packets.TypeNegotiateProtocolVersion:
			var negotiate packets.NegotiateProtocolVersion
			if err = fed.ToConcrete(&negotiate, packet); err != nil {
				return newError(KindProtocol, err)
			}
			return newError(KindProtocol, fmt.Errorf(
				"server downgraded the protocol to 3.%d (%d unrecognized options)",
				negotiate.MinorProtocolVersion,
				len(negotiate.UnrecognizedOptions),
			))
		case packets.TypeErrorResponse:
			return serverError(packet, KindServer)
		case packets.TypeReadyForQuery:
			if !haveKey {
				return newError(KindMissingKeyData, nil)
			}
			return nil
		default:
			return unexpectedPacket(packet)
		}
	}
}

func readHandshakePacket(ctx context.Context, conn *fed.Conn) (fed.Packet, error) {
	packet, err := conn.ReadPacket(ctx, true)
	if err != nil {
		return nil, ioError(err)
	}
	return packet, nil
}

func credentialsAs[C auth.Credentials](options Options) (C, error) {
	var client C
	if options.Credentials == nil {
		return client, newError(KindMissingCredentials, nil)
	}
	client, ok := options.Credentials.(C)
	if !ok {
		return client, newError(KindUnsupportedAuthMethod, auth.ErrMethodNotSupported)
	}
	return client, nil
}

func serverError(packet fed.Packet, kind ErrorKind) error {
	var response packets.ErrorResponse
	if err := fed.ToConcrete(&response, packet); err != nil {
		return newError(KindProtocol, err)
	}
	return newError(kind, &ServerError{Response: perror.FromPacket(&response)})
}

func unexpectedPacket(packet fed.Packet) error {
	return newError(KindProtocol, fmt.Errorf("unexpected packet %q", byte(packet.Type())))
}

func ioError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return newError(KindDisconnected, err)
	}
	return newError(KindIO, err)
}
