package scram

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/minio/sha256-simd"
	"github.com/xdg-go/stringprep"
	"golang.org/x/crypto/pbkdf2"

	"gfx.cafe/gfx/pgdial/lib/auth/sasl"
)

const nonceLength = 18

var (
	ErrUnsupportedMechanism    = errors.New("unsupported mechanism")
	ErrInvalidServerMessage    = errors.New("invalid server message")
	ErrInvalidServerNonce      = errors.New("server nonce does not extend client nonce")
	ErrServerSignatureMismatch = errors.New("server signature mismatch")
)

// Client is the client half of a SCRAM-SHA-256 conversation, with or without
// channel binding (RFC 5802, RFC 7677).
type Client struct {
	mechanism sasl.Mechanism
	username  string
	password  string
	binding   sasl.Binding

	clientNonce string

	clientFirstBare string
	serverFirst     string

	expectedServerSignature []byte
}

func NewClient(mechanism sasl.Mechanism, username, password string, binding sasl.Binding) (*Client, error) {
	switch mechanism {
	case sasl.ScramSHA256, sasl.ScramSHA256Plus:
	default:
		return nil, ErrUnsupportedMechanism
	}

	var nonce [nonceLength]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}

	return &Client{
		mechanism:   mechanism,
		username:    username,
		password:    password,
		binding:     binding,
		clientNonce: base64.StdEncoding.EncodeToString(nonce[:]),
	}, nil
}

func (T *Client) Name() sasl.Mechanism {
	return T.mechanism
}

func (T *Client) gs2Header() string {
	switch T.binding.Mode {
	case sasl.BindingRequired:
		return "p=" + T.binding.Name + ",,"
	case sasl.BindingNotRequested:
		return "y,,"
	default:
		return "n,,"
	}
}

func escapeUsername(username string) string {
	username = strings.ReplaceAll(username, "=", "=3D")
	return strings.ReplaceAll(username, ",", "=2C")
}

func (T *Client) InitialResponse() ([]byte, error) {
	T.clientFirstBare = "n=" + escapeUsername(T.username) + ",r=" + T.clientNonce
	return []byte(T.gs2Header() + T.clientFirstBare), nil
}

func (T *Client) Continue(challenge []byte) ([]byte, error) {
	T.serverFirst = string(challenge)

	var serverNonce, encodedSalt, iterationCount string
	for _, attribute := range strings.Split(T.serverFirst, ",") {
		if len(attribute) < 2 || attribute[1] != '=' {
			return nil, ErrInvalidServerMessage
		}
		switch attribute[0] {
		case 'r':
			serverNonce = attribute[2:]
		case 's':
			encodedSalt = attribute[2:]
		case 'i':
			iterationCount = attribute[2:]
		}
	}

	if !strings.HasPrefix(serverNonce, T.clientNonce) {
		return nil, ErrInvalidServerNonce
	}
	salt, err := base64.StdEncoding.DecodeString(encodedSalt)
	if err != nil {
		return nil, ErrInvalidServerMessage
	}
	iterations, err := strconv.Atoi(iterationCount)
	if err != nil || iterations < 1 {
		return nil, ErrInvalidServerMessage
	}

	password := T.password
	if prepared, err := stringprep.SASLprep.Prepare(password); err == nil {
		// passwords that cannot be prepared are used as is, matching libpq
		password = prepared
	}

	saltedPassword := pbkdf2.Key([]byte(password), salt, iterations, sha256.Size, sha256.New)
	clientKey := hmacSum(saltedPassword, []byte("Client Key"))
	storedKey := sha256.Sum256(clientKey)

	var buf bytes.Buffer
	buf.Grow(len(T.gs2Header()) + len(T.binding.Data))
	buf.WriteString(T.gs2Header())
	if T.binding.Mode == sasl.BindingRequired {
		buf.Write(T.binding.Data)
	}
	channelBinding := base64.StdEncoding.EncodeToString(buf.Bytes())

	withoutProof := "c=" + channelBinding + ",r=" + serverNonce
	authMessage := T.clientFirstBare + "," + T.serverFirst + "," + withoutProof

	clientSignature := hmacSum(storedKey[:], []byte(authMessage))
	proof := make([]byte, len(clientKey))
	for i := range proof {
		proof[i] = clientKey[i] ^ clientSignature[i]
	}

	serverKey := hmacSum(saltedPassword, []byte("Server Key"))
	T.expectedServerSignature = hmacSum(serverKey, []byte(authMessage))

	return []byte(withoutProof + ",p=" + base64.StdEncoding.EncodeToString(proof)), nil
}

func (T *Client) Final(data []byte) error {
	message := string(data)
	if rejection, ok := strings.CutPrefix(message, "e="); ok {
		return fmt.Errorf("server rejected authentication: %s", rejection)
	}
	encodedSignature, ok := strings.CutPrefix(message, "v=")
	if !ok {
		return ErrInvalidServerMessage
	}
	signature, err := base64.StdEncoding.DecodeString(encodedSignature)
	if err != nil {
		return ErrInvalidServerMessage
	}
	if !hmac.Equal(signature, T.expectedServerSignature) {
		return ErrServerSignatureMismatch
	}
	return nil
}

func hmacSum(key, message []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return mac.Sum(nil)
}

var _ sasl.Client = (*Client)(nil)
