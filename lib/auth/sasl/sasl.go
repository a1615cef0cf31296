package sasl

import "errors"

type Mechanism = string

const (
	ScramSHA256     Mechanism = "SCRAM-SHA-256"
	ScramSHA256Plus Mechanism = "SCRAM-SHA-256-PLUS"
)

var ErrMechanismNotSupported = errors.New("SASL mechanism not supported")

// Client drives the client side of a SASL conversation.
type Client interface {
	Name() Mechanism
	InitialResponse() ([]byte, error)
	Continue(challenge []byte) ([]byte, error)
	Final(data []byte) error
}

// BindingMaterial is the channel binding offered by the transport layer,
// empty when the connection cannot bind.
type BindingMaterial struct {
	Name string
	Data []byte
}

type BindingMode uint8

const (
	// BindingUnsupported means the client has no binding data. gs2 flag "n".
	BindingUnsupported BindingMode = iota
	// BindingNotRequested means the client has binding data but the server
	// did not advertise a PLUS mechanism. gs2 flag "y"; a server that does
	// support binding will fail the signature check, exposing a downgrade.
	BindingNotRequested
	// BindingRequired means binding data is sent and verified. gs2 flag "p".
	BindingRequired
)

// Binding is the negotiated channel binding state. It is folded into the
// signed SASL transcript either way, so both sides must agree on it.
type Binding struct {
	Mode BindingMode
	Name string
	Data []byte
}

// Negotiate picks a mechanism from those advertised by the server, given the
// binding material the transport can offer.
func Negotiate(mechanisms []Mechanism, material BindingMaterial) (Mechanism, Binding, error) {
	var hasScram, hasScramPlus bool
	for _, mechanism := range mechanisms {
		switch mechanism {
		case ScramSHA256:
			hasScram = true
		case ScramSHA256Plus:
			hasScramPlus = true
		}
	}

	switch {
	case hasScramPlus && len(material.Data) > 0:
		return ScramSHA256Plus, Binding{
			Mode: BindingRequired,
			Name: material.Name,
			Data: material.Data,
		}, nil
	case hasScramPlus:
		return ScramSHA256, Binding{Mode: BindingUnsupported}, nil
	case hasScram && len(material.Data) > 0:
		return ScramSHA256, Binding{Mode: BindingNotRequested}, nil
	case hasScram:
		return ScramSHA256, Binding{Mode: BindingUnsupported}, nil
	default:
		return "", Binding{}, ErrMechanismNotSupported
	}
}
