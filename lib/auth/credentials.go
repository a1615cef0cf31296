package auth

import "gfx.cafe/gfx/pgdial/lib/auth/sasl"

// Credentials is a marker for credential types. Which authentication
// requests a credential can answer is discovered through the capability
// interfaces below.
type Credentials interface {
	Credentials()
}

type CleartextClient interface {
	Credentials

	EncodeCleartext() string
}

type MD5Client interface {
	Credentials

	EncodeMD5(salt [4]byte) string
}

type SASLClient interface {
	Credentials

	// EncodeSASL picks a mechanism from those advertised by the server and
	// returns the conversation engine for it.
	EncodeSASL(mechanisms []sasl.Mechanism, material sasl.BindingMaterial) (sasl.Client, error)
}
