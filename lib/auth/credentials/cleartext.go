package credentials

import (
	"gfx.cafe/gfx/pgdial/lib/auth"
	"gfx.cafe/gfx/pgdial/lib/auth/sasl"
	"gfx.cafe/gfx/pgdial/lib/auth/sasl/scram"
)

// Cleartext holds a plain username and password. It can answer cleartext,
// MD5 and SCRAM password requests.
type Cleartext struct {
	Username string
	Password string
}

func (Cleartext) Credentials() {}

func (T Cleartext) EncodeCleartext() string {
	return T.Password
}

func (T Cleartext) EncodeMD5(salt [4]byte) string {
	return auth.EncodeMD5(T.Username, T.Password, salt)
}

func (T Cleartext) EncodeSASL(mechanisms []sasl.Mechanism, material sasl.BindingMaterial) (sasl.Client, error) {
	mechanism, binding, err := sasl.Negotiate(mechanisms, material)
	if err != nil {
		return nil, err
	}
	// the server authenticates the user from the startup packet, the SASL
	// authzid is left empty
	return scram.NewClient(mechanism, "", T.Password, binding)
}

var _ auth.CleartextClient = Cleartext{}
var _ auth.MD5Client = Cleartext{}
var _ auth.SASLClient = Cleartext{}
