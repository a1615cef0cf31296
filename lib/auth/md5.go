package auth

import (
	"crypto/md5" //nolint:gosec // MD5 required for PostgreSQL authentication protocol
	"encoding/hex"
	"strings"

	"gfx.cafe/gfx/pgdial/lib/util/slices"
)

// EncodeMD5 computes "md5" + hex(md5(hex(md5(password + username)) + salt)),
// the answer to an MD5 password request.
func EncodeMD5(username, password string, salt [4]byte) string {
	hash := md5.New() //nolint:gosec // MD5 required for PostgreSQL authentication protocol
	hash.Write([]byte(password))
	hash.Write([]byte(username))
	sum1 := hash.Sum(nil)
	hexEncoded := make([]byte, hex.EncodedLen(len(sum1)))
	hex.Encode(hexEncoded, sum1)
	hash.Reset()

	hash.Write(hexEncoded)
	hash.Write(salt[:])
	sum2 := hash.Sum(nil)
	hexEncoded = slices.Resize(hexEncoded, hex.EncodedLen(len(sum2)))
	hex.Encode(hexEncoded, sum2)

	var out strings.Builder
	out.Grow(3 + len(hexEncoded))
	out.WriteString("md5")
	out.Write(hexEncoded)
	return out.String()
}

func CheckMD5(username, password string, salt [4]byte, encoded string) bool {
	return EncodeMD5(username, password, salt) == encoded
}
