package scram

import (
	"crypto/hmac"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/minio/sha256-simd"
	"golang.org/x/crypto/pbkdf2"

	"gfx.cafe/gfx/pgdial/lib/auth/sasl"
)

// exchange from RFC 7677 section 3
func TestRFC7677Vector(t *testing.T) {
	client := &Client{
		mechanism:   sasl.ScramSHA256,
		username:    "user",
		password:    "pencil",
		binding:     sasl.Binding{Mode: sasl.BindingUnsupported},
		clientNonce: "rOprNGfwEbeRWgbNEkqO",
	}

	initial, err := client.InitialResponse()
	if err != nil {
		t.Fatal(err)
	}
	if string(initial) != "n,,n=user,r=rOprNGfwEbeRWgbNEkqO" {
		t.Fatal("unexpected client first message:", string(initial))
	}

	response, err := client.Continue([]byte(
		"r=rOprNGfwEbeRWgbNEkqO%hvYDpWUa2RaTCAfuxFIlj)hNlF$k0," +
			"s=W22ZaJ0SNY7soEsUEjb6gQ==,i=4096",
	))
	if err != nil {
		t.Fatal(err)
	}
	expected := "c=biws,r=rOprNGfwEbeRWgbNEkqO%hvYDpWUa2RaTCAfuxFIlj)hNlF$k0," +
		"p=dHzbZapWIk4jUhN+Ute9ytag9zjfMHgsqmmiz7AndVQ="
	if string(response) != expected {
		t.Fatal("unexpected client final message:", string(response))
	}

	if err = client.Final([]byte("v=6rriTRBi23WpRR/wtup+mMhUZUn/dB5nLTJRsjl95G4=")); err != nil {
		t.Fatal(err)
	}
}

func TestServerSignatureMismatch(t *testing.T) {
	client := &Client{
		mechanism:   sasl.ScramSHA256,
		username:    "user",
		password:    "pencil",
		binding:     sasl.Binding{Mode: sasl.BindingUnsupported},
		clientNonce: "rOprNGfwEbeRWgbNEkqO",
	}
	if _, err := client.InitialResponse(); err != nil {
		t.Fatal(err)
	}
	if _, err := client.Continue([]byte(
		"r=rOprNGfwEbeRWgbNEkqO%hvYDpWUa2RaTCAfuxFIlj)hNlF$k0," +
			"s=W22ZaJ0SNY7soEsUEjb6gQ==,i=4096",
	)); err != nil {
		t.Fatal(err)
	}
	err := client.Final([]byte("v=AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="))
	if !errors.Is(err, ErrServerSignatureMismatch) {
		t.Error("expected ErrServerSignatureMismatch, got", err)
	}
}

func TestServerRejection(t *testing.T) {
	client := &Client{
		mechanism:   sasl.ScramSHA256,
		username:    "user",
		password:    "pencil",
		binding:     sasl.Binding{Mode: sasl.BindingUnsupported},
		clientNonce: "rOprNGfwEbeRWgbNEkqO",
	}
	if _, err := client.InitialResponse(); err != nil {
		t.Fatal(err)
	}
	if _, err := client.Continue([]byte(
		"r=rOprNGfwEbeRWgbNEkqO%hvYDpWUa2RaTCAfuxFIlj)hNlF$k0," +
			"s=W22ZaJ0SNY7soEsUEjb6gQ==,i=4096",
	)); err != nil {
		t.Fatal(err)
	}
	err := client.Final([]byte("e=invalid-proof"))
	if err == nil || !strings.Contains(err.Error(), "invalid-proof") {
		t.Error("expected rejection error, got", err)
	}
}

func TestNonceNotExtended(t *testing.T) {
	client := &Client{
		mechanism:   sasl.ScramSHA256,
		username:    "user",
		password:    "pencil",
		binding:     sasl.Binding{Mode: sasl.BindingUnsupported},
		clientNonce: "rOprNGfwEbeRWgbNEkqO",
	}
	if _, err := client.InitialResponse(); err != nil {
		t.Fatal(err)
	}
	_, err := client.Continue([]byte("r=someoneelse,s=W22ZaJ0SNY7soEsUEjb6gQ==,i=4096"))
	if !errors.Is(err, ErrInvalidServerNonce) {
		t.Error("expected ErrInvalidServerNonce, got", err)
	}
}

// TestChannelBinding runs a full conversation with tls-server-end-point
// binding, verifying the proof with server side math.
func TestChannelBinding(t *testing.T) {
	bindingData := []byte{0xde, 0xad, 0xbe, 0xef, 0x01}
	binding := sasl.Binding{
		Mode: sasl.BindingRequired,
		Name: "tls-server-end-point",
		Data: bindingData,
	}

	client, err := NewClient(sasl.ScramSHA256Plus, "", "hunter2", binding)
	if err != nil {
		t.Fatal(err)
	}
	if client.Name() != sasl.ScramSHA256Plus {
		t.Fatal("unexpected mechanism name:", client.Name())
	}

	initial, err := client.InitialResponse()
	if err != nil {
		t.Fatal(err)
	}
	clientFirst := string(initial)
	gs2 := "p=tls-server-end-point,,"
	if !strings.HasPrefix(clientFirst, gs2) {
		t.Fatal("unexpected gs2 header:", clientFirst)
	}
	clientFirstBare := strings.TrimPrefix(clientFirst, gs2)
	clientNonce := clientFirstBare[strings.Index(clientFirstBare, ",r=")+3:]

	salt := []byte("0123456789abcdef")
	iterations := 4096
	serverNonce := clientNonce + "serverside"
	serverFirst := "r=" + serverNonce +
		",s=" + base64.StdEncoding.EncodeToString(salt) +
		",i=4096"

	response, err := client.Continue([]byte(serverFirst))
	if err != nil {
		t.Fatal(err)
	}

	var channelBinding, nonce, proof string
	for _, attribute := range strings.Split(string(response), ",") {
		switch attribute[0] {
		case 'c':
			channelBinding = attribute[2:]
		case 'r':
			nonce = attribute[2:]
		case 'p':
			proof = attribute[2:]
		}
	}
	if nonce != serverNonce {
		t.Fatal("client did not echo server nonce:", nonce)
	}
	expectedBinding := base64.StdEncoding.EncodeToString(append([]byte(gs2), bindingData...))
	if channelBinding != expectedBinding {
		t.Fatal("unexpected channel binding attribute:", channelBinding)
	}

	// recompute the proof as the server would
	saltedPassword := pbkdf2.Key([]byte("hunter2"), salt, iterations, sha256.Size, sha256.New)
	clientKey := testHMAC(saltedPassword, "Client Key")
	storedKey := sha256.Sum256(clientKey)
	withoutProof := "c=" + expectedBinding + ",r=" + serverNonce
	authMessage := clientFirstBare + "," + serverFirst + "," + withoutProof
	clientSignature := testHMAC(storedKey[:], authMessage)
	expectedProof := make([]byte, len(clientKey))
	for i := range expectedProof {
		expectedProof[i] = clientKey[i] ^ clientSignature[i]
	}
	if proof != base64.StdEncoding.EncodeToString(expectedProof) {
		t.Fatal("client proof does not verify")
	}

	serverKey := testHMAC(saltedPassword, "Server Key")
	serverSignature := testHMAC(serverKey, authMessage)
	err = client.Final([]byte("v=" + base64.StdEncoding.EncodeToString(serverSignature)))
	if err != nil {
		t.Fatal(err)
	}
}

func TestUnsupportedMechanism(t *testing.T) {
	_, err := NewClient("PLAIN", "", "password", sasl.Binding{})
	if !errors.Is(err, ErrUnsupportedMechanism) {
		t.Error("expected ErrUnsupportedMechanism, got", err)
	}
}

func testHMAC(key []byte, message string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(message))
	return mac.Sum(nil)
}
