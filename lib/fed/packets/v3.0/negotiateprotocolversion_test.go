package packets

import (
	"bytes"
	"errors"
	"testing"

	"gfx.cafe/gfx/pgdial/lib/fed"
)

func TestNegotiateProtocolVersionDecode(t *testing.T) {
	original := NegotiateProtocolVersion{
		MinorProtocolVersion: 1,
		UnrecognizedOptions:  []string{"_pq_.some_option", "_pq_.other"},
	}

	var buf bytes.Buffer
	encoder := fed.NewEncoder(&buf)
	if err := encoder.Next(original.Type(), original.Length()); err != nil {
		t.Fatal(err)
	}
	if err := original.WriteTo(encoder); err != nil {
		t.Fatal(err)
	}
	if err := encoder.Flush(); err != nil {
		t.Fatal(err)
	}

	decoder := fed.NewDecoder(&buf)
	if err := decoder.Next(true); err != nil {
		t.Fatal(err)
	}
	var decoded NegotiateProtocolVersion
	if err := decoded.ReadFrom(decoder); err != nil {
		t.Fatal(err)
	}
	if decoded.MinorProtocolVersion != 1 || len(decoded.UnrecognizedOptions) != 2 {
		t.Error("unexpected decode:", decoded)
	}
	if decoded.UnrecognizedOptions[0] != "_pq_.some_option" {
		t.Error("unexpected option:", decoded.UnrecognizedOptions[0])
	}
}

func TestNegotiateProtocolVersionRejectsOversizedCount(t *testing.T) {
	// an 8 byte body claiming two billion options
	var buf bytes.Buffer
	encoder := fed.NewEncoder(&buf)
	if err := encoder.Next(TypeNegotiateProtocolVersion, 8); err != nil {
		t.Fatal(err)
	}
	if err := encoder.Int32(0); err != nil {
		t.Fatal(err)
	}
	if err := encoder.Uint32(0x7fffffff); err != nil {
		t.Fatal(err)
	}
	if err := encoder.Flush(); err != nil {
		t.Fatal(err)
	}

	decoder := fed.NewDecoder(&buf)
	if err := decoder.Next(true); err != nil {
		t.Fatal(err)
	}
	var decoded NegotiateProtocolVersion
	if err := decoded.ReadFrom(decoder); !errors.Is(err, ErrInvalidFormat) {
		t.Error("expected ErrInvalidFormat, got", err)
	}
}
