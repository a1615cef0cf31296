package strutil

import "testing"

func TestCIStringEqualIgnoresCase(t *testing.T) {
	a := MakeCIString("TimeZone")
	b := MakeCIString("timezone")
	if a != b {
		t.Error("expected TimeZone == timezone")
	}
}

func TestCIStringMapKey(t *testing.T) {
	m := map[CIString]string{}
	m[MakeCIString("Client_Encoding")] = "UTF8"
	if m[MakeCIString("client_encoding")] != "UTF8" {
		t.Error("expected case-insensitive lookup to succeed")
	}
}
