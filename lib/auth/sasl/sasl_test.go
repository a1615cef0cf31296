package sasl

import (
	"errors"
	"testing"
)

func TestNegotiate(t *testing.T) {
	material := BindingMaterial{
		Name: "tls-server-end-point",
		Data: []byte{1, 2, 3},
	}

	cases := []struct {
		name       string
		mechanisms []Mechanism
		material   BindingMaterial

		mechanism Mechanism
		mode      BindingMode
	}{
		{
			name:       "plus advertised with material",
			mechanisms: []Mechanism{ScramSHA256, ScramSHA256Plus},
			material:   material,
			mechanism:  ScramSHA256Plus,
			mode:       BindingRequired,
		},
		{
			name:       "plus advertised without material",
			mechanisms: []Mechanism{ScramSHA256, ScramSHA256Plus},
			mechanism:  ScramSHA256,
			mode:       BindingUnsupported,
		},
		{
			name:       "plain only with material",
			mechanisms: []Mechanism{ScramSHA256},
			material:   material,
			mechanism:  ScramSHA256,
			mode:       BindingNotRequested,
		},
		{
			name:       "plain only without material",
			mechanisms: []Mechanism{ScramSHA256},
			mechanism:  ScramSHA256,
			mode:       BindingUnsupported,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			mechanism, binding, err := Negotiate(c.mechanisms, c.material)
			if err != nil {
				t.Fatal(err)
			}
			if mechanism != c.mechanism {
				t.Error("expected mechanism", c.mechanism, "got", mechanism)
			}
			if binding.Mode != c.mode {
				t.Error("expected binding mode", c.mode, "got", binding.Mode)
			}
			if c.mode == BindingRequired && string(binding.Data) != string(c.material.Data) {
				t.Error("expected binding data to be carried through")
			}
		})
	}
}

func TestNegotiateUnknownMechanisms(t *testing.T) {
	_, _, err := Negotiate([]Mechanism{"OAUTHBEARER"}, BindingMaterial{})
	if !errors.Is(err, ErrMechanismNotSupported) {
		t.Error("expected ErrMechanismNotSupported, got", err)
	}
}
