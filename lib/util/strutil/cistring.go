package strutil

import (
	"encoding/json"
	"strings"
)

// CIString is a case-insensitive string.
type CIString struct {
	value string
}

func MakeCIString(value string) CIString {
	return CIString{
		strings.ToLower(value),
	}
}

func (T *CIString) String() string {
	return T.value
}

func (T *CIString) MarshalJSON() ([]byte, error) {
	return json.Marshal(T.value)
}

func (T *CIString) UnmarshalJSON(bytes []byte) error {
	var value string
	if err := json.Unmarshal(bytes, &value); err != nil {
		return err
	}
	*T = MakeCIString(value)
	return nil
}

var _ json.Marshaler = (*CIString)(nil)
var _ json.Unmarshaler = (*CIString)(nil)

func (T *CIString) MarshalText() ([]byte, error) {
	return []byte(T.value), nil
}

func (T *CIString) UnmarshalText(bytes []byte) error {
	*T = MakeCIString(string(bytes))
	return nil
}
