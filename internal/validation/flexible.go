package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlexibleString decodes from a JSON string or a JSON number; a number keeps
// its literal decimal text. null decodes to the empty string.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("expected string or number, got %s", data)
}

func (f FlexibleString) String() string {
	return string(f)
}
