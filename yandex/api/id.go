package api

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// ID identifies a catalog entity. The API encodes ids either as JSON numbers
// or as strings, and track ids of user uploads are not numeric at all, so ids
// are kept in their textual form.
type ID string

func (id ID) String() string {
	return string(id)
}

func (id *ID) UnmarshalJSON(b []byte) error {
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); nil != err {
			return fmt.Errorf("failed to decode string id: %v", err)
		}
		*id = ID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); nil != err {
			return fmt.Errorf("failed to decode numeric id %s: %v", string(b), err)
		}
		*id = ID(n.String())
		return nil
	}
}
