package device

import (
	"encoding/json"
	"strconv"
)

// Device is the canonical record for one connected client, regardless of
// which extraction path produced it.
type Device struct {
	Status         string `json:"status"`
	ConnectionType string `json:"connection_type"`
	Name           string `json:"name"`
	IPv4           string `json:"ipv4"`
	MAC            string `json:"mac"`
	Allocation     string `json:"allocation"`
	Lease          Value  `json:"lease"`
	LastActive     Value  `json:"last_active"`
	IsActive       bool   `json:"is_active"`
	IsWireless     bool   `json:"is_wireless"`
}

// Value holds either a parsed number or the raw source text. The raw form is
// kept verbatim when parsing fails, so a parsed zero stays distinguishable
// from unparseable input.
type Value struct {
	num   int64
	text  string
	isNum bool
}

// Int returns a Value carrying a parsed number.
func Int(n int64) Value { return Value{num: n, isNum: true} }

// Str returns a Value carrying raw text.
func Str(s string) Value { return Value{text: s} }

// Number reports the numeric form, if this Value holds one.
func (v Value) Number() (int64, bool) { return v.num, v.isNum }

func (v Value) String() string {
	if v.isNum {
		return strconv.FormatInt(v.num, 10)
	}
	return v.text
}

// MarshalJSON emits a bare number or a bare string, matching the report
// format produced by the gateway firmware tooling.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isNum {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.text)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Int(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Str(s)
	return nil
}
