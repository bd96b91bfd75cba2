package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// NullableInt represents an optional integer such as the parent id of a
// top level album. Servers may send the value as a JSON number, a numeric
// string, or null.
type NullableInt struct {
	Value int64
	Valid bool // Valid is true if Value is not null
}

var _ Nullable = NullableInt{}

// NullableIntFrom returns a valid NullableInt holding v.
func NullableIntFrom(v int64) NullableInt {
	return NullableInt{Value: v, Valid: true}
}

// NullInt returns a null NullableInt.
func NullInt() NullableInt {
	return NullableInt{}
}

// IsNil returns true if the value is null.
func (ni NullableInt) IsNil() bool {
	return !ni.Valid
}

// Equal reports whether both values are null or both hold the same integer.
func (ni NullableInt) Equal(other NullableInt) bool {
	if !ni.Valid || !other.Valid {
		return ni.Valid == other.Valid
	}
	return ni.Value == other.Value
}

// String returns the decimal value, or "null".
func (ni NullableInt) String() string {
	if !ni.Valid {
		return "null"
	}
	return strconv.FormatInt(ni.Value, 10)
}

func (ni NullableInt) MarshalJSON() ([]byte, error) {
	if !ni.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(ni.Value, 10)), nil
}

// UnmarshalJSON accepts null, a number, or a string holding a number.
// An empty string decodes as null.
func (ni *NullableInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*ni = NullInt()
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return ni.Parse(s)
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	return ni.Parse(n.String())
}

// Parse sets the value from its decimal text form. Empty text and "null" yield null.
func (ni *NullableInt) Parse(s string) error {
	if s == "" || s == "null" {
		*ni = NullInt()
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int64(f)) {
			return fmt.Errorf("not an integer: %q", s)
		}
		v = int64(f)
	}
	*ni = NullableIntFrom(v)
	return nil
}

var _ json.Marshaler = NullableInt{}
var _ json.Unmarshaler = &NullableInt{}
var _ Nullable = NullableInt{}
