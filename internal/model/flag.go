package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Required is the persisted sentinel for a set flag.
const Required = "1"

const notRequired = "0"

// Flag is a two-valued column classification. It is stored as CHAR(1) "1"/"0" and
// marshals as the same strings, so existing consumers of the sentinel keep working.
type Flag bool

// FlagOf reports a sentinel string as a Flag.
func FlagOf(s string) Flag {
	return Flag(s == Required)
}

// String returns the sentinel representation.
func (f Flag) String() string {
	if f {
		return Required
	}
	return notRequired
}

// Value implements driver.Valuer
func (f Flag) Value() (driver.Value, error) {
	return f.String(), nil
}

// Scan implements sql.Scanner
func (f *Flag) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*f = false
	case string:
		*f = FlagOf(v)
	case []byte:
		*f = FlagOf(string(v))
	case int64:
		*f = v == 1
	case bool:
		*f = Flag(v)
	default:
		return fmt.Errorf("cannot scan %T into Flag", src)
	}
	return nil
}

// MarshalJSON encodes the flag as "1" or "0".
func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON accepts "1"/"0", true/false and null.
func (f *Flag) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		return f.Scan(int64(v))
	default:
		return f.Scan(v)
	}
}

// MarshalYAML encodes the flag as "1" or "0".
func (f Flag) MarshalYAML() (interface{}, error) {
	return f.String(), nil
}

// UnmarshalYAML accepts "1"/"0" and booleans.
func (f *Flag) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case int:
		return f.Scan(int64(v))
	default:
		return f.Scan(v)
	}
}
