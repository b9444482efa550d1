package types

import (
	"encoding/json"
	"fmt"
)

// Value is a number that may be undefined, e.g. an RSI over a flat window
// or a percent change from a zero base. It never carries NaN.
type Value struct {
	v       float64
	defined bool
}

func Defined(v float64) Value { return Value{v: v, defined: true} }

func Undefined() Value { return Value{} }

func (v Value) Get() (float64, bool) { return v.v, v.defined }

func (v Value) IsDefined() bool { return v.defined }

// Format applies a fmt verb to a defined value and returns placeholder otherwise.
func (v Value) Format(format, placeholder string) string {
	if !v.defined {
		return placeholder
	}
	return fmt.Sprintf(format, v.v)
}

func (v Value) String() string { return v.Format("%g", "undefined") }

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.defined {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Undefined()
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Defined(f)
	return nil
}
