package types

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexInt64 is a revision number sent either as a JSON number or as a string. Negative
// values count back from the newest revision.
type FlexInt64 int64

func (f *FlexInt64) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexInt64(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return f.parse(s)
	}

	return fmt.Errorf("FlexInt64: unexpected type, expected number or string")
}

func (f *FlexInt64) parse(s string) error {
	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("FlexInt64: invalid int64 string %q: %w", s, err)
	}
	*f = FlexInt64(val)
	return nil
}

// ParseFlexInt64 reads a query or path value.
func ParseFlexInt64(s string) (FlexInt64, error) {
	var f FlexInt64
	err := f.parse(s)
	return f, err
}

func (f FlexInt64) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(f))
}

// Int64 converts FlexInt64 back to int64.
func (f FlexInt64) Int64() int64 {
	return int64(f)
}
