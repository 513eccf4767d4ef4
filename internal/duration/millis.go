package duration

import (
	"encoding/json"
	"fmt"
)

// Millis is a millisecond quantity that unmarshals from either a JSON
// number (taken as milliseconds) or a duration string understood by
// Parse, so workflow documents can write `"timeout_ms": 500` or
// `"timeout_ms": "2.5s"` interchangeably.
type Millis int64

func (m Millis) Int() int { return int(m) }

func (m *Millis) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*m = Millis(num)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration: value must be a number or a duration string: %w", err)
	}
	ms, err := Parse(s)
	if err != nil {
		return err
	}
	*m = Millis(ms)
	return nil
}

func (m Millis) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(m))
}

// UnmarshalYAML mirrors UnmarshalJSON so workflow documents fetched as
// YAML (see workflow.ResolveRemote) accept the same bare-number-or-string
// forms as JSON ones.
func (m *Millis) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var num float64
	if err := unmarshal(&num); err == nil {
		*m = Millis(num)
		return nil
	}

	var s string
	if err := unmarshal(&s); err != nil {
		return fmt.Errorf("duration: value must be a number or a duration string: %w", err)
	}
	ms, err := Parse(s)
	if err != nil {
		return err
	}
	*m = Millis(ms)
	return nil
}
