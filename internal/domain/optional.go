package domain

import (
	"bytes"
	"encoding/json"
)

// OptMillis is an epoch-millisecond JSON field that distinguishes absent,
// explicit null, and a value. Absent leaves the stored value untouched;
// explicit null clears it.
type OptMillis struct {
	Set   bool
	Value *int64
}

func (o *OptMillis) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(b, []byte("null")) {
		o.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o OptMillis) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}
