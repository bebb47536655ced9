// internal/models/json.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONArray stores an arbitrary JSON array in a text column. The processor
// returns heterogeneous arrays (scores may arrive as bare numbers or as
// single-element nested arrays), so elements stay untyped.
type JSONArray []interface{}

func (a JSONArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported type for JSONArray: %T", value)
	}
	return json.Unmarshal(b, a)
}

// StringArray stores a JSON array of strings in a text column.
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported type for StringArray: %T", value)
	}
	return json.Unmarshal(b, a)
}
