package null

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"reflect"
)

// String represents a string that may be null. Unlike a plain string the
// empty value and null are different values.
type String sql.NullString

// StringFrom returns a valid String holding the given value
func StringFrom(input string) String {
	return String{String: input, Valid: true}
}

// Text returns the value or the literal `null` when the value is not valid
func (s String) Text() string {
	if !s.Valid {
		return "null"
	}
	return s.String
}

// MarshalJSON marshalls String to the primitive value `null` or a json string
func (s String) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.String)
}

// UnmarshalJSON implements json.Unmarshaler.
// It supports string and null input.
func (s *String) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case string:
		s.String, s.Valid = x, true
		return nil
	case nil:
		s.String, s.Valid = "", false
		return nil
	default:
		s.Valid = false
		return fmt.Errorf("json: cannot unmarshal %v into Go value of type String", reflect.TypeOf(v).Name())
	}
}

// MarshalText implements the encoding.TextMarshaler interface.
func (s String) MarshalText() ([]byte, error) {
	return []byte(s.Text()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
// The literal text `null` is decoded as a null value.
func (s *String) UnmarshalText(text []byte) error {
	if string(text) == "null" {
		s.String, s.Valid = "", false
		return nil
	}
	s.String, s.Valid = string(text), true
	return nil
}

// Value implements the driver Valuer interface.
func (s String) Value() (driver.Value, error) {
	if !s.Valid {
		return nil, nil
	}
	return s.String, nil
}

// Scan implements the sql.Scanner interface.
func (s *String) Scan(value interface{}) error {
	return (*sql.NullString)(s).Scan(value)
}
