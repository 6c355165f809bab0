package null

import (
	"bytes"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// Int64 represents an int64 that may be null. Int64 implements the
// sql.Scanner interface so it can be used as a scan destination, similar to
// sql.NullInt64.
type Int64 sql.NullInt64

// Int64From returns a valid Int64 holding the given value
func Int64From(input int64) Int64 {
	return Int64{Int64: input, Valid: true}
}

// Int64FromPtr returns a null Int64 for a nil pointer and a valid Int64 otherwise
func Int64FromPtr(input *int64) Int64 {
	if input == nil {
		return Int64{}
	}
	return Int64From(*input)
}

// Ptr returns nil when the value is null
func (n Int64) Ptr() *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// String implements the Stringer interface
func (n Int64) String() string {
	if !n.Valid {
		return "null"
	}
	return strconv.FormatInt(n.Int64, 10)
}

// MarshalJSON marshalls Int64 to the primitive value `null` or a json number
func (n Int64) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(n.Int64, 10)), nil
}

// UnmarshalJSON implements json.Unmarshaler.
// It supports number, numeric string and null input.
func (n *Int64) UnmarshalJSON(data []byte) error {
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}

	var err error
	switch x := v.(type) {
	case json.Number:
		n.Int64, err = x.Int64()
	case string:
		if x == "" || x == "null" {
			n.Valid = false
			return nil
		}
		n.Int64, err = strconv.ParseInt(x, 10, 64)
	case nil:
		n.Valid = false
		return nil
	default:
		err = fmt.Errorf("json: cannot unmarshal %v into Go value of type Int64", reflect.TypeOf(v).Name())
	}
	n.Valid = err == nil
	return err
}

// MarshalText implements the encoding.TextMarshaler interface.
func (n Int64) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (n *Int64) UnmarshalText(text []byte) error {
	str := string(text)
	if str == "" || str == "null" {
		n.Valid = false
		return nil
	}
	v, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return err
	}
	n.Int64, n.Valid = v, true
	return nil
}

// Value implements the driver Valuer interface.
func (n Int64) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Int64, nil
}

// Scan implements the sql.Scanner interface.
func (n *Int64) Scan(value interface{}) error {
	return (*sql.NullInt64)(n).Scan(value)
}
