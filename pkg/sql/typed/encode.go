package typed

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"
	"unicode/utf8"

	"github.com/lib/pq"
	uuid "github.com/satori/go.uuid"
)

// encode converts value into the driver argument for the declared type.
// A nil result with a nil error is a typed null.
func encode(declared SQLType, value interface{}) (interface{}, error) {
	if !declared.Valid() {
		return nil, ErrMissingTypeDeclaration
	}

	value, err := resolve(value)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}

	switch declared {
	case Int64:
		return encodeInt(declared, value, math.MinInt64, math.MaxInt64)
	case Int32:
		return encodeInt(declared, value, math.MinInt32, math.MaxInt32)
	case Float64:
		return encodeFloat(declared, value)
	case Bool:
		if v, ok := value.(bool); ok {
			return v, nil
		}
	case Text:
		switch v := value.(type) {
		case string:
			return v, nil
		case []byte:
			if !utf8.Valid(v) {
				return nil, mismatch(declared, value, "invalid UTF-8")
			}
			return string(v), nil
		case fmt.Stringer:
			return v.String(), nil
		}
	case Binary:
		switch v := value.(type) {
		case []byte:
			return v, nil
		case string:
			return []byte(v), nil
		}
	case Timestamp:
		if v, ok := value.(time.Time); ok {
			return v, nil
		}
	case UUID:
		return encodeUUID(declared, value)
	case JSONB:
		return encodeJSON(declared, value)
	}

	return nil, mismatch(declared, value, "")
}

// resolve unwraps pointers, driver.Valuer and the sql null types.
// It returns nil for every representation of null.
func resolve(value interface{}) (interface{}, error) {
	for depth := 0; depth < 8; depth++ {
		switch v := value.(type) {
		case nil:
			return nil, nil
		case uuid.UUID, time.Time:
			// uuid.UUID implements driver.Valuer, keep it to preserve the type information
			return v, nil
		case json.RawMessage:
			if v == nil {
				return nil, nil
			}
			return v, nil
		case uuid.NullUUID:
			if !v.Valid {
				return nil, nil
			}
			return v.UUID, nil
		case pq.NullTime:
			if !v.Valid {
				return nil, nil
			}
			return v.Time, nil
		case sql.NullTime:
			if !v.Valid {
				return nil, nil
			}
			return v.Time, nil
		case driver.Valuer:
			rv := reflect.ValueOf(v)
			if rv.Kind() == reflect.Ptr && rv.IsNil() {
				return nil, nil
			}
			resolved, err := v.Value()
			if err != nil {
				return nil, err
			}
			value = resolved
			continue
		}

		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Slice:
			// database/sql sends a nil []byte as NULL
			if rv.IsNil() {
				return nil, nil
			}
			return value, nil
		case reflect.Ptr:
			if rv.IsNil() {
				return nil, nil
			}
			value = rv.Elem().Interface()
		default:
			return value, nil
		}
	}

	return nil, fmt.Errorf("%w: value nesting is too deep", ErrTypeMismatch)
}

func encodeInt(declared SQLType, value interface{}, min, max int64) (interface{}, error) {
	rv := reflect.ValueOf(value)
	var v int64
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v = rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, mismatch(declared, value, "value out of range")
		}
		v = int64(u)
	default:
		return nil, mismatch(declared, value, "")
	}

	if v < min || v > max {
		return nil, mismatch(declared, value, "value out of range")
	}
	return v, nil
}

func encodeFloat(declared SQLType, value interface{}) (interface{}, error) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	}
	return nil, mismatch(declared, value, "")
}

func encodeUUID(declared SQLType, value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case uuid.UUID:
		return v.String(), nil
	case [16]byte:
		return uuid.UUID(v).String(), nil
	case string:
		u, err := uuid.FromString(v)
		if err != nil {
			return nil, mismatch(declared, value, err.Error())
		}
		return u.String(), nil
	case []byte:
		u, err := uuid.FromBytes(v)
		if err != nil {
			u, err = uuid.FromString(string(v))
		}
		if err != nil {
			return nil, mismatch(declared, value, err.Error())
		}
		return u.String(), nil
	}
	return nil, mismatch(declared, value, "")
}

func encodeJSON(declared SQLType, value interface{}) (interface{}, error) {
	switch raw := value.(type) {
	case json.RawMessage:
		if !json.Valid(raw) {
			return nil, mismatch(declared, value, "invalid json")
		}
		return string(raw), nil
	case []byte:
		if !json.Valid(raw) {
			return nil, mismatch(declared, value, "invalid json")
		}
		return string(raw), nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, mismatch(declared, value, err.Error())
	}
	return string(data), nil
}

func mismatch(declared SQLType, value interface{}, reason string) error {
	return &TypeMismatchError{
		Declared: declared,
		Actual:   fmt.Sprintf("%T", value),
		Reason:   reason,
	}
}

// infer picks the declared type from the Go value. A nil value carries no type
// information and falls back to Binary.
func infer(value interface{}) SQLType {
	resolved, err := resolve(value)
	if err != nil || resolved == nil {
		return Binary
	}

	switch resolved.(type) {
	case string:
		return Text
	case []byte:
		return Binary
	case bool:
		return Bool
	case time.Time:
		return Timestamp
	case uuid.UUID, [16]byte:
		return UUID
	case json.RawMessage:
		return JSONB
	}

	switch reflect.ValueOf(resolved).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int64
	case reflect.Float32, reflect.Float64:
		return Float64
	}
	return Binary
}
