package typed

import (
	"fmt"
	"strings"
)

// SQLType is the semantic SQL type a caller declares for a parameter.
// The zero value is not a valid declaration.
type SQLType int

const (
	// Unspecified means the caller did not declare a type
	Unspecified SQLType = iota
	// Int64 is a 64-bit integer, `bigint`
	Int64
	// Int32 is a 32-bit integer, `integer`
	Int32
	// Text is a variable length string, `text`
	Text
	// Binary is a variable length byte string, `bytea`
	Binary
	// Bool is a boolean, `boolean`
	Bool
	// Float64 is a double precision floating point number
	Float64
	// Timestamp is a point in time with time zone, `timestamptz`
	Timestamp
	// UUID is a `uuid`
	UUID
	// JSONB is a binary json document, `jsonb`
	JSONB
)

type typeInfo struct {
	name    string
	sqlName string
}

var typeInfos = map[SQLType]typeInfo{
	Int64:     {name: "INTEGER64", sqlName: "bigint"},
	Int32:     {name: "INTEGER32", sqlName: "integer"},
	Text:      {name: "TEXT", sqlName: "text"},
	Binary:    {name: "BINARY", sqlName: "bytea"},
	Bool:      {name: "BOOLEAN", sqlName: "boolean"},
	Float64:   {name: "FLOAT64", sqlName: "double precision"},
	Timestamp: {name: "TIMESTAMP", sqlName: "timestamptz"},
	UUID:      {name: "UUID", sqlName: "uuid"},
	JSONB:     {name: "JSONB", sqlName: "jsonb"},
}

// Valid returns true for every declared type except Unspecified
func (t SQLType) Valid() bool {
	_, ok := typeInfos[t]
	return ok
}

// String implements the Stringer interface
func (t SQLType) String() string {
	if info, ok := typeInfos[t]; ok {
		return info.name
	}
	if t == Unspecified {
		return "UNSPECIFIED"
	}
	return fmt.Sprintf("SQLType(%d)", int(t))
}

// SQLName returns the PostgreSQL name of the type, it is empty for Unspecified
func (t SQLType) SQLName() string {
	return typeInfos[t].sqlName
}

// ParseSQLType parses either the semantic name (`INTEGER64`) or the PostgreSQL name
// (`bigint`) of a type, case-insensitive.
func ParseSQLType(value string) (SQLType, error) {
	v := strings.TrimSpace(value)
	for t, info := range typeInfos {
		if strings.EqualFold(v, info.name) || strings.EqualFold(v, info.sqlName) {
			return t, nil
		}
	}
	switch strings.ToLower(v) {
	case "int8":
		return Int64, nil
	case "int4", "int":
		return Int32, nil
	case "bool":
		return Bool, nil
	case "float8":
		return Float64, nil
	}
	return Unspecified, fmt.Errorf("unknown sql type %q", value)
}

// MarshalText implements the encoding.TextMarshaler interface.
func (t SQLType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, ErrMissingTypeDeclaration
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (t *SQLType) UnmarshalText(text []byte) error {
	parsed, err := ParseSQLType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// castPlaceholder wraps the placeholder into an explicit cast to the declared type
func (t SQLType) castPlaceholder(placeholder string) string {
	return "CAST(" + placeholder + " AS " + t.SQLName() + ")"
}
