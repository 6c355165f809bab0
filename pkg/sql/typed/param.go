package typed

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
)

// Param is a single value tagged with its declared SQL type. It implements
// squirrel.Sqlizer, so it can be used as a value in squirrel builders.
type Param struct {
	declared SQLType
	value    interface{}
	err      error
	textCast bool
}

var _ squirrel.Sqlizer = Param{}

// Bind returns a Param for value with the declared type, a nil value is a typed null.
// Binding errors are reported by ToSql, so the Param can be passed to builders directly.
func Bind(declared SQLType, value interface{}) Param {
	encoded, err := encode(declared, value)
	return Param{declared: declared, value: encoded, err: err}
}

// Null returns a typed null Param
func Null(declared SQLType) Param {
	return Bind(declared, nil)
}

// BindViaText returns a Param rendered as `CAST(CAST(? AS text) AS <type>)`.
// The value is sent as text and converted by the server, binary values are sent in the
// bytea hex format.
func BindViaText(declared SQLType, value interface{}) Param {
	p := Bind(declared, value)
	p.textCast = true
	switch v := p.value.(type) {
	case nil:
	case []byte:
		if declared == Binary {
			// bytea hex format
			p.value = `\x` + hex.EncodeToString(v)
		} else {
			p.value = string(v)
		}
	case time.Time:
		p.value = v.Format(time.RFC3339Nano)
	default:
		p.value = fmt.Sprint(v)
	}
	return p
}

// Type returns the declared type
func (p Param) Type() SQLType {
	return p.declared
}

// Value returns the encoded argument, nil for a typed null
func (p Param) Value() interface{} {
	return p.value
}

// IsNull returns true for typed nulls
func (p Param) IsNull() bool {
	return p.value == nil
}

// Err returns the error that occurred while binding the value
func (p Param) Err() error {
	return p.err
}

// ToSql implements squirrel.Sqlizer
func (p Param) ToSql() (string, []interface{}, error) {
	if p.err != nil {
		return "", nil, p.err
	}
	return p.render("?"), []interface{}{p.value}, nil
}

func (p Param) render(placeholder string) string {
	if p.textCast {
		placeholder = Text.castPlaceholder(placeholder)
	}
	return p.declared.castPlaceholder(placeholder)
}
