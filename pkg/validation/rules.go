package validation

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	// MinSQLIdentifierLength is the minimal length of a sql name
	MinSQLIdentifierLength = 2
	// MaxSQLIdentifierLength is the max length of a sql name that postgres
	// keeps without truncating it
	MaxSQLIdentifierLength = 63
	sqlIdentifierErrorMsg  = "SQL names must start with an alphabetic character and may only include alphanumeric characters and underscores '_'"
)

var identifierRE = regexp.MustCompile("^[a-zA-Z]+[a-zA-Z0-9_]*$")

// SQLIdentifier returns an error if the string value can't be used as a SQL identifier
// without quoting
func SQLIdentifier(value string) error {
	return validation.Validate(
		value,
		validation.Required,
		validation.Length(MinSQLIdentifierLength, MaxSQLIdentifierLength),
		validation.Match(identifierRE).Error(sqlIdentifierErrorMsg),
	)
}
