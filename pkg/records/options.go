package records

import (
	"github.com/pkg/errors"

	"github.com/contiamo/typednull/pkg/validation"
)

type options struct {
	table string
}

// Option configures a store
type Option func(*options) error

// WithTable sets the table the store works on, the name must be a valid SQL identifier
func WithTable(table string) Option {
	return func(o *options) error {
		err := validation.SQLIdentifier(table)
		if err != nil {
			return errors.Wrapf(err, "invalid table name %q", table)
		}
		o.table = table
		return nil
	}
}

func newOptions(opts []Option) (options, error) {
	o := options{table: DefaultTable}
	for _, opt := range opts {
		err := opt(&o)
		if err != nil {
			return o, err
		}
	}
	return o, nil
}
