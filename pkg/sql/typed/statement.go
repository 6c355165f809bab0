package typed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"
)

// Execer executes a query without returning any rows, e.g. *sql.DB, *sql.Tx or db.SQLDB
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Statement is a parameterized statement where every slot is bound with a declared type.
// A Statement is not safe for concurrent use.
type Statement struct {
	query    string
	parts    []part
	slots    []Slot
	bindings []*Param
}

var _ squirrel.Sqlizer = (*Statement)(nil)

// Prepare parses a statement with either named (`:name`) or positional (`?`) placeholders.
// `::` casts, quoted literals, quoted identifiers and comments are left untouched, `??` is a
// literal question mark.
func Prepare(query string) (*Statement, error) {
	parts, slots, err := parse(query)
	if err != nil {
		return nil, err
	}
	return &Statement{
		query:    query,
		parts:    parts,
		slots:    slots,
		bindings: make([]*Param, len(slots)),
	}, nil
}

// Query returns the statement as it was prepared
func (s *Statement) Query() string {
	return s.query
}

// Slots returns the slots in the order of their first appearance
func (s *Statement) Slots() []Slot {
	return append([]Slot(nil), s.slots...)
}

// Bind binds value into the slot as the declared type, a nil value binds a typed null.
// Binding a slot again replaces the previous value.
func (s *Statement) Bind(slot Slot, declared SQLType, value interface{}) error {
	if !declared.Valid() {
		return fmt.Errorf("%w: %s", ErrMissingTypeDeclaration, slot)
	}

	idx, err := s.lookup(slot)
	if err != nil {
		return err
	}

	p := Bind(declared, value)
	if p.err != nil {
		var mismatchErr *TypeMismatchError
		if errors.As(p.err, &mismatchErr) {
			mismatchErr.Slot = slot
		}
		return p.err
	}

	s.bindings[idx] = &p
	return nil
}

// BindNull binds a null tagged with the declared type
func (s *Statement) BindNull(slot Slot, declared SQLType) error {
	return s.Bind(slot, declared, nil)
}

// BindInferred binds value with a type inferred from its Go type, the way a generic
// persistence layer does when the caller gives no type. A null has no Go type, so it is
// always bound as BINARY, which the server rejects for columns of any other type.
func (s *Statement) BindInferred(slot Slot, value interface{}) error {
	declared := infer(value)
	if declared == Binary {
		if resolved, _ := resolve(value); resolved == nil {
			logrus.
				WithField("slot", slot.String()).
				WithField("declaredType", declared.String()).
				Warn("binding an untyped null, the server will receive it as bytea")
		}
	}
	return s.Bind(slot, declared, value)
}

// ToSql implements squirrel.Sqlizer, placeholders are rendered as `?`
func (s *Statement) ToSql() (string, []interface{}, error) {
	var (
		buf  strings.Builder
		args = make([]interface{}, 0, len(s.parts))
	)

	for _, p := range s.parts {
		if p.slot == textPart {
			buf.WriteString(strings.ReplaceAll(p.text, "?", "??"))
			continue
		}

		binding := s.bindings[p.slot]
		if binding == nil {
			return "", nil, fmt.Errorf("%w: %s", ErrUnboundSlot, s.slots[p.slot])
		}
		buf.WriteString(binding.render("?"))
		args = append(args, binding.value)
	}

	return buf.String(), args, nil
}

// Render returns the statement with PostgreSQL `$n` placeholders and its arguments
func (s *Statement) Render() (string, []interface{}, error) {
	query, args, err := s.ToSql()
	if err != nil {
		return "", nil, err
	}
	query, err = squirrel.Dollar.ReplacePlaceholders(query)
	return query, args, err
}

// ExecContext renders the statement and executes it, returning the number of affected rows.
// Errors of the database are returned as they are.
func (s *Statement) ExecContext(ctx context.Context, db Execer) (int64, error) {
	query, args, err := s.Render()
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Statement) lookup(slot Slot) (int, error) {
	for i, candidate := range s.slots {
		if candidate == slot {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownSlot, slot)
}
