package records

import (
	"bytes"
	"context"
	"database/sql"
	"text/template"

	"github.com/contiamo/typednull/pkg/db/migrations"
)

// Setup creates the record table, by default `message`. Running it again is a noop.
func Setup(ctx context.Context, db *sql.DB, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}

	buf := &bytes.Buffer{}
	err = setupTemplate.Execute(buf, struct{ Table string }{Table: o.table})
	if err != nil {
		return err
	}

	migrate := migrations.NewMigrater([]migrations.Migration{
		{Name: "records_" + o.table, SQL: buf.String()},
	})
	return migrate(ctx, db)
}

var setupTemplate = template.Must(template.New("records-setup").Parse(`
CREATE TABLE IF NOT EXISTS {{ .Table }} (
    id bigserial PRIMARY KEY,
    count bigint NULL,
    body text NOT NULL
);
`))

