/*
Package typed binds values into parameterized SQL statements together with an explicit,
caller-declared SQL type.

A null value carries no type information. When it is sent to the server as an untyped
parameter the driver or the server has to infer a type, and that inference is allowed to be
wrong: a null destined for a `bigint` column can be sent as `bytea`, which PostgreSQL rejects
with

	ERROR: column "count" is of type bigint but expression is of type bytea (SQLSTATE 42804)

Every value bound through this package, null or not, is rendered as `CAST($n AS <type>)` so
the server always sees the declared type. There is no default type: binding with
`Unspecified` fails with ErrMissingTypeDeclaration before anything reaches the network.

A single value can be used with squirrel builders via Bind:

	squirrel.Update("message").
		Set("count", typed.Bind(typed.Int64, nil)).
		Where(squirrel.Eq{"id": id})

Whole statements with named (`:count`) or positional (`?`) placeholders go through Prepare:

	stmt, err := typed.Prepare("UPDATE message SET count = :count WHERE id = :id")
	err = stmt.BindNull(typed.Named("count"), typed.Int64)
	err = stmt.Bind(typed.Named("id"), typed.Int64, id)
	affected, err := stmt.ExecContext(ctx, db)

Errors returned by the server are never wrapped. Use Classify, IsServerTypeMismatch and
IsConnectionError to inspect them.
*/
package typed
