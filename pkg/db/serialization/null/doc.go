/*
Package null implements nullable sql fields that are safely marshalable from/to json and text.

Each of the types defined within implement the `sql.Scanner`, `driver.Valuer`,
`json.Marshaller`, `json.Unmarshaller`, `encoding.TextMarshaller`, and `encoding.TextUnmarshaller`
interfaces.  This makes them safe to use as struct fields that can be saved and read from a
database as well as from http json requests and parsed from string values.

The types alias the well tested `database/sql` null types, so a value can always be converted
back with a plain type conversion, e.g. `sql.NullInt64(n)`.
*/
package null
