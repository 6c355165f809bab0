package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/contiamo/typednull/pkg/db/serialization/null"
)

// DefaultTable is the table used by the stores when no other table is given
const DefaultTable = "message"

// ErrNotFound is returned when there is no record with the requested id
var ErrNotFound = errors.New("record not found")

// Record is a persisted message with a nullable counter
type Record struct {
	// ID is assigned by the database on creation and never changes
	ID int64 `json:"id"`
	// Count may be null at any time
	Count null.Int64 `json:"count"`
	// Body is the message text
	Body string `json:"body"`
}

// NewRecord returns a record that is not persisted yet
func NewRecord(body string, count null.Int64) Record {
	return Record{Body: body, Count: count}
}

// Store persists records
type Store interface {
	// Create inserts a new record and returns its id
	Create(ctx context.Context, body string, count null.Int64) (id int64, err error)
	// Get returns the record or ErrNotFound
	Get(ctx context.Context, id int64) (Record, error)
	// UpdateCount sets the count of the record, a null count is bound as a typed null.
	// It returns the number of affected rows, 0 when the record does not exist.
	UpdateCount(ctx context.Context, id int64, count null.Int64) (affected int64, err error)
	// UpdateCountWith is UpdateCount with a specific binding strategy
	UpdateCountWith(ctx context.Context, strategy Strategy, id int64, count null.Int64) (affected int64, err error)
}

// Strategy is the way the count parameter is bound in an update
type Strategy int

const (
	// StrategyTyped binds the count as a typed INTEGER64 value inside a squirrel builder
	StrategyTyped Strategy = iota
	// StrategyStatement binds the count into a statement with named slots
	StrategyStatement
	// StrategyInferred lets the Go value decide the type; a null count is sent as bytea
	// and the server rejects it
	StrategyInferred
	// StrategyTextCast sends the count as text and casts it on the server,
	// `CAST(CAST($1 AS text) AS bigint)`
	StrategyTextCast
	// StrategyServerInferred sends a bare placeholder and lets the server take the
	// type of the column
	StrategyServerInferred
)

var strategyNames = map[Strategy]string{
	StrategyTyped:          "typed",
	StrategyStatement:      "statement",
	StrategyInferred:       "inferred",
	StrategyTextCast:       "text_cast",
	StrategyServerInferred: "server_inferred",
}

// Strategies lists every strategy
var Strategies = []Strategy{
	StrategyTyped,
	StrategyStatement,
	StrategyInferred,
	StrategyTextCast,
	StrategyServerInferred,
}

// String implements the Stringer interface
func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy returns the strategy with the given name
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown binding strategy %q", name)
}
