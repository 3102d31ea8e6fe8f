// Package tuning holds the Index Auto-Tuning Subsystem's core data model
// and algorithms: choices, the evaluator that proposes them, the selector
// that accepts or rejects them under a memory budget, and the planner
// that turns the outcome into an ordered operation sequence.
package tuning

import (
	"fmt"
	"strings"

	"github.com/opossum-db/indextuner/catalog"
)

// ColumnRef identifies a (possibly multi-column) index candidate: a
// table plus an ordered list of column names. Order matters - (a, b) and
// (b, a) are different candidates with different selectivity profiles.
type ColumnRef struct {
	Table   catalog.TableName
	Columns []string
}

// Key returns a stable, order-sensitive identity for use as a map/Set key.
func (c ColumnRef) Key() string {
	return fmt.Sprintf("%s(%s)", c.Table.Key(), strings.Join(c.Columns, ","))
}

func (c ColumnRef) String() string { return c.Key() }

// SingleColumn builds a single-column ColumnRef, the shape every evaluator
// in this package currently produces (spec.md's Non-goals exclude
// multi-column/cross-table recommendations).
func SingleColumn(table catalog.TableName, column string) ColumnRef {
	return ColumnRef{Table: table, Columns: []string{strings.ToLower(column)}}
}
