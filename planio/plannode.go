// Package planio adapts the query-plan side of the host engine: a
// priority-ordered cache of recent plans and a tree walk that turns plan
// shapes the tuner understands into access records.
package planio

import "github.com/opossum-db/indextuner/catalog"

// NodeKind tags the plan-node shapes the inspector recognizes. Both
// logical (Predicate/Join/StoredTable) and physical (TableScan/GetTable/
// Validate) plans share one PlanNode type; the inspector walks each with
// its own mode-specific traversal.
type NodeKind int

const (
	NodeKindUnknown NodeKind = iota
	NodeKindPredicate
	NodeKindJoin
	NodeKindStoredTable
	NodeKindTableScan
	NodeKindGetTable
	NodeKindValidate
)

// PredicateCondition mirrors the predicate operators the original engine's
// table scan operator can carry.
type PredicateCondition int

const (
	ConditionUnknown PredicateCondition = iota
	ConditionEquals
	ConditionNotEquals
	ConditionLessThan
	ConditionLessThanEquals
	ConditionGreaterThan
	ConditionGreaterThanEquals
	ConditionBetween
	ConditionLike
	ConditionIn
)

// PlanNode is a node in either a logical or a physical plan tree. The
// inspector never downcasts a concrete struct; it only calls the
// accessors below, each of which is only meaningful for the matching
// Kind() and panics otherwise - mirroring the tagged-union discipline the
// original engine enforces via dynamic_pointer_cast assertions.
type PlanNode interface {
	Kind() NodeKind
	Children() []PlanNode

	// Valid when Kind() == NodeKindPredicate or NodeKindTableScan.
	Column() string
	Condition() PredicateCondition
	CompareValue() float64

	// Pattern is valid only when Condition() == ConditionLike; it carries
	// the raw LIKE pattern so the evaluator can tell a leading-constant
	// prefix ("foo%") from a leading wildcard ("%foo") without re-deriving
	// it from CompareValue, which LIKE predicates don't populate.
	Pattern() string

	// Valid when Kind() == NodeKindStoredTable or NodeKindGetTable.
	Table() catalog.TableName
}

// node is the single concrete PlanNode implementation; callers build
// trees with the constructors below instead of populating the struct
// directly, so invalid combinations of fields can't leak into it.
type node struct {
	kind     NodeKind
	children []PlanNode

	column       string
	condition    PredicateCondition
	compareValue float64
	pattern      string

	table catalog.TableName
}

func (n *node) Kind() NodeKind          { return n.kind }
func (n *node) Children() []PlanNode    { return n.children }
func (n *node) Column() string {
	if n.kind != NodeKindPredicate && n.kind != NodeKindTableScan {
		panic("planio: Column() called on a node that carries no column")
	}
	return n.column
}
func (n *node) Condition() PredicateCondition {
	if n.kind != NodeKindPredicate && n.kind != NodeKindTableScan {
		panic("planio: Condition() called on a node that carries no predicate")
	}
	return n.condition
}
func (n *node) CompareValue() float64 {
	if n.kind != NodeKindPredicate && n.kind != NodeKindTableScan {
		panic("planio: CompareValue() called on a node that carries no predicate")
	}
	return n.compareValue
}
func (n *node) Pattern() string {
	if n.condition != ConditionLike {
		panic("planio: Pattern() called on a node that carries no LIKE pattern")
	}
	return n.pattern
}
func (n *node) Table() catalog.TableName {
	if n.kind != NodeKindStoredTable && n.kind != NodeKindGetTable {
		panic("planio: Table() called on a node that carries no table")
	}
	return n.table
}

// NewPredicateNode builds a logical-plan predicate node over a single
// child (the rest of the logical plan below the filter).
func NewPredicateNode(column string, condition PredicateCondition, compareValue float64, child PlanNode) PlanNode {
	return &node{kind: NodeKindPredicate, column: column, condition: condition, compareValue: compareValue, children: []PlanNode{child}}
}

// NewPredicateNodeLike builds a logical-plan LIKE predicate node, carrying
// the raw pattern alongside the column it filters.
func NewPredicateNodeLike(column, pattern string, child PlanNode) PlanNode {
	return &node{kind: NodeKindPredicate, column: column, condition: ConditionLike, pattern: pattern, children: []PlanNode{child}}
}

// NewJoinNode builds a logical-plan join node over its two inputs.
func NewJoinNode(left, right PlanNode) PlanNode {
	return &node{kind: NodeKindJoin, children: []PlanNode{left, right}}
}

// NewStoredTableNode builds a logical-plan leaf referencing a stored table.
func NewStoredTableNode(table catalog.TableName) PlanNode {
	return &node{kind: NodeKindStoredTable, table: table}
}

// NewTableScanNode builds a physical-plan table scan node. Its single
// child must be a Validate node for the inspector to recognize it as
// MVCC-gated.
func NewTableScanNode(column string, condition PredicateCondition, compareValue float64, child PlanNode) PlanNode {
	return &node{kind: NodeKindTableScan, column: column, condition: condition, compareValue: compareValue, children: []PlanNode{child}}
}

// NewTableScanNodeLike builds a physical-plan LIKE table scan node.
func NewTableScanNodeLike(column, pattern string, child PlanNode) PlanNode {
	return &node{kind: NodeKindTableScan, column: column, condition: ConditionLike, pattern: pattern, children: []PlanNode{child}}
}

// NewValidateNode builds a physical-plan MVCC validate node over its GetTable input.
func NewValidateNode(child PlanNode) PlanNode {
	return &node{kind: NodeKindValidate, children: []PlanNode{child}}
}

// NewGetTableNode builds a physical-plan leaf referencing a stored table.
func NewGetTableNode(table catalog.TableName) PlanNode {
	return &node{kind: NodeKindGetTable, table: table}
}
