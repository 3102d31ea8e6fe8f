package tuning

import "github.com/opossum-db/indextuner/catalog"

// OperationKind is the action a TuningOperation performs against the
// storage control surface.
type OperationKind int

const (
	OperationNoOp OperationKind = iota
	OperationCreate
	OperationDrop
)

func (k OperationKind) String() string {
	switch k {
	case OperationCreate:
		return "Create"
	case OperationDrop:
		return "Drop"
	default:
		return "NoOp"
	}
}

// TuningOperation is a single committed change to the storage layer:
// create or drop an index on a ColumnRef of a given kind. The planner
// never emits OperationNoOp; it exists only as a zero value / internal
// bookkeeping marker.
type TuningOperation struct {
	Kind OperationKind
	Ref  ColumnRef
	IdxKind catalog.IndexKind
}

func (o TuningOperation) IsNoOp() bool { return o.Kind == OperationNoOp }

func NewCreateOperation(ref ColumnRef, kind catalog.IndexKind) TuningOperation {
	return TuningOperation{Kind: OperationCreate, Ref: ref, IdxKind: kind}
}

func NewDropOperation(ref ColumnRef, kind catalog.IndexKind) TuningOperation {
	return TuningOperation{Kind: OperationDrop, Ref: ref, IdxKind: kind}
}
