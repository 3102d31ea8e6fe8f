package tuning

import (
	"testing"

	"github.com/opossum-db/indextuner/catalog"
)

func TestNewCreateOperation(t *testing.T) {
	table := catalog.TableName{SchemaName: "s", TableName: "t"}
	ref := SingleColumn(table, "a")
	op := NewCreateOperation(ref, catalog.IndexKindGroupKey)
	if op.Kind != OperationCreate || op.IsNoOp() {
		t.Fatalf("unexpected operation: %+v", op)
	}
	if op.Ref.Key() != ref.Key() {
		t.Fatalf("unexpected ref: %+v", op.Ref)
	}
}

func TestNewDropOperation(t *testing.T) {
	table := catalog.TableName{SchemaName: "s", TableName: "t"}
	ref := SingleColumn(table, "a")
	op := NewDropOperation(ref, catalog.IndexKindAdaptiveRadix)
	if op.Kind != OperationDrop || op.IsNoOp() {
		t.Fatalf("unexpected operation: %+v", op)
	}
}

func TestZeroValueOperationIsNoOp(t *testing.T) {
	var op TuningOperation
	if !op.IsNoOp() {
		t.Fatalf("expected zero value TuningOperation to be a no-op")
	}
}

func TestOperationKindString(t *testing.T) {
	cases := map[OperationKind]string{
		OperationNoOp:   "NoOp",
		OperationCreate: "Create",
		OperationDrop:   "Drop",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Fatalf("OperationKind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
