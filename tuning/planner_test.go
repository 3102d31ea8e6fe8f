package tuning

import (
	"testing"

	"github.com/opossum-db/indextuner/catalog"
	"github.com/opossum-db/indextuner/utils"
)

func TestPlanEmitsCreateForDesiredUninstalledChoice(t *testing.T) {
	table := catalog.TableName{SchemaName: "s", TableName: "t"}
	ref := SingleColumn(table, "a")
	choices := []IndexChoice{{Ref: ref, Kind: catalog.IndexKindGroupKey, Installed: false}}
	desired := utils.NewSet[key]()
	desired.Add(key(ref.Key()))

	ops := NewPlanner().Plan(choices, desired)
	if len(ops) != 1 || ops[0].Kind != OperationCreate {
		t.Fatalf("expected a single Create operation, got %+v", ops)
	}
}

func TestPlanEmitsDropForInstalledChoiceNoLongerDesired(t *testing.T) {
	table := catalog.TableName{SchemaName: "s", TableName: "t"}
	ref := SingleColumn(table, "a")
	choices := []IndexChoice{{Ref: ref, Kind: catalog.IndexKindGroupKey, Installed: true}}
	desired := utils.NewSet[key]()

	ops := NewPlanner().Plan(choices, desired)
	if len(ops) != 1 || ops[0].Kind != OperationDrop {
		t.Fatalf("expected a single Drop operation, got %+v", ops)
	}
}

func TestPlanEmitsNothingForIdempotentState(t *testing.T) {
	table := catalog.TableName{SchemaName: "s", TableName: "t"}
	installedRef := SingleColumn(table, "a")
	absentRef := SingleColumn(table, "b")
	choices := []IndexChoice{
		{Ref: installedRef, Kind: catalog.IndexKindGroupKey, Installed: true},
		{Ref: absentRef, Kind: catalog.IndexKindGroupKey, Installed: false},
	}
	desired := utils.NewSet[key]()
	desired.Add(key(installedRef.Key())) // already installed and still desired

	ops := NewPlanner().Plan(choices, desired)
	if len(ops) != 0 {
		t.Fatalf("expected no operations when state already matches the desired set, got %+v", ops)
	}
}

func TestPlanOrdersDropsBeforeCreates(t *testing.T) {
	table := catalog.TableName{SchemaName: "s", TableName: "t"}
	dropRef := SingleColumn(table, "old")
	createRef := SingleColumn(table, "new")
	choices := []IndexChoice{
		{Ref: dropRef, Kind: catalog.IndexKindGroupKey, Installed: true},
		{Ref: createRef, Kind: catalog.IndexKindGroupKey, Installed: false},
	}
	desired := utils.NewSet[key]()
	desired.Add(key(createRef.Key()))

	ops := NewPlanner().Plan(choices, desired)
	if len(ops) != 2 {
		t.Fatalf("expected exactly two operations, got %+v", ops)
	}
	if ops[0].Kind != OperationDrop || ops[1].Kind != OperationCreate {
		t.Fatalf("expected Drop before Create, got %+v", ops)
	}
}
