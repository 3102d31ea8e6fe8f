package planio

import (
	"testing"

	"github.com/opossum-db/indextuner/catalog"
)

func mustLen(t *testing.T, records []AccessRecord, n int) {
	if len(records) != n {
		t.Fatalf("expected %d records, got %d: %+v", n, len(records), records)
	}
}

func TestInspectLogicalSinglePredicate(t *testing.T) {
	table := catalog.TableName{SchemaName: "test", TableName: "t"}
	root := NewPredicateNode("a", ConditionEquals, 1, NewStoredTableNode(table))

	records, err := Inspect(root, 5, ModeLogical)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustLen(t, records, 1)
	if records[0].Table != table || records[0].Column != "a" || records[0].QueryFrequency != 5 {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}

func TestInspectLogicalJoinBothSides(t *testing.T) {
	t1 := catalog.TableName{SchemaName: "test", TableName: "t1"}
	t2 := catalog.TableName{SchemaName: "test", TableName: "t2"}
	left := NewPredicateNode("a", ConditionEquals, 1, NewStoredTableNode(t1))
	right := NewPredicateNode("b", ConditionGreaterThan, 2, NewStoredTableNode(t2))
	root := NewJoinNode(left, right)

	records, err := Inspect(root, 3, ModeLogical)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustLen(t, records, 2)
	byColumn := map[string]catalog.TableName{}
	for _, r := range records {
		byColumn[r.Column] = r.Table
	}
	if byColumn["a"] != t1 || byColumn["b"] != t2 {
		t.Fatalf("join children attributed to wrong tables: %+v", byColumn)
	}
}

func TestInspectLogicalPredicateAboveJoinIsSilentlyIgnored(t *testing.T) {
	t1 := catalog.TableName{SchemaName: "test", TableName: "t1"}
	t2 := catalog.TableName{SchemaName: "test", TableName: "t2"}
	join := NewJoinNode(NewStoredTableNode(t1), NewStoredTableNode(t2))
	root := NewPredicateNode("computed", ConditionEquals, 1, join)

	records, err := Inspect(root, 5, ModeLogical)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range records {
		if r.Column == "computed" {
			t.Fatalf("expected predicate above a join to be silently ignored, got record: %+v", r)
		}
	}
}

func TestInspectLogicalCarriesLikePattern(t *testing.T) {
	table := catalog.TableName{SchemaName: "test", TableName: "t"}
	root := NewPredicateNodeLike("name", "smith%", NewStoredTableNode(table))

	records, err := Inspect(root, 1, ModeLogical)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustLen(t, records, 1)
	if records[0].Condition != ConditionLike || records[0].Pattern != "smith%" {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}

func TestInspectPhysicalRejectsMVCCGatedScan(t *testing.T) {
	table := catalog.TableName{SchemaName: "test", TableName: "t"}
	root := NewTableScanNode("a", ConditionEquals, 1, NewValidateNode(NewGetTableNode(table)))

	_, err := Inspect(root, 1, ModePhysical)
	if err != ErrMVCCUnsupported {
		t.Fatalf("expected ErrMVCCUnsupported, got %v", err)
	}
}

func TestInspectPhysicalAcceptsDirectScan(t *testing.T) {
	table := catalog.TableName{SchemaName: "test", TableName: "t"}
	root := NewTableScanNode("a", ConditionEquals, 1, NewGetTableNode(table))

	records, err := Inspect(root, 7, ModePhysical)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustLen(t, records, 1)
	if records[0].Table != table {
		t.Fatalf("unexpected table: %+v", records[0].Table)
	}
}

func TestInspectCacheSkipsMVCCGatedEntries(t *testing.T) {
	table := catalog.TableName{SchemaName: "test", TableName: "t"}
	cache := NewGDFSCache(10)
	cache.Put("good", NewTableScanNode("a", ConditionEquals, 1, NewGetTableNode(table)), 10, 1)
	cache.Put("bad", NewTableScanNode("a", ConditionEquals, 1, NewValidateNode(NewGetTableNode(table))), 10, 1)

	records := InspectCache(cache, ModePhysical)
	mustLen(t, records, 1)
}
