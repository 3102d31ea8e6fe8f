package tuning

import (
	"testing"

	"github.com/opossum-db/indextuner/catalog"
)

func TestIndexChoiceImplementsChoice(t *testing.T) {
	table := catalog.TableName{SchemaName: "s", TableName: "t"}
	c := IndexChoice{
		Ref:         SingleColumn(table, "a"),
		Kind:        catalog.IndexKindGroupKey,
		SavedWork:   42,
		MemoryBytes: 1024,
		Installed:   true,
	}
	var choice Choice = c
	if choice.Benefit() != 42 {
		t.Fatalf("expected benefit 42, got %v", choice.Benefit())
	}
	if choice.Cost() != 1024 {
		t.Fatalf("expected cost 1024, got %v", choice.Cost())
	}
	if !choice.IsInstalled() {
		t.Fatalf("expected installed choice")
	}
	if choice.Key() != c.Ref.Key() {
		t.Fatalf("expected key to match ref key")
	}
}

func TestWithInvalidatesAccumulatesWithoutMutatingOriginal(t *testing.T) {
	table := catalog.TableName{SchemaName: "s", TableName: "t"}
	base := IndexChoice{Ref: SingleColumn(table, "a")}
	derived := base.WithInvalidates("x")
	derived2 := derived.WithInvalidates("y")

	if len(base.Invalidates()) != 0 {
		t.Fatalf("expected base choice to remain unmodified, got %v", base.Invalidates())
	}
	if len(derived.Invalidates()) != 1 || derived.Invalidates()[0] != "x" {
		t.Fatalf("unexpected derived invalidates: %v", derived.Invalidates())
	}
	if len(derived2.Invalidates()) != 2 {
		t.Fatalf("expected two invalidated keys, got %v", derived2.Invalidates())
	}
}
