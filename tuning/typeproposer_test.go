package tuning

import (
	"testing"

	"github.com/opossum-db/indextuner/catalog"
)

func TestLookupTypeProposerDefaultsToAlwaysGroupKey(t *testing.T) {
	p := LookupTypeProposer("nonexistent-strategy")
	if got := p(catalog.ColumnStats{DistinctCount: 1_000_000}, 2); got != catalog.IndexKindGroupKey {
		t.Fatalf("expected default proposer to always return GroupKey, got %v", got)
	}
	if got := LookupTypeProposer("")(catalog.ColumnStats{}, 1); got != catalog.IndexKindGroupKey {
		t.Fatalf("expected empty name to resolve to always-group-key, got %v", got)
	}
}

func TestSelectivityAwareTypeProposerMultiColumn(t *testing.T) {
	p := LookupTypeProposer("selectivity-aware")
	if got := p(catalog.ColumnStats{DistinctCount: 5}, 2); got != catalog.IndexKindCompositeGroupKey {
		t.Fatalf("expected multi-column candidate to propose CompositeGroupKey, got %v", got)
	}
}

func TestSelectivityAwareTypeProposerCardinalityThreshold(t *testing.T) {
	p := LookupTypeProposer("selectivity-aware")
	if got := p(catalog.ColumnStats{DistinctCount: 100}, 1); got != catalog.IndexKindGroupKey {
		t.Fatalf("expected low-cardinality column to propose GroupKey, got %v", got)
	}
	if got := p(catalog.ColumnStats{DistinctCount: 1_000_000}, 1); got != catalog.IndexKindAdaptiveRadix {
		t.Fatalf("expected high-cardinality column to propose AdaptiveRadix, got %v", got)
	}
}

func TestRegisterTypeProposerOverridesRegistry(t *testing.T) {
	RegisterTypeProposer("always-adaptive-radix-for-test", func(catalog.ColumnStats, int) catalog.IndexKind {
		return catalog.IndexKindAdaptiveRadix
	})
	got := LookupTypeProposer("always-adaptive-radix-for-test")(catalog.ColumnStats{}, 1)
	if got != catalog.IndexKindAdaptiveRadix {
		t.Fatalf("expected registered proposer to be used, got %v", got)
	}
}
