package tuning

import "github.com/opossum-db/indextuner/catalog"

// TypeProposer decides which IndexKind to propose for a column that has
// no index yet. The evaluator is parameterized by one, following the
// teacher's pattern of a registry of named, swappable algorithms
// (IndexSelectionAlgo, WorkloadInfoCompressionAlgo).
type TypeProposer func(stats catalog.ColumnStats, columnCount int) catalog.IndexKind

// typeProposers is the registry of named TypeProposer strategies,
// selectable by name from Config.
var typeProposers = map[string]TypeProposer{
	"always-group-key": func(catalog.ColumnStats, int) catalog.IndexKind {
		return catalog.IndexKindGroupKey
	},
	"selectivity-aware": selectivityAwareTypeProposer,
}

// RegisterTypeProposer adds or overrides a named strategy.
func RegisterTypeProposer(name string, proposer TypeProposer) {
	typeProposers[name] = proposer
}

// LookupTypeProposer resolves a strategy by name, defaulting to
// "always-group-key" (spec.md §4.2's mandated default) for an unknown or
// empty name.
func LookupTypeProposer(name string) TypeProposer {
	if p, ok := typeProposers[name]; ok {
		return p
	}
	return typeProposers["always-group-key"]
}

// selectivityAwareTypeProposer implements the heuristic sketched in
// spec.md §4.2's DESIGN NOTES: GroupKey for high-selectivity columns,
// AdaptiveRadix for low-selectivity ones, CompositeGroupKey once more
// than one column participates.
func selectivityAwareTypeProposer(stats catalog.ColumnStats, columnCount int) catalog.IndexKind {
	if columnCount > 1 {
		return catalog.IndexKindCompositeGroupKey
	}
	// GroupKey's dictionary stays small and cheap for low-cardinality
	// columns; past this many distinct values a radix tree's per-node
	// cost model scales better (it never pays for a per-row offset).
	const lowCardinalityThreshold = 10_000
	if stats.DistinctCount <= lowCardinalityThreshold {
		return catalog.IndexKindGroupKey
	}
	return catalog.IndexKindAdaptiveRadix
}
