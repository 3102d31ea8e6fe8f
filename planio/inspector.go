package planio

import (
	"errors"

	"github.com/opossum-db/indextuner/catalog"
	"github.com/opossum-db/indextuner/utils"
)

// ErrMVCCUnsupported is returned when a physical-mode plan's table scan is
// gated by an intervening Validate node. MVCC-bearing plans are not
// analyzable in physical mode; the caller must re-run without MVCC or
// supply logical plans instead. The caller is expected to skip the whole
// plan entry and keep going.
var ErrMVCCUnsupported = errors.New("planio: table scan is MVCC-gated, not analyzable in physical mode")

// AccessRecord is one observed predicate evaluation against a column,
// scaled by how often the owning query recurred in the plan cache.
type AccessRecord struct {
	Table          catalog.TableName
	Column         string
	Condition      PredicateCondition
	CompareValue   float64
	Pattern        string // only meaningful when Condition == ConditionLike
	QueryFrequency uint64
}

// patternOf returns n's LIKE pattern, or "" for any other condition -
// Pattern() panics on a non-LIKE node, so callers must not call it blindly.
func patternOf(n PlanNode) string {
	if n.Condition() != ConditionLike {
		return ""
	}
	return n.Pattern()
}

// Mode selects which plan shapes the inspector recognizes: a logical plan
// (Predicate/Join/StoredTable) or a physical plan (TableScan directly over
// GetTable; a Validate gate in between makes the plan unanalyzable).
type Mode int

const (
	ModeLogical Mode = iota
	ModePhysical
)

// Inspect walks a single plan tree and returns the access records it
// contains, scaled by frequency. In physical mode, a table scan whose
// immediate input is a Validate/MVCC gate is rejected with
// ErrMVCCUnsupported for the whole plan instead of being silently
// skipped, so the caller can log and account for it; only a table scan
// feeding directly from a GetTable is analyzable.
func Inspect(root PlanNode, frequency uint64, mode Mode) ([]AccessRecord, error) {
	if mode == ModePhysical {
		return inspectPhysical(root, frequency)
	}
	records, _ := inspectLogical(root, frequency)
	return records, nil
}

// inspectLogical recurses to the StoredTable leaf of the subtree rooted at
// n before it knows which table a Predicate chain belongs to, then
// attributes that table to every record collected along the way back up.
// A Join's two subtrees are inspected independently, since each can
// reference a different table.
func inspectLogical(n PlanNode, frequency uint64) ([]AccessRecord, catalog.TableName) {
	switch n.Kind() {
	case NodeKindStoredTable:
		return nil, n.Table()
	case NodeKindPredicate:
		child := n.Children()[0]
		records, table := inspectLogical(child, frequency)
		if table == (catalog.TableName{}) {
			// the predicate's column never resolved to a stored table (e.g.
			// it sits above a Join); silently ignored rather than recorded
			// against a bogus table.
			return records, table
		}
		records = append(records, AccessRecord{
			Table:          table,
			Column:         n.Column(),
			Condition:      n.Condition(),
			CompareValue:   n.CompareValue(),
			Pattern:        patternOf(n),
			QueryFrequency: frequency,
		})
		return records, table
	case NodeKindJoin:
		var all []AccessRecord
		for _, child := range n.Children() {
			records, _ := inspectLogical(child, frequency)
			all = append(all, records...)
		}
		return all, catalog.TableName{}
	default:
		var all []AccessRecord
		for _, child := range n.Children() {
			records, _ := inspectLogical(child, frequency)
			all = append(all, records...)
		}
		return all, catalog.TableName{}
	}
}

func inspectPhysical(root PlanNode, frequency uint64) ([]AccessRecord, error) {
	var records []AccessRecord
	queue := []PlanNode{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		if n.Kind() == NodeKindTableScan {
			children := n.Children()
			if len(children) == 1 && children[0].Kind() == NodeKindValidate {
				return nil, ErrMVCCUnsupported
			}
			if len(children) == 1 && children[0].Kind() == NodeKindGetTable {
				records = append(records, AccessRecord{
					Table:          children[0].Table(),
					Column:         n.Column(),
					Condition:      n.Condition(),
					CompareValue:   n.CompareValue(),
					Pattern:        patternOf(n),
					QueryFrequency: frequency,
				})
			}
			// a table scan feeding from anything else does not resolve to
			// a stored table and is silently ignored.
			continue
		}
		queue = append(queue, n.Children()...)
	}
	return records, nil
}

// InspectCache walks every entry of a plan cache snapshot and aggregates
// their access records, logging a warning and skipping any entry whose
// plan shape the inspector does not support rather than aborting the
// round.
func InspectCache(cache PlanCache, mode Mode) []AccessRecord {
	records, _ := InspectCacheWithStats(cache, mode)
	return records
}

// InspectCacheWithStats behaves like InspectCache but also returns how
// many cache entries were skipped for carrying an MVCC validate gate, so
// callers can feed it into a metric without the inspector depending on
// the metrics package.
func InspectCacheWithStats(cache PlanCache, mode Mode) ([]AccessRecord, int) {
	var all []AccessRecord
	skipped := 0
	for _, entry := range cache.OrderedEntries() {
		records, err := Inspect(entry.Plan, entry.Frequency, mode)
		if err != nil {
			utils.Warningf("planio: skipping cache entry %q: %v", entry.Key, err)
			skipped++
			continue
		}
		all = append(all, records...)
	}
	return all, skipped
}
