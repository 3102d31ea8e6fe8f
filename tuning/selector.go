package tuning

import (
	"sort"

	"github.com/opossum-db/indextuner/utils"
)

// key wraps a plain string so it can live in a utils.Set[T SetKey].
type key string

func (k key) Key() string { return string(k) }

// Selector runs the bounded greedy-with-exchange algorithm over a set of
// Choices, ported from the original engine's GreedySelector::select: sort
// ascending by benefit, then sweep from both ends, either evicting the
// worst currently-installed choice when that frees more benefit than it
// costs, or accepting the best not-yet-installed choice by sacrificing
// just enough already-installed choices to make room for it under the
// budget.
type Selector struct{}

func NewSelector() *Selector { return &Selector{} }

// Select returns the set of ColumnRef keys that should be installed once
// this round completes. Choice.Invalidates is honored dynamically against
// the live accepted set as each candidate is considered (see
// conflictsWithAccepted), not by pre-filtering the whole candidate slice -
// an invalidator that never actually gets accepted (e.g. rejected for
// being budget-infeasible) must not block anything it names.
func (s *Selector) Select(choices []Choice, budgetBytes uint64) utils.Set[key] {
	chosen := utils.NewSet[key]()
	if len(choices) == 0 {
		return chosen
	}

	sorted := make([]Choice, len(choices))
	copy(sorted, choices)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Benefit() != sorted[j].Benefit() {
			return sorted[i].Benefit() < sorted[j].Benefit()
		}
		if sorted[i].Confidence() != sorted[j].Confidence() {
			return sorted[i].Confidence() < sorted[j].Confidence()
		}
		return sorted[i].Key() < sorted[j].Key() // stable lexicographic tie-break
	})

	byKey := make(map[string]Choice, len(sorted))
	for _, c := range sorted {
		byKey[c.Key()] = c
	}

	var memoryConsumption uint64
	for _, c := range sorted {
		if c.IsInstalled() {
			memoryConsumption += c.Cost()
			chosen.Add(key(c.Key()))
		}
	}

	best := len(sorted) - 1
	worst := 0
	for best >= worst {
		w := sorted[worst]
		b := sorted[best]

		if w.Benefit() < 0 && -w.Benefit() > b.Benefit() {
			// evicting the worst choice is more beneficial than accepting
			// the best remaining one.
			if w.IsInstalled() {
				chosen.Remove(key(w.Key()))
				memoryConsumption -= w.Cost()
			}
			worst++
			continue
		}

		if b.IsInstalled() {
			best--
			continue
		}

		if conflictsWithAccepted(b, chosen, byKey) {
			// Before considering b, skip it if any already-accepted choice
			// invalidates it, or b invalidates an already-accepted choice.
			best--
			continue
		}

		// b is a new candidate: figure out how much budget must be freed
		// to fit it, and whether the choices we'd have to evict are worth
		// less than b.
		required := int64(b.Cost()) + int64(memoryConsumption) - int64(budgetBytes)
		var obtainedMemory int64
		var sacrificedBenefit float64
		sacrifice := worst
		for obtainedMemory < required && sacrifice != best {
			c := sorted[sacrifice]
			if c.IsInstalled() {
				sacrificedBenefit += c.Benefit()
				obtainedMemory += int64(c.Cost())
			}
			sacrifice++
		}

		if obtainedMemory >= required && sacrificedBenefit <= b.Benefit() {
			for i := worst; i < sacrifice; i++ {
				c := sorted[i]
				if c.IsInstalled() {
					chosen.Remove(key(c.Key()))
					memoryConsumption -= c.Cost()
				}
			}
			worst = sacrifice
			chosen.Add(key(b.Key()))
			memoryConsumption += b.Cost()
		}
		best--
	}

	return chosen
}

// conflictsWithAccepted reports whether c can't be accepted given the
// choices currently in chosen: either c invalidates one of them, or one of
// them invalidates c. Checked at the moment c is considered, against the
// live accepted set, rather than as a static whole-slice pre-filter - an
// invalidator that is itself rejected (e.g. budget-infeasible) must never
// have blocked anything.
func conflictsWithAccepted(c Choice, chosen utils.Set[key], byKey map[string]Choice) bool {
	for _, k := range c.Invalidates() {
		if chosen.ContainsKey(k) {
			return true
		}
	}
	for _, k := range chosen.ToKeyList() {
		if accepted, ok := byKey[k]; ok {
			for _, invalidated := range accepted.Invalidates() {
				if invalidated == c.Key() {
					return true
				}
			}
		}
	}
	return false
}
