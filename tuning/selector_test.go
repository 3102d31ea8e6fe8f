package tuning

import (
	"testing"
)

// staticChoice is a minimal hand-rolled Choice for exercising the
// selector in isolation, without going through IndexChoice/the evaluator.
type staticChoice struct {
	key         string
	benefit     float64
	cost        uint64
	confidence  float32
	installed   bool
	invalidates []string
}

func (c staticChoice) Key() string           { return c.key }
func (c staticChoice) Benefit() float64       { return c.benefit }
func (c staticChoice) Cost() uint64           { return c.cost }
func (c staticChoice) Confidence() float32    { return c.confidence }
func (c staticChoice) IsInstalled() bool      { return c.installed }
func (c staticChoice) Invalidates() []string  { return c.invalidates }

func TestSelectAcceptsWithinBudget(t *testing.T) {
	choices := []Choice{
		staticChoice{key: "a", benefit: 100, cost: 40, confidence: 1},
		staticChoice{key: "b", benefit: 50, cost: 40, confidence: 1},
	}
	got := NewSelector().Select(choices, 100)
	if got.Size() != 2 {
		t.Fatalf("expected both choices to fit within budget, got %v", got)
	}
}

func TestSelectRespectsBudgetSafety(t *testing.T) {
	choices := []Choice{
		staticChoice{key: "a", benefit: 100, cost: 80, confidence: 1},
		staticChoice{key: "b", benefit: 90, cost: 80, confidence: 1},
	}
	got := NewSelector().Select(choices, 100)
	var total uint64
	byKey := map[string]Choice{"a": choices[0], "b": choices[1]}
	for _, k := range got.ToKeyList() {
		total += byKey[k].Cost()
	}
	if total > 100 {
		t.Fatalf("selection exceeded budget: %d bytes chosen against a 100-byte budget", total)
	}
}

func TestSelectPrefersHigherBenefitUnderTightBudget(t *testing.T) {
	choices := []Choice{
		staticChoice{key: "big", benefit: 1000, cost: 100, confidence: 1},
		staticChoice{key: "small", benefit: 10, cost: 100, confidence: 1},
	}
	got := NewSelector().Select(choices, 100)
	if got.Size() != 1 || !got.ContainsKey("big") {
		t.Fatalf("expected the higher-benefit choice to win under a tight budget, got %v", got)
	}
}

func TestSelectIsDeterministic(t *testing.T) {
	choices := []Choice{
		staticChoice{key: "a", benefit: 100, cost: 40, confidence: 1},
		staticChoice{key: "b", benefit: 100, cost: 40, confidence: 0.5},
		staticChoice{key: "c", benefit: 30, cost: 40, confidence: 1},
	}
	first := NewSelector().Select(choices, 100)
	second := NewSelector().Select(choices, 100)
	if first.String() != second.String() {
		t.Fatalf("expected repeated selection over the same input to be deterministic: %v vs %v", first, second)
	}
}

func TestSelectDropsInvalidatedChoices(t *testing.T) {
	choices := []Choice{
		staticChoice{key: "composite", benefit: 100, cost: 10, confidence: 1, invalidates: []string{"single"}},
		staticChoice{key: "single", benefit: 90, cost: 10, confidence: 1},
	}
	got := NewSelector().Select(choices, 1000)
	if got.ContainsKey("single") {
		t.Fatalf("expected invalidated choice to be excluded once its invalidator is accepted, got %v", got)
	}
	if !got.ContainsKey("composite") {
		t.Fatalf("expected the invalidating choice to still be selectable, got %v", got)
	}
}

// TestSelectDoesNotBlockOnRejectedInvalidator covers the case where the
// invalidating choice never actually gets accepted (here, for being
// budget-infeasible): the choice it names must not be blocked, since
// invalidation only applies once the invalidator is itself chosen.
func TestSelectDoesNotBlockOnRejectedInvalidator(t *testing.T) {
	choices := []Choice{
		staticChoice{key: "composite", benefit: 100, cost: 10_000, confidence: 1, invalidates: []string{"single"}},
		staticChoice{key: "single", benefit: 90, cost: 10, confidence: 1},
	}
	got := NewSelector().Select(choices, 100)
	if got.ContainsKey("composite") {
		t.Fatalf("expected the budget-infeasible invalidator to be rejected, got %v", got)
	}
	if !got.ContainsKey("single") {
		t.Fatalf("expected single to be accepted since its only invalidator was never chosen, got %v", got)
	}
}

func TestSelectEvictsNegativeBenefitInstalledChoice(t *testing.T) {
	choices := []Choice{
		staticChoice{key: "stale", benefit: -50, cost: 10, confidence: 1, installed: true},
		staticChoice{key: "new", benefit: 100, cost: 10, confidence: 1},
	}
	got := NewSelector().Select(choices, 1000)
	if got.ContainsKey("stale") {
		t.Fatalf("expected a negative-benefit installed choice to be evicted, got %v", got)
	}
}

func TestSelectEmptyInputReturnsEmptySet(t *testing.T) {
	got := NewSelector().Select(nil, 1000)
	if got.Size() != 0 {
		t.Fatalf("expected empty selection for empty input, got %v", got)
	}
}
