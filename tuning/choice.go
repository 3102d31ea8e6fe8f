package tuning

import "github.com/opossum-db/indextuner/catalog"

// Choice is the common capability set a TuningChoice exposes to the
// Selector and Planner, mirroring tuning_choice.hpp's
// desirability()/cost()/confidence()/is_currently_chosen()/invalidates()
// contract. The Selector never depends on the concrete IndexChoice
// struct, only on this interface. The Planner takes IndexChoice values,
// since it needs each choice's Ref and index Kind to build operations.
type Choice interface {
	// Key identifies this choice for map/Set membership and logging.
	Key() string
	// Benefit is the estimated performance improvement from accepting
	// this choice. Only comparable among choices from the same evaluator.
	Benefit() float64
	// Cost is the absolute memory cost in bytes this choice imposes if
	// accepted, counted against the tuner's shared budget.
	Cost() uint64
	// Confidence is how certain the producing evaluator was; used as a
	// tie-break when two choices have equal benefit.
	Confidence() float32
	// IsInstalled reports whether this choice is already present in the
	// current system state.
	IsInstalled() bool
	// Invalidates lists the keys of other choices that can no longer be
	// chosen if this choice is accepted.
	Invalidates() []string
}

// IndexChoice is the only Choice kind this package currently produces: an
// index on a ColumnRef, proposed or already installed.
type IndexChoice struct {
	Ref                     ColumnRef
	Kind                    catalog.IndexKind
	SavedWork               float64 // original_source's saved_work: estimate of avoided scan work
	MemoryBytes             uint64
	Installed               bool
	ConfidenceValue         float32 // zero value reads as 1.0 via Confidence(); lowered for low-confidence predicates (e.g. unanchored LIKE)
	ConfidencePenaltyLambda float64 // λ in Benefit's saved_work - λ*(1-confidence); 0 disables the penalty
	invalidates             []string
}

func (c IndexChoice) Key() string { return c.Ref.Key() }

// Benefit follows saved_work - λ*(1-confidence): a choice the evaluator is
// unsure about is worth less than its raw saved-work estimate suggests.
func (c IndexChoice) Benefit() float64 {
	return c.SavedWork - c.ConfidencePenaltyLambda*(1-float64(c.Confidence()))
}
func (c IndexChoice) Cost() uint64 { return c.MemoryBytes }
func (c IndexChoice) Confidence() float32 {
	if c.ConfidenceValue == 0 {
		return 1.0
	}
	return c.ConfidenceValue
}
func (c IndexChoice) IsInstalled() bool     { return c.Installed }
func (c IndexChoice) Invalidates() []string { return c.invalidates }

// WithInvalidates returns a copy of c that invalidates the given choice
// keys if accepted - for example, to mark that a CompositeGroupKey index
// over (a, b) makes a single-column index over the same leading column
// redundant. The Evaluator does not call it; its choices carry no
// invalidated keys.
func (c IndexChoice) WithInvalidates(keys ...string) IndexChoice {
	c.invalidates = append(append([]string{}, c.invalidates...), keys...)
	return c
}

var _ Choice = IndexChoice{}
