package tuning

import "github.com/opossum-db/indextuner/utils"

// Planner diffs the currently-installed chosen set against the Selector's
// desired set into an ordered TuningOperation sequence: every Drop
// precedes every Create, so a column being re-indexed under a different
// IndexKind always frees its old index's budget before claiming the new
// one. ColumnRefs that are both installed and desired, or neither, never
// produce an operation.
type Planner struct{}

func NewPlanner() *Planner { return &Planner{} }

// Plan takes the full choice set the Evaluator produced (so it can look
// up each ColumnRef's proposed IndexKind) and the desired set the
// Selector computed, and returns Drop operations for every installed
// choice not in desired followed by Create operations for every desired
// choice not already installed.
func (p *Planner) Plan(choices []IndexChoice, desired utils.Set[key]) []TuningOperation {
	var drops, creates []TuningOperation
	for _, c := range choices {
		inDesired := desired.Contains(key(c.Key()))
		switch {
		case c.Installed && !inDesired:
			drops = append(drops, NewDropOperation(c.Ref, c.Kind))
		case !c.Installed && inDesired:
			creates = append(creates, NewCreateOperation(c.Ref, c.Kind))
		}
	}
	ops := make([]TuningOperation, 0, len(drops)+len(creates))
	ops = append(ops, drops...)
	ops = append(ops, creates...)
	return ops
}
