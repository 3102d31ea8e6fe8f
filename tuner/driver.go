// Package tuner orchestrates one round of index auto-tuning: evaluate
// candidates against the plan cache, select a budget-constrained subset,
// plan the operations that turn the current state into that subset, and
// apply them to the storage control surface.
package tuner

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/opossum-db/indextuner/catalog"
	"github.com/opossum-db/indextuner/metrics"
	"github.com/opossum-db/indextuner/planio"
	"github.com/opossum-db/indextuner/tuning"
	"github.com/opossum-db/indextuner/utils"
)

// Config carries the round-scoped knobs the driver needs that aren't
// already captured by the Evaluator it wraps.
type Config struct {
	MemoryBudgetBytes uint64
	Timeout           time.Duration
	PlanMode          planio.Mode
}

// RoundResult summarizes one round that reached the apply phase, whether
// or not every operation applied; a round aborted before that returns no
// RoundResult.
type RoundResult struct {
	Status           Status
	ChoicesEvaluated int
	ChoicesSelected  int
	BudgetUsedBytes  uint64
	Operations       []tuning.TuningOperation
	OperationErrors  error // an aggregated multierr, nil if every operation applied
	MVCCGatedScans   int
	Duration         time.Duration
}

// Driver wires the Evaluator/Selector/Planner pipeline to a concrete
// StorageControlSurface, following the round-then-apply shape of the
// original engine's Tuner::_execute but decomposed into the Go-level
// Evaluator/Selector/Planner stages this port uses instead of one
// monolithic tuning loop.
type Driver struct {
	surface   catalog.StorageControlSurface
	cache     planio.PlanCache
	evaluator *tuning.Evaluator
	selector  *tuning.Selector
	planner   *tuning.Planner
	cfg       Config
	metrics   *metrics.Metrics

	mu     sync.Mutex
	status Status
}

// ErrRoundInProgress is returned by RunRound when a previous round is
// still in flight. RunRound logs a warning before returning it; the caller
// (cmd/tune.go's ticker loop) waits for the next tick rather than treating
// it as fatal.
var ErrRoundInProgress = errors.New("tuner: a round is already in progress")

// New builds a Driver. metrics may be nil, in which case the driver runs
// without recording any Prometheus observations.
func New(surface catalog.StorageControlSurface, cache planio.PlanCache, evalCfg tuning.EvaluatorConfig, cfg Config, m *metrics.Metrics) *Driver {
	return &Driver{
		surface:   surface,
		cache:     cache,
		evaluator: tuning.NewEvaluator(surface, cache, cfg.PlanMode, evalCfg),
		selector:  tuning.NewSelector(),
		planner:   tuning.NewPlanner(),
		cfg:       cfg,
		metrics:   m,
		status:    StatusIdle,
	}
}

// Status reports the driver's current lifecycle state.
func (d *Driver) Status() Status { return d.status }

// RunRound executes exactly one evaluate/select/plan/apply cycle, bounded
// by cfg.Timeout. A context cancellation or deadline during evaluation
// aborts the round with StatusCancelled/StatusTimeout and applies
// nothing; a context cancellation mid-apply still returns the operations
// already committed, with the remainder folded into OperationErrors.
func (d *Driver) RunRound(ctx context.Context) (*RoundResult, error) {
	if !d.mu.TryLock() {
		utils.Warningf("tuner: skipping tick, previous round still running")
		return nil, ErrRoundInProgress
	}
	defer d.mu.Unlock()

	start := time.Now()
	d.status = StatusRunning

	roundCtx := ctx
	var cancel context.CancelFunc
	if d.cfg.Timeout > 0 {
		roundCtx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	if err := roundCtx.Err(); err != nil {
		d.status = statusForErr(roundCtx, err)
		d.observeRound(start, true)
		return nil, err
	}

	choices, err := d.evaluator.Evaluate(roundCtx)
	if err != nil {
		d.status = statusForErr(roundCtx, err)
		d.observeRound(start, true)
		return nil, err
	}
	if err := roundCtx.Err(); err != nil {
		d.status = statusForErr(roundCtx, err)
		d.observeRound(start, true)
		return nil, err
	}

	asChoices := make([]tuning.Choice, len(choices))
	for i, c := range choices {
		asChoices[i] = c
	}

	desired := d.selector.Select(asChoices, d.cfg.MemoryBudgetBytes)
	ops := d.planner.Plan(choices, desired)

	var usedBytes uint64
	for _, c := range choices {
		if desired.ContainsKey(c.Ref.Key()) {
			usedBytes += c.MemoryBytes
		}
	}

	result := &RoundResult{
		ChoicesEvaluated: len(choices),
		ChoicesSelected:  desired.Size(),
		BudgetUsedBytes:  usedBytes,
		Operations:       ops,
		MVCCGatedScans:   d.evaluator.LastMVCCGatedScans(),
	}

	result.OperationErrors = d.apply(roundCtx, ops)
	if result.OperationErrors != nil {
		d.status = StatusFailed
	} else {
		d.status = StatusCompleted
	}
	result.Status = d.status
	result.Duration = time.Since(start)

	if d.metrics != nil {
		d.metrics.ObserveSelection(result.ChoicesEvaluated, result.ChoicesSelected, result.BudgetUsedBytes, d.cfg.MemoryBudgetBytes)
		for i := 0; i < result.MVCCGatedScans; i++ {
			d.metrics.ObserveMVCCGatedScan()
		}
	}
	d.observeRound(start, result.OperationErrors != nil)

	return result, nil
}

// apply commits every operation in order (drops before creates, per
// Planner.Plan's contract), aggregating per-operation failures with
// multierr instead of aborting on the first one - a single bad Drop must
// not block the Creates that follow it.
func (d *Driver) apply(ctx context.Context, ops []tuning.TuningOperation) error {
	var errs error
	for _, op := range ops {
		opStart := time.Now()
		err := ctx.Err()
		if err == nil {
			err = d.applyOne(ctx, op)
		}
		if d.metrics != nil {
			d.metrics.ObserveOperation(op.Kind.String(), time.Since(opStart).Seconds(), err != nil)
		}
		if err != nil {
			utils.Errorf("tuner: %s %s failed: %v", op.Kind, op.Ref, err)
			errs = multierr.Append(errs, err)
			continue
		}
		utils.Infof("tuner: %s %s (%s) applied", op.Kind, op.Ref, op.IdxKind)
	}
	return errs
}

func (d *Driver) applyOne(ctx context.Context, op tuning.TuningOperation) error {
	switch op.Kind {
	case tuning.OperationCreate:
		return d.surface.CreateIndex(ctx, op.Ref.Table, op.Ref.Columns, op.IdxKind)
	case tuning.OperationDrop:
		return d.surface.DropIndex(ctx, op.Ref.Table, op.Ref.Columns, op.IdxKind)
	default:
		return nil
	}
}

func (d *Driver) observeRound(start time.Time, failed bool) {
	if d.metrics == nil {
		return
	}
	d.metrics.ObserveRound(time.Since(start).Seconds(), failed)
}

func statusForErr(ctx context.Context, err error) Status {
	if ctx.Err() == context.DeadlineExceeded {
		return StatusTimeout
	}
	if ctx.Err() == context.Canceled {
		return StatusCancelled
	}
	return StatusFailed
}
