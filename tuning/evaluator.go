package tuning

import (
	"context"
	"fmt"
	"sort"

	"github.com/opossum-db/indextuner/catalog"
	"github.com/opossum-db/indextuner/planio"
	"github.com/opossum-db/indextuner/utils"
)

// EvaluatorConfig carries the selectivity constants the evaluator's
// condition-aware benefit model needs, normally populated from
// config.Config.
type EvaluatorConfig struct {
	SelectivityLike         float64
	SelectivityInDefault    float64
	TypeProposerName        string
	ConfidencePenaltyLambda float64
}

// unanchoredLikeConfidence is the confidence assigned to a LIKE predicate
// whose pattern has no leading constant prefix (e.g. "%foo"), following
// spec.md's "flagged low-confidence downstream" edge case - such a
// predicate can't be satisfied by a prefix index scan, so its saved-work
// estimate is less trustworthy than an anchored one.
const unanchoredLikeConfidence = 0.5

// hasLeadingConstantPrefix reports whether a LIKE pattern starts with a
// literal character rather than a wildcard, i.e. whether a prefix index
// scan could actually narrow it.
func hasLeadingConstantPrefix(pattern string) bool {
	return len(pattern) > 0 && pattern[0] != '%' && pattern[0] != '_'
}

// LastMVCCGatedScans reports how many plan-cache entries the most recent
// Evaluate call skipped for carrying an MVCC validate gate in physical
// mode. Only meaningful after Evaluate has run at least once; a fresh
// Evaluator reports zero.
func (e *Evaluator) LastMVCCGatedScans() int { return e.mvccGatedCount }

func DefaultEvaluatorConfig() EvaluatorConfig {
	return EvaluatorConfig{
		SelectivityLike:         0.25,
		SelectivityInDefault:    0.1,
		TypeProposerName:        "always-group-key",
		ConfidencePenaltyLambda: 0,
	}
}

// Evaluator proposes IndexChoices by replaying observed plan-cache access
// records against table/column statistics, following the five-phase
// sequence of the original engine's BaseIndexEvaluator: setup, inspect
// the cache, aggregate access records into a saved-work total per
// candidate column, then evaluate every existing and every new candidate.
type Evaluator struct {
	catalog      catalog.Catalog
	cache        planio.PlanCache
	mode         planio.Mode
	cfg          EvaluatorConfig
	typeProposer TypeProposer

	mvccGatedCount int
}

func NewEvaluator(cat catalog.Catalog, cache planio.PlanCache, mode planio.Mode, cfg EvaluatorConfig) *Evaluator {
	return &Evaluator{
		catalog:      cat,
		cache:        cache,
		mode:         mode,
		cfg:          cfg,
		typeProposer: LookupTypeProposer(cfg.TypeProposerName),
	}
}

// Evaluate runs one full evaluation pass and returns every IndexChoice -
// both for indexes already installed and for new candidates surfaced by
// the plan cache - with Benefit/Cost/Confidence populated.
func (e *Evaluator) Evaluate(ctx context.Context) ([]IndexChoice, error) {
	savedWork, refsByKey, confidenceByKey := e.aggregateAccessRecords(ctx)

	var choices []IndexChoice
	existingKeys := map[string]bool{}

	tables, err := e.catalog.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("tuning: list tables: %w", err)
	}
	for _, table := range tables {
		installed, err := e.catalog.ListIndexes(ctx, table)
		if err != nil {
			utils.Warningf("tuning: skipping table %s, cannot list indexes: %v", table.Key(), err)
			continue
		}
		for _, idx := range installed {
			ref := ColumnRef{Table: table, Columns: idx.ColumnNames}
			existingKeys[ref.Key()] = true
			choices = append(choices, IndexChoice{
				Ref:                     ref,
				Kind:                    idx.Kind,
				SavedWork:               savedWork[ref.Key()],
				MemoryBytes:             idx.MemoryBytes,
				Installed:               true,
				ConfidenceValue:         confidenceOrDefault(confidenceByKey, ref.Key()),
				ConfidencePenaltyLambda: e.cfg.ConfidencePenaltyLambda,
			})
		}
	}

	newKeys := make([]string, 0, len(savedWork))
	for key := range savedWork {
		newKeys = append(newKeys, key)
	}
	sort.Strings(newKeys)
	for _, key := range newKeys {
		work := savedWork[key]
		if existingKeys[key] {
			continue
		}
		ref, ok := refsByKey[key]
		if !ok {
			continue
		}
		stats, err := e.catalog.TableStatistics(ctx, ref.Table)
		if err != nil {
			utils.Warningf("tuning: skipping candidate %s, no table statistics: %v", key, err)
			continue
		}
		kind := e.proposeType(stats, ref)
		memBytes := e.predictMemoryCost(stats, ref, kind)
		choices = append(choices, IndexChoice{
			Ref:                     ref,
			Kind:                    kind,
			SavedWork:               work,
			MemoryBytes:             memBytes,
			Installed:               false,
			ConfidenceValue:         confidenceOrDefault(confidenceByKey, key),
			ConfidencePenaltyLambda: e.cfg.ConfidencePenaltyLambda,
		})
	}
	return choices, nil
}

// aggregateAccessRecords replays every plan-cache entry through the
// inspector and accumulates, per candidate column, the estimated scan
// work an index on that column would have avoided: unscanned_rows *
// query_frequency, summed across every access record for that column -
// the same accumulation as the original engine's _process_access_record.
// It returns the saved-work totals alongside the ColumnRef each key maps
// to, since a map key alone can't be turned back into a ColumnRef.
func (e *Evaluator) aggregateAccessRecords(ctx context.Context) (map[string]float64, map[string]ColumnRef, map[string]float32) {
	records, skipped := planio.InspectCacheWithStats(e.cache, e.mode)
	e.mvccGatedCount = skipped
	savedWork := map[string]float64{}
	refsByKey := map[string]ColumnRef{}
	confidenceByKey := map[string]float32{}
	for _, rec := range records {
		ref := SingleColumn(rec.Table, rec.Column)
		refsByKey[ref.Key()] = ref
		lowerConfidence(confidenceByKey, ref.Key(), recordConfidence(rec))

		stats, err := e.catalog.TableStatistics(ctx, rec.Table)
		if err != nil {
			utils.Warningf("tuning: skipping access record on %s, no table statistics: %v", ref.Key(), err)
			continue
		}
		colStats, ok := stats.Column(rec.Column)
		if !ok {
			continue
		}
		matchRows := e.matchRows(stats.RowCount, colStats, rec.Condition, rec.CompareValue)
		unscannedRows := float64(stats.RowCount) - matchRows
		if unscannedRows < 0 {
			unscannedRows = 0
		}
		savedWork[ref.Key()] += unscannedRows * float64(rec.QueryFrequency)
	}
	return savedWork, refsByKey, confidenceByKey
}

// recordConfidence mirrors spec.md's LIKE edge case: an unanchored LIKE
// predicate is recorded but flagged low-confidence downstream.
func recordConfidence(rec planio.AccessRecord) float32 {
	if rec.Condition == planio.ConditionLike && !hasLeadingConstantPrefix(rec.Pattern) {
		return unanchoredLikeConfidence
	}
	return 1.0
}

// lowerConfidence keeps the worst (lowest) confidence seen for a key, since
// one low-confidence access record is enough to make the whole choice
// suspect.
func lowerConfidence(m map[string]float32, key string, confidence float32) {
	if existing, ok := m[key]; !ok || confidence < existing {
		m[key] = confidence
	}
}

func confidenceOrDefault(m map[string]float32, key string) float32 {
	if c, ok := m[key]; ok {
		return c
	}
	return 1.0
}

// matchRows estimates how many rows a predicate matches, following
// spec.md §4.2's condition-aware selectivity model.
func (e *Evaluator) matchRows(totalRows uint64, col catalog.ColumnStats, cond planio.PredicateCondition, compare float64) float64 {
	total := float64(totalRows)
	switch cond {
	case planio.ConditionEquals:
		if col.DistinctCount == 0 {
			return 1
		}
		return total / float64(col.DistinctCount)
	case planio.ConditionNotEquals:
		eq := e.matchRows(totalRows, col, planio.ConditionEquals, compare)
		return total - eq
	case planio.ConditionLessThan, planio.ConditionLessThanEquals, planio.ConditionGreaterThan, planio.ConditionGreaterThanEquals, planio.ConditionBetween:
		if !col.HasMinMaxStats || col.Max <= col.Min {
			return total
		}
		fraction := clamp((compare-col.Min)/(col.Max-col.Min), 0, 1)
		switch cond {
		case planio.ConditionGreaterThan, planio.ConditionGreaterThanEquals:
			fraction = 1 - fraction
		}
		return clamp(fraction*total, 0, total)
	case planio.ConditionLike:
		return total * e.cfg.SelectivityLike
	case planio.ConditionIn:
		return total * e.cfg.SelectivityInDefault
	default:
		return total
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (e *Evaluator) proposeType(stats catalog.TableStats, ref ColumnRef) catalog.IndexKind {
	var combined catalog.ColumnStats
	if len(ref.Columns) > 0 {
		combined, _ = stats.Column(ref.Columns[0])
	}
	return e.typeProposer(combined, len(ref.Columns))
}

// predictMemoryCost mirrors _predict_memory_cost: per-chunk memory cost
// times chunk count, using an even distribution of rows/distinct values
// across chunks.
func (e *Evaluator) predictMemoryCost(stats catalog.TableStats, ref ColumnRef, kind catalog.IndexKind) uint64 {
	if stats.ChunkCount == 0 {
		return 0
	}
	var widthBytes, distinct uint64
	for _, col := range ref.Columns {
		cs, ok := stats.Column(col)
		if !ok {
			continue
		}
		widthBytes += cs.WidthBytes
		if cs.DistinctCount > distinct {
			distinct = cs.DistinctCount
		}
	}
	chunkRows := stats.RowCount / stats.ChunkCount
	chunkDistinct := distinct / stats.ChunkCount
	perChunk := catalog.PredictMemoryConsumption(kind, chunkRows, chunkDistinct, widthBytes)
	return perChunk * stats.ChunkCount
}
