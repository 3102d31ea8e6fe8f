// Package catalog describes the read-only and mutating surfaces the index
// auto-tuning subsystem uses to observe and change the storage layer it
// does not itself implement: table/column statistics, installed indexes,
// and index create/drop.
package catalog

import (
	"context"
	"fmt"
	"strings"
)

// IndexKind distinguishes index implementations only by their
// memory-prediction function and suitability rules; the tuner never
// depends on an index kind's internal layout.
type IndexKind int

const (
	IndexKindInvalid IndexKind = iota
	IndexKindGroupKey
	IndexKindCompositeGroupKey
	IndexKindAdaptiveRadix
)

func (k IndexKind) String() string {
	switch k {
	case IndexKindGroupKey:
		return "GroupKey"
	case IndexKindCompositeGroupKey:
		return "CompositeGroupKey"
	case IndexKindAdaptiveRadix:
		return "AdaptiveRadix"
	default:
		return "Invalid"
	}
}

// TableName identifies a table within a schema.
type TableName struct {
	SchemaName string
	TableName  string
}

func (t TableName) Key() string {
	return strings.ToLower(fmt.Sprintf("%s.%s", t.SchemaName, t.TableName))
}

func (t TableName) String() string { return t.Key() }

// ColumnStats carries what the evaluator needs to estimate a predicate's
// selectivity and an index's memory footprint for a single column.
type ColumnStats struct {
	ColumnName     string
	DistinctCount  uint64
	Min, Max       float64
	WidthBytes     uint64
	HasMinMaxStats bool
}

// TableStats carries table-level cardinality plus per-column statistics,
// keyed by column name.
type TableStats struct {
	RowCount   uint64
	ChunkCount uint64
	Columns    map[string]ColumnStats
}

func (t TableStats) Column(name string) (ColumnStats, bool) {
	c, ok := t.Columns[strings.ToLower(name)]
	return c, ok
}

// InstalledIndex describes an index the storage layer already maintains.
type InstalledIndex struct {
	Table       TableName
	ColumnNames []string
	Kind        IndexKind
	MemoryBytes uint64
}

func (i InstalledIndex) Key() string {
	return fmt.Sprintf("%s(%s)", i.Table.Key(), strings.Join(i.ColumnNames, ","))
}

// Catalog is the read-only view of tables, columns, statistics and
// currently-installed indexes. Every StorageControlSurface embeds one.
type Catalog interface {
	ListTables(ctx context.Context) ([]TableName, error)
	ListIndexes(ctx context.Context, table TableName) ([]InstalledIndex, error)
	TableStatistics(ctx context.Context, table TableName) (TableStats, error)
}

// StorageControlSurface is the mutation-capable interface the tuner driver
// uses to apply its decisions. PredictMemoryConsumption is pure (no I/O):
// it mirrors the storage layer's own per-kind memory model so the
// evaluator can budget without actually creating anything.
type StorageControlSurface interface {
	Catalog
	CreateIndex(ctx context.Context, table TableName, columnNames []string, kind IndexKind) error
	DropIndex(ctx context.Context, table TableName, columnNames []string, kind IndexKind) error
	PredictMemoryConsumption(kind IndexKind, chunkRows, chunkDistinctValues, valueWidthBytes uint64) uint64
}

// PredictMemoryConsumption implements the per-chunk memory model for each
// IndexKind, grounded on BaseIndex::predict_memory_consumption in the
// original engine: GroupKey pays a dictionary entry per distinct value
// plus an offset per row, CompositeGroupKey pays twice the GroupKey cost
// (the number of indexed columns does not enter the formula beyond the
// combined valueWidthBytes), and AdaptiveRadix pays per-distinct-value
// node overhead that does not grow with row count.
func PredictMemoryConsumption(kind IndexKind, chunkRows, chunkDistinctValues, valueWidthBytes uint64) uint64 {
	switch kind {
	case IndexKindGroupKey:
		return chunkDistinctValues*valueWidthBytes + chunkRows*4
	case IndexKindCompositeGroupKey:
		return 2 * (chunkDistinctValues*valueWidthBytes + chunkRows*4)
	case IndexKindAdaptiveRadix:
		return chunkDistinctValues * 48
	default:
		return 0
	}
}
