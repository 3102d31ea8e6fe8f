package catalog

import (
	"context"
	"fmt"
	"sync"
)

// Fake is an in-memory StorageControlSurface used by tests and by the CLI's
// offline mode. It never touches a real storage engine; CreateIndex and
// DropIndex just mutate the in-memory installed-index set, and
// PredictMemoryConsumption delegates to the package-level model.
type Fake struct {
	mu      sync.Mutex
	tables  map[string]TableStats
	order   []TableName
	indexes map[string][]InstalledIndex // keyed by TableName.Key()
}

func NewFake() *Fake {
	return &Fake{
		tables:  make(map[string]TableStats),
		indexes: make(map[string][]InstalledIndex),
	}
}

func (f *Fake) AddTable(name TableName, stats TableStats) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tables[name.Key()]; !ok {
		f.order = append(f.order, name)
	}
	f.tables[name.Key()] = stats
}

func (f *Fake) AddInstalledIndex(idx InstalledIndex) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexes[idx.Table.Key()] = append(f.indexes[idx.Table.Key()], idx)
}

func (f *Fake) ListTables(ctx context.Context) ([]TableName, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]TableName, len(f.order))
	copy(out, f.order)
	return out, nil
}

func (f *Fake) ListIndexes(ctx context.Context, table TableName) ([]InstalledIndex, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	src := f.indexes[table.Key()]
	out := make([]InstalledIndex, len(src))
	copy(out, src)
	return out, nil
}

func (f *Fake) TableStatistics(ctx context.Context, table TableName) (TableStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats, ok := f.tables[table.Key()]
	if !ok {
		return TableStats{}, fmt.Errorf("catalog: unknown table %s", table.Key())
	}
	return stats, nil
}

func (f *Fake) CreateIndex(ctx context.Context, table TableName, columnNames []string, kind IndexKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tables[table.Key()]; !ok {
		return fmt.Errorf("catalog: unknown table %s", table.Key())
	}
	idx := InstalledIndex{Table: table, ColumnNames: append([]string(nil), columnNames...), Kind: kind}
	idx.MemoryBytes = f.estimateLocked(table, columnNames, kind)
	f.indexes[table.Key()] = append(f.indexes[table.Key()], idx)
	return nil
}

func (f *Fake) DropIndex(ctx context.Context, table TableName, columnNames []string, kind IndexKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := InstalledIndex{Table: table, ColumnNames: columnNames}.Key()
	existing := f.indexes[table.Key()]
	for i, idx := range existing {
		if idx.Key() == key {
			f.indexes[table.Key()] = append(existing[:i], existing[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("catalog: index %s not installed on %s", key, table.Key())
}

func (f *Fake) PredictMemoryConsumption(kind IndexKind, chunkRows, chunkDistinctValues, valueWidthBytes uint64) uint64 {
	return PredictMemoryConsumption(kind, chunkRows, chunkDistinctValues, valueWidthBytes)
}

func (f *Fake) estimateLocked(table TableName, columnNames []string, kind IndexKind) uint64 {
	stats, ok := f.tables[table.Key()]
	if !ok || stats.ChunkCount == 0 {
		return 0
	}
	var widthBytes uint64
	var distinct uint64
	for _, name := range columnNames {
		cs, ok := stats.Column(name)
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
	if chunkDistinct == 0 {
		chunkDistinct = distinct
	}
	return f.PredictMemoryConsumption(kind, chunkRows, chunkDistinct, widthBytes) * stats.ChunkCount
}

var _ StorageControlSurface = (*Fake)(nil)
