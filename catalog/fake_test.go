package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeCreateAndDropIndex(t *testing.T) {
	ctx := context.Background()
	f := NewFake()
	table := TableName{SchemaName: "test", TableName: "t"}
	f.AddTable(table, TableStats{
		RowCount:   1_000_000,
		ChunkCount: 10,
		Columns: map[string]ColumnStats{
			"a": {ColumnName: "a", DistinctCount: 100_000, WidthBytes: 4},
		},
	})

	require.NoError(t, f.CreateIndex(ctx, table, []string{"a"}, IndexKindGroupKey))
	idxs, err := f.ListIndexes(ctx, table)
	require.NoError(t, err)
	require.Len(t, idxs, 1)
	assert.Equal(t, []string{"a"}, idxs[0].ColumnNames)
	assert.Greater(t, idxs[0].MemoryBytes, uint64(0))

	require.NoError(t, f.DropIndex(ctx, table, []string{"a"}, IndexKindGroupKey))
	idxs, err = f.ListIndexes(ctx, table)
	require.NoError(t, err)
	assert.Empty(t, idxs)
}

func TestFakeDropMissingIndexErrors(t *testing.T) {
	ctx := context.Background()
	f := NewFake()
	table := TableName{SchemaName: "test", TableName: "t"}
	f.AddTable(table, TableStats{RowCount: 10, ChunkCount: 1, Columns: map[string]ColumnStats{}})
	err := f.DropIndex(ctx, table, []string{"a"}, IndexKindGroupKey)
	assert.Error(t, err)
}

func TestPredictMemoryConsumptionByKind(t *testing.T) {
	groupKey := PredictMemoryConsumption(IndexKindGroupKey, 1000, 100, 4)
	composite := PredictMemoryConsumption(IndexKindCompositeGroupKey, 1000, 100, 4)
	radix := PredictMemoryConsumption(IndexKindAdaptiveRadix, 1000, 100, 4)

	assert.Equal(t, 2*groupKey, composite)
	assert.Equal(t, uint64(100*48), radix)
}
