package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/opossum-db/indextuner/utils"
)

// SQLControlSurface is a StorageControlSurface backed by a live
// MySQL/TiDB-compatible engine. It manages indexes through hypothetical
// ("what-if") DDL the way a cost-based what-if optimizer would, rather
// than materializing real indexes, so a tuning round can be dry-run
// against production statistics without paying the real build cost.
type SQLControlSurface struct {
	db  *sql.DB
	dsn string
}

// NewSQLControlSurface opens a connection pinned to a single connection:
// hypothetical index state is session-scoped, so the pool must never hand
// out more than one connection at a time.
func NewSQLControlSurface(dsn string) (*SQLControlSurface, error) {
	utils.Debugf("catalog: connecting to %v", dsn)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: open dsn: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("catalog: ping: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return &SQLControlSurface{db: db, dsn: dsn}, nil
}

func (s *SQLControlSurface) Close() error { return s.db.Close() }

func (s *SQLControlSurface) ListTables(ctx context.Context) ([]TableName, error) {
	rows, err := s.db.QueryContext(ctx, `select table_schema, table_name from information_schema.tables
		where table_schema not in ('information_schema', 'mysql', 'performance_schema', 'sys')`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list tables: %w", err)
	}
	defer rows.Close()
	var out []TableName
	for rows.Next() {
		var t TableName
		if err := rows.Scan(&t.SchemaName, &t.TableName); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLControlSurface) ListIndexes(ctx context.Context, table TableName) ([]InstalledIndex, error) {
	rows, err := s.db.QueryContext(ctx, `select index_name, column_name from information_schema.statistics
		where table_schema = ? and table_name = ? order by index_name, seq_in_index`,
		table.SchemaName, table.TableName)
	if err != nil {
		return nil, fmt.Errorf("catalog: list indexes on %s: %w", table.Key(), err)
	}
	defer rows.Close()
	byName := map[string]*InstalledIndex{}
	var order []string
	for rows.Next() {
		var indexName, columnName string
		if err := rows.Scan(&indexName, &columnName); err != nil {
			return nil, err
		}
		idx, ok := byName[indexName]
		if !ok {
			idx = &InstalledIndex{Table: table, Kind: IndexKindGroupKey}
			byName[indexName] = idx
			order = append(order, indexName)
		}
		idx.ColumnNames = append(idx.ColumnNames, strings.ToLower(columnName))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]InstalledIndex, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out, nil
}

func (s *SQLControlSurface) TableStatistics(ctx context.Context, table TableName) (TableStats, error) {
	var rowCount uint64
	row := s.db.QueryRowContext(ctx, `select table_rows from information_schema.tables
		where table_schema = ? and table_name = ?`, table.SchemaName, table.TableName)
	if err := row.Scan(&rowCount); err != nil {
		return TableStats{}, fmt.Errorf("catalog: table stats for %s: %w", table.Key(), err)
	}

	rows, err := s.db.QueryContext(ctx, `select column_name, cardinality, character_octet_length
		from information_schema.statistics where table_schema = ? and table_name = ? group by column_name, cardinality, character_octet_length`,
		table.SchemaName, table.TableName)
	if err != nil {
		return TableStats{}, fmt.Errorf("catalog: column stats for %s: %w", table.Key(), err)
	}
	defer rows.Close()
	cols := map[string]ColumnStats{}
	for rows.Next() {
		var name string
		var cardinality sql.NullInt64
		var octetLen sql.NullInt64
		if err := rows.Scan(&name, &cardinality, &octetLen); err != nil {
			return TableStats{}, err
		}
		name = strings.ToLower(name)
		width := uint64(8)
		if octetLen.Valid && octetLen.Int64 > 0 {
			width = uint64(octetLen.Int64)
		}
		cols[name] = ColumnStats{ColumnName: name, DistinctCount: uint64(cardinality.Int64), WidthBytes: width}
	}
	return TableStats{RowCount: rowCount, ChunkCount: chunkCountFor(rowCount), Columns: cols}, rows.Err()
}

// chunkCountFor mirrors the engine's fixed chunk size for the purposes of
// per-chunk memory prediction when the real chunk layout is not visible
// through information_schema.
func chunkCountFor(rowCount uint64) uint64 {
	const chunkSize = 100_000
	if rowCount == 0 {
		return 1
	}
	n := rowCount / chunkSize
	if rowCount%chunkSize != 0 {
		n++
	}
	if n == 0 {
		n = 1
	}
	return n
}

func (s *SQLControlSurface) CreateIndex(ctx context.Context, table TableName, columnNames []string, kind IndexKind) error {
	indexName := hypoIndexName(table, columnNames)
	stmt := fmt.Sprintf("create index %s type hypo on %s.%s (%s)",
		indexName, table.SchemaName, table.TableName, strings.Join(columnNames, ", "))
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		utils.Errorf("catalog: failed to create hypo index %q: %v", stmt, err)
		return fmt.Errorf("catalog: create index: %w", err)
	}
	return nil
}

func (s *SQLControlSurface) DropIndex(ctx context.Context, table TableName, columnNames []string, kind IndexKind) error {
	indexName := hypoIndexName(table, columnNames)
	stmt := fmt.Sprintf("drop hypo index %s on %s.%s", indexName, table.SchemaName, table.TableName)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("catalog: drop index: %w", err)
	}
	return nil
}

func (s *SQLControlSurface) PredictMemoryConsumption(kind IndexKind, chunkRows, chunkDistinctValues, valueWidthBytes uint64) uint64 {
	return PredictMemoryConsumption(kind, chunkRows, chunkDistinctValues, valueWidthBytes)
}

func hypoIndexName(table TableName, columnNames []string) string {
	return fmt.Sprintf("idxtuner_%s", strings.Join(columnNames, "_"))
}

var _ StorageControlSurface = (*SQLControlSurface)(nil)
