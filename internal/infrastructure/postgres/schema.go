package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrTableStructure = errors.New("table structure mismatch")

// ColumnType pairs the DDL spelling with the information_schema data_type.
type ColumnType struct {
	DDL  string
	Info string
}

var (
	Text        = ColumnType{DDL: "TEXT", Info: "text"}
	BigInt      = ColumnType{DDL: "BIGINT", Info: "bigint"}
	Boolean     = ColumnType{DDL: "BOOLEAN", Info: "boolean"}
	Bytea       = ColumnType{DDL: "BYTEA", Info: "bytea"}
	Timestamp   = ColumnType{DDL: "TIMESTAMP", Info: "timestamp without time zone"}
	TimestampTZ = ColumnType{DDL: "TIMESTAMPTZ", Info: "timestamp with time zone"}
)

type Column struct {
	Name       string
	Type       ColumnType
	PrimaryKey bool
}

type Table struct {
	Name    string
	Columns []Column
}

func (t Table) primaryKey() []string {
	var pk []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pk = append(pk, c.Name)
		}
	}
	return pk
}

var TicketsTable = Table{
	Name: "tickets",
	Columns: []Column{
		{Name: "unique_id", Type: Text, PrimaryKey: true},
		{Name: "transaction_id", Type: Text},
		{Name: "seat_number", Type: BigInt},
		{Name: "passport_number", Type: Text},
		{Name: "check_in_type", Type: Text},
		{Name: "checkin_time", Type: Timestamp},
		{Name: "passed_security_time", Type: Timestamp},
	},
}

var RunsTable = Table{
	Name: "simulation_runs",
	Columns: []Column{
		{Name: "id", Type: Text, PrimaryKey: true},
		{Name: "status", Type: Text},
		{Name: "triggered_by", Type: Text},
		{Name: "cooldown_days", Type: BigInt},
		{Name: "force_fill", Type: Boolean},
		{Name: "seed", Type: BigInt},
		{Name: "flights", Type: BigInt},
		{Name: "tickets", Type: BigInt},
		{Name: "underfilled_flights", Type: BigInt},
		{Name: "forced_seats", Type: BigInt},
		{Name: "error", Type: Text},
		{Name: "created_at", Type: TimestampTZ},
		{Name: "finished_at", Type: TimestampTZ},
	},
}

var OutboxTable = Table{
	Name: "outbox",
	Columns: []Column{
		{Name: "id", Type: Text, PrimaryKey: true},
		{Name: "event_type", Type: Text},
		{Name: "payload", Type: Bytea},
		{Name: "status", Type: Text},
		{Name: "correlation_id", Type: Text},
		{Name: "causation_id", Type: Text},
		{Name: "producer", Type: Text},
		{Name: "created_at", Type: TimestampTZ},
		{Name: "updated_at", Type: TimestampTZ},
	},
}

var InboxTable = Table{
	Name: "inbox_events",
	Columns: []Column{
		{Name: "consumer", Type: Text, PrimaryKey: true},
		{Name: "event_id", Type: Text, PrimaryKey: true},
		{Name: "event_type", Type: Text},
		{Name: "correlation_id", Type: Text},
		{Name: "processed_at", Type: TimestampTZ},
	},
}

// ServiceTables are owned by this service and always created when missing.
var ServiceTables = []Table{RunsTable, OutboxTable, InboxTable}

type SchemaManager struct {
	pool   *pgxpool.Pool
	schema string
}

func NewSchemaManager(pool *pgxpool.Pool, schema string) *SchemaManager {
	return &SchemaManager{pool: pool, schema: schema}
}

// Ensure verifies that table exists in the schema with the expected columns,
// types and primary key. With create set, a missing schema or table is
// created; an existing table that differs is always an error.
func (m *SchemaManager) Ensure(ctx context.Context, table Table, create bool) error {
	var exists bool
	err := m.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)`,
		m.schema).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check schema %s: %w", m.schema, err)
	}
	if !exists {
		if !create {
			return fmt.Errorf("%w: schema %q does not exist", ErrTableStructure, m.schema)
		}
		if _, err := m.pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{m.schema}.Sanitize()); err != nil {
			return fmt.Errorf("create schema %s: %w", m.schema, err)
		}
		slog.Info("schema created", "schema", m.schema)
	}

	columns, err := m.columns(ctx, table.Name)
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		if !create {
			return fmt.Errorf("%w: table %s.%s does not exist", ErrTableStructure, m.schema, table.Name)
		}
		if _, err := m.pool.Exec(ctx, createTableSQL(m.schema, table)); err != nil {
			return fmt.Errorf("create table %s.%s: %w", m.schema, table.Name, err)
		}
		slog.Info("table created", "schema", m.schema, "table", table.Name)
		return nil
	}

	pk, err := m.primaryKey(ctx, table.Name)
	if err != nil {
		return err
	}
	return compareStructure(m.schema, table, columns, pk)
}

// EnsureAll runs Ensure for every table, stopping at the first failure.
func (m *SchemaManager) EnsureAll(ctx context.Context, tables []Table, create bool) error {
	for _, t := range tables {
		if err := m.Ensure(ctx, t, create); err != nil {
			return err
		}
	}
	return nil
}

func (m *SchemaManager) columns(ctx context.Context, table string) (map[string]string, error) {
	rows, err := m.pool.Query(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
	`, m.schema, table)
	if err != nil {
		return nil, fmt.Errorf("query columns of %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]string)
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns[strings.ToLower(name)] = strings.ToLower(dataType)
	}
	return columns, rows.Err()
}

func (m *SchemaManager) primaryKey(ctx context.Context, table string) ([]string, error) {
	rows, err := m.pool.Query(ctx, `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_name = tc.constraint_name
		 AND kcu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema = $1
		  AND tc.table_name = $2
	`, m.schema, table)
	if err != nil {
		return nil, fmt.Errorf("query primary key of %s: %w", table, err)
	}
	defer rows.Close()

	var pk []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan primary key column: %w", err)
		}
		pk = append(pk, strings.ToLower(name))
	}
	return pk, rows.Err()
}

func compareStructure(schema string, table Table, existing map[string]string, pk []string) error {
	for _, c := range table.Columns {
		got, ok := existing[c.Name]
		if !ok {
			return fmt.Errorf("%w: missing column %q in table %s.%s", ErrTableStructure, c.Name, schema, table.Name)
		}
		if got != c.Type.Info {
			return fmt.Errorf("%w: type mismatch for column %q: expected %q, got %q", ErrTableStructure, c.Name, c.Type.Info, got)
		}
	}

	want := table.primaryKey()
	have := slices.Clone(pk)
	slices.Sort(want)
	slices.Sort(have)
	if !slices.Equal(want, have) {
		return fmt.Errorf("%w: primary key mismatch in table %s.%s: expected %v, got %v", ErrTableStructure, schema, table.Name, want, have)
	}
	return nil
}

func createTableSQL(schema string, table Table) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(pgx.Identifier{schema, table.Name}.Sanitize())
	b.WriteString(" (")
	for i, c := range table.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgx.Identifier{c.Name}.Sanitize())
		b.WriteByte(' ')
		b.WriteString(c.Type.DDL)
	}

	pk := table.primaryKey()
	if len(pk) > 0 {
		quoted := make([]string, len(pk))
		for i, name := range pk {
			quoted[i] = pgx.Identifier{name}.Sanitize()
		}
		b.WriteString(", PRIMARY KEY (")
		b.WriteString(strings.Join(quoted, ", "))
		b.WriteByte(')')
	}
	b.WriteByte(')')
	return b.String()
}
