package postgres

import (
	"fmt"

	"github.com/denismitr/mversion/internal/store"
)

// DriverName is the name the pgx stdlib adapter registers with database/sql
const DriverName = "pgx"

type Dialect struct {
	migrationsTable string
}

var _ store.Dialect = (*Dialect)(nil)

func NewDialect(migrationsTable string) *Dialect {
	if migrationsTable == "" {
		migrationsTable = store.DefaultMigrationsTable
	}

	return &Dialect{migrationsTable: migrationsTable}
}

func (d Dialect) DriverName() string {
	return DriverName
}

func (d Dialect) MigrationsTable() string {
	return d.migrationsTable
}

func (d Dialect) ShowTablesQuery() string {
	return "SELECT tablename FROM pg_catalog.pg_tables WHERE schemaname = current_schema();"
}

func (d Dialect) CreateTableQuery() string {
	const createSQL = `
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			version BIGINT NULL,
			type VARCHAR(50) NOT NULL,
			created TIMESTAMP NOT NULL
		);
	`

	return fmt.Sprintf(createSQL, d.migrationsTable)
}

func (d Dialect) DropTableQuery() string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", d.migrationsTable)
}

func (d Dialect) AddClassColumnQuery() string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN class VARCHAR(255) NULL;", d.migrationsTable)
}

func (d Dialect) DropClassColumnQuery() string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN class;", d.migrationsTable)
}
