package sqlite

import (
	"fmt"

	"github.com/denismitr/mversion/internal/store"
)

const DriverName = "sqlite3"

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
	return "SELECT name FROM sqlite_master WHERE type='table' ORDER BY name;"
}

func (d Dialect) CreateTableQuery() string {
	const createSQL = `
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			version BIGINT,
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
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN class VARCHAR(255);", d.migrationsTable)
}

func (d Dialect) DropClassColumnQuery() string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN class;", d.migrationsTable)
}
