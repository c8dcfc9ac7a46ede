package mysql

import (
	"fmt"

	"github.com/denismitr/mversion/internal/store"
)

const (
	DriverName     = "mysql"
	DefaultCharset = "utf8mb4"
)

type Dialect struct {
	migrationsTable, charset string
}

var _ store.Dialect = (*Dialect)(nil)

func NewDialect(migrationsTable, charset string) *Dialect {
	if migrationsTable == "" {
		migrationsTable = store.DefaultMigrationsTable
	}

	if charset == "" {
		charset = DefaultCharset
	}

	return &Dialect{migrationsTable: migrationsTable, charset: charset}
}

func (d Dialect) DriverName() string {
	return DriverName
}

func (d Dialect) MigrationsTable() string {
	return d.migrationsTable
}

func (d Dialect) ShowTablesQuery() string {
	return "SHOW TABLES;"
}

func (d Dialect) CreateTableQuery() string {
	const createSQL = `
		CREATE TABLE IF NOT EXISTS %s (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			version BIGINT NULL,
			type VARCHAR(50) NOT NULL,
			created DATETIME NOT NULL
		) ENGINE=InnoDB CHARACTER SET=%s
	`

	return fmt.Sprintf(createSQL, d.migrationsTable, d.charset)
}

func (d Dialect) DropTableQuery() string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", d.migrationsTable)
}

func (d Dialect) AddClassColumnQuery() string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN `class` VARCHAR(255) NULL AFTER `version`;", d.migrationsTable)
}

func (d Dialect) DropClassColumnQuery() string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN `class`;", d.migrationsTable)
}
