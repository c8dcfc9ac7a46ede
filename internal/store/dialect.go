package store

// Dialect holds the driver specific statements for the tracking table,
// everything portable is built by the store itself
type Dialect interface {
	DriverName() string
	MigrationsTable() string
	ShowTablesQuery() string
	CreateTableQuery() string
	DropTableQuery() string
	AddClassColumnQuery() string
	DropClassColumnQuery() string
}

const DefaultMigrationsTable = "schema_migrations"
