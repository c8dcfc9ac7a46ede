package cli

import (
	"github.com/denismitr/mversion"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

func createMigrator(cfg Config) (*mversion.Migrator, mversion.CloserFunc, error) {
	var opts []mversion.OptionFunc
	opts = append(
		opts,
		mversion.UseDatabaseURL(cfg.DatabaseURL, mversion.WithMigrationsTable(cfg.MigrationsTable)),
		mversion.UseLocalFolderCatalog(cfg.MigrationsFolder),
	)

	if cfg.Printer != nil {
		opts = append(opts, mversion.UseColorLogger(cfg.Printer, cfg.Debug, cfg.Debug))
	}

	return mversion.NewMigrator(opts...)
}
