package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/denismitr/mversion"
	"github.com/denismitr/mversion/internal/logger"
	"github.com/denismitr/mversion/migration"
	"github.com/pkg/errors"
)

var ErrConfigAlreadyExists = errors.New("config file already exists")

type (
	CloserFunc func() error

	Config struct {
		DatabaseURL      string
		MigrationsFolder string
		MigrationsTable  string
		Namespace        string
		Printer          logger.Printer
		Debug            bool
	}

	ActionConfig struct {
		Namespace string
		Version   string
		Direction string
	}

	App struct {
		migrator  *mversion.Migrator
		namespace string
	}
)

func NewFromYaml(path string, p logger.Printer, debug bool) (*App, CloserFunc, error) {
	cfg, err := createConfigFromYaml(path)
	if err != nil {
		return nil, nil, err
	}

	cfg.Printer = p
	cfg.Debug = debug

	return New(cfg)
}

func New(cfg Config) (*App, CloserFunc, error) {
	m, closer, err := createMigrator(cfg)
	if err != nil {
		return nil, nil, err
	}

	return &App{
		migrator:  m,
		namespace: cfg.Namespace,
	}, CloserFunc(closer), nil
}

func (app *App) Run(ctx context.Context, cfg ActionConfig) (*migration.Report, error) {
	configurators, err := mversion.CreateConfigurators(cfg.Version, cfg.Direction)
	if err != nil {
		return nil, err
	}

	return app.migrator.Run(ctx, app.namespaceOr(cfg.Namespace), configurators...)
}

func (app *App) Status(ctx context.Context, namespace string) (migration.Mapping, error) {
	return app.migrator.Mapping(ctx, app.namespaceOr(namespace))
}

func (app *App) Version(ctx context.Context, namespace string) (int, error) {
	return app.migrator.Version(ctx, app.namespaceOr(namespace))
}

func (app *App) namespaceOr(namespace string) string {
	if namespace != "" {
		return namespace
	}

	return app.namespace
}

// InitCfg writes a config file stub, an existing file is never overwritten
func InitCfg(path string) error {
	if FileExists(path) {
		return errors.Wrapf(ErrConfigAlreadyExists, "[%s]", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "could not create config file")
	}

	defer func() {
		_ = f.Close()
	}()

	if _, err := io.Copy(f, strings.NewReader(configFileStub)); err != nil {
		return errors.Wrap(err, "could not write config file")
	}

	return nil
}

func FileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
