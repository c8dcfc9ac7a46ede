package cli

import (
	"io/ioutil"
	"os"
	"strings"

	"github.com/denismitr/mversion/internal/catalog"
	"github.com/denismitr/mversion/internal/store"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const DefaultConfigPath = "mversion.yml"

const configFileStub = `version: "1"
migrations:
  # a value wrapped in %% is read from the environment
  database_url: "%%DATABASE_URL%%"
  # application migrations live in <folder>/migrations,
  # plugin ones in <folder>/plugins/<Plugin>/migrations
  folder: "."
  table: "schema_migrations"
  namespace: "app"
`

var ErrConfigInvalid = errors.New("mversion configuration is invalid")

type (
	migrations struct {
		DatabaseURL string `yaml:"database_url"`
		Folder      string `yaml:"folder"`
		Table       string `yaml:"table"`
		Namespace   string `yaml:"namespace"`
	}

	configFile struct {
		Version    string     `yaml:"version"`
		Migrations migrations `yaml:"migrations"`
	}
)

func createConfigFromYaml(path string) (Config, error) {
	var cfg Config
	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrap(err, "could not open mversion configuration file")
	}

	defer func() {
		_ = f.Close()
	}()

	b, err := ioutil.ReadAll(f)
	if err != nil {
		return cfg, errors.Wrap(err, "could not read mversion configuration file")
	}

	return parseConfig(b)
}

func parseConfig(b []byte) (Config, error) {
	var cfg Config

	var cfgFile configFile
	if err := yaml.Unmarshal(b, &cfgFile); err != nil {
		return cfg, errors.Wrap(err, "could not parse mversion configuration file")
	}

	cfg.DatabaseURL = fromEnv(cfgFile.Migrations.DatabaseURL)
	cfg.MigrationsFolder = fromEnv(cfgFile.Migrations.Folder)
	cfg.MigrationsTable = fromEnv(cfgFile.Migrations.Table)
	cfg.Namespace = fromEnv(cfgFile.Migrations.Namespace)

	if cfg.DatabaseURL == "" {
		return cfg, errors.Wrap(ErrConfigInvalid, "database url was not defined")
	}

	if cfg.MigrationsFolder == "" {
		cfg.MigrationsFolder = "."
	}

	if cfg.MigrationsTable == "" {
		cfg.MigrationsTable = store.DefaultMigrationsTable
	}

	if cfg.Namespace == "" {
		cfg.Namespace = catalog.AppNamespace
	}

	return cfg, nil
}

// fromEnv resolves %%NAME%% to the value of the NAME environment variable
func fromEnv(value string) string {
	if len(value) > 4 && strings.HasPrefix(value, "%%") && strings.HasSuffix(value, "%%") {
		return os.Getenv(strings.Trim(value, "%"))
	}

	return value
}
