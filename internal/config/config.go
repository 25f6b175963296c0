// Package config loads gearforge settings from an optional YAML file, .env files
// and environment variables.
//
// Precedence, lowest first: built-in defaults, YAML file, environment. Command-line
// flags are applied by each command on top of the loaded Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/meur/gearforge/internal/extensions"
	"github.com/meur/gearforge/internal/logger"
)

// Default values.
const (
	DefaultStrategy     = "regex"
	DefaultSummaryPath  = "d4-items.json"
	DefaultTablePath    = "src/data/d4-item-ids.ts"
	DefaultTableFormat  = "ts"
	DefaultGoPackage    = "data"
	DefaultExtensionDir = ".vscode-server/extensions"
	DefaultRegistry     = "extensions.json"
	DefaultDBPath       = "./gearforge.db"
	DefaultPort         = "8080"
	DefaultGameID       = "d4"
	DefaultSheetID      = "items"
)

// Config is the root configuration shared by all commands.
type Config struct {
	Logging    logger.Config    `yaml:"logging"`
	Extract    ExtractConfig    `yaml:"extract"`
	Extensions ExtensionsConfig `yaml:"extensions"`
	Database   DatabaseConfig   `yaml:"database"`
	Server     ServerConfig     `yaml:"server"`
}

// ExtractConfig configures the item extractor and its output artifacts.
type ExtractConfig struct {
	Input       string `yaml:"input" env:"GEARFORGE_INPUT"`
	Strategy    string `yaml:"strategy" env:"GEARFORGE_EXTRACT_STRATEGY"` // "regex" or "dom"
	SummaryPath string `yaml:"summary_path" env:"GEARFORGE_SUMMARY_PATH"`
	TablePath   string `yaml:"table_path" env:"GEARFORGE_TABLE_PATH"`
	TableFormat string `yaml:"table_format" env:"GEARFORGE_TABLE_FORMAT"` // "ts" or "go"
	GoPackage   string `yaml:"go_package"`
}

// ExtensionsConfig locates the editor extension registry and lists what to register.
type ExtensionsConfig struct {
	Home      string                 `yaml:"home" env:"GEARFORGE_HOME"`
	Dir       string                 `yaml:"dir" env:"GEARFORGE_EXTENSIONS_DIR"`
	Registry  string                 `yaml:"registry" env:"GEARFORGE_REGISTRY"`
	Backup    bool                   `yaml:"backup" env:"GEARFORGE_REGISTRY_BACKUP"`
	Publisher extensions.Publisher   `yaml:"publisher"`
	Entries   []extensions.Extension `yaml:"entries"`
}

// DatabaseConfig points at the SQLite catalog.
type DatabaseConfig struct {
	Path    string `yaml:"path" env:"DB_PATH"`
	GameID  string `yaml:"game_id" env:"GEARFORGE_GAME_ID"`
	SheetID string `yaml:"sheet_id" env:"GEARFORGE_SHEET_ID"`
}

// ServerConfig configures the lookup API.
type ServerConfig struct {
	Port           string   `yaml:"port" env:"PORT"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"GEARFORGE_ALLOWED_ORIGINS"`
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides and fills defaults.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("load environment files: %w", err)
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvToStruct(reflect.ValueOf(cfg).Elem())
	cfg.SetDefaults()
	return cfg, nil
}

// SetDefaults fills every unset field with its default value.
func (c *Config) SetDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	e := &c.Extract
	if e.Strategy == "" {
		e.Strategy = DefaultStrategy
	}
	if e.SummaryPath == "" {
		e.SummaryPath = DefaultSummaryPath
	}
	if e.TablePath == "" {
		e.TablePath = DefaultTablePath
	}
	if e.TableFormat == "" {
		e.TableFormat = DefaultTableFormat
	}
	if e.GoPackage == "" {
		e.GoPackage = DefaultGoPackage
	}

	x := &c.Extensions
	if x.Home == "" {
		if home, err := os.UserHomeDir(); err == nil {
			x.Home = home
		}
	}
	if x.Dir == "" {
		x.Dir = DefaultExtensionDir
	}
	if x.Registry == "" {
		x.Registry = DefaultRegistry
	}
	if x.Publisher.ID == "" {
		x.Publisher = extensions.DefaultPublisher()
	}
	if len(x.Entries) == 0 {
		x.Entries = extensions.DefaultExtensions()
	}

	if c.Database.Path == "" {
		c.Database.Path = DefaultDBPath
	}
	if c.Database.GameID == "" {
		c.Database.GameID = DefaultGameID
	}
	if c.Database.SheetID == "" {
		c.Database.SheetID = DefaultSheetID
	}

	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:*"}
	}
}

// ExtensionsDir returns the absolute directory holding installed extensions.
func (x ExtensionsConfig) ExtensionsDir() string {
	if filepath.IsAbs(x.Dir) {
		return x.Dir
	}
	return filepath.Join(x.Home, x.Dir)
}

// RegistryPath returns the location of extensions.json.
func (x ExtensionsConfig) RegistryPath() string {
	if filepath.IsAbs(x.Registry) {
		return x.Registry
	}
	return filepath.Join(x.ExtensionsDir(), x.Registry)
}

// loadEnvFiles loads ENV_FILE if set, otherwise .env.local then .env.
// Missing files are ignored.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

func applyEnvToStruct(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct {
			applyEnvToStruct(field)
			continue
		}

		key := t.Field(i).Tag.Get("env")
		if key == "" {
			continue
		}
		val := os.Getenv(key)
		if val == "" {
			continue
		}
		setFieldFromString(field, val)
	}
}

func setFieldFromString(field reflect.Value, val string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(val)
	case reflect.Int, reflect.Int64:
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			field.SetInt(i)
		}
	case reflect.Bool:
		s := strings.ToLower(strings.TrimSpace(val))
		field.SetBool(s == "true" || s == "1" || s == "yes")
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(val, ",")
			for i, p := range parts {
				parts[i] = strings.TrimSpace(p)
			}
			field.Set(reflect.ValueOf(parts))
		}
	}
}
