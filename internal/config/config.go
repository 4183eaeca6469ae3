package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config represents the ambry run configuration written for the
// external ambry application to read at its own startup
type Config struct {
	Databases  map[string]DatabaseConfig  `yaml:"databases"`
	Filesystem FilesystemConfig           `yaml:"filesystem"`
	Library    map[string]LibraryConfig   `yaml:"library"`
	Warehouses map[string]WarehouseConfig `yaml:"warehouses,omitempty"`
	Services   ServicesConfig             `yaml:"services,omitempty"`
	Servers    map[string]ServerConfig    `yaml:"servers,omitempty"`
}

// DatabaseConfig represents a named database connection descriptor
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // sqlite, postgres
	Dbname   string `yaml:"dbname"` // file path for sqlite, database name for postgres
	Server   string `yaml:"server,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// FilesystemConfig represents the filesystem root and its named subdirectories
type FilesystemConfig struct {
	Root string            `yaml:"root"`
	Dirs map[string]string `yaml:"dirs,omitempty"` // name -> path, relative paths resolve under root
}

// LibraryConfig bundles a database and filesystem reference with remote sources
type LibraryConfig struct {
	Database   string   `yaml:"database"`
	Filesystem string   `yaml:"filesystem,omitempty"`
	Remotes    []string `yaml:"remotes,omitempty"`
}

// WarehouseConfig represents a named external database target for
// derived or published datasets
type WarehouseConfig struct {
	Database string `yaml:"database"`
	Title    string `yaml:"title,omitempty"`
	Summary  string `yaml:"summary,omitempty"`
}

// ServicesConfig groups external service endpoints
type ServicesConfig struct {
	Geocoder GeocoderConfig `yaml:"geocoder,omitempty"`
	Redis    RedisConfig    `yaml:"redis,omitempty"`
}

// GeocoderConfig represents a geocoding service endpoint
type GeocoderConfig struct {
	URL string `yaml:"url,omitempty"`
	Key string `yaml:"key,omitempty"`
}

// RedisConfig represents the cache/queue backend
type RedisConfig struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

// ServerConfig represents a server listener definition
type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Library string `yaml:"library"`
	Cache   string `yaml:"cache,omitempty"` // optional redis backend reference
}

// DefaultConfig returns the sample configuration
func DefaultConfig() *Config {
	root := defaultRoot()

	return &Config{
		Databases: map[string]DatabaseConfig{
			"library": {
				Driver: DriverSQLite,
				Dbname: filepath.Join(root, "library.db"),
			},
			"warehouse": {
				Driver:   DriverPostgres,
				Server:   "localhost",
				Port:     5432,
				Username: "ambry",
				Password: "<password>",
				Dbname:   "ambry_warehouse",
			},
		},
		Filesystem: FilesystemConfig{
			Root: root,
			Dirs: map[string]string{
				"downloads":  "downloads",
				"extracts":   "extracts",
				"build":      "build",
				"warehouses": "warehouses",
			},
		},
		Library: map[string]LibraryConfig{
			"default": {
				Database:   "library",
				Filesystem: "default",
				Remotes: []string{
					"http://public.ambry.io/",
					"http://s3.ambry.io/library/",
				},
			},
		},
		Warehouses: map[string]WarehouseConfig{
			"default": {
				Database: "warehouse",
				Title:    "Default warehouse",
				Summary:  "Derived and published datasets",
			},
		},
		Services: ServicesConfig{
			Geocoder: GeocoderConfig{
				URL: "http://geocoder.ambry.io/geocode",
				Key: "<geocoder key>",
			},
			Redis: RedisConfig{
				Host: "localhost",
				Port: 6379,
			},
		},
		Servers: map[string]ServerConfig{
			"default": {
				Host:    "localhost",
				Port:    8080,
				Library: "default",
				Cache:   "redis",
			},
		},
	}
}

func defaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/data/ambry"
	}
	return filepath.Join(home, "ambry")
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks structural consistency of the configuration
func (c *Config) Validate() error {
	for name, db := range c.Databases {
		switch db.Driver {
		case DriverSQLite:
			if db.Dbname == "" {
				return fmt.Errorf("database %q: sqlite driver requires a dbname path", name)
			}
		case DriverPostgres:
			if db.Server == "" {
				return fmt.Errorf("database %q: postgres driver requires a server", name)
			}
			if db.Port < 0 || db.Port > 65535 {
				return fmt.Errorf("database %q: invalid port %d", name, db.Port)
			}
		default:
			return fmt.Errorf("database %q: unsupported driver: %s", name, db.Driver)
		}
	}

	if len(c.Library) == 0 {
		return fmt.Errorf("at least one library must be defined")
	}

	for name, lib := range c.Library {
		if lib.Database == "" {
			return fmt.Errorf("library %q: database reference is required", name)
		}
		if _, ok := c.Databases[lib.Database]; !ok {
			return fmt.Errorf("library %q: unknown database reference: %s", name, lib.Database)
		}
	}

	for name, w := range c.Warehouses {
		if _, ok := c.Databases[w.Database]; !ok {
			return fmt.Errorf("warehouse %q: unknown database reference: %s", name, w.Database)
		}
	}

	for name, srv := range c.Servers {
		if srv.Port <= 0 || srv.Port > 65535 {
			return fmt.Errorf("server %q: invalid port %d", name, srv.Port)
		}
		if _, ok := c.Library[srv.Library]; !ok {
			return fmt.Errorf("server %q: unknown library reference: %s", name, srv.Library)
		}
	}

	return nil
}

// Dir resolves a named filesystem subdirectory under the root
func (f *FilesystemConfig) Dir(name string) string {
	sub, ok := f.Dirs[name]
	if !ok {
		sub = name
	}
	if filepath.IsAbs(sub) {
		return sub
	}
	return filepath.Join(f.Root, sub)
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ambry/ambry.yaml"
	}
	return filepath.Join(home, ".ambry", "ambry.yaml")
}

// Exists checks if config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
