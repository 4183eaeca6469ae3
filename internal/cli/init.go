package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ambry-data/ambryctl/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the ambry run configuration",
	Long:  `Interactive wizard to set up the ambry run configuration: library database, filesystem root, remotes and service endpoints.`,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("🚀 Welcome to Ambryctl - Ambry Host Setup")
	fmt.Println("=========================================")
	fmt.Println()

	// Check if config already exists
	configPath := cfgFile
	if config.Exists(configPath) {
		fmt.Printf("Configuration file already exists at: %s\n", configPath)
		confirmed, err := promptYesNo(reader, "Do you want to overwrite it? (y/N): ")
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Setup cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()

	// Filesystem configuration
	fmt.Println("\n📁 Filesystem Configuration")
	fmt.Println("---------------------------")

	root, err := promptOptional(reader,
		fmt.Sprintf("Filesystem root [%s]: ", cfg.Filesystem.Root), cfg.Filesystem.Root)
	if err != nil {
		return err
	}
	cfg.Filesystem.Root = root

	// Library database configuration
	fmt.Println("\n📊 Library Database")
	fmt.Println("-------------------")

	driver, err := promptWithRetry(reader, "Database driver (sqlite/postgres) [sqlite]: ", func(input string) (string, error) {
		if input == "" {
			return config.DriverSQLite, nil
		}
		return validateDriver(input)
	})
	if err != nil {
		return err
	}

	libDB := config.DatabaseConfig{Driver: driver}

	switch driver {
	case config.DriverSQLite:
		defaultPath := filepath.Join(root, "library.db")
		path, err := promptOptional(reader,
			fmt.Sprintf("Database file [%s]: ", defaultPath), defaultPath)
		if err != nil {
			return err
		}
		libDB.Dbname = path

	case config.DriverPostgres:
		server, err := promptOptional(reader, "Database server [localhost]: ", "localhost")
		if err != nil {
			return err
		}
		libDB.Server = server

		portStr, err := promptWithRetry(reader, "Database port [5432]: ", func(input string) (string, error) {
			if input == "" {
				return "5432", nil
			}
			if _, err := validatePort(input); err != nil {
				return "", err
			}
			return input, nil
		})
		if err != nil {
			return err
		}
		port, _ := validatePort(portStr)
		libDB.Port = port

		username, err := promptOptional(reader, "Database username [ambry]: ", "ambry")
		if err != nil {
			return err
		}
		libDB.Username = username

		password, err := promptOptional(reader, "Database password []: ", "")
		if err != nil {
			return err
		}
		libDB.Password = password

		dbname, err := promptOptional(reader, "Database name [ambry]: ", "ambry")
		if err != nil {
			return err
		}
		libDB.Dbname = dbname
	}

	cfg.Databases["library"] = libDB

	// Remotes
	fmt.Println("\n🌐 Library Remotes")
	fmt.Println("------------------")

	defaultRemotes := strings.Join(cfg.Library["default"].Remotes, ",")
	remotesStr, err := promptOptional(reader,
		fmt.Sprintf("Remote source URLs, comma separated [%s]: ", defaultRemotes), defaultRemotes)
	if err != nil {
		return err
	}

	var remotes []string
	for _, r := range strings.Split(remotesStr, ",") {
		if r = strings.TrimSpace(r); r != "" {
			remotes = append(remotes, r)
		}
	}

	lib := cfg.Library["default"]
	lib.Remotes = remotes
	cfg.Library["default"] = lib

	// Cache/queue backend
	fmt.Println("\n🗄  Cache Backend")
	fmt.Println("----------------")

	useRedis, err := promptYesNo(reader, "Configure a redis cache/queue backend? (y/N): ")
	if err != nil {
		return err
	}

	if useRedis {
		redisHost, err := promptOptional(reader, "Redis host [localhost]: ", "localhost")
		if err != nil {
			return err
		}

		redisPortStr, err := promptWithRetry(reader, "Redis port [6379]: ", func(input string) (string, error) {
			if input == "" {
				return "6379", nil
			}
			if _, err := validatePort(input); err != nil {
				return "", err
			}
			return input, nil
		})
		if err != nil {
			return err
		}
		redisPort, _ := validatePort(redisPortStr)

		cfg.Services.Redis = config.RedisConfig{Host: redisHost, Port: redisPort}
	} else {
		cfg.Services.Redis = config.RedisConfig{}
	}

	// Validate before writing
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}

	// Save configuration
	fmt.Println("\n💾 Saving configuration...")
	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("✅ Configuration saved to: %s\n", configPath)

	// Summary
	fmt.Println("\n📋 Configuration Summary")
	fmt.Println("========================")
	fmt.Printf("Filesystem root: %s\n", cfg.Filesystem.Root)
	fmt.Printf("Library database: %s\n", libDB.Driver)
	fmt.Printf("Remotes: %d\n", len(remotes))
	fmt.Println()
	fmt.Println("🎉 Setup complete!")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Check prerequisites: ambryctl doctor")
	fmt.Println("  2. Provision the host: sudo ambryctl install")
	fmt.Println("  3. Inspect runs: ambryctl history list")

	return nil
}
