package cli

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ambry-data/ambryctl/internal/store"
	"github.com/ambry-data/ambryctl/internal/store/sqlite"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage history store migrations",
	Long:  `Run schema migrations for the run history database using gomigrate.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Run all pending migrations",
	Long:  `Apply all pending history store migrations.`,
	RunE:  runMigrateUp,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	Long:  `Show the current migration status and version.`,
	RunE:  runMigrateStatus,
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show current migration version",
	Long:  `Show the current history store migration version.`,
	RunE:  runMigrateVersion,
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	fmt.Println("🔄 Running history store migrations...")

	ctx := context.Background()

	st, err := sqlite.New(&store.Config{Path: storePath})
	if err != nil {
		return fmt.Errorf("failed to create history store: %w", err)
	}

	if err := st.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to history store: %w", err)
	}
	defer st.Disconnect(ctx)

	if err := store.RunMigrations(ctx, st.DB(), ""); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Println("✅ Migrations completed successfully!")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("📊 Migration Status")
	fmt.Println("===================")

	version, err := migrateBinaryVersion()
	if err != nil {
		return err
	}

	fmt.Printf("Current migration version: %s", version)
	return nil
}

func runMigrateVersion(cmd *cobra.Command, args []string) error {
	version, err := migrateBinaryVersion()
	if err != nil {
		return err
	}

	fmt.Print(version)
	return nil
}

// migrateBinaryVersion queries the version through the external
// migrate binary
func migrateBinaryVersion() (string, error) {
	if _, err := exec.LookPath("migrate"); err != nil {
		return "", fmt.Errorf("migrate command not found. Please install golang-migrate: https://github.com/golang-migrate/migrate")
	}

	migrationsDir := filepath.Join("internal", "store", "migrations")

	absStorePath, err := filepath.Abs(storePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve store path: %w", err)
	}

	dbURL := fmt.Sprintf("sqlite3://%s", absStorePath)

	cmdExec := exec.Command("migrate",
		"-path", migrationsDir,
		"-database", dbURL,
		"version")

	output, err := cmdExec.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("failed to get migration status: %w\nOutput: %s", err, string(output))
	}

	return string(output), nil
}
