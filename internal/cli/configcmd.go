package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ambry-data/ambryctl/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the ambry run configuration",
	Long:  `Show, validate or write the ambry run configuration file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long:  `Check that the configuration parses, round-trips through YAML and passes structural validation.`,
	RunE:  runConfigValidate,
}

var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the default sample configuration",
	RunE:  runConfigWrite,
}

var configWriteForce bool

func init() {
	configWriteCmd.Flags().BoolVar(&configWriteForce, "force", false, "overwrite an existing configuration file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configWriteCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	fmt.Printf("%s# %s%s\n", MetaStyle, cfgFile, Reset)
	fmt.Print(string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Round-trip check: the key structure must survive re-parsing
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var reparsed config.Config
	if err := yaml.Unmarshal(data, &reparsed); err != nil {
		return fmt.Errorf("config does not round-trip through YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}

	fmt.Printf("%s✅ Configuration is valid:%s %s\n", SuccessStyle, Reset, cfgFile)
	fmt.Printf("%sDatabases:%s %s\n", LabelStyle, Reset, FormatCount(len(cfg.Databases)))
	fmt.Printf("%sLibraries:%s %s\n", LabelStyle, Reset, FormatCount(len(cfg.Library)))
	fmt.Printf("%sWarehouses:%s %s\n", LabelStyle, Reset, FormatCount(len(cfg.Warehouses)))
	fmt.Printf("%sServers:%s %s\n", LabelStyle, Reset, FormatCount(len(cfg.Servers)))
	return nil
}

func runConfigWrite(cmd *cobra.Command, args []string) error {
	if config.Exists(cfgFile) && !configWriteForce {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", cfgFile)
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(cfgFile); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("✅ Wrote default configuration to: %s\n", cfgFile)
	return nil
}
