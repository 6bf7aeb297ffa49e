// Package main implements the tableschema binary: it validates and inspects
// table definitions, manages the schema catalog and serves the schema service.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arkilian/tableschema/internal/config"
	"github.com/arkilian/tableschema/internal/schema"
	"github.com/arkilian/tableschema/pkg/types"
)

var (
	version = "dev"
	commit  = "unknown"
)

var (
	configFile string
	dataDir    string
	grpcAddr   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "tableschema",
	Short:         "Table schema tool for the columnar store",
	Long:          `Validate table definitions, check write compatibility and manage versioned table schemas.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tableschema version %s (commit: %s)\n", version, commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Base directory for all data files")
	rootCmd.PersistentFlags().StringVar(&grpcAddr, "grpc-addr", "", "Schema service address")

	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads configuration from file, environment, and command line flags.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	// Start with defaults or load from file
	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	// Apply environment variables
	config.LoadFromEnv(cfg)

	// Apply command line flags (highest priority)
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if grpcAddr != "" {
		cfg.GRPC.Addr = grpcAddr
	}

	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadSchema reads a table definition and builds its schema. Definitions
// without a version get the configured default.
func loadSchema(cfg *config.Config, path string) (*types.TableDef, *schema.Schema, error) {
	def, err := types.LoadTableDef(path)
	if err != nil {
		return nil, nil, err
	}
	if def.Version == 0 {
		def.Version = cfg.Builder.DefaultVersion
	}
	s, err := schema.FromDefinition(def)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, s, nil
}

// callContext bounds a remote call by the configured dial timeout.
func callContext(cfg *config.Config) (context.Context, context.CancelFunc) {
	if cfg.GRPC.DialTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), cfg.GRPC.DialTimeout)
}

func printYAML(cmd *cobra.Command, v interface{}) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return enc.Close()
}
