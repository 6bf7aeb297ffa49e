package main

import (
	"context"
	"fmt"
	"log"
	"net"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	grpcapi "github.com/arkilian/tableschema/internal/api/grpc"
	"github.com/arkilian/tableschema/internal/config"
	"github.com/arkilian/tableschema/internal/manifest"
	"github.com/arkilian/tableschema/internal/schema"
	"github.com/arkilian/tableschema/internal/server"
)

var (
	remote        bool
	tableName     string
	schemaVersion uint32
)

var registerCmd = &cobra.Command{
	Use:   "register <definition>",
	Short: "Register a table schema",
	Long:  `Register the schema of a table definition. An unchanged schema keeps its current version.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRegister,
}

var getCmd = &cobra.Command{
	Use:   "get <table>",
	Short: "Print a registered table schema as a definition",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var versionsCmd = &cobra.Command{
	Use:   "versions <table>",
	Short: "List the registered versions of a table schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersions,
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List tables with a registered schema",
	Args:  cobra.NoArgs,
	RunE:  runTables,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the schema catalog over gRPC",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	registerCmd.Flags().BoolVar(&remote, "remote", false, "Use the schema service instead of the local catalog")
	registerCmd.Flags().StringVar(&tableName, "table", "", "Table name (default: name from the definition)")
	getCmd.Flags().BoolVar(&remote, "remote", false, "Use the schema service instead of the local catalog")
	getCmd.Flags().Uint32Var(&schemaVersion, "version", 0, "Schema version (default: latest)")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(serveCmd)
}

func openCatalog(cfg *config.Config) (*manifest.SQLiteCatalog, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	catalog, err := manifest.NewCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return catalog, nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	def, s, err := loadSchema(cfg, args[0])
	if err != nil {
		return err
	}
	table := tableName
	if table == "" {
		table = def.Name
	}
	if table == "" {
		return fmt.Errorf("%s: table name is missing, set it in the definition or with --table", args[0])
	}

	var version uint32
	var created bool
	if remote {
		client, err := grpcapi.NewClient(cfg.GRPC.Addr)
		if err != nil {
			return err
		}
		defer client.Close()
		ctx, cancel := callContext(cfg)
		defer cancel()
		version, created, err = client.RegisterSchema(ctx, table, s)
		if err != nil {
			return err
		}
	} else {
		catalog, err := openCatalog(cfg)
		if err != nil {
			return err
		}
		defer catalog.Close()
		version, created, err = catalog.RegisterSchema(context.Background(), table, s)
		if err != nil {
			return err
		}
	}

	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "registered %s version %d\n", table, version)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s unchanged at version %d\n", table, version)
	}
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var s *schema.Schema
	if remote {
		client, err := grpcapi.NewClient(cfg.GRPC.Addr)
		if err != nil {
			return err
		}
		defer client.Close()
		ctx, cancel := callContext(cfg)
		defer cancel()
		s, err = client.GetSchema(ctx, args[0], schemaVersion)
		if err != nil {
			return err
		}
	} else {
		catalog, err := openCatalog(cfg)
		if err != nil {
			return err
		}
		defer catalog.Close()
		s, err = catalog.GetSchema(context.Background(), args[0], schemaVersion)
		if err != nil {
			return err
		}
	}

	return printYAML(cmd, s.ToDefinition(args[0]))
}

func runVersions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	catalog, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer catalog.Close()

	records, err := catalog.ListVersions(context.Background(), args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, r := range records {
		fmt.Fprintf(out, "%d\t%s\t%d columns\n", r.Version, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Schema.NumColumns())
	}
	return nil
}

func runTables(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	catalog, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer catalog.Close()

	tables, err := catalog.ListTables(context.Background())
	if err != nil {
		return err
	}
	for _, t := range tables {
		fmt.Fprintln(cmd.OutOrStdout(), t)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.GRPC.Enabled {
		return fmt.Errorf("grpc is disabled in the configuration")
	}

	catalog, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer catalog.Close()

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.GRPC.Addr, err)
	}

	shutdown := server.NewShutdownManager(server.ShutdownConfig{ShutdownTimeout: cfg.GRPC.ShutdownTimeout})
	srv := grpcapi.NewServer(grpcapi.NewSchemaServer(catalog), grpc.ChainUnaryInterceptor(shutdown.UnaryInterceptor()))
	gs := server.NewGracefulGRPCServer(srv, shutdown)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Schema service listening on %s (catalog: %s)", cfg.GRPC.Addr, catalog.Path())
		err := gs.Serve(lis)
		if err != nil {
			_ = shutdown.Shutdown(context.Background(), "serve failed")
		}
		errCh <- err
	}()

	if err := shutdown.ListenForSignals(cmd.Context()); err != nil {
		return err
	}
	if err := <-errCh; err != nil {
		return fmt.Errorf("schema service stopped: %w", err)
	}
	return nil
}
