package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arkilian/tableschema/internal/datum"
	"github.com/arkilian/tableschema/internal/schema"
	"github.com/arkilian/tableschema/internal/tsid"
)

var (
	showArrow bool
	tagValues []string
)

var validateCmd = &cobra.Command{
	Use:   "validate <definition>...",
	Short: "Validate table definition files",
	Long:  `Build the schema of each table definition and report the first invalid one.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <definition>",
	Short: "Show the resolved schema of a table definition",
	Long:  `Show column ids, key layout and contiguous row offsets of a table definition.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var compatCmd = &cobra.Command{
	Use:   "compat <table-definition> <writer-definition>",
	Short: "Check whether a writer schema can write into a table",
	Long:  `Check write compatibility and print, for every table column, its index in the writer schema.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runCompat,
}

var tsidCmd = &cobra.Command{
	Use:   "tsid <definition>",
	Short: "Compute the tsid of a series",
	Long:  `Compute the tsid for the given tag values of a table with a tsid primary key.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTsid,
}

func init() {
	inspectCmd.Flags().BoolVar(&showArrow, "arrow", false, "Also print the Arrow schema")
	tsidCmd.Flags().StringArrayVar(&tagValues, "tag", nil, "Tag value as name=value (repeatable)")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(compatCmd)
	rootCmd.AddCommand(tsidCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	for _, path := range args {
		def, s, err := loadSchema(cfg, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (table %s, %d columns, %d key columns)\n",
			path, def.Name, s.NumColumns(), s.NumKeyColumns())
	}
	return nil
}

type columnSummary struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	ID       uint32 `yaml:"id"`
	Key      bool   `yaml:"key,omitempty"`
	Nullable bool   `yaml:"nullable,omitempty"`
	Tag      bool   `yaml:"tag,omitempty"`
	Offset   int    `yaml:"byte_offset"`
}

type schemaSummary struct {
	Table              string          `yaml:"table"`
	Version            uint32          `yaml:"version"`
	NumKeyColumns      int             `yaml:"num_key_columns"`
	TimestampColumn    string          `yaml:"timestamp_column"`
	TsidPrimaryKey     bool            `yaml:"tsid_primary_key"`
	StringBufferOffset int             `yaml:"string_buffer_offset"`
	Columns            []columnSummary `yaml:"columns"`
}

func summarize(table string, s *schema.Schema) schemaSummary {
	sum := schemaSummary{
		Table:              table,
		Version:            s.Version(),
		NumKeyColumns:      s.NumKeyColumns(),
		TimestampColumn:    s.TimestampName(),
		TsidPrimaryKey:     s.EnableTsidPrimaryKey(),
		StringBufferOffset: s.StringBufferOffset(),
	}
	for i, col := range s.Columns() {
		sum.Columns = append(sum.Columns, columnSummary{
			Name:     col.Name,
			Type:     col.Kind.String(),
			ID:       col.ID,
			Key:      s.IsKeyColumn(i),
			Nullable: col.Nullable,
			Tag:      col.IsTag,
			Offset:   s.ByteOffset(i),
		})
	}
	return sum
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	def, s, err := loadSchema(cfg, args[0])
	if err != nil {
		return err
	}
	if err := printYAML(cmd, summarize(def.Name, s)); err != nil {
		return err
	}
	if showArrow {
		fmt.Fprintln(cmd.OutOrStdout(), s.ArrowSchema().String())
	}
	return nil
}

func runCompat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	_, table, err := loadSchema(cfg, args[0])
	if err != nil {
		return err
	}
	_, writer, err := loadSchema(cfg, args[1])
	if err != nil {
		return err
	}

	index, err := table.CompatibleForWrite(writer)
	if err != nil {
		return fmt.Errorf("writer is not compatible: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "compatible")
	for i, col := range table.Columns() {
		if j, ok := index.ColumnIndexInWriter(i); ok {
			fmt.Fprintf(out, "  %-24s <- %s\n", col.Name, writer.Column(j).Name)
		} else {
			fmt.Fprintf(out, "  %-24s <- null\n", col.Name)
		}
	}
	return nil
}

func runTsid(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	_, s, err := loadSchema(cfg, args[0])
	if err != nil {
		return err
	}
	gen, err := tsid.NewGenerator(s)
	if err != nil {
		return err
	}

	row := make(datum.Row, s.NumColumns())
	for _, tv := range tagValues {
		name, raw, ok := strings.Cut(tv, "=")
		if !ok {
			return fmt.Errorf("invalid tag %q, expected name=value", tv)
		}
		idx, ok := s.IndexOf(name)
		if !ok {
			return fmt.Errorf("unknown column %q", name)
		}
		col := s.Column(idx)
		if !col.IsTag {
			return fmt.Errorf("column %q is not a tag", name)
		}
		v, err := datum.Parse(col.Kind, raw)
		if err != nil {
			return err
		}
		row[idx] = v
	}

	gen.FillRow(row)
	fmt.Fprintf(cmd.OutOrStdout(), "%d\n", row[gen.TsidIndex()].Uint())
	return nil
}
