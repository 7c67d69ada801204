package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOut    string
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole knowledge base as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}
	cmd.Flags().StringVar(&exportFormat, "format", "", "json or yaml (default from --out extension, else json)")
	cmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	format := exportFormat
	if format == "" {
		format = formatFor(exportOut)
	}
	if format != formatJSON && format != formatYAML {
		return fmt.Errorf("unsupported format %q (want json or yaml)", format)
	}

	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	data := a.Store.Export()
	if exportOut == "" {
		return encodeKnowledge(cmd.OutOrStdout(), data, format)
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportOut, err)
	}
	if err := encodeKnowledge(f, data, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	stats := data.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d concepts and %d relationships to %s\n", stats.ConceptCount, stats.RelationshipCount, exportOut)
	return nil
}
