package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importFormat string

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the knowledge base with a JSON or YAML export",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
	cmd.Flags().StringVar(&importFormat, "format", "", "json or yaml (default from file extension)")
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	path := args[0]

	format := importFormat
	if format == "" {
		format = formatFor(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	data, err := decodeKnowledge(f, format)
	if err != nil {
		return err
	}

	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if err := a.Store.Import(ctx, data); err != nil {
		return err
	}

	stats := a.Store.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d concepts and %d relationships into %s\n", stats.ConceptCount, stats.RelationshipCount, a.Store.Backend())
	return nil
}
