package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count concepts and relationships",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			stats := a.Store.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backend:       %s\n", a.Store.Backend())
			fmt.Fprintf(out, "Concepts:      %d\n", stats.ConceptCount)
			fmt.Fprintf(out, "Relationships: %d\n", stats.RelationshipCount)
			return nil
		},
	}
}

func conceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "concept <name>",
		Short: "Display a concept and its attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			out := cmd.OutOrStdout()
			name := args[0]
			attrs, ok := a.Store.QueryConcept(name)
			if !ok {
				fmt.Fprintf(out, "No concept found for %q.\n", name)
				return nil
			}

			fmt.Fprintf(out, "Name: %s\n", name)
			if len(attrs) == 0 {
				return nil
			}
			keys := make([]string, 0, len(attrs))
			for key := range attrs {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			fmt.Fprintln(out, "Attributes:")
			for _, key := range keys {
				fmt.Fprintf(out, "  %s: %s\n", key, formatValue(attrs[key]))
			}
			return nil
		},
	}
}

func relationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relations <concept>",
		Short: "List relationships where the concept is source or target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			out := cmd.OutOrStdout()
			rels := a.Store.QueryRelationships(args[0])
			if len(rels) == 0 {
				fmt.Fprintf(out, "No relationships found for %q.\n", args[0])
				return nil
			}
			for _, rel := range rels {
				fmt.Fprintln(out, rel.String())
			}
			return nil
		},
	}
}

// formatValue prints strings bare and everything else as JSON.
func formatValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
