package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/agenthands/distill/internal/core/extraction"
	"github.com/agenthands/distill/internal/core/ingest"
)

func extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [files...]",
		Short: "Extract knowledge from transcripts and merge it into the knowledge base",
		Long:  "Extract knowledge from each file (or stdin when no file or \"-\" is given) and merge the results in argument order.",
		RunE:  runExtract,
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	docs, err := readDocuments(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	a, err := openModelApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	extractor := extraction.NewExtractor(a.LLM, a.Config.Extraction)
	outcomes, err := ingest.New(extractor, a.Config.Concurrency.BulkIngest).Run(ctx, docs, a.Store)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Fprintf(out, "%s: nothing extracted (%v)\n", o.Name, o.Err)
			continue
		}
		fmt.Fprintf(out, "%s: %d concepts, %d relationships merged", o.Name, o.Merged.Concepts, o.Merged.Relationships)
		if o.Merged.Skipped > 0 {
			fmt.Fprintf(out, ", %d incomplete relationships skipped", o.Merged.Skipped)
		}
		fmt.Fprintln(out)
	}

	stats := a.Store.Stats()
	fmt.Fprintf(out, "Knowledge base now has %d concepts and %d relationships.\n", stats.ConceptCount, stats.RelationshipCount)
	if failed > 0 {
		return fmt.Errorf("%d of %d documents produced no knowledge", failed, len(outcomes))
	}
	return nil
}

func readDocuments(stdin io.Reader, args []string) ([]ingest.Document, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	docs := make([]ingest.Document, 0, len(args))
	for _, name := range args {
		var (
			data []byte
			err  error
		)
		if name == "-" {
			data, err = io.ReadAll(stdin)
			name = "stdin"
		} else {
			data, err = os.ReadFile(name)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		docs = append(docs, ingest.Document{Name: name, Text: string(data)})
	}
	return docs, nil
}
