package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agenthands/distill/internal/core/query"
)

var queryShowRetrieval bool

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Answer a question from the knowledge base",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runQuery,
	}
	cmd.Flags().BoolVar(&queryShowRetrieval, "show-retrieval", false, "Print the retrieved knowledge sent to the model")
	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openModelApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	question := strings.Join(args, " ")
	engine := query.NewEngine(a.LLM, a.Config.Query)
	answer, pkg, err := engine.Answer(ctx, question, a.Store)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if queryShowRetrieval {
		payload, err := json.MarshalIndent(pkg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Retrieved:\n%s\n\n", payload)
	}
	fmt.Fprintln(out, answer)
	return nil
}
