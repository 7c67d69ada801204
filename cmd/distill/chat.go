package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agenthands/distill/internal/app"
	"github.com/agenthands/distill/internal/core/conversation"
	"github.com/agenthands/distill/internal/core/extraction"
	apperrors "github.com/agenthands/distill/internal/errors"
)

var chatDomain string

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interview an expert on stdin and store what they said",
		Long: `Interview an expert on stdin. Type "end" to finish and extract the
conversation into the knowledge base, or "auto" (or an empty line) to have
the model answer on your behalf.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openModelApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)
			return runChat(ctx, a, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&chatDomain, "domain", "", "Expertise domain the interviewer asks about")
	return cmd
}

func runChat(ctx context.Context, a *app.App, in io.Reader, out io.Writer) error {
	interviewer := conversation.NewInterviewer(a.LLM, a.Config.Conversation)
	extractor := extraction.NewExtractor(a.LLM, a.Config.Extraction)
	state := conversation.NewState(chatDomain)

	fmt.Fprintf(out, "Assistant: %s\n", state.Messages[0].Content)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())

		switch {
		case conversation.IsEndCommand(text):
			fmt.Fprintln(out)
			return endChat(ctx, interviewer, state, extractor, a, out)
		case conversation.IsAutoCommand(text):
			user, reply, err := interviewer.AutoReply(ctx, state)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "You (auto): %s\nAssistant: %s\n", user, reply)
		default:
			reply, err := interviewer.Respond(ctx, state, text)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "Assistant: %s\n", reply)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	if !state.HasUserInput() {
		return nil
	}
	return endChat(ctx, interviewer, state, extractor, a, out)
}

func endChat(ctx context.Context, iv *conversation.Interviewer, state *conversation.State, extractor *extraction.Extractor, a *app.App, out io.Writer) error {
	result, err := iv.End(ctx, state, extractor, a.Store)
	if err != nil && !apperrors.IsRecoverable(err) {
		if apperrors.IsErrorType(err, apperrors.ErrorTypeInput) {
			fmt.Fprintln(out, "Nothing to extract.")
			return nil
		}
		return err
	}
	if err != nil {
		fmt.Fprintf(out, "Warning: no knowledge could be extracted (%v)\n", err)
	}
	fmt.Fprintf(out, "Extracted %d concepts and %d relationships.\n", result.Merged.Concepts, result.Merged.Relationships)
	return nil
}
