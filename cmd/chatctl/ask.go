package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"chatbot-backend/internal/models"
)

var askJSON bool

func GetAskCommand() *cobra.Command {
	askCmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask a single question",
		Long: `Sends one question to the chat endpoint and prints the reply with its follow-up suggestions.

Example:
  chatctl ask What is the capital of France?
  chatctl ask --json "Explain goroutines"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the raw JSON reply")
	return askCmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return errEmptyQuestion
	}

	reply, err := newClient().Ask(cmd.Context(), query)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if askJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(reply)
	}
	printTurn(out, models.ChatTurn{Query: query, Response: reply.Response, Suggestions: reply.Suggestions})
	return nil
}
