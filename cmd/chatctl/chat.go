package main

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"chatbot-backend/internal/session"
)

var errEmptyQuestion = errors.New("question is empty")

func GetChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Long: `Opens a conversation with the chatbot. Type a question and press Enter.
Type the number of a suggestion to send it, or /quit to leave.`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	conv := session.NewConversation(newClient())

	fmt.Fprintln(out, color.CyanString("Connected to %s. Type /quit to exit.", serverURL))

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, color.New(color.Bold).Sprint("> "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" || line == "/exit" {
			break
		}
		if line == "" {
			continue
		}

		// A bare number picks a suggestion chip from the last reply.
		if n, err := strconv.Atoi(line); err == nil {
			if s, ok := conv.Suggestion(n); ok {
				line = s
			}
		}

		fmt.Fprintln(out, color.New(color.Faint).Sprint("Thinking..."))
		turn, err := conv.Submit(cmd.Context(), line)
		if err != nil {
			fmt.Fprintf(out, "%s %v\n", color.RedString("✗"), err)
			continue
		}
		fmt.Fprintf(out, "%s %s\n", color.GreenString("Bot:"), turn.Response)
		printSuggestions(out, turn.Suggestions)
	}
	return scanner.Err()
}
