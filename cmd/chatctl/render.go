package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"chatbot-backend/internal/models"
)

func printTurn(w io.Writer, turn models.ChatTurn) {
	fmt.Fprintf(w, "%s %s\n", color.CyanString("You:"), turn.Query)
	fmt.Fprintf(w, "%s %s\n", color.GreenString("Bot:"), turn.Response)
	printSuggestions(w, turn.Suggestions)
}

func printSuggestions(w io.Writer, suggestions []string) {
	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintln(w, color.New(color.Faint).Sprint("Suggestions:"))
	for i, s := range suggestions {
		fmt.Fprintf(w, "  %s %s\n", color.YellowString("[%d]", i+1), s)
	}
}
