package main

import (
	"os"

	"github.com/spf13/cobra"

	"chatbot-backend/internal/client"
)

var (
	serverURL string
	authToken string
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "chatctl",
		Short:         "Terminal client for the AI chatbot",
		SilenceUsage:  true,
	}

	defaultServer := os.Getenv("CHATBOT_SERVER")
	if defaultServer == "" {
		defaultServer = client.DefaultBaseURL
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "Chat server base URL (env CHATBOT_SERVER)")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("CHATBOT_TOKEN"), "Session token sent as a bearer credential (env CHATBOT_TOKEN)")

	rootCmd.AddCommand(GetAskCommand())
	rootCmd.AddCommand(GetChatCommand())
	rootCmd.AddCommand(GetWhoamiCommand())
	return rootCmd
}

func newClient() *client.Client {
	var opts []client.Option
	if authToken != "" {
		opts = append(opts, client.WithToken(authToken))
	}
	return client.New(serverURL, opts...)
}
