package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chatbot",
	Short: "Chat demo server and terminal client",
	Long: `chatbot runs the chat endpoint as a local HTTP server together with
its web page, and can talk to any deployment of the endpoint from the terminal.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
