package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"chat-demo/internal/app"
	"chat-demo/internal/config"
	"chat-demo/internal/server"
	"chat-demo/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat endpoint and web page",
	Long:  `Serve POST /api/chat, GET /healthz and the static chat page on one port.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default: $PORT or 8080)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	logger := cfg.Logger(os.Stderr)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h, err := app.NewHandler(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv, err := server.New(fmt.Sprintf(":%d", cfg.Port), server.NewRouter(h, web.Static(), logger), logger)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
