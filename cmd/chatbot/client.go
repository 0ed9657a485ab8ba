package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"chat-demo/internal/client"
	"chat-demo/internal/config"
)

var errSendFailed = errors.New("message was not answered")

var baseURL string

var sendCmd = &cobra.Command{
	Use:   "send MESSAGE...",
	Short: "Send one message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newChatClient(cmd)
		if err != nil {
			return err
		}
		return sendOne(cmd.Context(), c, cmd.OutOrStdout(), strings.Join(args, " "))
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat interactively, one message per line",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := newChatClient(cmd)
		if err != nil {
			return err
		}
		return chatLoop(cmd.Context(), c, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "", "chat service base URL (default from CHAT_URL, then http://localhost:8080)")
	rootCmd.AddCommand(sendCmd, chatCmd)
}

func newChatClient(cmd *cobra.Command) (*client.Client, error) {
	url, err := resolveBaseURL(baseURL, cmd.Flags().Changed("url"))
	if err != nil {
		return nil, err
	}
	return client.New(url)
}

// resolveBaseURL prefers an explicit --url over the configured CHAT_URL.
func resolveBaseURL(flagValue string, flagSet bool) (string, error) {
	if flagSet {
		return flagValue, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.ChatURL, nil
}

type sender interface {
	Send(ctx context.Context, message string) (client.Reply, error)
}

func sendOne(ctx context.Context, c sender, out io.Writer, message string) error {
	reply, err := c.Send(ctx, message)
	fmt.Fprintln(out, client.Format(reply, err))
	if err != nil {
		return errSendFailed
	}
	return nil
}

// chatLoop sends each non-empty line and waits for its answer before reading
// the next one.
func chatLoop(ctx context.Context, c sender, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			reply, err := c.Send(ctx, line)
			fmt.Fprintln(out, client.Format(reply, err))
		}
		fmt.Fprint(out, "> ")
	}
	fmt.Fprintln(out)
	return scanner.Err()
}
