// Package app wires the chat handler from configuration for every entrypoint.
package app

import (
	"context"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"chat-demo/handler"
	"chat-demo/internal/config"
	"chat-demo/internal/integrations/paramstore"
	"chat-demo/internal/usecase"
)

// NewHandler builds the chat service and its transport handler. AWS
// credentials are only loaded when a bot name parameter is configured.
func NewHandler(ctx context.Context, cfg config.Config, logger *slog.Logger) (*handler.Handler, error) {
	opts := []usecase.Option{
		usecase.WithBotName(cfg.BotName),
		usecase.WithLogger(logger),
	}

	if cfg.BotNameParam != "" {
		ssmClient, err := newParamStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, usecase.WithBotNameParameter(ssmClient, cfg.BotNameParam))
	}

	chatService, err := usecase.NewChatService(opts...)
	if err != nil {
		return nil, fmt.Errorf("app: create chat service: %w", err)
	}

	h, err := handler.NewHandler(chatService,
		handler.WithAllowedOrigin(cfg.AllowedOrigin),
		handler.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("app: create handler: %w", err)
	}
	return h, nil
}

func newParamStore(ctx context.Context, cfg config.Config) (*paramstore.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("app: load AWS config: %w", err)
	}
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg),
		paramstore.WithTimeout(cfg.BotNameParamTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("app: create SSM client: %w", err)
	}
	return ssmClient, nil
}
