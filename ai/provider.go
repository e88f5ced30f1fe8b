// Package ai answers questions about the text currently shown to the reader.
package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"bookr/config"
)

// Provider answers question using excerpt of the book as the only context.
// Failures are reported as answer text, Answer never returns an error.
type Provider interface {
	Answer(ctx context.Context, question, excerpt string) string
}

const noopAnswer = "No AI provider configured yet. Select one with --ai-provider or ai.provider in configuration file."

// Noop is used when no provider was selected.
type Noop struct{}

func (Noop) Answer(context.Context, string, string) string {
	return noopAnswer
}

// New creates provider selected by configuration.
func New(cfg *config.AIConfig, log *zap.Logger) (Provider, error) {
	switch cfg.Provider {
	case "", "noop":
		log.Debug("AI provider disabled")
		return Noop{}, nil
	case "openai":
		return NewOpenAI(cfg, log)
	}
	return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
}
