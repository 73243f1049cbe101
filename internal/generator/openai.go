// Package generator produces etymology texts with the OpenAI chat API.
package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/ykvlv/etymology-bot/internal/domain"
)

// Telegram rejects messages over 4096 characters.
const (
	maxTextLen      = 4000
	truncatedLen    = 3800
	truncatedMarker = "\n\n[...]"
)

// API error codes with a dedicated user-facing cause.
const (
	codeInsufficientQuota = "insufficient_quota"
	codeInvalidAPIKey     = "invalid_api_key"
)

// Config configures the OpenAI client.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string // optional, for proxies and tests
	MaxRetries int
}

type completions interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAI generates content through chat completions.
type OpenAI struct {
	api       completions
	model     string
	templates *template.Template
}

func NewOpenAI(cfg Config) (*OpenAI, error) {
	tmpl, err := parsePrompts()
	if err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	return &OpenAI{api: &client.Chat.Completions, model: cfg.Model, templates: tmpl}, nil
}

// Generate returns an etymology for lang, steering the word choice by interests.
// All failures are *domain.GenerationError.
func (g *OpenAI) Generate(ctx context.Context, lang domain.Language, interests []string, v domain.Variant) (string, error) {
	params, ok := variants[v]
	if !ok {
		return "", &domain.GenerationError{Variant: v, Err: fmt.Errorf("unknown variant %q", v)}
	}
	prompt, err := renderPrompt(g.templates, lang, interests, v)
	if err != nil {
		return "", &domain.GenerationError{Variant: v, Err: fmt.Errorf("render prompt: %w", err)}
	}

	resp, err := g.api.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(params.system),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(params.temperature),
		MaxTokens:   openai.Int(params.maxTokens),
	})
	if err != nil {
		return "", &domain.GenerationError{Variant: v, Err: classify(err)}
	}
	if len(resp.Choices) == 0 {
		return "", &domain.GenerationError{Variant: v, Err: domain.ErrEmptyResponse}
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &domain.GenerationError{Variant: v, Err: domain.ErrEmptyResponse}
	}
	return truncate(content), nil
}

// classify maps API failures onto the causes users can act on.
func classify(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == codeInsufficientQuota:
		return fmt.Errorf("%w: %v", domain.ErrQuotaExceeded, err)
	case apiErr.Code == codeInvalidAPIKey, apiErr.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %v", domain.ErrInvalidCredentials, err)
	default:
		return fmt.Errorf("API error: %w", err)
	}
}

// truncate keeps text inside the transport limit and marks the cut.
func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxTextLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:truncatedLen]) + truncatedMarker
}
