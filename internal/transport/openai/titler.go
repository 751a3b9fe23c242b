package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/insighthire/internal/domain"
	"github.com/kailas-cloud/insighthire/internal/metrics"
)

// TitleSystemPrompt instructs the model to answer with a bare job title.
const TitleSystemPrompt = "You are an expert in job titles. Extract or generate the most appropriate " +
	"professional job title from the job description. Respond with only the title."

// TitlerConfig holds chat-completion settings for title generation.
type TitlerConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Logger      *zap.Logger
}

// Titler derives a job title from a job description via chat completion.
type Titler struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// NewTitler creates a Titler. Zero values fall back to gpt-3.5-turbo, 0.3 and 50 tokens.
func NewTitler(cfg *TitlerConfig) *Titler {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	t := &Titler{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      cfg.Logger,
	}
	if t.model == "" {
		t.model = openai.GPT3Dot5Turbo
	}
	if t.temperature == 0 {
		t.temperature = 0.3
	}
	if t.maxTokens <= 0 {
		t.maxTokens = 50
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	return t
}

// Title returns the generated title, trimmed of whitespace and quotes.
func (t *Titler) Title(ctx context.Context, description string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: TitleSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: description},
		},
		Temperature: t.temperature,
		MaxTokens:   t.maxTokens,
	}

	start := time.Now()
	resp, err := t.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("openai", t.model, "error").Inc()
		return "", wrapAPIError("chat", err, domain.ErrTitleProviderError)
	}
	if len(resp.Choices) == 0 {
		metrics.ChatRequestsTotal.WithLabelValues("openai", t.model, "error").Inc()
		return "", fmt.Errorf("empty chat response: %w", domain.ErrTitleProviderError)
	}

	metrics.ChatRequestsTotal.WithLabelValues("openai", t.model, "success").Inc()
	metrics.ChatRequestDuration.WithLabelValues("openai", t.model).Observe(duration.Seconds())

	title := CleanTitle(resp.Choices[0].Message.Content)
	t.logger.Debug("job title generated", zap.String("title", title), zap.Duration("elapsed", duration))
	return title, nil
}

// CleanTitle strips whitespace and surrounding quotes from a model answer.
func CleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`")
	return strings.TrimSpace(s)
}
