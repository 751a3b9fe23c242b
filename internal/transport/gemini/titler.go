// Package gemini generates job titles with the Google GenAI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kailas-cloud/insighthire/internal/domain"
	"github.com/kailas-cloud/insighthire/internal/metrics"
)

const (
	defaultModel = "gemini-2.5-flash"

	systemPrompt = "You are an expert in job titles. Extract or generate the most appropriate " +
		"professional job title from the job description. Respond with only the title."
)

// generator is the part of *genai.Models the titler needs.
type generator interface {
	GenerateContent(
		ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Config holds Gemini title generation settings.
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	Logger      *zap.Logger
}

// Titler derives a job title from a job description via Gemini.
type Titler struct {
	models      generator
	model       string
	temperature float32
	maxTokens   int32
	logger      *zap.Logger
}

// NewTitler creates a Gemini API client and wraps it in a Titler.
func NewTitler(ctx context.Context, cfg *Config) (*Titler, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newTitler(client.Models, cfg), nil
}

func newTitler(models generator, cfg *Config) *Titler {
	t := &Titler{
		models:      models,
		model:       strings.TrimSpace(cfg.Model),
		temperature: cfg.Temperature,
		maxTokens:   int32(cfg.MaxTokens),
		logger:      cfg.Logger,
	}
	if t.model == "" {
		t.model = defaultModel
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

// Title returns the first non-empty text the model produced.
func (t *Titler) Title(ctx context.Context, description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", fmt.Errorf("%w: description must not be empty", domain.ErrInvalidQuery)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		Temperature:       genai.Ptr(t.temperature),
		MaxOutputTokens:   t.maxTokens,
	}

	start := time.Now()
	resp, err := t.models.GenerateContent(ctx, t.model, genai.Text(description), config)
	duration := time.Since(start)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("gemini", t.model, "error").Inc()
		return "", fmt.Errorf("generate content: %w: %w", err, domain.ErrTitleProviderError)
	}

	title := firstText(resp)
	if title == "" {
		metrics.ChatRequestsTotal.WithLabelValues("gemini", t.model, "error").Inc()
		return "", fmt.Errorf("gemini returned empty response: %w", domain.ErrTitleProviderError)
	}

	metrics.ChatRequestsTotal.WithLabelValues("gemini", t.model, "success").Inc()
	metrics.ChatRequestDuration.WithLabelValues("gemini", t.model).Observe(duration.Seconds())
	t.logger.Debug("job title generated", zap.String("title", title), zap.Duration("elapsed", duration))
	return title, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if part == nil {
				continue
			}
			if text := strings.Trim(strings.TrimSpace(part.Text), "\"'`"); text != "" {
				return strings.TrimSpace(text)
			}
		}
	}
	return ""
}
