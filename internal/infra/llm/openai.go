package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"booksum/internal/config"
	"booksum/internal/resilience/circuitbreaker"
	"booksum/internal/utils/text"
)

// OpenAICompat generates text against any local server exposing the
// OpenAI chat-completions API (vLLM, llama.cpp server, Ollama's /v1
// endpoint). The base URL is cfg.Host plus the /v1 prefix.
type OpenAICompat struct {
	client  *openai.Client
	model   string
	cfg     *config.GenerationConfig
	breaker *circuitbreaker.CircuitBreaker
	limiter *rate.Limiter
	metrics InvocationMetricsRecorder
}

// NewOpenAICompat creates an OpenAI-compatible client for the given
// model. Local servers ignore the bearer token but the SDK requires
// one, so a fixed placeholder is sent.
func NewOpenAICompat(model string, cfg *config.GenerationConfig) *OpenAICompat {
	clientCfg := openai.DefaultConfig("booksum-local")
	clientCfg.BaseURL = strings.TrimSuffix(cfg.Host, "/") + "/v1"

	slog.Info("initialized openai-compatible client",
		slog.String("base_url", clientCfg.BaseURL),
		slog.String("model", model),
		slog.Int("max_tokens", cfg.NumPredict),
		slog.Duration("timeout", cfg.Timeout))

	return &OpenAICompat{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   model,
		cfg:     cfg,
		breaker: circuitbreaker.New(circuitbreaker.LocalModelConfig()),
		limiter: newLimiter(cfg.RequestsPerMinute),
		metrics: NewPrometheusInvocationMetrics(),
	}
}

// Model returns the model identifier requests are issued against.
func (c *OpenAICompat) Model() string {
	return c.model
}

// Generate runs one blocking chat completion for the rendered prompt.
// Failures are wrapped in ErrInvocation; retrying is the caller's policy.
func (c *OpenAICompat) Generate(ctx context.Context, prompt string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: rate limit wait: %v", ErrInvocation, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	requestID := uuid.New().String()
	c.metrics.RecordPromptLength(text.CountRunes(prompt))

	start := time.Now()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doGenerate(ctx, prompt)
	})

	duration := time.Since(start)
	c.metrics.RecordDuration(duration)

	if err != nil {
		c.metrics.RecordFailure()
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("model host circuit breaker open, request rejected",
				slog.String("request_id", requestID),
				slog.String("state", c.breaker.State().String()))
			return "", fmt.Errorf("%w: model host unavailable: circuit breaker open", ErrInvocation)
		}
		slog.ErrorContext(ctx, "model invocation failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: %v", ErrInvocation, err)
	}

	summary := result.(string)
	slog.InfoContext(ctx, "model invocation completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", duration),
		slog.Int("output_runes", text.CountRunes(summary)))

	return summary, nil
}

// doGenerate performs the actual API call without breaker or metrics.
func (c *OpenAICompat) doGenerate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.cfg.NumPredict,
		Temperature: float32(c.cfg.Temperature),
		TopP:        float32(c.cfg.TopP),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	generated := strings.TrimSpace(resp.Choices[0].Message.Content)
	if generated == "" {
		return "", fmt.Errorf("chat completion returned empty content")
	}
	return generated, nil
}
