package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	ollama "github.com/ollama/ollama/api"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"booksum/internal/config"
	"booksum/internal/resilience/circuitbreaker"
	"booksum/internal/utils/text"
)

// Ollama generates text against a local Ollama server using its native
// /api/generate endpoint. It is the default backend.
type Ollama struct {
	client  *ollama.Client
	model   string
	cfg     *config.GenerationConfig
	breaker *circuitbreaker.CircuitBreaker
	limiter *rate.Limiter
	metrics InvocationMetricsRecorder
}

// NewOllama creates an Ollama client for the given model, talking to
// cfg.Host. The underlying HTTP client carries no transport timeout;
// each Generate call is bounded by cfg.Timeout via context instead, so
// slow local CPU inference is not cut off mid-stream by a transport
// deadline.
func NewOllama(model string, cfg *config.GenerationConfig) (*Ollama, error) {
	base, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid model host %q: %w", cfg.Host, err)
	}

	slog.Info("initialized ollama client",
		slog.String("host", cfg.Host),
		slog.String("model", model),
		slog.Int("num_predict", cfg.NumPredict),
		slog.Duration("timeout", cfg.Timeout))

	return &Ollama{
		client:  ollama.NewClient(base, &http.Client{}),
		model:   model,
		cfg:     cfg,
		breaker: circuitbreaker.New(circuitbreaker.LocalModelConfig()),
		limiter: newLimiter(cfg.RequestsPerMinute),
		metrics: NewPrometheusInvocationMetrics(),
	}, nil
}

// Model returns the model identifier requests are issued against.
func (o *Ollama) Model() string {
	return o.model
}

// Generate runs one blocking completion for the rendered prompt and
// returns the generated text, trimmed. Failures are wrapped in
// ErrInvocation; retrying is the caller's policy.
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: rate limit wait: %v", ErrInvocation, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	requestID := uuid.New().String()
	o.metrics.RecordPromptLength(text.CountRunes(prompt))

	slog.Debug("starting model invocation",
		slog.String("request_id", requestID),
		slog.String("model", o.model),
		slog.Int("prompt_runes", text.CountRunes(prompt)))

	start := time.Now()

	result, err := o.breaker.Execute(func() (interface{}, error) {
		return o.doGenerate(ctx, prompt)
	})

	duration := time.Since(start)
	o.metrics.RecordDuration(duration)

	if err != nil {
		o.metrics.RecordFailure()
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("model host circuit breaker open, request rejected",
				slog.String("request_id", requestID),
				slog.String("state", o.breaker.State().String()))
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
func (o *Ollama) doGenerate(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &ollama.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: &stream,
		Options: map[string]interface{}{
			"num_predict": o.cfg.NumPredict,
			"temperature": o.cfg.Temperature,
			"top_p":       o.cfg.TopP,
		},
	}

	var out strings.Builder
	err := o.client.Generate(ctx, req, func(resp ollama.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	generated := strings.TrimSpace(out.String())
	if generated == "" {
		return "", fmt.Errorf("ollama returned empty response")
	}
	return generated, nil
}

// newLimiter builds a per-minute rate limiter; nil means unlimited.
func newLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1)
}
