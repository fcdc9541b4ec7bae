// Package config loads runtime configuration from environment
// variables with validation and documented defaults. Command-line
// flags cover per-run choices (model, prompt, thresholds); this
// package covers the host- and tuning-level settings that rarely
// change between runs.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// GenerationConfig holds tuning parameters for model invocations.
type GenerationConfig struct {
	// Host is the base URL of the local inference server.
	// Loaded from OLLAMA_HOST. Default: http://127.0.0.1:11434.
	Host string

	// NumPredict is the hard cap on generated tokens per summary.
	// Loaded from BOOKSUM_NUM_PREDICT. Valid range: 16-4096. Default: 360.
	NumPredict int

	// Temperature controls sampling randomness. Kept low so repeated
	// cache-invalidated runs stay close to each other.
	// Loaded from BOOKSUM_TEMPERATURE. Valid range: 0.0-2.0. Default: 0.2.
	Temperature float64

	// TopP is the nucleus sampling cutoff.
	// Loaded from BOOKSUM_TOP_P. Valid range: (0.0, 1.0]. Default: 0.9.
	TopP float64

	// Timeout is the bounded wait for a single model invocation.
	// Loaded from BOOKSUM_MODEL_TIMEOUT (Go duration syntax).
	// Default: 10m, generous because local CPU inference on long
	// chapters is slow.
	Timeout time.Duration

	// RequestsPerMinute caps the model invocation rate. Zero or
	// negative means unlimited. Loaded from BOOKSUM_REQUESTS_PER_MINUTE.
	// Default: 0.
	RequestsPerMinute int
}

// Validate checks all configuration fields and returns an error
// describing the first invalid one.
func (c *GenerationConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("model host cannot be empty")
	}
	if _, err := url.Parse(c.Host); err != nil {
		return fmt.Errorf("invalid model host %q: %w", c.Host, err)
	}
	if c.NumPredict < 16 || c.NumPredict > 4096 {
		return fmt.Errorf("num_predict %d out of valid range 16-4096", c.NumPredict)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of valid range 0.0-2.0", c.Temperature)
	}
	if c.TopP <= 0 || c.TopP > 1 {
		return fmt.Errorf("top_p %.2f out of valid range (0.0, 1.0]", c.TopP)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("model timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// LoadGenerationConfig loads generation settings from environment
// variables and validates them. Loading fails closed: a malformed or
// out-of-range value is an error, not a silent fallback, because these
// knobs feed the text sent to the model and therefore the cache keys.
//
// Environment variables:
//   - OLLAMA_HOST: inference server base URL (default http://127.0.0.1:11434)
//   - BOOKSUM_NUM_PREDICT: output token cap (default 360)
//   - BOOKSUM_TEMPERATURE: sampling temperature (default 0.2)
//   - BOOKSUM_TOP_P: nucleus sampling cutoff (default 0.9)
//   - BOOKSUM_MODEL_TIMEOUT: per-invocation timeout (default 10m)
//   - BOOKSUM_REQUESTS_PER_MINUTE: invocation rate cap (default 0 = unlimited)
func LoadGenerationConfig() (*GenerationConfig, error) {
	cfg := &GenerationConfig{
		Host:              "http://127.0.0.1:11434",
		NumPredict:        360,
		Temperature:       0.2,
		TopP:              0.9,
		Timeout:           10 * time.Minute,
		RequestsPerMinute: 0,
	}

	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		cfg.Host = host
	}

	if v := os.Getenv("BOOKSUM_NUM_PREDICT"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BOOKSUM_NUM_PREDICT format: %s: %w", v, err)
		}
		cfg.NumPredict = parsed
	}

	if v := os.Getenv("BOOKSUM_TEMPERATURE"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid BOOKSUM_TEMPERATURE format: %s: %w", v, err)
		}
		cfg.Temperature = parsed
	}

	if v := os.Getenv("BOOKSUM_TOP_P"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid BOOKSUM_TOP_P format: %s: %w", v, err)
		}
		cfg.TopP = parsed
	}

	if v := os.Getenv("BOOKSUM_MODEL_TIMEOUT"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BOOKSUM_MODEL_TIMEOUT format: %s: %w", v, err)
		}
		cfg.Timeout = parsed
	}

	if v := os.Getenv("BOOKSUM_REQUESTS_PER_MINUTE"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BOOKSUM_REQUESTS_PER_MINUTE format: %s: %w", v, err)
		}
		cfg.RequestsPerMinute = parsed
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generation configuration: %w", err)
	}

	return cfg, nil
}
