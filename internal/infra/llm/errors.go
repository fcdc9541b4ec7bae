// Package llm provides clients for locally hosted text-generation
// models. It includes a native Ollama adapter and an OpenAI-compatible
// adapter (vLLM, llama.cpp server, and similar), both wrapped in a
// circuit breaker with bounded per-call timeouts and optional rate
// limiting, plus a no-op stand-in for tests and dry runs.
package llm

import "errors"

// ErrInvocation marks a failed model invocation. Timeouts, transport
// failures, and malformed responses all wrap this error; the
// orchestrator's retry policy does not distinguish between them.
var ErrInvocation = errors.New("model invocation failed")
