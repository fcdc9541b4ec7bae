// Package resilience provides reliability patterns for calls to the
// local inference host.
//
// The package supports:
//   - Circuit breakers guarding model invocations
//   - Retry logic with exponential backoff and jitter
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.LocalModelConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callModel()
//	})
//
//	err := retry.WithBackoff(ctx, retry.ModelInvocationConfig(), func() error {
//	    return performOperation()
//	})
package resilience
