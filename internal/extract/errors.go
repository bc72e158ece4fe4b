package extract

import "fmt"

// ErrNotConfigured marks a strategy whose credentials or token were not
// supplied. The chain treats it like any other strategy failure and falls
// through.
var ErrNotConfigured = fmt.Errorf("strategy not configured")

// StrategyError represents a failure local to one extraction strategy:
// a timeout, a selector mismatch, or a non-2xx response. It is recovered by
// the chain and never surfaced to the caller of an acquisition run.
type StrategyError struct {
	Strategy string
	Message  string
	Cause    error
}

func (e *StrategyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s strategy: %s: %v", e.Strategy, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s strategy: %s", e.Strategy, e.Message)
}

func (e *StrategyError) Unwrap() error {
	return e.Cause
}
