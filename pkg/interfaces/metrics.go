package interfaces

import "time"

// RuleMetrics records rule execution telemetry. Implementations must be safe
// for concurrent use; the engine calls them from the goroutine running the
// pass.
type RuleMetrics interface {
	ObserveRuleDuration(keyword string, duration time.Duration)
	IncrementRuleError(keyword string)
}
