package engine

import (
	"time"

	"github.com/goliatone/go-mdexpand/internal/logging"
	"github.com/goliatone/go-mdexpand/pkg/interfaces"
)

// NoOpMetrics returns a metrics recorder that drops every observation.
func NoOpMetrics() interfaces.RuleMetrics {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) ObserveRuleDuration(string, time.Duration) {}

func (noopMetrics) IncrementRuleError(string) {}

// LoggingMetrics reports rule timings as debug entries on logger.
func LoggingMetrics(logger interfaces.Logger) interfaces.RuleMetrics {
	return loggingMetrics{logger: logging.Ensure(logger)}
}

type loggingMetrics struct {
	logger interfaces.Logger
}

func (m loggingMetrics) ObserveRuleDuration(keyword string, duration time.Duration) {
	m.logger.Debug("engine.rule.observed", "keyword", keyword, "duration_ms", duration.Milliseconds())
}

func (m loggingMetrics) IncrementRuleError(keyword string) {
	m.logger.Debug("engine.rule.error_counted", "keyword", keyword)
}
