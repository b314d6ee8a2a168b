package observability

import (
	"log/slog"
)

// Reporter sends degraded-path diagnostics to the service log and counts them.
// It satisfies domain.Reporter.
type Reporter struct {
	logger  *slog.Logger
	metrics *Metrics
}

// NewReporter creates a Reporter. metrics may be nil.
func NewReporter(logger *slog.Logger, metrics *Metrics) *Reporter {
	return &Reporter{logger: logger, metrics: metrics}
}

// Report logs msg at warn level with the given key/value args.
func (r *Reporter) Report(msg string, args ...any) {
	r.logger.Warn(msg, args...)
	if r.metrics != nil {
		r.metrics.Diagnostics.WithLabelValues(msg).Inc()
	}
}
