package domain

// Reporter receives diagnostics from degraded code paths. Args follow the
// log/slog key/value convention.
type Reporter interface {
	Report(msg string, args ...any)
}

// NopReporter discards every report.
type NopReporter struct{}

func (NopReporter) Report(string, ...any) {}
