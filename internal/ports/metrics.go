package ports

import "time"

// Resolution outcomes reported to MetricsPort.
const (
	OutcomeExcluded   = "excluded"
	OutcomeMemoized   = "memoized"
	OutcomeLocal      = "local"
	OutcomeRemote     = "remote"
	OutcomeNotFound   = "not_found"
	OutcomeParseError = "parse_error"
)

// MetricsPort records resolver activity.
type MetricsPort interface {
	ObserveResolution(outcome string)
	ObserveDownload(kind string, duration time.Duration, err error)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) ObserveResolution(string) {}

func (NopMetrics) ObserveDownload(string, time.Duration, error) {}
