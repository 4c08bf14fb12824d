// Package metrics counts resolver activity in a Prometheus registry that
// can be exported as a node-exporter textfile at the end of a run.
package metrics

import (
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/prometheus/client_golang/prometheus"

	"bundle-resolver/internal/ports"
)

type Recorder struct {
	registry *prometheus.Registry

	resolutions      *prometheus.CounterVec
	downloads        *prometheus.CounterVec
	downloadErrors   *prometheus.CounterVec
	downloadDuration *prometheus.HistogramVec
	bundles          prometheus.Gauge
	unresolved       prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bundle_resolver_resolutions_total",
				Help: "Bundle reference resolutions by outcome.",
			},
			[]string{"outcome"},
		),
		downloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bundle_resolver_downloads_total",
				Help: "Remote downloads by kind.",
			},
			[]string{"kind"},
		),
		downloadErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bundle_resolver_download_errors_total",
				Help: "Failed remote downloads by kind.",
			},
			[]string{"kind"},
		),
		downloadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bundle_resolver_download_duration_seconds",
				Help:    "Time taken to download a remote bundle or feature.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		bundles: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bundle_resolver_bundles",
				Help: "Bundles registered by the last run.",
			},
		),
		unresolved: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bundle_resolver_unresolved",
				Help: "References left unresolved by the last run.",
			},
		),
	}
	r.registry.MustRegister(
		r.resolutions,
		r.downloads,
		r.downloadErrors,
		r.downloadDuration,
		r.bundles,
		r.unresolved,
	)
	return r
}

func (r *Recorder) ObserveResolution(outcome string) {
	r.resolutions.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ObserveDownload(kind string, duration time.Duration, err error) {
	r.downloads.WithLabelValues(kind).Inc()
	r.downloadDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if err != nil {
		r.downloadErrors.WithLabelValues(kind).Inc()
	}
}

// ObserveRun records the totals of a finished run.
func (r *Recorder) ObserveRun(bundles int, unresolved int) {
	r.bundles.Set(float64(bundles))
	r.unresolved.Set(float64(unresolved))
}

// WriteTextfile writes every metric in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write metrics").
			WithCause(err)
	}
	return nil
}

var _ ports.MetricsPort = (*Recorder)(nil)
