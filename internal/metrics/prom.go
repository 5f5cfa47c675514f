package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records solves, repairs and commits in Prometheus metrics.
type PromSink struct {
	solves   *prometheus.CounterVec
	repairs  *prometheus.CounterVec
	steps    prometheus.Histogram
	duration prometheus.Histogram
	version  prometheus.Gauge
}

// NewPromSink registers the scheduling metrics on the provided registerer.
// If reg is nil, the default registerer is used. Collectors registered by a previous sink are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	solves, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "labsched_solves_total",
		Help: "Total number of finished solves by status",
	}, []string{"status"}))
	if err != nil {
		return nil, err
	}
	repairs, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "labsched_repairs_total",
		Help: "Total number of finished repairs by outcome",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}
	steps, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "labsched_search_steps",
		Help:    "Search nodes visited per solve or repair",
		Buckets: prometheus.ExponentialBuckets(10, 4, 10),
	}))
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "labsched_solve_duration_seconds",
		Help:    "Wall time of a solve or repair",
		Buckets: prometheus.DefBuckets,
	}))
	if err != nil {
		return nil, err
	}
	version, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "labsched_schedule_version",
		Help: "Version of the last committed schedule",
	}))
	if err != nil {
		return nil, err
	}

	return &PromSink{solves: solves, repairs: repairs, steps: steps, duration: duration, version: version}, nil
}

// Registers the collector, falling back on the one already registered under the same descriptor
func register[C prometheus.Collector](reg prometheus.Registerer, collector C) (C, error) {
	if err := reg.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return collector, err
		}
		existing, ok := already.ExistingCollector.(C)
		if !ok {
			return collector, fmt.Errorf("collector registered with a different type: %T", already.ExistingCollector)
		}
		return existing, nil
	}
	return collector, nil
}

func (sink *PromSink) RecordSolve(record SolveRecord) error {
	sink.solves.WithLabelValues(record.Status).Inc()
	sink.observe(record)
	return nil
}

func (sink *PromSink) RecordRepair(record SolveRecord, outcome string) error {
	sink.repairs.WithLabelValues(outcome).Inc()
	sink.observe(record)
	return nil
}

func (sink *PromSink) RecordCommit(version uint64) error {
	sink.version.Set(float64(version))
	return nil
}

func (sink *PromSink) observe(record SolveRecord) {
	sink.steps.Observe(float64(record.Steps))
	sink.duration.Observe(record.Duration.Seconds())
}

// WriteTextfile dumps every metric of the gatherer in the text exposition format, for node exporter style collection
func WriteTextfile(path string, gatherer prometheus.Gatherer) error {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("cannot write metrics to %v: %w", path, err)
	}
	return nil
}
