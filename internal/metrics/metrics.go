package metrics

import "time"

// SolveRecord describes one finished solve or repair attempt
type SolveRecord struct {
	RunID    string
	Status   string
	Steps    int
	Duration time.Duration
}

// Repair outcomes
const (
	Repaired  = "repaired"
	Unchanged = "unchanged"
	Escalated = "escalated"
	Failed    = "failed"
	Cancelled = "cancelled"
)

// MetricsSink records engine activity for observability purposes.
type MetricsSink interface {
	RecordSolve(record SolveRecord) error
	RecordRepair(record SolveRecord, outcome string) error
	RecordCommit(version uint64) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveRecord) error          { return nil }
func (NopSink) RecordRepair(SolveRecord, string) error { return nil }
func (NopSink) RecordCommit(uint64) error              { return nil }

// MultiSink forwards every record to all of its sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSolve forwards the record to all sinks, returning the first error encountered.
func (multi *MultiSink) RecordSolve(record SolveRecord) error {
	for _, sink := range multi.Sinks {
		if err := sink.RecordSolve(record); err != nil {
			return err
		}
	}
	return nil
}

func (multi *MultiSink) RecordRepair(record SolveRecord, outcome string) error {
	for _, sink := range multi.Sinks {
		if err := sink.RecordRepair(record, outcome); err != nil {
			return err
		}
	}
	return nil
}

func (multi *MultiSink) RecordCommit(version uint64) error {
	for _, sink := range multi.Sinks {
		if err := sink.RecordCommit(version); err != nil {
			return err
		}
	}
	return nil
}
