// Package metrics exports run statistics in the node-exporter textfile format
// so CI hosts can scrape them.
package metrics

import (
	"fmt"
	"time"

	"github.com/compprog-lecture-tools/problem-list/build_orchestrator"
	"github.com/compprog-lecture-tools/problem-list/cache_sync"
	"github.com/compprog-lecture-tools/problem-list/catalog_indexer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "problem_list"

// Recorder owns a private registry so that only metrics of this run are written
type Recorder struct {
	registry *prometheus.Registry

	problems     prometheus.Gauge
	incomplete   *prometheus.GaugeVec
	buildStages  *prometheus.CounterVec
	cacheActions *prometheus.CounterVec
	runDuration  *prometheus.GaugeVec
	lastRun      *prometheus.GaugeVec
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		problems: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "problems",
			Help:      "Number of problems found in the repository",
		}),
		incomplete: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "incomplete_problems",
			Help:      "Number of incomplete problems by reason; reason=\"any\" counts each problem once",
		}, []string{"reason"}),
		buildStages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "build_stages_total",
			Help:      "Build stage outcomes",
		}, []string{"stage", "result"}),
		cacheActions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_actions_total",
			Help:      "Cache slot actions taken by the synchronizer",
		}, []string{"action"}),
		runDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run per command",
		}, []string{"command"}),
		lastRun: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the command last finished",
		}, []string{"command"}),
	}
}

// Registry exposes the private registry the recorder writes to
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ObserveCatalog(catalog *catalog_indexer.Catalog) {
	r.problems.Set(float64(catalog.Index.Len()))
	r.incomplete.WithLabelValues("any").Set(float64(catalog.IncompleteCount))
	r.incomplete.WithLabelValues("info").Set(float64(catalog.Incomplete.Info.Len()))
	r.incomplete.WithLabelValues("description").Set(float64(catalog.Incomplete.Description.Len()))
	r.incomplete.WithLabelValues("statement").Set(float64(catalog.Incomplete.Statement.Len()))
	r.incomplete.WithLabelValues("notes").Set(float64(catalog.Incomplete.Notes.Len()))
}

func (r *Recorder) ObserveBuilds(results build_orchestrator.Results) {
	r.buildStages.WithLabelValues("statement", "built").Add(float64(results.StatementsBuilt))
	r.buildStages.WithLabelValues("statement", "failed").Add(float64(results.StatementsFailed))
	r.buildStages.WithLabelValues("notes", "built").Add(float64(results.NotesBuilt))
	r.buildStages.WithLabelValues("notes", "failed").Add(float64(results.NotesFailed))
	r.buildStages.WithLabelValues("notes", "gated").Add(float64(results.NotesGated))
}

func (r *Recorder) ObserveCache(stats cache_sync.SyncStats) {
	for action, n := range stats.Counts() {
		r.cacheActions.WithLabelValues(action).Add(float64(n))
	}
}

// ObserveRun records how long command took, ending at finished
func (r *Recorder) ObserveRun(command string, started time.Time, finished time.Time) {
	r.runDuration.WithLabelValues(command).Set(finished.Sub(started).Seconds())
	r.lastRun.WithLabelValues(command).Set(float64(finished.Unix()))
}

// WriteTextfile atomically replaces path with the current metric values
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
