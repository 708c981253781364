package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/txk/image-augmentor/pkg/types"
)

// Values of the status label on augmentor_files_total.
const (
	// StatusOK marks a file that was written.
	StatusOK = "ok"
	// StatusFailed marks a file that could not be loaded or saved.
	StatusFailed = "failed"
)

// Recorder collects batch run metrics on its own registry
type Recorder struct {
	registry        *prometheus.Registry
	filesTotal      *prometheus.CounterVec
	fileDuration    prometheus.Histogram
	pixelsProcessed prometheus.Counter
	bytesWritten    prometheus.Counter
	stepSkips       *prometheus.CounterVec
	runsAborted     prometheus.Counter
}

// New creates a Recorder with all collectors registered
func New() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Recorder{
		registry: registry,
		filesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "augmentor_files_total",
			Help: "Total image files attempted by final status.",
		}, []string{"status"}),
		fileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "augmentor_file_duration_seconds",
			Help:    "Load, enhance and save duration for each file.",
			Buckets: prometheus.DefBuckets,
		}),
		pixelsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "augmentor_pixels_processed_total",
			Help: "Total source pixels processed across successful files.",
		}),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "augmentor_bytes_written_total",
			Help: "Total bytes written to the destination folder.",
		}),
		stepSkips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "augmentor_step_skips_total",
			Help: "Notices raised while processing files, by step.",
		}, []string{"step"}),
		runsAborted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "augmentor_runs_aborted_total",
			Help: "Runs aborted before any file was processed.",
		}),
	}

	registry.MustRegister(
		r.filesTotal,
		r.fileDuration,
		r.pixelsProcessed,
		r.bytesWritten,
		r.stepSkips,
		r.runsAborted,
	)
	return r
}

// ObserveFile records the outcome of a single file
func (r *Recorder) ObserveFile(res types.FileResult) {
	if r == nil {
		return
	}
	for _, n := range res.Notices {
		r.stepSkips.WithLabelValues(n.Step).Inc()
	}
	r.fileDuration.Observe(res.Duration.Seconds())
	if !res.OK() {
		r.filesTotal.WithLabelValues(StatusFailed).Inc()
		return
	}
	r.filesTotal.WithLabelValues(StatusOK).Inc()
	r.pixelsProcessed.Add(float64(res.SourceWidth * res.SourceHeight))
	r.bytesWritten.Add(float64(res.Bytes))
}

// ObserveAbort records a run that stopped before processing any file
func (r *Recorder) ObserveAbort() {
	if r == nil {
		return
	}
	r.runsAborted.Inc()
}

// Registry exposes the underlying registry for gathering
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile dumps the current metrics in the text exposition format,
// suitable for the node-exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

