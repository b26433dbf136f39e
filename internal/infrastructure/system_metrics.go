package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics records Go runtime resource usage for a processing run.
// A batch run takes one snapshot at completion rather than sampling on a
// timer.
type RuntimeMetrics struct {
	goroutines metric.Int64Gauge
	heapInUse  metric.Int64Gauge
	heapSystem metric.Int64Gauge
	gcRuns     metric.Int64Gauge
	gcPause    metric.Float64Histogram
	uptime     metric.Float64Gauge
}

// NewRuntimeMetrics creates the runtime resource instruments on the given meter.
func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	goroutines, err := meter.Int64Gauge(
		"runtime_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return nil, err
	}

	heapInUse, err := meter.Int64Gauge(
		"runtime_heap_inuse_bytes",
		metric.WithDescription("Bytes in in-use heap spans"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	heapSystem, err := meter.Int64Gauge(
		"runtime_heap_sys_bytes",
		metric.WithDescription("Bytes of heap memory obtained from the OS"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcRuns, err := meter.Int64Gauge(
		"runtime_gc_total",
		metric.WithDescription("Completed garbage collection cycles"),
	)
	if err != nil {
		return nil, err
	}

	gcPause, err := meter.Float64Histogram(
		"runtime_gc_pause_seconds",
		metric.WithDescription("Most recent garbage collection pause"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	uptime, err := meter.Float64Gauge(
		"runtime_uptime_seconds",
		metric.WithDescription("Elapsed time since the run started"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RuntimeMetrics{
		goroutines: goroutines,
		heapInUse:  heapInUse,
		heapSystem: heapSystem,
		gcRuns:     gcRuns,
		gcPause:    gcPause,
		uptime:     uptime,
	}, nil
}

// RuntimeStats is a point-in-time snapshot of runtime resource usage.
type RuntimeStats struct {
	Goroutines  int
	HeapInUse   uint64
	HeapSystem  uint64
	GCRuns      uint32
	LastGCPause time.Duration
	Uptime      time.Duration
}

// Collect snapshots the Go runtime and records the gauges. A nil receiver
// still returns the snapshot, so runs without telemetry can log it.
func (rm *RuntimeMetrics) Collect(ctx context.Context, startedAt time.Time) *RuntimeStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	stats := &RuntimeStats{
		Goroutines: runtime.NumGoroutine(),
		HeapInUse:  ms.HeapInuse,
		HeapSystem: ms.HeapSys,
		GCRuns:     ms.NumGC,
		Uptime:     time.Since(startedAt),
	}
	if ms.NumGC > 0 {
		stats.LastGCPause = time.Duration(ms.PauseNs[(ms.NumGC+255)%256])
	}

	if rm == nil {
		return stats
	}

	rm.goroutines.Record(ctx, int64(stats.Goroutines))
	rm.heapInUse.Record(ctx, int64(stats.HeapInUse))
	rm.heapSystem.Record(ctx, int64(stats.HeapSystem))
	rm.gcRuns.Record(ctx, int64(stats.GCRuns))
	if stats.LastGCPause > 0 {
		rm.gcPause.Record(ctx, stats.LastGCPause.Seconds())
	}
	rm.uptime.Record(ctx, stats.Uptime.Seconds())

	return stats
}
