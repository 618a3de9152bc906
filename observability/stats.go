package observability

import (
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v3/process"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	AppStatsName = "xtree/app"
)

type AppStats struct {
	goroutines metric.Int64ObservableUpDownCounter
	processes  metric.Int64ObservableUpDownCounter
	workers    metric.Int64ObservableUpDownCounter
	rss        metric.Int64ObservableGauge
}

// InitAppStats registers the process gauges and the otel runtime
// instrumentation on the global meter provider. workers reports the
// number of running workload readers, it may be nil.
func InitAppStats(name string, workers func() int) (*AppStats, error) {
	if len(strings.TrimSpace(name)) == 0 {
		name = "default"
	}
	meter := otel.Meter(
		AppStatsName+"/"+name,
		metric.WithInstrumentationVersion(otelruntime.Version()),
	)
	if workers == nil {
		workers = func() int { return 0 }
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	stats := &AppStats{
		goroutines: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
			"app.core.goroutines",
			metric.WithDescription(`The application goroutines' info.`),
			metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
				ob.Observe(int64(runtime.NumGoroutine()))
				return nil
			}),
		)),
		processes: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
			"app.core.processes",
			metric.WithDescription(`The application processes' info.`),
			metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
				ob.Observe(int64(runtime.GOMAXPROCS(0)))
				return nil
			}),
		)),
		workers: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
			"app.workload.readers",
			metric.WithDescription(`The running workload readers.`),
			metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
				ob.Observe(int64(workers()))
				return nil
			}),
		)),
		rss: lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
			"app.process.rss",
			metric.WithDescription(`The resident set size of the process.`),
			metric.WithUnit("By"),
			metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
				mem, err := proc.MemoryInfoWithContext(ctx)
				if err != nil {
					return err
				}
				ob.Observe(int64(mem.RSS))
				return nil
			}),
		)),
	}
	if err := otelruntime.Start(); err != nil {
		return nil, err
	}
	return stats, nil
}
