package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/lib/xlog"
	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/workload"
)

type banner struct{}

func (banner) JSON() string {
	return `{"app":"xtree","desc":"ordered map workload"}`
}

func (banner) PlainText() string {
	return `
 __  __ _____
 \ \/ /|_   _| _ __  ___   ___ 
  >  <   | |  | '__|/ _ \ / _ \
 /_/\_\  |_|  |_|   \___| \___|
`
}

func newLogger(cfg *appConfig) xlog.XLogger {
	logger := xlog.NewXLogger(
		xlog.WithXLoggerStdOutWriter(),
		xlog.WithXLoggerEncoder(cfg.logEncoder),
		xlog.WithXLoggerLevel(cfg.logLevel),
	)
	logger.Banner(banner{})
	return logger
}

type metrics struct {
	shutdown observability.ShutdownFunc
	server   *http.Server
}

func newMetrics(lc fx.Lifecycle, cfg *appConfig, logger xlog.XLogger, readers *atomic.Int64) (*metrics, error) {
	m := &metrics{}
	switch cfg.exporter {
	case observability.ConsoleExporter:
		shutdown, err := observability.NewConsoleMetricsExporter(10*time.Second, 5*time.Second)
		if err != nil {
			return nil, err
		}
		m.shutdown = shutdown
	case observability.PrometheusExporter:
		shutdown, handler, err := observability.NewPrometheusMetricsExporter()
		if err != nil {
			return nil, err
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", handler)
		m.shutdown = shutdown
		m.server = &http.Server{Addr: cfg.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	default:
		return m, nil
	}

	if _, err := observability.InitAppStats("xtree", func() int { return int(readers.Load()) }); err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if m.server == nil {
				return nil
			}
			go func() {
				if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error(err, "metrics server stopped")
				}
			}()
			logger.Info("metrics server started", zap.String("addr", cfg.metricsAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			var err error
			if m.server != nil {
				err = m.server.Shutdown(ctx)
			}
			return multierr.Combine(err, m.shutdown(ctx))
		},
	})
	return m, nil
}

func runWorkload(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *appConfig,
	logger xlog.XLogger,
	readers *atomic.Int64,
	_ *metrics,
) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				opts := []workload.RunnerOption{
					workload.WithRunnerLogger(logger),
					workload.WithRunnerReaderGauge(readers),
				}
				if cfg.exporter != observability.NoneExporter {
					opts = append(opts, workload.WithRunnerTreeOptions(tree.WithTreeStats()))
				}
				report, err := workload.Run(ctx, cfg.workload, opts...)
				code := 0
				if err != nil {
					code = 1
				} else {
					logger.Info("workload report", zap.Any("report", report))
				}
				if report != nil && len(cfg.reportDir) > 0 {
					if filename, err := writeReport(cfg.reportDir, report); err != nil {
						logger.Error(err, "write report failed", zap.String("dir", cfg.reportDir))
						code = 1
					} else {
						logger.Info("report written", zap.String("file", filename))
					}
				}
				_ = shutdowner.Shutdown(fx.ExitCode(code))
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		},
	})
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := newLogger(cfg)
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Logf(zap.InfoLevel, format, args...)
	}))

	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Supply(cfg, &atomic.Int64{}),
		fx.Provide(
			func() xlog.XLogger { return logger },
			newMetrics,
		),
		fx.Invoke(runWorkload),
	)
	app.Run()
}
