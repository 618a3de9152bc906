package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/xlog"
	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/workload"
)

type appConfig struct {
	workload    workload.Config
	exporter    observability.MetricsExporterType
	metricsAddr string
	reportDir   string
	logLevel    xlog.LogLevel
	logEncoder  xlog.LogEncoderType
}

func parseLogEncoder(format string) (xlog.LogEncoderType, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return xlog.JSON, nil
	case "text", "plain", "console":
		return xlog.PlainText, nil
	default:
	}
	return xlog.JSON, fmt.Errorf("unknown log format %q, expected json or text", format)
}

func parseFlags(args []string) (*appConfig, error) {
	var (
		def         = workload.DefaultConfig()
		cfg         = &appConfig{workload: def}
		fs          = pflag.NewFlagSet("xtree", pflag.ContinueOnError)
		strategy    = fs.StringP("strategy", "s", string(def.Strategy), "tree strategy: bst, avl or rb")
		metrics     = fs.String("metrics", string(observability.NoneExporter), "metrics exporter: none, console or prometheus")
		level       = fs.String("log-level", xlog.LogLevelInfo.String(), "log level: debug, info, warn or error")
		format      = fs.String("log-format", "text", "log format: json or text")
		insertRatio = fs.Float64("insert-ratio", def.InsertRatio, "share of inserts among the mutations")
	)
	fs.IntVarP(&cfg.workload.Keys, "keys", "k", def.Keys, "size of the key space")
	fs.IntVarP(&cfg.workload.Ops, "ops", "n", def.Ops, "number of mutations")
	fs.Int64Var(&cfg.workload.Seed, "seed", def.Seed, "random seed of the writer and readers")
	fs.IntVarP(&cfg.workload.Readers, "readers", "r", def.Readers, "size of the concurrent reader pool")
	fs.IntVar(&cfg.workload.ValidateEvery, "validate-every", def.ValidateEvery, "full invariant check every n mutations, 0 at the end only")
	fs.StringVar(&cfg.metricsAddr, "metrics-addr", ":9464", "listen address of the prometheus scrape endpoint")
	fs.StringVar(&cfg.reportDir, "report-dir", "", "directory to write the JSON report into, empty skips it")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.workload.InsertRatio = *insertRatio

	var merr, err error
	if cfg.workload.Strategy, err = workload.ParseStrategy(*strategy); err != nil {
		merr = multierr.Append(merr, err)
	}
	if cfg.exporter, err = observability.ParseMetricsExporterType(*metrics); err != nil {
		merr = multierr.Append(merr, err)
	}
	if cfg.logLevel, err = xlog.ParseLogLevel(*level); err != nil {
		merr = multierr.Append(merr, err)
	}
	if cfg.logEncoder, err = parseLogEncoder(*format); err != nil {
		merr = multierr.Append(merr, err)
	}
	if merr != nil {
		return nil, merr
	}
	if err = cfg.workload.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
