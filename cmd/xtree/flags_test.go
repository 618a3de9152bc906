package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/xlog"
	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/workload"
)

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags([]string{
		"--strategy", "AVL",
		"-k", "100",
		"--ops=1000",
		"--seed", "9",
		"-r", "0",
		"--metrics", "prometheus",
		"--metrics-addr", "127.0.0.1:0",
		"--log-level", "warn",
		"--log-format", "json",
		"--report-dir", "/tmp",
	})
	require.NoError(t, err)
	require.Equal(t, workload.AVL, cfg.workload.Strategy)
	require.Equal(t, 100, cfg.workload.Keys)
	require.Equal(t, 1000, cfg.workload.Ops)
	require.Equal(t, int64(9), cfg.workload.Seed)
	require.Equal(t, 0, cfg.workload.Readers)
	require.Equal(t, observability.PrometheusExporter, cfg.exporter)
	require.Equal(t, "127.0.0.1:0", cfg.metricsAddr)
	require.Equal(t, "/tmp", cfg.reportDir)
	require.Equal(t, xlog.LogLevelWarn, cfg.logLevel)
	require.Equal(t, xlog.JSON, cfg.logEncoder)

	def, err := parseFlags(nil)
	require.NoError(t, err)
	require.Equal(t, workload.DefaultConfig(), def.workload)
	require.Equal(t, observability.NoneExporter, def.exporter)
	require.Equal(t, xlog.PlainText, def.logEncoder)
}

func TestParseFlags_Invalid(t *testing.T) {
	_, err := parseFlags([]string{"--strategy", "splay", "--metrics", "jaeger", "--log-format", "xml"})
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 3)

	_, err = parseFlags([]string{"--keys", "0"})
	require.Error(t, err)

	_, err = parseFlags([]string{"--unknown"})
	require.Error(t, err)
}
