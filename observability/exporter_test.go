package observability

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"

	"github.com/benz9527/xtree/lib/tree"
)

func TestParseMetricsExporterType(t *testing.T) {
	testcases := []struct {
		input    string
		expected MetricsExporterType
		wantErr  bool
	}{
		{"", NoneExporter, false},
		{"none", NoneExporter, false},
		{" Console ", ConsoleExporter, false},
		{"prometheus", PrometheusExporter, false},
		{"jaeger", NoneExporter, true},
	}
	for _, tc := range testcases {
		typ, err := ParseMetricsExporterType(tc.input)
		if tc.wantErr {
			require.Error(t, err)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tc.expected, typ)
	}
}

func TestConsoleMetricsExporter(t *testing.T) {
	buf := &bytes.Buffer{}
	shutdown, err := NewConsoleMetricsExporter(time.Hour, time.Second, stdoutmetric.WithWriter(buf))
	require.NoError(t, err)

	stats, err := InitAppStats("console-test", func() int { return 3 })
	require.NoError(t, err)
	require.NotNil(t, stats)

	rb := tree.NewRBTree[int, string](tree.WithTreeStats(), tree.WithTreeName("console-test"))
	require.NoError(t, rb.Insert(1, "a"))

	// The periodic reader exports once more on shutdown.
	require.NoError(t, shutdown(context.Background()))
	require.Contains(t, buf.String(), "xtree.insert.count")
	require.Contains(t, buf.String(), "app.workload.readers")
	require.Contains(t, buf.String(), "app.process.rss")
}

func TestPrometheusMetricsExporter(t *testing.T) {
	shutdown, handler, err := NewPrometheusMetricsExporter()
	require.NoError(t, err)
	defer func() {
		require.NoError(t, shutdown(context.Background()))
	}()

	avl := tree.NewAVLTree[int, string](tree.WithTreeStats(), tree.WithTreeName("prom-test"))
	for i := 0; i < 3; i++ {
		require.NoError(t, avl.Insert(i, "v"))
	}

	srv := httptest.NewServer(handler)
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "xtree_insert_count")
	require.Contains(t, string(body), `xtree_name="prom-test"`)
}
