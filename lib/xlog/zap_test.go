package xlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/lib/infra"
)

type memSyncer struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (m *memSyncer) Write(p []byte) (int, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.buf.Write(p)
}

func (m *memSyncer) Sync() error { return nil }

func (m *memSyncer) lines(t *testing.T) []map[string]any {
	m.lock.Lock()
	defer m.lock.Unlock()
	res := make([]map[string]any, 0, 8)
	for _, line := range strings.Split(strings.TrimSpace(m.buf.String()), "\n") {
		if len(line) == 0 {
			continue
		}
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		res = append(res, entry)
	}
	m.buf.Reset()
	return res
}

func newMemLogger(t *testing.T, opts ...XLoggerOption) (XLogger, *memSyncer) {
	mem := &memSyncer{}
	setOutWriterByType(testMemAsOut, mem)
	opts = append([]XLoggerOption{
		WithXLoggerWriter(testMemAsOut),
		WithXLoggerEncoder(JSON),
	}, opts...)
	return NewXLogger(opts...), mem
}

func TestXLogger_LevelAndNamed(t *testing.T) {
	logger, mem := newMemLogger(t, WithXLoggerLevel(LogLevelInfo))
	require.Equal(t, "info", logger.Level())

	logger.Debug("dropped")
	logger.Info("kept", zap.Int("n", 1))
	tree := logger.Named("xtree/avl")
	tree.Warn("rebalanced")

	entries := mem.lines(t)
	require.Len(t, entries, 2)
	require.Equal(t, "kept", entries[0]["msg"])
	require.Equal(t, "INFO", entries[0]["lvl"])
	require.EqualValues(t, 1, entries[0]["n"])
	require.Equal(t, "xtree/avl", entries[1]["component"])

	// Children share the level.
	logger.IncreaseLogLevel(zapcore.ErrorLevel)
	tree.Warn("dropped")
	require.Empty(t, mem.lines(t))
	require.Equal(t, "error", tree.Level())
}

func TestXLogger_ErrorStack(t *testing.T) {
	logger, mem := newMemLogger(t)
	base := errors.New("duplicate key")
	logger.ErrorStack(infra.WrapErrorStackWithMessage(base, "insert"), "rejected")
	logger.Error(base, "plain")
	logger.ErrorStack(base, "no stack")

	entries := mem.lines(t)
	require.Len(t, entries, 3)
	require.Equal(t, "insert: duplicate key", entries[0]["error"])
	require.NotEmpty(t, entries[0]["errorStack"])
	require.Equal(t, "duplicate key", entries[1]["error"])
	require.Equal(t, "duplicate key", entries[2]["error"])
	require.Nil(t, entries[2]["errorStack"])
}

func TestXLogger_ContextFields(t *testing.T) {
	logger, mem := newMemLogger(t,
		WithXLoggerContextFieldExtract("runID", "run"),
		WithXLoggerContextFieldExtract("strategy"),
		WithXLoggerContextFieldExtract("secret", ContextKeyMapToOmitempty),
	)
	ctx := context.WithValue(context.Background(), "runID", "r-1")
	ctx = context.WithValue(ctx, "secret", "x")
	logger.InfoContext(ctx, "start")
	logger.ErrorContext(ctx, errors.New("boom"), "failed")

	entries := mem.lines(t)
	require.Len(t, entries, 2)
	require.Equal(t, "r-1", entries[0]["run"])
	require.Equal(t, "nil", entries[0]["strategy"])
	require.Nil(t, entries[0]["secret"])
	require.Equal(t, "boom", entries[1]["error"])
}

func TestXLogger_Options(t *testing.T) {
	require.Panics(t, func() {
		NewXLogger(WithXLoggerEncoder(_encMax))
	})
	require.Panics(t, func() {
		NewXLogger(WithXLoggerWriter(_writerMax))
	})

	lvl, err := ParseLogLevel(" warn ")
	require.NoError(t, err)
	require.Equal(t, LogLevelWarn, lvl)
	_, err = ParseLogLevel("verbose")
	require.Error(t, err)
	require.Equal(t, zapcore.DebugLevel, getLogLevelOrDefault(""))
	require.Equal(t, zapcore.ErrorLevel, getLogLevelOrDefault("error"))

	nop := NewNopXLogger()
	nop.Info("nothing")
	require.NoError(t, nop.Sync())
}

func TestAntsAndFxXLogger(t *testing.T) {
	logger, mem := newMemLogger(t)
	NewAntsXLogger(logger).Printf("worker exits from panic: %v", "oops")
	var nilAnts *AntsXLogger
	nilAnts.Printf("ignored")

	fxl := NewFxXLogger(logger)
	fxl.LogEvent(&fxevent.Started{})
	fxl.LogEvent(&fxevent.Started{Err: errors.New("bad start")})
	var _ fxevent.Logger = fxl

	entries := mem.lines(t)
	require.Len(t, entries, 3)
	require.Equal(t, "ants", entries[0]["component"])
	require.Equal(t, "worker exits from panic: oops", entries[0]["msg"])
	require.Equal(t, "fx", entries[1]["component"])
	require.Equal(t, "RUNNING", entries[1]["msg"])
	require.Equal(t, "bad start", entries[2]["error"])
}
