package workload

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/lib/xlog"
)

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg = Config{Strategy: "splay", Keys: 0, Ops: -1, Readers: -1, InsertRatio: 2}
	err := cfg.Validate()
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 5)

	st, err := ParseStrategy(" AVL ")
	require.NoError(t, err)
	require.Equal(t, AVL, st)
}

func TestRun_AllStrategies(t *testing.T) {
	for _, st := range []Strategy{BST, AVL, RB} {
		t.Run(string(st), func(tt *testing.T) {
			readers := &atomic.Int64{}
			cfg := Config{
				Strategy:      st,
				Keys:          512,
				Ops:           4096,
				Seed:          42,
				Readers:       3,
				ValidateEvery: 256,
				InsertRatio:   0.6,
			}
			report, err := Run(context.Background(), cfg,
				WithRunnerLogger(xlog.NewNopXLogger()),
				WithRunnerReaderGauge(readers),
			)
			require.NoError(tt, err)
			require.Equal(tt, st, report.Strategy)
			require.Equal(tt, int64(cfg.Ops), report.Inserts+report.Duplicates+report.Deletes+report.Misses)
			require.Equal(tt, report.Inserts-report.Deletes, report.Len)
			require.Equal(tt, int64(cfg.Ops/cfg.ValidateEvery+1), report.Validations)
			require.Zero(tt, readers.Load())
		})
	}
}

func TestRun_SameSeedSameOutcome(t *testing.T) {
	cfg := Config{Strategy: AVL, Keys: 128, Ops: 1000, Seed: 7, InsertRatio: 0.5}
	r1, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	cfg.Strategy = RB
	r2, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, r1.Inserts, r2.Inserts)
	require.Equal(t, r1.Deletes, r2.Deletes)
	require.Equal(t, r1.Len, r2.Len)
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := Config{Strategy: RB, Keys: 16, Ops: 100, Readers: 1}
	r, err := NewRunner[*tree.RBNode[uint64, string]](cfg, tree.NewRBTree[uint64, string]())
	require.NoError(t, err)
	_, err = r.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	_, err = NewRunner[*tree.RBNode[uint64, string]](cfg, nil)
	require.ErrorIs(t, err, tree.ErrValidation)
}
