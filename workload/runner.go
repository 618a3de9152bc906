package workload

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/kv"
	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/lib/xlog"
)

var ErrDiverged = errors.New("[workload] tree diverged from the reference store")

type Report struct {
	Strategy        Strategy      `json:"strategy"`
	Inserts         int64         `json:"inserts"`
	Duplicates      int64         `json:"duplicates"`
	Deletes         int64         `json:"deletes"`
	Misses          int64         `json:"misses"`
	Validations     int64         `json:"validations"`
	Reads           int64         `json:"reads"`
	Iterations      int64         `json:"iterations"`
	StaleIterations int64         `json:"staleIterations"`
	Len             int64         `json:"len"`
	Height          int           `json:"height"`
	Elapsed         time.Duration `json:"elapsed"`
}

type runnerConfig struct {
	logger   xlog.XLogger
	treeOpts []tree.TreeOption
	readers  *atomic.Int64
}

type RunnerOption func(*runnerConfig)

func WithRunnerLogger(logger xlog.XLogger) RunnerOption {
	return func(cfg *runnerConfig) {
		cfg.logger = logger
	}
}

func WithRunnerTreeOptions(opts ...tree.TreeOption) RunnerOption {
	return func(cfg *runnerConfig) {
		cfg.treeOpts = append(cfg.treeOpts, opts...)
	}
}

// WithRunnerReaderGauge publishes the number of running readers.
func WithRunnerReaderGauge(readers *atomic.Int64) RunnerOption {
	return func(cfg *runnerConfig) {
		cfg.readers = readers
	}
}

// Runner drives random mutations into one tree from a single writer while
// a pool of readers searches and iterates it. Every mutation is mirrored
// into a sorted reference store and the outcomes have to agree.
type Runner[N tree.Node[uint64, string, N]] struct {
	cfg     Config
	tree    tree.OrderedMap[uint64, string, N]
	model   kv.ThreadSafeStorer[uint64, string]
	logger  xlog.XLogger
	readers *atomic.Int64
	report  Report
}

func NewRunner[N tree.Node[uint64, string, N]](
	cfg Config,
	t tree.OrderedMap[uint64, string, N],
	opts ...RunnerOption,
) (*Runner[N], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, infra.WrapErrorStackWithMessage(tree.ErrValidation, "tree cannot be nil")
	}
	rc := &runnerConfig{}
	for _, o := range opts {
		if o != nil {
			o(rc)
		}
	}
	if rc.logger == nil {
		rc.logger = xlog.NewNopXLogger()
	}
	if rc.readers == nil {
		rc.readers = &atomic.Int64{}
	}
	return &Runner[N]{
		cfg:     cfg,
		tree:    t,
		model:   kv.NewSortedMap[uint64, string](),
		logger:  rc.logger.Named("workload"),
		readers: rc.readers,
		report:  Report{Strategy: cfg.Strategy},
	}, nil
}

func (r *Runner[N]) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	r.logger.Info("workload started",
		zap.String("strategy", string(r.cfg.Strategy)),
		zap.Int("keys", r.cfg.Keys),
		zap.Int("ops", r.cfg.Ops),
		zap.Int("readers", r.cfg.Readers),
		zap.Int64("seed", r.cfg.Seed),
	)

	stopReaders, err := r.startReaders()
	if err != nil {
		return nil, err
	}
	err = r.mutate(ctx)
	stopReaders()
	err = multierr.Append(err, r.verify())

	r.report.Len = r.tree.Len()
	r.report.Height = r.tree.Height()
	r.report.Elapsed = time.Since(start)
	if err != nil {
		r.logger.ErrorStack(err, "workload failed")
		return &r.report, err
	}
	r.logger.Info("workload finished",
		zap.Int64("len", r.report.Len),
		zap.Int("height", r.report.Height),
		zap.Int64("staleIterations", r.report.StaleIterations),
		zap.Duration("elapsed", r.report.Elapsed),
	)
	return &r.report, nil
}

func (r *Runner[N]) mutate(ctx context.Context) error {
	rnd := rand.New(rand.NewSource(r.cfg.Seed))
	for op := 0; op < r.cfg.Ops; op++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		key := uint64(rnd.Intn(r.cfg.Keys)) + 1
		if rnd.Float64() < r.cfg.InsertRatio {
			if err := r.insert(key, fmt.Sprintf("v%d-%d", key, op)); err != nil {
				return err
			}
		} else if err := r.delete(key); err != nil {
			return err
		}

		if r.cfg.ValidateEvery > 0 && (op+1)%r.cfg.ValidateEvery == 0 {
			r.report.Validations++
			if err := r.tree.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner[N]) insert(key uint64, val string) error {
	_, present := r.model.Get(key)
	err := r.tree.Insert(key, val)
	switch {
	case err == nil && !present:
		r.report.Inserts++
		return r.model.AddOrUpdate(key, val)
	case present && errors.Is(err, tree.ErrDuplicateKey):
		r.report.Duplicates++
		return nil
	default:
	}
	return infra.WrapErrorStackWithMessage(ErrDiverged,
		fmt.Sprintf("insert key %d present %v: %v", key, present, err))
}

func (r *Runner[N]) delete(key uint64) error {
	expected, present := r.model.Get(key)
	n, err := r.tree.Delete(key)
	if err != nil {
		return err
	}
	var zero N
	switch {
	case n == zero && !present:
		r.report.Misses++
		return nil
	case n != zero && present && n.Val() == expected:
		r.report.Deletes++
		_, err = r.model.Delete(key)
		return err
	default:
	}
	return infra.WrapErrorStackWithMessage(ErrDiverged,
		fmt.Sprintf("delete key %d present %v", key, present))
}

// verify compares the final tree against the reference store.
func (r *Runner[N]) verify() error {
	r.report.Validations++
	if err := r.tree.Validate(); err != nil {
		return err
	}
	keys, expected := r.tree.Keys(), r.model.ListKeys()
	if !slices.Equal(keys, expected) {
		missing, extra := lo.Difference(expected, keys)
		return infra.WrapErrorStackWithMessage(ErrDiverged,
			fmt.Sprintf("missing keys %v, extra keys %v", missing, extra))
	}
	return nil
}

func (r *Runner[N]) startReaders() (stop func(), err error) {
	if r.cfg.Readers == 0 {
		return func() {}, nil
	}
	pool, err := ants.NewPool(r.cfg.Readers,
		ants.WithPreAlloc(true),
		ants.WithLogger(xlog.NewAntsXLogger(r.logger)),
	)
	if err != nil {
		return nil, err
	}

	var (
		done       = make(chan struct{})
		wg         = sync.WaitGroup{}
		reads      atomic.Int64
		iterations atomic.Int64
		stale      atomic.Int64
	)
	for i := 0; i < r.cfg.Readers; i++ {
		seed := r.cfg.Seed + int64(i) + 1
		wg.Add(1)
		if err = pool.Submit(func() {
			defer wg.Done()
			r.readers.Add(1)
			defer r.readers.Add(-1)
			r.read(seed, done, &reads, &iterations, &stale)
		}); err != nil {
			wg.Done()
			close(done)
			wg.Wait()
			pool.Release()
			return nil, err
		}
	}

	return func() {
		close(done)
		wg.Wait()
		pool.Release()
		r.report.Reads = reads.Load()
		r.report.Iterations = iterations.Load()
		r.report.StaleIterations = stale.Load()
	}, nil
}

// read alternates point lookups and full iterations until done.
func (r *Runner[N]) read(seed int64, done <-chan struct{}, reads, iterations, stale *atomic.Int64) {
	rnd := rand.New(rand.NewSource(seed))
	for {
		select {
		case <-done:
			return
		default:
		}

		if rnd.Intn(8) > 0 {
			_, _ = r.tree.Get(uint64(rnd.Intn(r.cfg.Keys)) + 1)
			reads.Add(1)
			continue
		}

		it := r.tree.Iterator()
		prev, first := uint64(0), true
		for it.Next() {
			if !first && it.Key() <= prev {
				r.logger.Warn("iterator out of order", zap.Uint64("prev", prev), zap.Uint64("key", it.Key()))
			}
			prev, first = it.Key(), false
		}
		iterations.Add(1)
		if it.Err() != nil {
			stale.Add(1)
		}
	}
}
