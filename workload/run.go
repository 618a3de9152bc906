package workload

import (
	"context"

	"github.com/benz9527/xtree/lib/tree"
)

// Run builds the tree of the configured strategy and drives the workload
// against it.
func Run(ctx context.Context, cfg Config, opts ...RunnerOption) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rc := &runnerConfig{}
	for _, o := range opts {
		if o != nil {
			o(rc)
		}
	}
	treeOpts := append([]tree.TreeOption{tree.WithTreeName("workload-" + string(cfg.Strategy))}, rc.treeOpts...)
	if rc.logger != nil {
		treeOpts = append(treeOpts, tree.WithTreeLogger(rc.logger))
	}

	switch cfg.Strategy {
	case BST:
		return run[*tree.BSTNode[uint64, string]](ctx, cfg, tree.NewBSTree[uint64, string](treeOpts...), opts...)
	case AVL:
		return run[*tree.AVLNode[uint64, string]](ctx, cfg, tree.NewAVLTree[uint64, string](treeOpts...), opts...)
	default:
	}
	return run[*tree.RBNode[uint64, string]](ctx, cfg, tree.NewRBTree[uint64, string](treeOpts...), opts...)
}

func run[N tree.Node[uint64, string, N]](
	ctx context.Context,
	cfg Config,
	t tree.OrderedMap[uint64, string, N],
	opts ...RunnerOption,
) (*Report, error) {
	r, err := NewRunner[N](cfg, t, opts...)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx)
}
