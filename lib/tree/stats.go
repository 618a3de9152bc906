package tree

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	TreeStatsName = "xtree"
)

type rotationKind string

const (
	rotateLL rotationKind = "LL"
	rotateRR rotationKind = "RR"
	rotateLR rotationKind = "LR"
	rotateRL rotationKind = "RL"
	rotateL  rotationKind = "left"
	rotateR  rotationKind = "right"
)

type treeStats struct {
	attrs     attribute.Set
	inserts   metric.Int64Counter
	deletes   metric.Int64Counter
	rotations metric.Int64Counter
	fixups    metric.Int64Counter
	rejects   metric.Int64Counter
	size      metric.Int64ObservableGauge
}

func (stats *treeStats) IncreaseInsertCount() {
	if stats == nil {
		return
	}
	stats.inserts.Add(context.Background(), 1, metric.WithAttributeSet(stats.attrs))
}

func (stats *treeStats) IncreaseDeleteCount() {
	if stats == nil {
		return
	}
	stats.deletes.Add(context.Background(), 1, metric.WithAttributeSet(stats.attrs))
}

func (stats *treeStats) IncreaseRotationCount(kind rotationKind) {
	if stats == nil {
		return
	}
	stats.rotations.Add(context.Background(), 1,
		metric.WithAttributeSet(stats.attrs),
		metric.WithAttributes(attribute.String("xtree.rotation", string(kind))),
	)
}

// IncreaseFixupStep counts one ascent of a retracing or color fixup loop.
func (stats *treeStats) IncreaseFixupStep() {
	if stats == nil {
		return
	}
	stats.fixups.Add(context.Background(), 1, metric.WithAttributeSet(stats.attrs))
}

func (stats *treeStats) IncreaseRejectCount(reason string) {
	if stats == nil {
		return
	}
	stats.rejects.Add(context.Background(), 1,
		metric.WithAttributeSet(stats.attrs),
		metric.WithAttributes(attribute.String("xtree.reject.reason", reason)),
	)
}

func newTreeStats(name, kind string, size func() int64) *treeStats {
	meterName := fmt.Sprintf("%s/%s", TreeStatsName, name)
	meter := otel.Meter(meterName)
	stats := &treeStats{
		attrs: attribute.NewSet(
			attribute.String("xtree.name", name),
			attribute.String("xtree.kind", kind),
		),
		inserts: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xtree.insert.count",
			metric.WithDescription("The number of entries inserted into the tree."),
		)),
		deletes: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xtree.delete.count",
			metric.WithDescription("The number of entries deleted from the tree."),
		)),
		rotations: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xtree.rotation.count",
			metric.WithDescription("The number of rebalancing rotations by rotation kind."),
		)),
		fixups: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xtree.fixup.steps",
			metric.WithDescription("The number of ascents of the rebalancing loops."),
		)),
		rejects: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xtree.reject.count",
			metric.WithDescription("The number of rejected mutations by reason."),
		)),
	}
	stats.size = lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
		"xtree.size",
		metric.WithDescription("The number of entries in the tree."),
		metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
			ob.Observe(size(), metric.WithAttributeSet(stats.attrs))
			return nil
		}),
	))
	return stats
}
