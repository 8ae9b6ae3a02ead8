package history

import (
	"github.com/codepetca/pika-sub005/internal/document"
	"github.com/codepetca/pika-sub005/internal/patch"
)

// WeightFunc scores a patch relative to the content it produces, as a
// ratio where 0 means trivially small and values approaching 1 mean the
// patch touches most of the document.
type WeightFunc func(p patch.Patch, content *document.Node) float64

// OperationCountWeight is the default weight: operation count over total
// node count of the resulting content. It is monotonic in patch size and
// cheap enough to run on every save.
func OperationCountWeight(p patch.Patch, content *document.Node) float64 {
	nodeCount := content.NodeCount()
	if nodeCount < 1 {
		nodeCount = 1
	}
	return float64(len(p)) / float64(nodeCount)
}

// ShouldStoreSnapshot reports whether a save should persist a full snapshot
// instead of the patch alone. A thresholdRatio of 0 snapshots every entry;
// ratios approaching 1 practically never snapshot, since a patch weighs
// strictly less than a non-trivial document. The caller owns actually
// attaching the snapshot to the entry it writes.
func ShouldStoreSnapshot(p patch.Patch, content *document.Node, thresholdRatio float64) bool {
	return ShouldStoreSnapshotWeighted(p, content, thresholdRatio, OperationCountWeight)
}

// ShouldStoreSnapshotWeighted applies a caller-provided weight function for
// deployments that want a different size metric.
func ShouldStoreSnapshotWeighted(p patch.Patch, content *document.Node, thresholdRatio float64, weight WeightFunc) bool {
	if weight == nil {
		weight = OperationCountWeight
	}
	return weight(p, content) >= thresholdRatio
}
