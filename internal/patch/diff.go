package patch

import (
	"sort"

	"github.com/codepetca/pika-sub005/internal/document"
)

// Diff computes an edit script transforming before into after. The script
// is deterministic for identical inputs and round-trip exact; it recurses
// positionally over children rather than chasing a minimal edit distance.
func Diff(before, after *document.Node) Patch {
	if document.Equal(before, after) {
		return Patch{}
	}
	if before == nil || after == nil {
		return Patch{{Op: OpReplace, Path: Path{}, Value: after.Clone()}}
	}
	return diffNode(before, after, Path{})
}

func diffNode(before, after *document.Node, at Path) Patch {
	if before.Type != after.Type {
		return Patch{{Op: OpReplace, Path: at, Value: after.Clone()}}
	}

	var ops Patch
	if before.Text != after.Text {
		ops = append(ops, Operation{Op: OpReplace, Path: childPath(at, Key(fieldText)), Value: after.Text})
	}
	if !document.EqualMarks(before.Marks, after.Marks) {
		ops = append(ops, Operation{Op: OpReplace, Path: childPath(at, Key(fieldMarks)), Value: document.CloneMarks(after.Marks)})
	}
	ops = append(ops, diffAttrs(before.Attrs, after.Attrs, at)...)
	ops = append(ops, diffChildren(before.Content, after.Content, at)...)
	return ops
}

func diffAttrs(before, after document.Attrs, at Path) Patch {
	var ops Patch
	for _, key := range sortedAttrKeys(before, after) {
		beforeValue, inBefore := before[key]
		afterValue, inAfter := after[key]
		attrPath := childPath(childPath(at, Key(fieldAttrs)), Key(key))
		switch {
		case inBefore && !inAfter:
			ops = append(ops, Operation{Op: OpRemove, Path: attrPath})
		case !inBefore && inAfter:
			ops = append(ops, Operation{Op: OpAdd, Path: attrPath, Value: document.CloneValue(afterValue)})
		case !document.EqualValue(beforeValue, afterValue):
			ops = append(ops, Operation{Op: OpReplace, Path: attrPath, Value: document.CloneValue(afterValue)})
		}
	}
	return ops
}

func diffChildren(before, after []*document.Node, at Path) Patch {
	var ops Patch
	shared := len(before)
	if len(after) < shared {
		shared = len(after)
	}
	for i := 0; i < shared; i++ {
		ops = append(ops, diffNode(before[i], after[i], childPath(at, Index(i)))...)
	}
	for i := shared; i < len(after); i++ {
		ops = append(ops, Operation{Op: OpAdd, Path: childPath(at, Index(i)), Value: after[i].Clone()})
	}
	// Excess children come out in descending index order so every remove
	// addresses a position that still exists when it runs.
	for i := len(before) - 1; i >= shared; i-- {
		ops = append(ops, Operation{Op: OpRemove, Path: childPath(at, Index(i))})
	}
	return ops
}

// sortedAttrKeys returns the union of both key sets in sorted order, which
// keeps attribute operations deterministic across runs.
func sortedAttrKeys(before, after document.Attrs) []string {
	seen := make(map[string]struct{}, len(before)+len(after))
	keys := make([]string, 0, len(before)+len(after))
	for key := range before {
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	for key := range after {
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}
