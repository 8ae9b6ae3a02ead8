package patch

import (
	"encoding/json"
	"testing"

	"github.com/codepetca/pika-sub005/internal/document"
)

func TestApplyFailSoftOnOutOfRangeIndex(t *testing.T) {
	base := docOf(paragraph("only child"))
	bad := Patch{{Op: OpReplace, Path: Path{Index(5), Key("text")}, Value: "nope"}}

	applied := Apply(base, bad)
	if applied != base {
		t.Fatalf("expected apply to return the base tree unchanged")
	}

	tried, ok := TryApply(base, bad)
	if ok {
		t.Fatalf("expected tryApply to report failure")
	}
	if tried != base {
		t.Fatalf("expected tryApply to return the base tree unchanged")
	}
}

func TestApplyFailSoftOnMissingAttr(t *testing.T) {
	base := docOf(&document.Node{Type: document.NodeTypeHeading, Attrs: document.Attrs{"level": 1}})
	bad := Patch{{Op: OpRemove, Path: Path{Index(0), Key("attrs"), Key("missing")}}}

	if _, ok := TryApply(base, bad); ok {
		t.Fatalf("expected removal of a missing attribute to fail")
	}
}

func TestApplyFailSoftMidPatchDiscardsEarlierOperations(t *testing.T) {
	base := docOf(paragraph("one"), paragraph("two"))
	partial := Patch{
		{Op: OpReplace, Path: Path{Index(0), Index(0), Key("text")}, Value: "changed"},
		{Op: OpRemove, Path: Path{Index(9)}},
	}

	applied, ok := TryApply(base, partial)
	if ok {
		t.Fatalf("expected the second operation to fail")
	}
	if !document.Equal(applied, base) {
		t.Fatalf("expected base content back, not a half-applied tree")
	}
	if applied.Content[0].Content[0].Text != "one" {
		t.Fatalf("first operation leaked into the returned tree")
	}
}

func TestApplyEmptyPatchSucceeds(t *testing.T) {
	base := docOf(paragraph("unchanged"))

	applied, ok := TryApply(base, Patch{})
	if !ok {
		t.Fatalf("expected empty patch to succeed")
	}
	if !document.Equal(applied, base) {
		t.Fatalf("expected content to be unchanged")
	}
}

func TestApplyRejectsUnknownOperation(t *testing.T) {
	base := docOf(paragraph("text"))
	bad := Patch{{Op: OpKind("move"), Path: Path{Index(0)}}}

	if _, ok := TryApply(base, bad); ok {
		t.Fatalf("expected unknown operation kind to fail")
	}
}

func TestApplyRejectsRootRemoval(t *testing.T) {
	base := docOf(paragraph("text"))
	bad := Patch{{Op: OpRemove, Path: Path{}}}

	if _, ok := TryApply(base, bad); ok {
		t.Fatalf("expected root removal to fail")
	}
}

func TestApplyReplacesRoot(t *testing.T) {
	base := docOf(paragraph("old"))
	replacement := docOf(paragraph("entirely new"))

	applied, ok := TryApply(base, Patch{{Op: OpReplace, Path: Path{}, Value: replacement}})
	if !ok {
		t.Fatalf("expected root replacement to apply")
	}
	if !document.Equal(applied, replacement) {
		t.Fatalf("expected root to be replaced")
	}
}

func TestApplyInsertsAtPosition(t *testing.T) {
	base := docOf(paragraph("first"), paragraph("third"))
	insert := Patch{{Op: OpAdd, Path: Path{Index(1)}, Value: paragraph("second")}}

	applied, ok := TryApply(base, insert)
	if !ok {
		t.Fatalf("expected insert to apply")
	}
	want := docOf(paragraph("first"), paragraph("second"), paragraph("third"))
	if !document.Equal(applied, want) {
		t.Fatalf("expected middle insert, got %s", mustJSON(t, applied))
	}
}

func TestApplyOrderMatters(t *testing.T) {
	base := docOf(paragraph("existing"))
	// The second operation edits the node the first one created.
	sequenced := Patch{
		{Op: OpAdd, Path: Path{Index(1)}, Value: paragraph("added")},
		{Op: OpReplace, Path: Path{Index(1), Index(0), Key("text")}, Value: "added then edited"},
	}

	applied, ok := TryApply(base, sequenced)
	if !ok {
		t.Fatalf("expected sequenced patch to apply")
	}
	if applied.Content[1].Content[0].Text != "added then edited" {
		t.Fatalf("expected later operation to see earlier insertion")
	}
}

func TestApplyCoercesDecodedAttrValues(t *testing.T) {
	base := docOf(&document.Node{Type: document.NodeTypeHeading, Attrs: document.Attrs{"level": 1}})
	after := docOf(&document.Node{Type: document.NodeTypeHeading, Attrs: document.Attrs{"level": 2}})

	var decoded Patch
	payload := mustJSON(t, Diff(base, after))
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	applied, ok := TryApply(base, decoded)
	if !ok {
		t.Fatalf("expected decoded patch to apply")
	}
	if !document.Equal(applied, after) {
		t.Fatalf("expected decoded float level to compare equal to int level")
	}
}
