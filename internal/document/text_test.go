package document

import "testing"

func TestPlainTextSeparatesBlocks(t *testing.T) {
	doc := &Node{
		Type: NodeTypeDoc,
		Content: []*Node{
			{Type: NodeTypeParagraph, Content: []*Node{{Type: NodeTypeText, Text: "first line"}}},
			{Type: NodeTypeParagraph, Content: []*Node{
				{Type: NodeTypeText, Text: "second"},
				{Type: NodeTypeHardBreak},
				{Type: NodeTypeText, Text: "third"},
			}},
		},
	}

	want := "first line\nsecond\nthird"
	if got := doc.PlainText(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWordCountAcrossBlocks(t *testing.T) {
	doc := &Node{
		Type: NodeTypeDoc,
		Content: []*Node{
			{Type: NodeTypeParagraph, Content: []*Node{{Type: NodeTypeText, Text: "one two"}}},
			{Type: NodeTypeParagraph, Content: []*Node{{Type: NodeTypeText, Text: "three"}}},
		},
	}

	// Without the block separator "two" and "three" would merge into one word.
	if got := WordCount(doc); got != 3 {
		t.Fatalf("expected 3 words, got %d", got)
	}
}

func TestWordCountEmptyDocument(t *testing.T) {
	doc := &Node{Type: NodeTypeDoc, Content: []*Node{{Type: NodeTypeParagraph}}}
	if got := WordCount(doc); got != 0 {
		t.Fatalf("expected 0 words, got %d", got)
	}
}

func TestCharCountCountsRunes(t *testing.T) {
	doc := &Node{
		Type: NodeTypeDoc,
		Content: []*Node{
			{Type: NodeTypeParagraph, Content: []*Node{{Type: NodeTypeText, Text: "héllo"}}},
			{Type: NodeTypeParagraph, Content: []*Node{{Type: NodeTypeText, Text: "ab"}}},
		},
	}

	if got := CharCount(doc); got != 7 {
		t.Fatalf("expected 7 runes, got %d", got)
	}
}
