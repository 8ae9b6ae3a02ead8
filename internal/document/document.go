package document

import (
	"encoding/json"
	"fmt"
)

// NodeType tags one node kind in the rich-text tree.
type NodeType string

const (
	NodeTypeDoc            NodeType = "doc"
	NodeTypeParagraph      NodeType = "paragraph"
	NodeTypeHeading        NodeType = "heading"
	NodeTypeText           NodeType = "text"
	NodeTypeBulletList     NodeType = "bulletList"
	NodeTypeOrderedList    NodeType = "orderedList"
	NodeTypeListItem       NodeType = "listItem"
	NodeTypeCodeBlock      NodeType = "codeBlock"
	NodeTypeBlockquote     NodeType = "blockquote"
	NodeTypeHorizontalRule NodeType = "horizontalRule"
	NodeTypeHardBreak      NodeType = "hardBreak"
)

// MarkType tags an inline formatting mark carried by a text node.
type MarkType string

const (
	MarkTypeBold   MarkType = "bold"
	MarkTypeItalic MarkType = "italic"
	MarkTypeStrike MarkType = "strike"
	MarkTypeCode   MarkType = "code"
	MarkTypeLink   MarkType = "link"
)

// Attrs is the open-ended attribute map attached to nodes and marks.
type Attrs map[string]any

// Mark is one formatting mark on a text node.
type Mark struct {
	Type  MarkType `json:"type"`
	Attrs Attrs    `json:"attrs,omitempty"`
}

// Node is one node of the rich-text tree. Container nodes carry Content;
// text leaves carry Text and optional Marks. Trees are treated as immutable
// values: every operation that changes a tree returns a new one.
type Node struct {
	Type    NodeType `json:"type"`
	Content []*Node  `json:"content,omitempty"`
	Text    string   `json:"text,omitempty"`
	Attrs   Attrs    `json:"attrs,omitempty"`
	Marks   []Mark   `json:"marks,omitempty"`
}

// Parse decodes a JSON-encoded document tree.
func Parse(payload []byte) (*Node, error) {
	var node Node
	if err := json.Unmarshal(payload, &node); err != nil {
		return nil, fmt.Errorf("document: parse: %w", err)
	}
	return &node, nil
}

// Clone returns a deep copy of the tree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	copied := &Node{Type: n.Type, Text: n.Text, Attrs: n.Attrs.Clone()}
	if n.Marks != nil {
		copied.Marks = CloneMarks(n.Marks)
	}
	if n.Content != nil {
		copied.Content = make([]*Node, len(n.Content))
		for i, child := range n.Content {
			copied.Content[i] = child.Clone()
		}
	}
	return copied
}

// NodeCount returns the number of nodes in the tree rooted at n.
func (n *Node) NodeCount() int {
	if n == nil {
		return 0
	}
	count := 1
	for _, child := range n.Content {
		count += child.NodeCount()
	}
	return count
}

// Clone returns a deep copy of the attribute map.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	copied := make(Attrs, len(a))
	for key, value := range a {
		copied[key] = CloneValue(value)
	}
	return copied
}

// CloneMarks returns a deep copy of a mark list.
func CloneMarks(marks []Mark) []Mark {
	if marks == nil {
		return nil
	}
	copied := make([]Mark, len(marks))
	for i, mark := range marks {
		copied[i] = Mark{Type: mark.Type, Attrs: mark.Attrs.Clone()}
	}
	return copied
}

// CloneValue deep-copies a JSON-shaped attribute value.
func CloneValue(value any) any {
	if nested, ok := asMap(value); ok {
		copied := make(map[string]any, len(nested))
		for key, inner := range nested {
			copied[key] = CloneValue(inner)
		}
		return copied
	}
	if list, ok := value.([]any); ok {
		copied := make([]any, len(list))
		for i, inner := range list {
			copied[i] = CloneValue(inner)
		}
		return copied
	}
	return value
}

// Equal reports whether two trees are structurally identical.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type || a.Text != b.Text {
		return false
	}
	if !EqualAttrs(a.Attrs, b.Attrs) {
		return false
	}
	if !EqualMarks(a.Marks, b.Marks) {
		return false
	}
	if len(a.Content) != len(b.Content) {
		return false
	}
	for i := range a.Content {
		if !Equal(a.Content[i], b.Content[i]) {
			return false
		}
	}
	return true
}

// EqualMarks reports whether two mark lists match element by element.
func EqualMarks(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type || !EqualAttrs(a[i].Attrs, b[i].Attrs) {
			return false
		}
	}
	return true
}

// EqualAttrs reports whether two attribute maps hold the same keys and values.
func EqualAttrs(a, b Attrs) bool {
	if len(a) != len(b) {
		return false
	}
	for key, valueA := range a {
		valueB, ok := b[key]
		if !ok || !EqualValue(valueA, valueB) {
			return false
		}
	}
	return true
}

// EqualValue compares two JSON-shaped attribute values. Numbers compare by
// magnitude so an in-memory int matches the float64 a decoded patch carries.
func EqualValue(a, b any) bool {
	if mapA, ok := asMap(a); ok {
		mapB, ok := asMap(b)
		return ok && EqualAttrs(mapA, mapB)
	}
	if listA, ok := a.([]any); ok {
		listB, ok := b.([]any)
		if !ok || len(listA) != len(listB) {
			return false
		}
		for i := range listA {
			if !EqualValue(listA[i], listB[i]) {
				return false
			}
		}
		return true
	}
	if numA, ok := numericValue(a); ok {
		numB, ok := numericValue(b)
		return ok && numA == numB
	}
	return a == b
}

func asMap(value any) (Attrs, bool) {
	switch typed := value.(type) {
	case Attrs:
		return typed, true
	case map[string]any:
		return Attrs(typed), true
	default:
		return nil, false
	}
}

func numericValue(value any) (float64, bool) {
	switch typed := value.(type) {
	case int:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case float32:
		return float64(typed), true
	case float64:
		return typed, true
	case json.Number:
		parsed, err := typed.Float64()
		return parsed, err == nil
	default:
		return 0, false
	}
}
