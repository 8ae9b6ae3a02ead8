package document

import (
	"strings"
	"unicode/utf8"
)

// PlainText flattens the tree into its text content, separating block-level
// nodes with newlines so words never run together across boundaries.
func (n *Node) PlainText() string {
	if n == nil {
		return ""
	}
	var builder strings.Builder
	writePlainText(&builder, n)
	return strings.TrimRight(builder.String(), "\n")
}

func writePlainText(builder *strings.Builder, node *Node) {
	switch node.Type {
	case NodeTypeText:
		builder.WriteString(node.Text)
	case NodeTypeHardBreak:
		builder.WriteString("\n")
	default:
		for _, child := range node.Content {
			writePlainText(builder, child)
		}
		if isBlockType(node.Type) {
			builder.WriteString("\n")
		}
	}
}

func isBlockType(nodeType NodeType) bool {
	switch nodeType {
	case NodeTypeParagraph, NodeTypeHeading, NodeTypeListItem,
		NodeTypeCodeBlock, NodeTypeBlockquote, NodeTypeHorizontalRule:
		return true
	default:
		return false
	}
}

// WordCount returns the number of whitespace-separated words in the document.
func WordCount(n *Node) int {
	return len(strings.Fields(n.PlainText()))
}

// CharCount returns the number of text runes in the document. Block
// separators are not counted; only literal text contributes.
func CharCount(n *Node) int {
	if n == nil {
		return 0
	}
	count := 0
	if n.Type == NodeTypeText {
		count = utf8.RuneCountInString(n.Text)
	}
	for _, child := range n.Content {
		count += CharCount(child)
	}
	return count
}
