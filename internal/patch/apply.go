package patch

import (
	"encoding/json"

	"github.com/codepetca/pika-sub005/internal/document"
)

// Apply runs the patch against base and returns the resulting tree. Any
// operation whose path does not resolve leaves base untouched: callers get
// the prior content back, never an error. A corrupted replay degrades, it
// does not crash.
func Apply(base *document.Node, p Patch) *document.Node {
	applied, _ := TryApply(base, p)
	return applied
}

// TryApply is Apply with failure visibility: it reports whether every
// operation resolved. On failure the returned tree is base unchanged, so
// callers can distinguish an empty-patch no-op from a corrupted patch.
func TryApply(base *document.Node, p Patch) (*document.Node, bool) {
	current := base.Clone()
	for _, op := range p {
		next, ok := applyOperation(current, op)
		if !ok {
			return base, false
		}
		current = next
	}
	return current, true
}

func applyOperation(root *document.Node, op Operation) (*document.Node, bool) {
	switch op.Op {
	case OpAdd, OpRemove, OpReplace:
	default:
		return nil, false
	}

	if len(op.Path) == 0 {
		if op.Op != OpReplace {
			return nil, false
		}
		replacement, ok := coerceNode(op.Value)
		if !ok {
			return nil, false
		}
		return replacement, true
	}

	if root == nil {
		return nil, false
	}

	current := root
	for depth := 0; depth < len(op.Path)-1; depth++ {
		index, isIndex := op.Path[depth].(Index)
		if !isIndex {
			// The only non-final key segment is "attrs", immediately
			// followed by the attribute name.
			key, isKey := op.Path[depth].(Key)
			if !isKey || string(key) != fieldAttrs || depth != len(op.Path)-2 {
				return nil, false
			}
			name, isName := op.Path[depth+1].(Key)
			if !isName {
				return nil, false
			}
			if !applyAttrOperation(current, op, string(name)) {
				return nil, false
			}
			return root, true
		}
		position := int(index)
		if position < 0 || position >= len(current.Content) {
			return nil, false
		}
		current = current.Content[position]
	}

	switch segment := op.Path[len(op.Path)-1].(type) {
	case Index:
		if !applyChildOperation(current, op, int(segment)) {
			return nil, false
		}
		return root, true
	case Key:
		if !applyFieldOperation(current, op, string(segment)) {
			return nil, false
		}
		return root, true
	default:
		return nil, false
	}
}

func applyChildOperation(parent *document.Node, op Operation, position int) bool {
	switch op.Op {
	case OpAdd:
		if position < 0 || position > len(parent.Content) {
			return false
		}
		child, ok := coerceNode(op.Value)
		if !ok {
			return false
		}
		parent.Content = append(parent.Content, nil)
		copy(parent.Content[position+1:], parent.Content[position:])
		parent.Content[position] = child
		return true
	case OpRemove:
		if position < 0 || position >= len(parent.Content) {
			return false
		}
		parent.Content = append(parent.Content[:position], parent.Content[position+1:]...)
		return true
	case OpReplace:
		if position < 0 || position >= len(parent.Content) {
			return false
		}
		child, ok := coerceNode(op.Value)
		if !ok {
			return false
		}
		parent.Content[position] = child
		return true
	default:
		return false
	}
}

func applyFieldOperation(node *document.Node, op Operation, field string) bool {
	if op.Op != OpReplace {
		return false
	}
	switch field {
	case fieldText:
		text, ok := op.Value.(string)
		if !ok {
			return false
		}
		node.Text = text
		return true
	case fieldMarks:
		marks, ok := coerceMarks(op.Value)
		if !ok {
			return false
		}
		node.Marks = marks
		return true
	case fieldAttrs:
		attrs, ok := coerceAttrs(op.Value)
		if !ok {
			return false
		}
		node.Attrs = attrs
		return true
	default:
		return false
	}
}

func applyAttrOperation(node *document.Node, op Operation, name string) bool {
	switch op.Op {
	case OpAdd:
		if node.Attrs == nil {
			node.Attrs = document.Attrs{}
		}
		node.Attrs[name] = document.CloneValue(op.Value)
		return true
	case OpRemove:
		if _, ok := node.Attrs[name]; !ok {
			return false
		}
		delete(node.Attrs, name)
		return true
	case OpReplace:
		if _, ok := node.Attrs[name]; !ok {
			return false
		}
		node.Attrs[name] = document.CloneValue(op.Value)
		return true
	default:
		return false
	}
}

// coerceNode accepts either an in-memory node or the generic map a decoded
// patch carries, so a patch behaves identically before and after a trip
// through storage.
func coerceNode(value any) (*document.Node, bool) {
	switch typed := value.(type) {
	case *document.Node:
		if typed == nil {
			return nil, false
		}
		return typed.Clone(), true
	case map[string]any:
		payload, err := json.Marshal(typed)
		if err != nil {
			return nil, false
		}
		node, err := document.Parse(payload)
		if err != nil {
			return nil, false
		}
		return node, true
	default:
		return nil, false
	}
}

func coerceMarks(value any) ([]document.Mark, bool) {
	switch typed := value.(type) {
	case nil:
		return nil, true
	case []document.Mark:
		return document.CloneMarks(typed), true
	case []any:
		payload, err := json.Marshal(typed)
		if err != nil {
			return nil, false
		}
		var marks []document.Mark
		if err := json.Unmarshal(payload, &marks); err != nil {
			return nil, false
		}
		return marks, true
	default:
		return nil, false
	}
}

func coerceAttrs(value any) (document.Attrs, bool) {
	switch typed := value.(type) {
	case nil:
		return nil, true
	case document.Attrs:
		return typed.Clone(), true
	case map[string]any:
		return document.Attrs(typed).Clone(), true
	default:
		return nil, false
	}
}
