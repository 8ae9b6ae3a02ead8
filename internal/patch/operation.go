package patch

import "encoding/json"

// OpKind enumerates the supported patch operation kinds.
type OpKind string

const (
	// OpAdd inserts a child node or attribute at the addressed location.
	OpAdd OpKind = "add"
	// OpRemove deletes the child node or attribute at the addressed location.
	OpRemove OpKind = "remove"
	// OpReplace swaps the addressed node, field, or attribute for Value.
	OpReplace OpKind = "replace"
)

// Field names addressable by the final Key segment of a path.
const (
	fieldText  = "text"
	fieldMarks = "marks"
	fieldAttrs = "attrs"
)

// Operation is one tagged edit step in a patch.
type Operation struct {
	Op    OpKind `json:"op"`
	Path  Path   `json:"path"`
	Value any    `json:"value"`
}

// MarshalJSON keeps the value slot for add and replace operations, even when
// it holds an empty string or null, and drops it for remove operations.
func (o Operation) MarshalJSON() ([]byte, error) {
	if o.Op == OpRemove {
		return json.Marshal(struct {
			Op   OpKind `json:"op"`
			Path Path   `json:"path"`
		}{Op: o.Op, Path: o.Path})
	}
	type operation Operation
	return json.Marshal(operation(o))
}

// Patch is an ordered edit script. Order matters: later operations may
// address locations created by earlier ones.
type Patch []Operation
