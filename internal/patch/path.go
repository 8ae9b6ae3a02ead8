package patch

import (
	"encoding/json"
	"fmt"
)

// Segment addresses one step of a path into the document tree. Only Index
// and Key implement it.
type Segment interface {
	pathSegment()
}

// Index addresses a position in a node's content list.
type Index int

func (Index) pathSegment() {}

// Key addresses a named field of a node ("text", "marks", "attrs") or an
// attribute name under "attrs".
type Key string

func (Key) pathSegment() {}

// Path addresses a location in the tree starting from the root. An empty
// path addresses the root node itself.
type Path []Segment

// MarshalJSON encodes the path as a heterogeneous JSON array: indexes as
// numbers, keys as strings.
func (p Path) MarshalJSON() ([]byte, error) {
	segments := make([]any, len(p))
	for i, segment := range p {
		switch typed := segment.(type) {
		case Index:
			segments[i] = int(typed)
		case Key:
			segments[i] = string(typed)
		default:
			return nil, fmt.Errorf("patch: unsupported path segment %T", segment)
		}
	}
	return json.Marshal(segments)
}

// UnmarshalJSON decodes JSON numbers to Index segments and strings to Key
// segments.
func (p *Path) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	segments := make(Path, 0, len(raw))
	for i, item := range raw {
		if len(item) == 0 {
			return fmt.Errorf("patch: empty path segment at position %d", i)
		}
		if item[0] == '"' {
			var key string
			if err := json.Unmarshal(item, &key); err != nil {
				return fmt.Errorf("patch: path segment %d: %w", i, err)
			}
			segments = append(segments, Key(key))
			continue
		}
		var index int
		if err := json.Unmarshal(item, &index); err != nil {
			return fmt.Errorf("patch: path segment %d: %w", i, err)
		}
		segments = append(segments, Index(index))
	}
	*p = segments
	return nil
}

// childPath returns a copy of base extended by one segment. Copying keeps
// sibling paths from sharing a backing array during diff recursion.
func childPath(base Path, segment Segment) Path {
	extended := make(Path, len(base)+1)
	copy(extended, base)
	extended[len(base)] = segment
	return extended
}
