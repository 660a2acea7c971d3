package suite

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Node is the minimal view of a parsed configuration document the loader
// needs: typed scalars, ordered sequences, and key/value mappings. Any
// structured-config library can be adapted to it.
type Node interface {
	// Scalar returns the scalar value (string, int64, float64, bool, or
	// nil) and true when the node is a scalar.
	Scalar() (any, bool)

	// Sequence returns the child nodes and true when the node is a
	// sequence.
	Sequence() ([]Node, bool)

	// Mapping returns the entries in document order and true when the
	// node is a mapping.
	Mapping() ([]MapEntry, bool)
}

// MapEntry is one key/value pair of a mapping node.
type MapEntry struct {
	Key   string
	Value Node
}

// yamlNode adapts a yaml.v3 document tree to the Node interface.
type yamlNode struct {
	n *yaml.Node
}

// FromYAML wraps a yaml.v3 node tree as a loader Node. Document nodes are
// unwrapped to their content and aliases are followed.
func FromYAML(n *yaml.Node) Node {
	return yamlNode{n: resolveYAML(n)}
}

func resolveYAML(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil
			}
			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}

func (y yamlNode) Scalar() (any, bool) {
	if y.n == nil || y.n.Kind != yaml.ScalarNode {
		return nil, false
	}
	switch y.n.Tag {
	case "!!int":
		if i, err := strconv.ParseInt(y.n.Value, 10, 64); err == nil {
			return i, true
		}
		// Non-decimal integer forms (0x.., 0o..) fall back to strings.
		if i, err := strconv.ParseInt(strings.ToLower(y.n.Value), 0, 64); err == nil {
			return i, true
		}
		return y.n.Value, true
	case "!!float":
		if f, err := strconv.ParseFloat(y.n.Value, 64); err == nil {
			return f, true
		}
		return y.n.Value, true
	case "!!bool":
		if b, err := strconv.ParseBool(y.n.Value); err == nil {
			return b, true
		}
		return y.n.Value, true
	case "!!null":
		return nil, true
	default:
		return y.n.Value, true
	}
}

func (y yamlNode) Sequence() ([]Node, bool) {
	if y.n == nil || y.n.Kind != yaml.SequenceNode {
		return nil, false
	}
	out := make([]Node, 0, len(y.n.Content))
	for _, c := range y.n.Content {
		out = append(out, yamlNode{n: resolveYAML(c)})
	}
	return out, true
}

func (y yamlNode) Mapping() ([]MapEntry, bool) {
	if y.n == nil || y.n.Kind != yaml.MappingNode {
		return nil, false
	}
	out := make([]MapEntry, 0, len(y.n.Content)/2)
	for i := 0; i+1 < len(y.n.Content); i += 2 {
		out = append(out, MapEntry{
			Key:   y.n.Content[i].Value,
			Value: yamlNode{n: resolveYAML(y.n.Content[i+1])},
		})
	}
	return out, true
}

// lookup returns the value for key in a mapping node, or nil when the node
// is not a mapping or the key is absent.
func lookup(n Node, key string) Node {
	entries, ok := n.Mapping()
	if !ok {
		return nil
	}
	for _, e := range entries {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

// decodeTree converts a Node into a plain scalar/sequence/mapping tree
// (string, int64, float64, bool, nil, []any, map[string]any). Expected
// field values are stored in this form.
func decodeTree(n Node) any {
	if n == nil {
		return nil
	}
	if v, ok := n.Scalar(); ok {
		return v
	}
	if seq, ok := n.Sequence(); ok {
		out := make([]any, 0, len(seq))
		for _, c := range seq {
			out = append(out, decodeTree(c))
		}
		return out
	}
	if entries, ok := n.Mapping(); ok {
		out := make(map[string]any, len(entries))
		for _, e := range entries {
			out[e.Key] = decodeTree(e.Value)
		}
		return out
	}
	return nil
}
