package document

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FromYAML parses YAML template text into a document tree.
// Mapping key order is preserved. Scalars are normalized: integers and
// floats both become float64 (matching JSON number semantics), booleans
// become bool, nulls become nil, everything else a string.
//
// JSON is a YAML subset, so FromYAML also accepts JSON templates;
// FromJSON exists for callers that want to state their intent.
func FromYAML(data []byte) (*Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	// An empty input produces a zero node; treat it as an empty mapping so
	// path selection yields empty selections rather than errors.
	if root.Kind == 0 || len(root.Content) == 0 {
		return Mapping(), nil
	}

	return fromYAMLNode(root.Content[0])
}

// FromJSON parses a JSON template into a document tree.
func FromJSON(data []byte) (*Node, error) {
	return FromYAML(data)
}

func fromYAMLNode(yn *yaml.Node) (*Node, error) {
	switch yn.Kind {
	case yaml.AliasNode:
		return fromYAMLNode(yn.Alias)

	case yaml.ScalarNode:
		value, err := scalarValue(yn)
		if err != nil {
			return nil, err
		}
		return &Node{kind: KindScalar, scalar: value, line: yn.Line, column: yn.Column}, nil

	case yaml.SequenceNode:
		items := make([]*Node, 0, len(yn.Content))
		for _, child := range yn.Content {
			node, err := fromYAMLNode(child)
			if err != nil {
				return nil, err
			}
			items = append(items, node)
		}
		return &Node{kind: KindSequence, items: items, line: yn.Line, column: yn.Column}, nil

	case yaml.MappingNode:
		n := &Node{
			kind:     KindMapping,
			children: make(map[string]*Node, len(yn.Content)/2),
			line:     yn.Line,
			column:   yn.Column,
		}
		for i := 0; i+1 < len(yn.Content); i += 2 {
			keyNode := yn.Content[i]
			if keyNode.Kind == yaml.AliasNode {
				keyNode = keyNode.Alias
			}
			key := keyNode.Value

			child, err := fromYAMLNode(yn.Content[i+1])
			if err != nil {
				return nil, err
			}
			if _, exists := n.children[key]; !exists {
				n.keys = append(n.keys, key)
			}
			n.children[key] = child
		}
		return n, nil

	default:
		return nil, fmt.Errorf("unsupported YAML node kind %d at line %d", yn.Kind, yn.Line)
	}
}

// scalarValue normalizes a YAML scalar into string, float64, bool, or nil.
func scalarValue(yn *yaml.Node) (interface{}, error) {
	switch yn.Tag {
	case "!!null":
		return nil, nil

	case "!!bool":
		b, err := strconv.ParseBool(yn.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean %q at line %d: %w", yn.Value, yn.Line, err)
		}
		return b, nil

	case "!!int", "!!float":
		f, err := strconv.ParseFloat(yn.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q at line %d: %w", yn.Value, yn.Line, err)
		}
		return f, nil

	default:
		// !!str and unrecognized tags (!Ref and friends) stay strings.
		return yn.Value, nil
	}
}
