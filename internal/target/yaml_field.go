package target

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlVersionPath is the field rewritten in YAML manifests such as Chart.yaml or pubspec.yaml
const yamlVersionPath = "version"

// locateYAMLFields finds the version scalar of the first document and maps its
// line and column back to byte offsets
func locateYAMLFields(content []byte) ([]span, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	root := &yaml.Node{}
	if err := decoder.Decode(root); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	node, err := findNode(root, parsePath(yamlVersionPath))
	if err != nil {
		return nil, nil
	}
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("yaml path '%s' points to a non-scalar node", yamlVersionPath)
	}

	start, err := scalarOffset(content, node)
	if err != nil {
		return nil, err
	}

	return []span{{
		Field: yamlVersionPath,
		Start: start,
		End:   start + len(node.Value),
		Value: node.Value,
	}}, nil
}

// scalarOffset returns the byte offset of the scalar's value, skipping an opening quote
func scalarOffset(content []byte, node *yaml.Node) (int, error) {
	lines := strings.SplitAfter(string(content), "\n")
	// yaml.Node uses 1-based line numbers
	lineIdx := node.Line - 1
	if lineIdx < 0 || lineIdx >= len(lines) {
		return 0, fmt.Errorf("yaml node line %d out of range", node.Line)
	}

	lineStart := 0
	for _, line := range lines[:lineIdx] {
		lineStart += len(line)
	}
	line := lines[lineIdx]

	search := node.Value
	switch node.Style {
	case yaml.DoubleQuotedStyle:
		search = `"` + node.Value + `"`
	case yaml.SingleQuotedStyle:
		search = `'` + node.Value + `'`
	case yaml.LiteralStyle, yaml.FoldedStyle:
		return 0, fmt.Errorf("block scalars are not supported for version fields")
	}

	// Column is 1-based and points at the opening quote for quoted styles
	colIdx := node.Column - 1
	if colIdx < 0 || colIdx > len(line) {
		colIdx = 0
	}
	idx := strings.Index(line[colIdx:], search)
	if idx < 0 {
		// Fallback: the column counts runes, search the whole line
		colIdx = 0
		idx = strings.Index(line, search)
	}
	if idx < 0 {
		return 0, fmt.Errorf("cannot locate value '%s' on line %d", node.Value, node.Line)
	}

	offset := lineStart + colIdx + idx
	if search != node.Value {
		offset++
	}
	return offset, nil
}

// parsePath splits a dot-notation YAML path into segments
func parsePath(path string) []string {
	return strings.Split(path, ".")
}

// findNode walks the yaml.Node tree following the given path segments
// and returns the node at the end of the path
func findNode(node *yaml.Node, segments []string) (*yaml.Node, error) {
	current := node
	if current.Kind == yaml.DocumentNode {
		if len(current.Content) == 0 {
			return nil, fmt.Errorf("empty document")
		}
		current = current.Content[0]
	}

	for _, segment := range segments {
		if current.Kind == yaml.AliasNode {
			current = current.Alias
		}

		switch current.Kind {
		case yaml.MappingNode:
			found := false
			// MappingNode Content is key-value pairs: [key0, val0, key1, val1, ...]
			for i := 0; i < len(current.Content)-1; i += 2 {
				if current.Content[i].Value == segment {
					current = current.Content[i+1]
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("key '%s' not found", segment)
			}

		case yaml.SequenceNode:
			idx, err := strconv.Atoi(segment)
			if err != nil {
				return nil, fmt.Errorf("expected numeric index for sequence, got '%s'", segment)
			}
			if idx < 0 || idx >= len(current.Content) {
				return nil, fmt.Errorf("index %d out of range (length %d)", idx, len(current.Content))
			}
			current = current.Content[idx]

		default:
			return nil, fmt.Errorf("cannot navigate into %v node at segment '%s'", current.Kind, segment)
		}
	}

	return current, nil
}
