package target

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

// tomlVersionTables are the tables whose version key is rewritten; "" is the root table
var tomlVersionTables = []string{"package", "project", "tool.poetry", ""}

// locateTOMLFields parses the document to learn which version fields exist,
// then finds them in the raw text to edit it in place. A version key is found
// under its table header, as a dotted key, or inside an inline table.
func locateTOMLFields(content []byte) ([]span, error) {
	var document map[string]interface{}
	if err := toml.Unmarshal(content, &document); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	wanted := make(map[string]string)
	for _, table := range tomlVersionTables {
		if value, ok := tomlStringAt(document, table); ok {
			wanted[table] = value
		}
	}
	if len(wanted) == 0 {
		return nil, nil
	}

	var spans []span
	var section []string
	inArray := false
	offset := 0
	for _, line := range strings.SplitAfter(string(content), "\n") {
		lineStart := offset
		offset += len(line)

		trimmed := strings.TrimRight(line, "\r\n")
		header := strings.TrimSpace(trimmed)
		if strings.HasPrefix(header, "[[") {
			inArray = true
			continue
		}
		if strings.HasPrefix(header, "[") {
			end := strings.LastIndex(header, "]")
			if end < 0 {
				continue
			}
			keys, rest, ok := parseTOMLKey(header[1:end])
			if !ok || strings.TrimSpace(rest) != "" {
				continue
			}
			section, inArray = keys, false
			continue
		}
		if inArray {
			continue
		}

		keys, rest, ok := parseTOMLKey(trimmed)
		if !ok || !strings.HasPrefix(rest, "=") {
			continue
		}
		valueAt := len(trimmed) - len(rest) + 1
		valueAt += len(rest[1:]) - len(strings.TrimLeft(rest[1:], " \t"))
		path := append(append([]string(nil), section...), keys...)

		for table, expected := range wanted {
			tablePath := splitTableName(table)
			var start, end int
			var found bool
			switch {
			case equalPath(path, append(tablePath, "version")):
				start, end, found = tomlStringValue(trimmed, valueAt)
			case equalPath(path, tablePath) && strings.HasPrefix(trimmed[valueAt:], "{"):
				start, end, found = inlineTableVersion(trimmed, valueAt)
			}
			if !found || trimmed[start:end] != expected {
				continue
			}

			field := "version"
			if table != "" {
				field = table + ".version"
			}
			spans = append(spans, span{
				Field: field,
				Start: lineStart + start,
				End:   lineStart + end,
				Value: expected,
			})
			delete(wanted, table)
			break
		}
	}

	if len(wanted) > 0 {
		if len(spans) == 0 {
			return nil, fmt.Errorf("version field present but not editable in place")
		}
		log.Debug().Int("missing", len(wanted)).Msg("Some TOML version fields could not be located")
	}
	return spans, nil
}

// parseTOMLKey reads a possibly dotted, possibly quoted key from the start of s.
// It returns the key segments and the text after the key with leading blanks removed.
func parseTOMLKey(s string) ([]string, string, bool) {
	var keys []string
	rest := strings.TrimLeft(s, " \t")
	for {
		if rest == "" {
			return nil, "", false
		}
		switch rest[0] {
		case '"', '\'':
			end := strings.IndexByte(rest[1:], rest[0])
			if end < 0 {
				return nil, "", false
			}
			keys = append(keys, rest[1:end+1])
			rest = rest[end+2:]
		default:
			end := 0
			for end < len(rest) && isBareKeyChar(rest[end]) {
				end++
			}
			if end == 0 {
				return nil, "", false
			}
			keys = append(keys, rest[:end])
			rest = rest[end:]
		}
		rest = strings.TrimLeft(rest, " \t")
		if !strings.HasPrefix(rest, ".") {
			return keys, rest, true
		}
		rest = strings.TrimLeft(rest[1:], " \t")
	}
}

func isBareKeyChar(c byte) bool {
	return isIdentifierChar(c) || c == '_' || c == '-'
}

// tomlStringValue returns the body range of a basic or literal string starting at i
func tomlStringValue(line string, i int) (int, int, bool) {
	if i >= len(line) || (line[i] != '"' && line[i] != '\'') {
		return 0, 0, false
	}
	quote := line[i]
	for j := i + 1; j < len(line); j++ {
		if quote == '"' && line[j] == '\\' {
			return 0, 0, false
		}
		if line[j] == quote {
			return i + 1, j, true
		}
	}
	return 0, 0, false
}

// inlineTableVersion finds the version key directly inside the inline table opening at i
func inlineTableVersion(line string, i int) (int, int, bool) {
	depth := 0
	for j := i; j < len(line); j++ {
		switch c := line[j]; c {
		case '"', '\'':
			_, end, ok := tomlStringValue(line, j)
			if !ok {
				return 0, 0, false
			}
			j = end
			continue
		case '{', '[':
			depth++
			if c == '[' || depth > 1 {
				continue
			}
		case '}', ']':
			depth--
			if depth == 0 {
				return 0, 0, false
			}
			continue
		case ',':
			if depth > 1 {
				continue
			}
		default:
			continue
		}
		keys, rest, ok := parseTOMLKey(line[j+1:])
		if !ok || !equalPath(keys, []string{"version"}) || !strings.HasPrefix(rest, "=") {
			continue
		}
		valueAt := len(line) - len(rest) + 1
		valueAt += len(rest[1:]) - len(strings.TrimLeft(rest[1:], " \t"))
		return tomlStringValue(line, valueAt)
	}
	return 0, 0, false
}

// tomlStringAt returns the string version key of a dotted table path
func tomlStringAt(document map[string]interface{}, table string) (string, bool) {
	current := document
	for _, part := range splitTableName(table) {
		next, ok := current[part].(map[string]interface{})
		if !ok {
			return "", false
		}
		current = next
	}
	value, ok := current["version"].(string)
	return value, ok
}

func splitTableName(table string) []string {
	if table == "" {
		return nil
	}
	return strings.Split(table, ".")
}

func equalPath(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
