package target

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mxcd/bumper/internal/configuration"
)

// TextReplacer substitutes versions in arbitrary text files
type TextReplacer struct {
	Current string
	Next    string
	Rules   []*configuration.ReplaceRule
}

// Replace applies the rules scoped to path, or the literal current version
// rule when none is scoped to it. It returns the new content and the number
// of replaced occurrences.
func (r *TextReplacer) Replace(path string, content []byte) ([]byte, int, error) {
	var rules []*configuration.ReplaceRule
	for _, rule := range r.Rules {
		if rule.AppliesTo(path) {
			rules = append(rules, rule)
		}
	}

	if len(rules) == 0 {
		out, count := replaceLiteralVersion(content, r.Current, r.Next)
		return out, count, nil
	}

	total := 0
	for _, rule := range rules {
		out, count, err := r.applyRule(rule, content)
		if err != nil {
			return nil, 0, err
		}
		content = out
		total += count
	}
	return content, total, nil
}

func (r *TextReplacer) applyRule(rule *configuration.ReplaceRule, content []byte) ([]byte, int, error) {
	re, err := rule.Compile(r.Current)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid replace pattern '%s': %w", rule.Pattern, err)
	}

	group := re.SubexpIndex("version")
	replacement := expandReplacement(rule.Replacement, r.Current, r.Next)

	var out bytes.Buffer
	last := 0
	count := 0
	for _, m := range re.FindAllSubmatchIndex(content, -1) {
		start, end, value := m[0], m[1], replacement
		if group >= 0 {
			if m[2*group] < 0 {
				continue
			}
			start, end, value = m[2*group], m[2*group+1], r.Next
		}
		if string(content[start:end]) == value {
			continue
		}
		out.Write(content[last:start])
		out.WriteString(value)
		last = end
		count++
	}
	out.Write(content[last:])
	return out.Bytes(), count, nil
}

func expandReplacement(template, current, next string) string {
	expanded := strings.ReplaceAll(template, "{version}", next)
	expanded = strings.ReplaceAll(expanded, "%s", next)
	return strings.ReplaceAll(expanded, configuration.CurrentVersionToken, current)
}

// replaceLiteralVersion replaces standalone occurrences of current. An occurrence
// that is part of a longer version string such as 11.2.3 or 1.2.3-beta is left alone.
func replaceLiteralVersion(content []byte, current, next string) ([]byte, int) {
	if current == "" || current == next {
		return content, 0
	}

	needle := []byte(current)
	var out bytes.Buffer
	last := 0
	count := 0
	for from := 0; from < len(content); {
		idx := bytes.Index(content[from:], needle)
		if idx < 0 {
			break
		}
		start := from + idx
		end := start + len(needle)
		if isStandaloneVersion(content, start, end) {
			out.Write(content[last:start])
			out.WriteString(next)
			last = end
			count++
		}
		from = end
	}
	out.Write(content[last:])
	return out.Bytes(), count
}

func isStandaloneVersion(content []byte, start, end int) bool {
	if start > 0 {
		before := content[start-1]
		if isDigit(before) || before == '.' {
			return false
		}
	}
	if end < len(content) {
		after := content[end]
		if isDigit(after) || after == '+' {
			return false
		}
		followedByIdentifier := end+1 < len(content) && isIdentifierChar(content[end+1])
		if (after == '.' && end+1 < len(content) && isDigit(content[end+1])) || (after == '-' && followedByIdentifier) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentifierChar(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
