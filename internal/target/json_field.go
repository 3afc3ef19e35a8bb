package target

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// jsonVersionPaths are the fields rewritten in JSON manifests. The second one is
// the root package entry of npm lockfiles.
var jsonVersionPaths = [][]string{
	{"version"},
	{"packages", "", "version"},
}

// jsonScanner walks the token stream and records the byte range of every
// version string without re-encoding the document
type jsonScanner struct {
	content []byte
	base    int
	decoder *json.Decoder
	spans   []span
}

var utf8BOM = []byte("\xef\xbb\xbf")

func locateJSONFields(content []byte) ([]span, error) {
	// the decoder rejects a leading byte order mark; offsets stay relative to content
	base := 0
	if bytes.HasPrefix(content, utf8BOM) {
		base = len(utf8BOM)
	}
	decoder := json.NewDecoder(bytes.NewReader(content[base:]))
	decoder.UseNumber()

	scanner := &jsonScanner{content: content, base: base, decoder: decoder}
	if err := scanner.value(nil); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty JSON document")
		}
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return scanner.spans, nil
}

func (s *jsonScanner) value(path []string) error {
	start := s.decoder.InputOffset()
	token, err := s.decoder.Token()
	if err != nil {
		return err
	}

	switch t := token.(type) {
	case json.Delim:
		switch t {
		case '{':
			for s.decoder.More() {
				keyToken, err := s.decoder.Token()
				if err != nil {
					return err
				}
				key, ok := keyToken.(string)
				if !ok {
					return fmt.Errorf("unexpected object key %v", keyToken)
				}
				if err := s.value(append(path, key)); err != nil {
					return err
				}
			}
		case '[':
			for s.decoder.More() {
				if err := s.value(append(path, "[]")); err != nil {
					return err
				}
			}
		}
		// closing delimiter
		if _, err := s.decoder.Token(); err != nil {
			return err
		}
	case string:
		if !isJSONVersionPath(path) {
			return nil
		}
		from, to := s.base+int(start), s.base+int(s.decoder.InputOffset())
		quote := bytes.IndexByte(s.content[from:to], '"')
		if quote < 0 || to-1 < from+quote+1 {
			return fmt.Errorf("cannot locate string value of %s", strings.Join(path, "."))
		}
		s.spans = append(s.spans, span{
			Field: formatJSONPath(path),
			Start: from + quote + 1,
			End:   to - 1,
			Value: t,
		})
	}
	return nil
}

func isJSONVersionPath(path []string) bool {
	for _, candidate := range jsonVersionPaths {
		if len(candidate) != len(path) {
			continue
		}
		match := true
		for i := range candidate {
			if candidate[i] != path[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func formatJSONPath(path []string) string {
	var b strings.Builder
	for i, segment := range path {
		if segment == "" {
			b.WriteString(`[""]`)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(segment)
	}
	return b.String()
}
