package checker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// JSONFormat rewrites JSON documents into a canonical form: sorted object
// keys, configurable indentation (two spaces by default), no HTML escaping,
// and a single final newline. Input that does not parse is a CheckFailure
// and cannot be fixed automatically.
type JSONFormat struct {
	indent string
}

func newJSONFormat(opts Options) (Checker, error) {
	indent := 2
	if v, ok := opts["indent"]; ok {
		n, ok := v.(int)
		if !ok || n < 0 || n > 8 {
			return nil, fmt.Errorf("indent must be an integer between 0 and 8, got %v", v)
		}
		indent = n
	}
	return &JSONFormat{indent: strings.Repeat(" ", indent)}, nil
}

// Name implements Checker.
func (j *JSONFormat) Name() string { return "json" }

// CheckFile implements PerFile.
func (j *JSONFormat) CheckFile(path string, content []byte) ([]byte, []string, error) {
	var doc any
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, nil, &CheckFailure{
			Checker: j.Name(),
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Fixable: false,
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", j.indent)
	if err := enc.Encode(doc); err != nil {
		return nil, nil, &CheckFailure{
			Checker: j.Name(),
			Message: fmt.Sprintf("failed to re-encode: %v", err),
			Fixable: false,
		}
	}

	out := buf.Bytes()
	if bytes.Equal(out, content) {
		return content, nil, nil
	}
	return out, []string{"not in canonical JSON format"}, nil
}
