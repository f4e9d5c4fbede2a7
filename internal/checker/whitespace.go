package checker

import (
	"bytes"
)

// Whitespace normalizes line endings and trailing whitespace. It fixes:
//   - Windows (CRLF) line endings
//   - trailing spaces and tabs on each line
//   - extra blank lines at the end of the file
//   - a missing final newline
type Whitespace struct{}

func newWhitespace(opts Options) (Checker, error) {
	return &Whitespace{}, nil
}

// Name implements Checker.
func (w *Whitespace) Name() string { return "whitespace" }

// CheckFile implements PerFile. Empty content is left untouched.
func (w *Whitespace) CheckFile(path string, content []byte) ([]byte, []string, error) {
	if len(content) == 0 {
		return content, nil, nil
	}

	var violations []string

	fixed := content
	if bytes.Contains(fixed, []byte("\r\n")) {
		fixed = bytes.ReplaceAll(fixed, []byte("\r\n"), []byte("\n"))
		violations = append(violations, "Windows line endings")
	}

	lines := bytes.Split(fixed, []byte("\n"))
	trimmedAny := false
	for i, line := range lines {
		trimmed := bytes.TrimRight(line, " \t")
		if !bytes.Equal(trimmed, line) {
			lines[i] = trimmed
			trimmedAny = true
		}
	}
	if trimmedAny {
		violations = append(violations, "trailing whitespace")
	}

	// A trailing newline splits into one empty element; more than one
	// empty element at the tail means blank lines before EOF.
	tail := len(lines)
	for tail > 0 && len(lines[tail-1]) == 0 {
		tail--
	}
	if len(lines)-tail > 1 {
		violations = append(violations, "extra blank lines at end of file")
	}
	if len(lines)-tail == 0 {
		violations = append(violations, "missing newline at end of file")
	}
	lines = lines[:tail]

	var out []byte
	if len(lines) > 0 {
		out = append(bytes.Join(lines, []byte("\n")), '\n')
	}

	if bytes.Equal(out, content) {
		return content, nil, nil
	}
	return out, violations, nil
}
