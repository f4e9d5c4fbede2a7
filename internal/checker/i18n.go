package checker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// I18n checks translation-key consistency across a set of flat JSON locale
// files. Every key present in any file must be present in all of them; a
// missing key is filled from the first file (in sorted path order) that
// defines it, so the fix is deterministic. Files that fail to parse fail
// the whole batch, since key comparison is meaningless without them.
type I18n struct{}

func newI18n(opts Options) (Checker, error) {
	return &I18n{}, nil
}

// Name implements Checker.
func (c *I18n) Name() string { return "i18n" }

// CheckAll implements WholeSet.
func (c *I18n) CheckAll(paths []string, lookup ContentLookup) (map[string][]byte, map[string][]byte, []string, error) {
	originals := make(map[string][]byte, len(paths))
	parsed := make(map[string]map[string]json.RawMessage, len(paths))

	for _, path := range paths {
		content, err := lookup(path)
		if err != nil {
			return nil, nil, nil, &CheckFailure{
				Checker: c.Name(),
				Message: fmt.Sprintf("%s: %v", path, err),
				Fixable: false,
			}
		}
		var entries map[string]json.RawMessage
		if err := json.Unmarshal(content, &entries); err != nil {
			return nil, nil, nil, &CheckFailure{
				Checker: c.Name(),
				Message: fmt.Sprintf("%s: invalid locale file: %v", path, err),
				Fixable: false,
			}
		}
		originals[path] = content
		parsed[path] = entries
	}

	sortedPaths := make([]string, len(paths))
	copy(sortedPaths, paths)
	sort.Strings(sortedPaths)

	// The union of keys, each paired with the value from the first file
	// that defines it. Sorted path order makes the donor deterministic.
	union := make(map[string]json.RawMessage)
	var unionKeys []string
	for _, path := range sortedPaths {
		keys := make([]string, 0, len(parsed[path]))
		for k := range parsed[path] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, seen := union[k]; !seen {
				union[k] = parsed[path][k]
				unionKeys = append(unionKeys, k)
			}
		}
	}
	sort.Strings(unionKeys)

	newContents := make(map[string][]byte, len(paths))
	var violations []string

	for _, path := range sortedPaths {
		entries := parsed[path]
		missing := false
		for _, k := range unionKeys {
			if _, ok := entries[k]; !ok {
				entries[k] = union[k]
				violations = append(violations, fmt.Sprintf("%s: missing translation key %q", path, k))
				missing = true
			}
		}
		if !missing {
			newContents[path] = originals[path]
			continue
		}
		out, err := marshalLocale(entries)
		if err != nil {
			return nil, nil, nil, &CheckFailure{
				Checker: c.Name(),
				Message: fmt.Sprintf("%s: failed to serialize: %v", path, err),
				Fixable: false,
			}
		}
		newContents[path] = out
	}

	return newContents, originals, violations, nil
}

// marshalLocale serializes a locale map with sorted keys, two-space indent
// and a final newline.
func marshalLocale(entries map[string]json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
