package engine

import (
	"fmt"
	"regexp"
)

// FilterPaths narrows the candidate file list for one checker. A path is
// kept iff it matches at least one include pattern AND matches none of the
// exclude patterns.
//
// Matching is anchored: a pattern must match from the start of the path
// string (it is compiled as `\A(?:pattern)`), mirroring path-prefix
// conventions. `cmd/` matches "cmd/main.go" but not "internal/cmd/x.go";
// use `.*\.go$` style patterns for extension matches.
//
// An empty include list means include nothing: a checker must opt in to
// paths explicitly, so a misconfigured checker cannot silently run on the
// whole tree.
func FilterPaths(paths, include, exclude []string) ([]string, error) {
	if len(include) == 0 {
		return nil, nil
	}

	includeRE, err := compileAnchored(include)
	if err != nil {
		return nil, err
	}
	excludeRE, err := compileAnchored(exclude)
	if err != nil {
		return nil, err
	}

	var filtered []string
	for _, path := range paths {
		if !matchesAny(includeRE, path) {
			continue
		}
		if matchesAny(excludeRE, path) {
			continue
		}
		filtered = append(filtered, path)
	}
	return filtered, nil
}

func compileAnchored(patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(`\A(?:` + p + `)`)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		res = append(res, re)
	}
	return res, nil
}

func matchesAny(res []*regexp.Regexp, path string) bool {
	for _, re := range res {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
