package engine

import "sort"

// Violation is a reported defect in a file, tagged with whether it can be
// fixed automatically.
type Violation struct {
	Path    string
	Fixable bool
}

// SessionResult accumulates violations across all files and all checkers
// in one run. It only ever grows, and accumulation is a commutative,
// associative fold: paths union, fixability ORs. Permuting the checker
// roster therefore cannot change the final result.
type SessionResult struct {
	fixable map[string]bool
}

// NewSessionResult creates an empty SessionResult.
func NewSessionResult() *SessionResult {
	return &SessionResult{fixable: make(map[string]bool)}
}

// Add records a violation. Two violations for the same path merge by
// logical OR on fixable.
func (s *SessionResult) Add(v Violation) {
	s.fixable[v.Path] = s.fixable[v.Path] || v.Fixable
}

// AddAll records every violation in vs.
func (s *SessionResult) AddAll(vs []Violation) {
	for _, v := range vs {
		s.Add(v)
	}
}

// Contains reports whether a violation was recorded for path.
func (s *SessionResult) Contains(path string) bool {
	_, ok := s.fixable[path]
	return ok
}

// Empty reports whether no violations were recorded.
func (s *SessionResult) Empty() bool {
	return len(s.fixable) == 0
}

// Len returns the number of violating paths.
func (s *SessionResult) Len() int {
	return len(s.fixable)
}

// Paths returns all violating paths, sorted.
func (s *SessionResult) Paths() []string {
	paths := make([]string, 0, len(s.fixable))
	for p := range s.fixable {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// FixablePaths returns the violating paths whose merged fixable flag is
// true, sorted. This is the file list for the auto-fix retry.
func (s *SessionResult) FixablePaths() []string {
	var paths []string
	for p, fixable := range s.fixable {
		if fixable {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

// AnyFixable reports whether at least one recorded violation anywhere in
// the session was fixable. The retry decision is keyed on this global
// flag.
func (s *SessionResult) AnyFixable() bool {
	for _, fixable := range s.fixable {
		if fixable {
			return true
		}
	}
	return false
}

// HasUnfixable reports whether some violating path has no fixable
// violation at all.
func (s *SessionResult) HasUnfixable() bool {
	for _, fixable := range s.fixable {
		if !fixable {
			return true
		}
	}
	return false
}
