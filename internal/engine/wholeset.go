package engine

import (
	"context"
	"fmt"

	"github.com/mwalters/relint/internal/checker"
)

// runWholeSet runs a WholeSet capability exactly once over the filtered
// paths, outside the worker pool. All content is gathered up front; the
// lookup handed to the checker reads from that snapshot and never touches
// I/O. On CheckFailure every path in the set is marked with the checker's
// declared fixability, because a batch-style checker allows no per-path
// resolution.
func (e *Engine) runWholeSet(ctx context.Context, ws checker.WholeSet, paths []string) ([]FileOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contents := make(map[string][]byte, len(paths))
	for _, path := range paths {
		content, err := e.Source.ReadContent(path, e.Origin)
		if err != nil {
			return nil, fmt.Errorf("checker %s: %w", ws.Name(), err)
		}
		contents[path] = content
	}

	lookup := func(path string) ([]byte, error) {
		content, ok := contents[path]
		if !ok {
			return nil, fmt.Errorf("path %s is not part of this checker's file set", path)
		}
		return content, nil
	}

	newContents, originals, violations, err := ws.CheckAll(paths, lookup)
	if err != nil {
		cf, ok := checker.AsCheckFailure(err)
		if !ok {
			return nil, fmt.Errorf("checker %s: %w", ws.Name(), err)
		}
		outcomes := make([]FileOutcome, 0, len(paths))
		for _, path := range paths {
			outcomes = append(outcomes, FileOutcome{Path: path, Failure: cf})
		}
		return outcomes, nil
	}

	outcomes := make([]FileOutcome, 0, len(paths))
	for _, path := range paths {
		original, ok := originals[path]
		if !ok {
			original = contents[path]
		}
		corrected, ok := newContents[path]
		if !ok {
			corrected = original
		}
		outcomes = append(outcomes, FileOutcome{
			Path:       path,
			Original:   original,
			Corrected:  corrected,
			Violations: violations,
		})
	}
	return outcomes, nil
}
