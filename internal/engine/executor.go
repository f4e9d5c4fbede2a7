package engine

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/mwalters/relint/internal/cache"
	"github.com/mwalters/relint/internal/checker"
	"github.com/mwalters/relint/internal/source"
)

// FileOutcome is one (path, outcomeOrFailure) pair collected from an
// executor. Exactly one of two shapes: Failure set (the checker could not
// process the content), or Original/Corrected set (the checker ran;
// Corrected may equal Original).
type FileOutcome struct {
	Path       string
	Original   []byte
	Corrected  []byte
	Violations []string
	Failure    *checker.CheckFailure
}

// Changed reports whether the checker produced corrected content that
// differs from the original. Unchanged content records no violation.
func (o FileOutcome) Changed() bool {
	return o.Failure == nil && !bytes.Equal(o.Original, o.Corrected)
}

// clean reports whether the outcome is cacheable: no failure, no change,
// no violations.
func (o FileOutcome) clean() bool {
	return o.Failure == nil && len(o.Violations) == 0 && bytes.Equal(o.Original, o.Corrected)
}

type fileTaskResult struct {
	outcome FileOutcome
	err     error
}

// runPerFile runs a PerFile capability across the filtered paths on a
// bounded worker pool, one independent task per path. Results are
// collected without any ordering assumption; the aggregation downstream is
// commutative. A task's CheckFailure never cancels its siblings - the pool
// drains fully. Content is read once per path per checker, so each checker
// observes a consistent snapshot of its own run.
func (e *Engine) runPerFile(ctx context.Context, pf checker.PerFile, cacheKey string, paths []string) ([]FileOutcome, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	jobs := e.Jobs
	if jobs <= 0 {
		jobs = 2 * runtime.NumCPU()
	}
	if jobs > len(paths) {
		jobs = len(paths)
	}

	semaphore := make(chan struct{}, jobs)
	resultsCh := make(chan fileTaskResult, len(paths))

	var wg sync.WaitGroup
	var launchErr error

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			launchErr = err
			break
		}
		select {
		case <-ctx.Done():
			launchErr = ctx.Err()
		case semaphore <- struct{}{}:
		}
		if launchErr != nil {
			break
		}

		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			defer func() { <-semaphore }()
			resultsCh <- e.checkOne(pf, cacheKey, path)
		}(path)
	}

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	outcomes := make([]FileOutcome, 0, len(paths))
	var firstErr error
	for result := range resultsCh {
		if result.err != nil {
			if firstErr == nil {
				firstErr = result.err
			}
			continue
		}
		outcomes = append(outcomes, result.outcome)
	}

	if firstErr == nil {
		firstErr = launchErr
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return outcomes, nil
}

// checkOne is one worker task: read the file's content, consult the clean
// cache, invoke the checker, and record a fresh clean verdict. Only
// *CheckFailure errors are absorbed into the outcome; anything else (a
// failed content read, an unexpected checker error) escalates and aborts
// the run.
func (e *Engine) checkOne(pf checker.PerFile, cacheKey, path string) fileTaskResult {
	content, err := e.Source.ReadContent(path, e.Origin)
	if err != nil {
		return fileTaskResult{err: fmt.Errorf("checker %s: %w", pf.Name(), err)}
	}
	rec := source.FileRecord{Path: path, Content: content, Origin: e.Origin}

	var contentHash string
	if e.Cache != nil {
		contentHash = cache.HashContent(rec.Content)
		clean, err := e.Cache.IsClean(cacheKey, contentHash)
		if err != nil {
			e.logWarn(fmt.Sprintf("cache lookup failed for %s: %v", path, err))
		} else if clean {
			e.logTrace(fmt.Sprintf("%s: %s clean (cached)", pf.Name(), path))
			return fileTaskResult{outcome: FileOutcome{Path: path, Original: rec.Content, Corrected: rec.Content}}
		}
	}

	corrected, violations, err := pf.CheckFile(rec.Path, rec.Content)
	if err != nil {
		if cf, ok := checker.AsCheckFailure(err); ok {
			return fileTaskResult{outcome: FileOutcome{Path: path, Failure: cf}}
		}
		return fileTaskResult{err: fmt.Errorf("checker %s on %s: %w", pf.Name(), path, err)}
	}

	outcome := FileOutcome{
		Path:       path,
		Original:   rec.Content,
		Corrected:  corrected,
		Violations: violations,
	}

	if e.Cache != nil && outcome.clean() {
		if err := e.Cache.MarkClean(cacheKey, contentHash); err != nil {
			e.logWarn(fmt.Sprintf("cache update failed for %s: %v", path, err))
		}
	}

	return fileTaskResult{outcome: outcome}
}
