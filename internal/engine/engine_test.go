package engine

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwalters/relint/internal/checker"
	"github.com/mwalters/relint/internal/config"
	"github.com/mwalters/relint/internal/logger"
	"github.com/mwalters/relint/internal/source"
)

// newTestEngine wires an engine against a real working tree under dir, with
// diagnostics captured in the returned buffer.
func newTestEngine(dir string) (*Engine, *bytes.Buffer) {
	var out bytes.Buffer
	e := NewEngine(checker.NewRegistry(), source.NewTreeSource(dir), NewReporter(&out, dir, false))
	return e, &out
}

func whitespaceRoster() []config.CheckerSpec {
	return []config.CheckerSpec{{
		Name:    "whitespace",
		Include: []string{`.*\.(txt|md)$`},
	}}
}

func TestRunCleanFiles(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.txt", "clean\n")
	writeFixture(t, dir, "b.md", "# title\n")
	e, out := newTestEngine(dir)

	outcome, session, err := e.Run(context.Background(), whitespaceRoster(), []string{"a.txt", "b.md"}, ModeValidate)
	require.NoError(t, err)
	assert.Equal(t, OutcomeClean, outcome)
	assert.True(t, session.Empty())
	assert.Equal(t, 0, outcome.ExitCode())
	assert.Empty(t, out.String())
}

func TestRunValidateFixableRetryFixesOnDisk(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.txt", "trailing \n")
	writeFixture(t, dir, "b.md", "# clean\n")
	e, out := newTestEngine(dir)

	outcome, session, err := e.Run(context.Background(), whitespaceRoster(), []string{"a.txt", "b.md"}, ModeValidate)
	require.NoError(t, err)
	assert.Equal(t, OutcomeValidationFailedFixed, outcome)
	assert.Equal(t, 1, outcome.ExitCode())
	assert.Equal(t, []string{"a.txt"}, session.Paths())
	assert.Contains(t, out.String(), "File a.txt lint failed")
	assert.Contains(t, out.String(), "Please review and commit")

	fixed, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "trailing\n", string(fixed))

	untouched, err := os.ReadFile(filepath.Join(dir, "b.md"))
	require.NoError(t, err)
	assert.Equal(t, "# clean\n", string(untouched))
}

func TestRunFixModeWritesAndReportsWrittenToDisk(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.txt", "line\r\n")
	e, out := newTestEngine(dir)

	outcome, session, err := e.Run(context.Background(), whitespaceRoster(), []string{"a.txt"}, ModeFix)
	require.NoError(t, err)
	assert.Equal(t, OutcomeWrittenToDisk, outcome)
	assert.Equal(t, []string{"a.txt"}, session.FixablePaths())
	assert.Contains(t, out.String(), "Fixing a.txt")
	assert.Contains(t, out.String(), "commit them before pushing")

	fixed, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(fixed))
}

func TestRunUnknownCheckerAbortsBeforeAnyWork(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.txt", "trailing \n")
	e, _ := newTestEngine(dir)

	roster := []config.CheckerSpec{
		{Name: "whitespace", Include: []string{`.*`}},
		{Name: "nope", Include: []string{`.*`}},
	}

	_, _, err := e.Run(context.Background(), roster, []string{"a.txt"}, ModeFix)
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))

	// Even though a valid checker preceded the unknown one, no file may
	// have been touched.
	content, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "trailing \n", string(content))
}

func TestRunUnfixableViolations(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "bad.json", "{not json")
	e, out := newTestEngine(dir)

	roster := []config.CheckerSpec{{Name: "json", Include: []string{`.*\.json$`}}}

	outcome, session, err := e.Run(context.Background(), roster, []string{"bad.json"}, ModeValidate)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnfixableErrors, outcome)
	assert.True(t, session.HasUnfixable())
	assert.Contains(t, out.String(), "cannot be automatically fixed")

	content, err := os.ReadFile(filepath.Join(dir, "bad.json"))
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(content))
}

func TestRunPromptDeclinedSkipsRetry(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.txt", "trailing \n")
	e, out := newTestEngine(dir)
	e.Prompt = func(string) bool { return false }
	e.FixCommand = func(paths []string) string { return "relint fix " + paths[0] }

	outcome, _, err := e.Run(context.Background(), whitespaceRoster(), []string{"a.txt"}, ModeValidate)
	require.NoError(t, err)
	assert.Equal(t, OutcomeValidationFailedUnfixable, outcome)
	assert.Contains(t, out.String(), "relint fix a.txt")

	content, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "trailing \n", string(content), "declined prompt must leave files untouched")
}

func TestRunValidateIsIdempotentAfterFix(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.txt", "x \r\ny\n\n\n")
	e, _ := newTestEngine(dir)

	outcome, _, err := e.Run(context.Background(), whitespaceRoster(), []string{"a.txt"}, ModeFix)
	require.NoError(t, err)
	require.Equal(t, OutcomeWrittenToDisk, outcome)

	outcome, _, err = e.Run(context.Background(), whitespaceRoster(), []string{"a.txt"}, ModeValidate)
	require.NoError(t, err)
	assert.Equal(t, OutcomeClean, outcome, "fixed content must validate clean")
}

func TestRunRosterPermutationInvariance(t *testing.T) {
	rosterA := []config.CheckerSpec{
		{Name: "whitespace", Include: []string{`.*\.txt$`}},
		{Name: "json", Include: []string{`.*\.json$`}},
	}
	rosterB := []config.CheckerSpec{rosterA[1], rosterA[0]}

	run := func(roster []config.CheckerSpec) (*SessionResult, Outcome) {
		dir := t.TempDir()
		writeFixture(t, dir, "a.txt", "trailing \n")
		writeFixture(t, dir, "bad.json", "{not json")
		e, _ := newTestEngine(dir)
		e.Prompt = func(string) bool { return false }
		outcome, session, err := e.Run(context.Background(), roster, []string{"a.txt", "bad.json"}, ModeValidate)
		require.NoError(t, err)
		return session, outcome
	}

	sessionA, outcomeA := run(rosterA)
	sessionB, outcomeB := run(rosterB)
	assert.Equal(t, outcomeA, outcomeB)
	assert.Equal(t, sessionA.Paths(), sessionB.Paths())
	assert.Equal(t, sessionA.FixablePaths(), sessionB.FixablePaths())
}

func TestRunEmptyIncludeRunsNothing(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.txt", "trailing \n")
	e, _ := newTestEngine(dir)

	roster := []config.CheckerSpec{{Name: "whitespace"}}

	outcome, session, err := e.Run(context.Background(), roster, []string{"a.txt"}, ModeValidate)
	require.NoError(t, err)
	assert.Equal(t, OutcomeClean, outcome)
	assert.True(t, session.Empty())
}

func TestRunWholeSetChecker(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "en.json", "{\n  \"hello\": \"Hello\",\n  \"bye\": \"Bye\"\n}\n")
	writeFixture(t, dir, "pt.json", "{\n  \"hello\": \"Olá\"\n}\n")
	e, out := newTestEngine(dir)

	roster := []config.CheckerSpec{{Name: "i18n", Include: []string{`.*\.json$`}}}

	outcome, session, err := e.Run(context.Background(), roster, []string{"en.json", "pt.json"}, ModeFix)
	require.NoError(t, err)
	assert.Equal(t, OutcomeWrittenToDisk, outcome)
	assert.Equal(t, []string{"pt.json"}, session.FixablePaths())
	assert.Contains(t, out.String(), "Fixing pt.json")

	pt, err := os.ReadFile(filepath.Join(dir, "pt.json"))
	require.NoError(t, err)
	assert.Contains(t, string(pt), `"bye"`)
}

func TestRunValidateWholeSetRetryFixesOnDisk(t *testing.T) {
	dir := t.TempDir()
	enContent := "{\n  \"bye\": \"Bye\",\n  \"hello\": \"Hello\"\n}\n"
	writeFixture(t, dir, "en.json", enContent)
	writeFixture(t, dir, "pt.json", "{\n  \"hello\": \"Olá\"\n}\n")
	e, out := newTestEngine(dir)

	roster := []config.CheckerSpec{{Name: "i18n", Include: []string{`.*\.json$`}}}

	outcome, session, err := e.Run(context.Background(), roster, []string{"en.json", "pt.json"}, ModeValidate)
	require.NoError(t, err)
	assert.Equal(t, OutcomeValidationFailedFixed, outcome)
	assert.Equal(t, []string{"pt.json"}, session.FixablePaths())
	assert.Contains(t, out.String(), "Fixing pt.json")
	assert.Contains(t, out.String(), "Please review and commit")

	// The retry hands the cross-file checker its full file set, so the
	// donor locale is available even though only pt.json is rewritten.
	pt, err := os.ReadFile(filepath.Join(dir, "pt.json"))
	require.NoError(t, err)
	assert.Contains(t, string(pt), `"bye"`)

	en, err := os.ReadFile(filepath.Join(dir, "en.json"))
	require.NoError(t, err)
	assert.Equal(t, enContent, string(en), "donor file must not be rewritten")
}

// onePassChecker flags a fixable violation only on its first invocation and
// reports clean content afterwards, so a fix pass finds nothing to repair.
type onePassChecker struct {
	calls atomic.Int32
}

func (c *onePassChecker) Name() string { return "onepass" }

func (c *onePassChecker) CheckFile(path string, content []byte) ([]byte, []string, error) {
	if c.calls.Add(1) == 1 {
		return []byte("normalized\n"), []string{"content drifted"}, nil
	}
	return content, nil, nil
}

func TestRunValidateRetryWithoutRepairIsNotReportedFixed(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.txt", "content\n")
	e, out := newTestEngine(dir)
	chk := &onePassChecker{}
	e.Registry.Register("onepass", func(checker.Options) (checker.Checker, error) { return chk, nil })
	e.FixCommand = func(paths []string) string { return "relint fix " + strings.Join(paths, " ") }

	roster := []config.CheckerSpec{{Name: "onepass", Include: []string{`.*\.txt$`}}}

	outcome, session, err := e.Run(context.Background(), roster, []string{"a.txt"}, ModeValidate)
	require.NoError(t, err)
	assert.Equal(t, OutcomeValidationFailedUnfixable, outcome)
	assert.Equal(t, []string{"a.txt"}, session.FixablePaths())
	assert.NotContains(t, out.String(), "fixed on disk")
	assert.Contains(t, out.String(), "relint fix a.txt")

	content, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "content\n", string(content))
}

// dualChecker implements both execution shapes, which the engine rejects.
type dualChecker struct{}

func (c *dualChecker) Name() string { return "dual" }

func (c *dualChecker) CheckFile(path string, content []byte) ([]byte, []string, error) {
	return content, nil, nil
}

func (c *dualChecker) CheckAll(paths []string, lookup checker.ContentLookup) (map[string][]byte, map[string][]byte, []string, error) {
	return nil, nil, nil, nil
}

func TestRunRejectsDualCapabilityChecker(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.txt", "trailing \n")
	e, _ := newTestEngine(dir)
	e.Registry.Register("dual", func(checker.Options) (checker.Checker, error) { return &dualChecker{}, nil })

	roster := []config.CheckerSpec{
		{Name: "dual", Include: []string{`.*`}},
		{Name: "whitespace", Include: []string{`.*`}},
	}

	_, _, err := e.Run(context.Background(), roster, []string{"a.txt"}, ModeFix)
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), "dual")

	content, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "trailing \n", string(content), "roster rejection must abort before any write")
}

func TestRetryEngineRunsQuietAndUnprompted(t *testing.T) {
	e, _ := newTestEngine(t.TempDir())
	e.Prompt = func(string) bool { return true }
	e.Origin = source.SourceControlIndex
	e.Logger = &captureLogger{}

	retry := e.retryEngine([]string{"a.txt", "b.txt"})
	assert.Nil(t, retry.Prompt)
	assert.Equal(t, source.WorkingTree, retry.Origin)
	assert.IsType(t, &logger.NoOpLogger{}, retry.Logger)
	assert.Equal(t, map[string]bool{"a.txt": true, "b.txt": true}, retry.restrict)
}

// captureLogger records every message it receives.
type captureLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *captureLogger) record(m string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, m)
}

func (l *captureLogger) LogTrace(m string) { l.record(m) }
func (l *captureLogger) LogDebug(m string) { l.record(m) }
func (l *captureLogger) LogInfo(m string)  { l.record(m) }
func (l *captureLogger) LogWarn(m string)  { l.record(m) }
func (l *captureLogger) LogError(m string) { l.record(m) }

func (l *captureLogger) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

func TestRunLogsCarryRunID(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.txt", "clean\n")
	e, _ := newTestEngine(dir)
	logs := &captureLogger{}
	e.Logger = logs

	_, _, err := e.Run(context.Background(), whitespaceRoster(), []string{"a.txt"}, ModeValidate)
	require.NoError(t, err)

	var ids []string
	for _, m := range logs.all() {
		if strings.HasPrefix(m, "run ") {
			ids = append(ids, strings.TrimSuffix(strings.Fields(m)[1], ":"))
		}
	}
	require.GreaterOrEqual(t, len(ids), 3, "run ID should appear across the run lifecycle")
	_, err = uuid.Parse(ids[0])
	require.NoError(t, err)
	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}
}
