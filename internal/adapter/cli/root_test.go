package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/comment-dedup/internal/domain"
	"github.com/bkyoung/comment-dedup/internal/usecase/dedup"
)

// fakeEngine records the calls the CLI makes and plays back canned results.
type fakeEngine struct {
	dedupeRepo    string
	dedupeOpts    dedup.Options
	dedupeResult  dedup.Result
	dedupeErr     error
	recordReq     dedup.RecordRequest
	recordResult  dedup.RecordResult
	recordErr     error
	checkBody     string
	checkMinScore float64
	checkInfo     *domain.DuplicateRecord
	checkErr      error
	resolvedBody  string
	ackedBody     string
}

func (f *fakeEngine) Deduplicate(ctx context.Context, repositoryID string, comments []domain.Comment, opts dedup.Options) (dedup.Result, error) {
	f.dedupeRepo = repositoryID
	f.dedupeOpts = opts
	return f.dedupeResult, f.dedupeErr
}

func (f *fakeEngine) RecordOccurrence(ctx context.Context, req dedup.RecordRequest) (dedup.RecordResult, error) {
	f.recordReq = req
	return f.recordResult, f.recordErr
}

func (f *fakeEngine) GetDuplicateInfo(ctx context.Context, repositoryID, commentBody string, minScore float64) (*domain.DuplicateRecord, error) {
	f.checkBody = commentBody
	f.checkMinScore = minScore
	return f.checkInfo, f.checkErr
}

func (f *fakeEngine) Resolve(ctx context.Context, repositoryID, commentBody string) error {
	f.resolvedBody = commentBody
	return nil
}

func (f *fakeEngine) Acknowledge(ctx context.Context, repositoryID, commentBody string) error {
	f.ackedBody = commentBody
	return nil
}

func runCommand(t *testing.T, engine *fakeEngine, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := NewRootCommand(Dependencies{
		Engine:              engine,
		OutWriter:           &out,
		ErrWriter:           &errOut,
		DefaultRepositoryID: "github.com/acme/api",
		DefaultOptions:      dedup.DefaultOptions(),
	})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestDedupeCommand(t *testing.T) {
	batch := `[{"tempId": "c1", "body": "SQL Injection vulnerability", "filePath": "main.go", "lineNumber": 10}]`

	t.Run("emits JSON off terminal", func(t *testing.T) {
		engine := &fakeEngine{dedupeResult: dedup.Result{Stats: domain.NewStats()}}

		out, _, err := runCommand(t, engine, batch, "dedupe")
		require.NoError(t, err)

		assert.Equal(t, "github.com/acme/api", engine.dedupeRepo)
		assert.Contains(t, out, `"stats"`)
		assert.NotContains(t, out, "重複排除結果")
	})

	t.Run("summary flag prints the report", func(t *testing.T) {
		engine := &fakeEngine{dedupeResult: dedup.Result{Stats: domain.NewStats()}}

		out, _, err := runCommand(t, engine, batch, "dedupe", "--summary")
		require.NoError(t, err)
		assert.Contains(t, out, "重複排除結果:")
	})

	t.Run("flags override configured options", func(t *testing.T) {
		engine := &fakeEngine{dedupeResult: dedup.Result{Stats: domain.NewStats()}}

		_, _, err := runCommand(t, engine, batch, "dedupe",
			"--threshold", "0.7", "--include-resolved", "--recency-window", "48h")
		require.NoError(t, err)

		assert.Equal(t, 0.7, engine.dedupeOpts.SimilarityThreshold)
		assert.True(t, engine.dedupeOpts.IncludeResolved)
		assert.False(t, engine.dedupeOpts.IncludeAcknowledged)
		assert.Equal(t, "48h0m0s", engine.dedupeOpts.RecencyWindow.String())
	})

	t.Run("repo flag wins over the default", func(t *testing.T) {
		engine := &fakeEngine{dedupeResult: dedup.Result{Stats: domain.NewStats()}}

		_, _, err := runCommand(t, engine, batch, "dedupe", "--repo", "github.com/acme/web")
		require.NoError(t, err)
		assert.Equal(t, "github.com/acme/web", engine.dedupeRepo)
	})

	t.Run("malformed input", func(t *testing.T) {
		engine := &fakeEngine{}

		_, _, err := runCommand(t, engine, "not json", "dedupe")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode comments")
	})
}

func TestCheckCommand(t *testing.T) {
	t.Run("duplicate prints the record", func(t *testing.T) {
		fpID := "fp-1"
		engine := &fakeEngine{checkInfo: &domain.DuplicateRecord{
			DuplicateOfFingerprintID: &fpID,
			SimilarityScore:          1.0,
			Reason:                   domain.ReasonExactMatch,
		}}

		out, _, err := runCommand(t, engine, "", "check", "--body", "SQL Injection vulnerability")
		require.NoError(t, err)

		assert.Equal(t, "SQL Injection vulnerability", engine.checkBody)
		assert.Contains(t, out, `"fp-1"`)
		assert.Contains(t, out, "EXACT_MATCH")
	})

	t.Run("original returns the sentinel", func(t *testing.T) {
		engine := &fakeEngine{}

		out, _, err := runCommand(t, engine, "", "check", "--body", "brand new observation")
		require.ErrorIs(t, err, ErrOriginalComment)
		assert.Contains(t, out, "original: no matching fingerprint")
	})

	t.Run("min-score is forwarded", func(t *testing.T) {
		engine := &fakeEngine{}

		_, _, _ = runCommand(t, engine, "", "check", "--body", "x", "--min-score", "0.9")
		assert.Equal(t, 0.9, engine.checkMinScore)
	})
}

func TestRecordCommand(t *testing.T) {
	t.Run("forwards the request", func(t *testing.T) {
		engine := &fakeEngine{recordResult: dedup.RecordResult{FingerprintID: "fp-1", IsNewFingerprint: true}}

		out, errOut, err := runCommand(t, engine, "",
			"record", "--review", "rev-100", "--pr", "pr-42",
			"--file", "main.go", "--line", "10",
			"--body", "SQL Injection vulnerability", "--severity", "high")
		require.NoError(t, err)

		assert.Equal(t, "rev-100", engine.recordReq.ReviewID)
		assert.Equal(t, "pr-42", engine.recordReq.PullRequestID)
		assert.Equal(t, "main.go", engine.recordReq.FilePath)
		assert.Equal(t, 10, engine.recordReq.LineNumber)
		assert.Equal(t, "github.com/acme/api", engine.recordReq.RepositoryID)
		assert.Contains(t, out, `"fp-1"`)
		assert.Empty(t, errOut)
	})

	t.Run("warns on reintroduction", func(t *testing.T) {
		engine := &fakeEngine{recordResult: dedup.RecordResult{FingerprintID: "fp-1", WasReintroduced: true}}

		_, errOut, err := runCommand(t, engine, "",
			"record", "--review", "rev-100", "--file", "main.go", "--body", "x")
		require.NoError(t, err)
		assert.Contains(t, errOut, "reintroduced")
	})

	t.Run("missing required flags", func(t *testing.T) {
		engine := &fakeEngine{}

		_, _, err := runCommand(t, engine, "", "record", "--body", "x")
		require.Error(t, err)
	})
}

func TestLifecycleCommands(t *testing.T) {
	t.Run("resolve", func(t *testing.T) {
		engine := &fakeEngine{}

		out, _, err := runCommand(t, engine, "", "resolve", "--body", "SQL Injection vulnerability")
		require.NoError(t, err)
		assert.Equal(t, "SQL Injection vulnerability", engine.resolvedBody)
		assert.Contains(t, out, "resolved")
	})

	t.Run("ack", func(t *testing.T) {
		engine := &fakeEngine{}

		out, _, err := runCommand(t, engine, "", "ack", "--body", "Magic number")
		require.NoError(t, err)
		assert.Equal(t, "Magic number", engine.ackedBody)
		assert.Contains(t, out, "acknowledged")
	})
}

func TestRepositoryIDResolution(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCommand(Dependencies{
		Engine:    &fakeEngine{},
		OutWriter: &out,
		ErrWriter: &out,
	})
	root.SetIn(strings.NewReader("[]"))
	root.SetArgs([]string{"dedupe"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no repository ID")
}
