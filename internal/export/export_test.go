package export

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trustlab/internal/catalog"
	"github.com/roach88/trustlab/internal/session"
	"github.com/roach88/trustlab/internal/store"
	"github.com/roach88/trustlab/internal/testutil"
)

func goldenCatalog() *catalog.Catalog {
	cat := catalog.Default()
	cat.Questions = cat.Questions[:3]
	cat.Experiment.TotalQuestions = 3
	cat.Experiment.PhaseSplitIndex = 2
	return cat
}

func at(offset time.Duration) *session.Timestamp {
	return session.NewTimestamp(testutil.DefaultEpoch.Add(offset))
}

func ptr[T any](v T) *T {
	return &v
}

// goldenSession is a three-question session: Q1 followed, Q2 not followed,
// Q3 untouched. The participant id needs CSV quoting.
func goldenSession(t *testing.T, cat *catalog.Catalog) *session.Session {
	t.Helper()
	s, err := session.Init(cat, testutil.DefaultEpoch, testutil.NewFixedIDGenerator("sess-golden"),
		session.Env{UserAgent: "trustlab-test", Timezone: "UTC"}, nil)
	require.NoError(t, err)

	s.Meta.ParticipantID = ptr(`P "7", north`)
	s.State.View = session.ViewQuestion
	s.State.Index = 2
	s.State.Framing = "evidence"

	q1 := &s.Questions[0]
	q1.ShownAt = at(0)
	q1.AnsweredAt = at(2500 * time.Millisecond)
	q1.Choice = ptr("A")
	q1.FramingUsed = ptr("simple")
	q1.AITextSeen = map[string]bool{"simple": true, "evidence": true}
	q1.ResponseTimeMs = ptr(int64(2500))

	q2 := &s.Questions[1]
	q2.ShownAt = at(10 * time.Second)
	q2.AnsweredAt = at(14250 * time.Millisecond)
	q2.Choice = ptr("C")
	q2.FramingUsed = ptr("evidence")
	q2.AITextSeen = map[string]bool{"evidence": true}
	q2.ResponseTimeMs = ptr(int64(4250))
	return s
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestCSV_Golden(t *testing.T) {
	cat := goldenCatalog()
	data, err := CSV(goldenSession(t, cat), cat)
	require.NoError(t, err)

	newGoldie(t).Assert(t, "session_csv", data)
}

func TestJSON_Golden(t *testing.T) {
	cat := goldenCatalog()
	now := testutil.DefaultEpoch.Add(time.Minute)

	data, err := JSON(goldenSession(t, cat), cat, now)
	require.NoError(t, err)

	hash, err := cat.Fingerprint()
	require.NoError(t, err)
	data = bytes.Replace(data, []byte(`"contentHash": "`+hash+`"`), []byte(`"contentHash": "<fingerprint>"`), 1)

	newGoldie(t).Assert(t, "session_json", data)
}

func TestJSON_EmbedsFingerprintAndTime(t *testing.T) {
	cat := goldenCatalog()
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	data, err := JSON(goldenSession(t, cat), cat, now)
	require.NoError(t, err)
	assert.False(t, bytes.HasSuffix(data, []byte("\n")))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	hash, _ := cat.Fingerprint()
	assert.Equal(t, hash, doc["contentHash"])
	assert.Equal(t, "2025-02-01T00:00:00.000Z", doc["exportedAt"])
	assert.Contains(t, doc, "meta")
	assert.Contains(t, doc, "state")
	assert.Len(t, doc["questions"], 3)
}

func TestJSON_NoHTMLEscaping(t *testing.T) {
	cat := goldenCatalog()
	s := goldenSession(t, cat)
	s.Meta.UserAgent = "<b>&</b>"

	data, err := JSON(s, cat, testutil.DefaultEpoch)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"userAgent": "<b>&</b>"`)
}

func TestExport_NoSession(t *testing.T) {
	cat := goldenCatalog()

	_, err := JSON(nil, cat, time.Now())
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = CSV(nil, cat)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCSV_Shape(t *testing.T) {
	cat := catalog.Default()
	s, err := session.Init(cat, testutil.DefaultEpoch, testutil.NewFixedIDGenerator("s"), session.Env{}, nil)
	require.NoError(t, err)

	data, err := CSV(s, cat)
	require.NoError(t, err)

	lines := strings.Split(string(data), "\n")
	require.Len(t, lines, 21)
	assert.Len(t, strings.Split(lines[0], ","), 16)
	assert.Equal(t, "s", strings.Split(lines[1], ",")[1])
	assert.False(t, strings.HasSuffix(string(data), "\n"))

	// Phase column flips at the split.
	assert.Equal(t, "1", strings.Split(lines[10], ",")[5])
	assert.Equal(t, "2", strings.Split(lines[11], ",")[5])
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"", ""},
		{"Option A, then B", `"Option A, then B"`},
		{`He said "go"`, `"He said ""go"""`},
		{"two\nlines", "\"two\nlines\""},
		{" leading space", " leading space"},
		{"carriage\rreturn", "carriage\rreturn"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Escape(tt.in), "Escape(%q)", tt.in)
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 1, 15, 9, 30, 12, 345_000_000, time.UTC)

	tests := []struct {
		name string
		pid  string
		ext  Format
		want string
	}{
		{"anonymous", "", FormatJSON, "exp_anon_2025-01-15T09-30-12-345Z.json"},
		{"plain", "P-07_b", FormatCSV, "exp_P-07_b_2025-01-15T09-30-12-345Z.csv"},
		{"sanitized", "ana maría/1", FormatCSV, "exp_ana_mar_a_1_2025-01-15T09-30-12-345Z.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename("exp", tt.pid, now, tt.ext))
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteFile_WritesAndLogs(t *testing.T) {
	cat := goldenCatalog()
	s := goldenSession(t, cat)
	dir := filepath.Join(t.TempDir(), "exports")
	log := store.NewMemory()
	ctx := context.Background()

	res, err := WriteFile(ctx, dir, FormatCSV, s, cat, testutil.DefaultEpoch, log)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "miamirescue-trust-v2_P__7___north_2025-01-15T09-30-00-000Z.csv"), res.Path)
	onDisk, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	want, err := CSV(s, cat)
	require.NoError(t, err)
	assert.Equal(t, want, onDisk)

	entries, err := log.ListExports(ctx, cat.Experiment.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, res.Record, entries[0])
	assert.Equal(t, int64(1), entries[0].Seq)
	assert.Equal(t, len(onDisk), entries[0].Bytes)
	assert.Equal(t, `P "7", north`, entries[0].ParticipantID)
}

func TestWriteFile_NilLog(t *testing.T) {
	cat := goldenCatalog()
	res, err := WriteFile(context.Background(), t.TempDir(), FormatJSON, goldenSession(t, cat), cat, testutil.DefaultEpoch, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Record.Seq)
	assert.FileExists(t, res.Path)
}
