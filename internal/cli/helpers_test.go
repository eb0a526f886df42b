package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trustlab/internal/catalog"
	"github.com/roach88/trustlab/internal/config"
	"github.com/roach88/trustlab/internal/session"
	"github.com/roach88/trustlab/internal/store"
	"github.com/roach88/trustlab/internal/testutil"
)

// cliEnv runs commands against one database in a temp directory.
type cliEnv struct {
	dir   string
	opts  *RootOptions
	clock *testutil.FakeClock
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		DBPath:    filepath.Join(dir, "trustlab.db"),
		ExportDir: filepath.Join(dir, "exports"),
		UserAgent: "trustlab-test",
		Timezone:  "UTC",
	}
	clock := testutil.NewFakeClock(time.Time{})
	return &cliEnv{
		dir:   dir,
		clock: clock,
		opts: &RootOptions{
			Format: "text",
			DB:     cfg.DBPath,
			Config: cfg,
			Clock:  clock,
			IDs:    testutil.NewFixedIDGenerator("cli-session"),
		},
	}
}

// exec runs the command built by newCmd with args and returns its output.
func (e *cliEnv) exec(t *testing.T, newCmd func(*RootOptions) *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := newCmd(e.opts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// mustExec is exec that requires success.
func (e *cliEnv) mustExec(t *testing.T, newCmd func(*RootOptions) *cobra.Command, args ...string) string {
	t.Helper()
	out, err := e.exec(t, newCmd, args...)
	require.NoError(t, err, out)
	return out
}

// stored decodes the persisted session.
func (e *cliEnv) stored(t *testing.T) *session.Session {
	t.Helper()
	st, err := store.Open(e.opts.DB)
	require.NoError(t, err)
	defer st.Close()

	cat := catalog.Default()
	raw, found, err := st.Load(context.Background(), session.StorageKey(cat.Experiment.ID))
	require.NoError(t, err)
	require.True(t, found, "no stored session")
	s, err := session.Decode(raw, cat)
	require.NoError(t, err)
	return s
}

// decodeResponse parses a JSON envelope and re-decodes its data into out.
func decodeResponse(t *testing.T, raw string, out any) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp), raw)
	if out != nil && resp.Data != nil {
		data, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, out))
	}
	return resp
}
