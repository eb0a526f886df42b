package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trustlab/internal/config"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand(nil)
	require.NotNil(t, cmd)
	assert.Equal(t, "trustlab", cmd.Use)
	assert.Contains(t, cmd.Long, "twenty decision scenarios")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(nil)
	commands := []string{
		"start", "resume", "participant", "framing", "show", "answer",
		"continue", "back", "reset", "status", "export", "exports",
		"validate", "test", "run",
	}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand(nil)

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "trustlab.db", dbFlag.DefValue)

	catalogFlag := cmd.PersistentFlags().Lookup("catalog")
	require.NotNil(t, catalogFlag)
	assert.Equal(t, "", catalogFlag.DefValue)
}

func TestFlagDefaultsFromConfig(t *testing.T) {
	cfg := &config.Config{
		DBPath:      "/data/survey.db",
		CatalogPath: "pilot.yaml",
		ExportDir:   "/data/out",
	}
	cmd := NewRootCommand(cfg)

	assert.Equal(t, "/data/survey.db", cmd.PersistentFlags().Lookup("db").DefValue)
	assert.Equal(t, "pilot.yaml", cmd.PersistentFlags().Lookup("catalog").DefValue)

	exportCmd, _, err := cmd.Find([]string{"export"})
	require.NoError(t, err)
	assert.Equal(t, "/data/out", exportCmd.Flags().Lookup("out").DefValue)
	assert.Equal(t, "json", exportCmd.Flags().Lookup("type").DefValue)
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand(nil)
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	assert.NotNil(t, testCmd.Flags().Lookup("update"))
	assert.NotNil(t, testCmd.Flags().Lookup("filter"))
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand(nil)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--format", "yaml", "validate"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
}

func TestRootCommand_ValidateEndToEnd(t *testing.T) {
	cmd := NewRootCommand(nil)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--format", "json", "validate"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), `"status":"ok"`)
}
