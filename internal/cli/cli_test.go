package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frameloop/netcode/internal/recording"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSyncTestRunsClean(t *testing.T) {
	out, err := execute(t, "synctest", "--frames", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "advanced 30 frames")
	assert.Contains(t, out, "desyncs=0")
	assert.Contains(t, out, "value=60")
}

func TestSyncTestVerboseLogsLifecycle(t *testing.T) {
	out, err := execute(t, "--verbose", "synctest", "--frames", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "session started")
	assert.Contains(t, out, "command=synctest")
}

func TestSyncTestSkewedInputs(t *testing.T) {
	out, err := execute(t, "synctest", "--frames", "10", "--skew")
	require.NoError(t, err)
	assert.Contains(t, out, "value=-10")
	assert.Contains(t, out, "desyncs=0")
}

func TestSyncTestHonorsConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frameloop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  frame_delay: 2\n"), 0o644))

	out, err := execute(t, "--config", path, "synctest", "--frames", "10")
	require.NoError(t, err)
	// Two delay frames run on padded zero inputs, which still agree.
	assert.Contains(t, out, "frame=10 value=20")
}

func TestRecordThenVerify(t *testing.T) {
	journal := filepath.Join(t.TempDir(), "run.journal")

	_, err := execute(t, "synctest", "--frames", "20", "--record", journal)
	require.NoError(t, err)

	out, err := execute(t, "verify", journal)
	require.NoError(t, err)
	assert.Contains(t, out, "verified 20 frames")
	assert.Contains(t, out, "value=40")
}

func TestVerifyDetectsTampering(t *testing.T) {
	journal := filepath.Join(t.TempDir(), "run.journal")

	_, err := execute(t, "synctest", "--frames", "5", "--record", journal)
	require.NoError(t, err)

	store, err := recording.Open(journal)
	require.NoError(t, err)
	rec, err := store.Frame(3)
	require.NoError(t, err)
	rec.Inputs[0][0]++
	require.NoError(t, store.Record(rec))
	require.NoError(t, store.Close())

	_, err = execute(t, "verify", journal)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame 3")
}

func TestSchemaPrintsJSON(t *testing.T) {
	out, err := execute(t, "schema")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc, "properties")
}
