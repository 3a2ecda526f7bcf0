package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/asha/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv clears the variables config.Load reads so the developer's
// environment cannot leak into a test.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvRemoteModel, config.EnvLocalModel, config.EnvLocalDim, config.EnvPooling,
		config.EnvAPIKey, config.EnvRemoteHost, config.EnvModelsDir,
		config.EnvDBPath, config.EnvTimeout, config.EnvNamespace,
		config.EnvLogLevel, "ASHA_CONFIG",
	} {
		t.Setenv(key, "")
	}
	t.Setenv(config.EnvModelsDir, t.TempDir())
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out, io.Discard).Run(append([]string{"asha"}, args...))
	return out.String(), err
}

func TestClassifyCommand(t *testing.T) {
	isolateEnv(t)

	out, err := run(t, "classify", "Hi, can you tell me my next appointment?")
	require.NoError(t, err)
	assert.Equal(t, "appointments\n", out)

	_, err = run(t, "classify")
	assert.Error(t, err)
}

func TestRouteCommand(t *testing.T) {
	isolateEnv(t)

	out, err := run(t, "route", "--patient", "p1", "please", "upload", "my", "report")
	require.NoError(t, err)

	var decision struct {
		Intent string         `json:"intent"`
		Action string         `json:"action"`
		Params map[string]any `json:"params"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decision))
	assert.Equal(t, "upload_parse", decision.Intent)
	assert.Equal(t, "clarify", decision.Action)
	assert.Equal(t, "p1", decision.Params["patient_id"])
	assert.Equal(t, "patient_education", decision.Params["namespace"])

	out, err = run(t, "route", "--upload", "upload", "this")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &decision))
	assert.Equal(t, "extract", decision.Action)
	assert.Nil(t, decision.Params["patient_id"])
}

func TestEmbedCommand_FallsBackToHash(t *testing.T) {
	isolateEnv(t)

	out, err := run(t, "embed", "what is AMH", "  ")
	require.NoError(t, err)

	var res struct {
		Backend   string `json:"backend"`
		Dimension int    `json:"dimension"`
		Count     int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "hash", res.Backend)
	assert.Equal(t, 384, res.Dimension)
	assert.Equal(t, 1, res.Count)
}

func TestAppointmentCommands(t *testing.T) {
	isolateEnv(t)
	db := filepath.Join(t.TempDir(), "clinic")
	at := time.Now().Add(72 * time.Hour).In(time.UTC).Format(localTimeLayout)

	out, err := run(t, "--db", db, "appointments", "book",
		"--patient", "p1", "--at", at, "--type", "consultation", "--clinician", "Dr. Rao")
	require.NoError(t, err)
	assert.Contains(t, out, "consultation")
	assert.Contains(t, out, "scheduled")

	out, err = run(t, "--db", db, "appointments", "next", "--patient", "p1")
	require.NoError(t, err)
	assert.Contains(t, out, "Dr. Rao")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	id := strings.Fields(lines[1])[0]

	out, err = run(t, "--db", db, "appointments", "cancel", "--id", id)
	require.NoError(t, err)
	assert.Contains(t, out, "cancelled")

	out, err = run(t, "--db", db, "appointments", "upcoming", "--patient", "p1")
	require.NoError(t, err)
	assert.Equal(t, "No upcoming appointments.\n", out)
}

func TestAppointmentBook_InvalidInput(t *testing.T) {
	isolateEnv(t)
	db := filepath.Join(t.TempDir(), "clinic")

	_, err := run(t, "--db", db, "appointments", "book",
		"--patient", "p1", "--at", "tomorrow", "--type", "scan")
	assert.ErrorContains(t, err, "invalid time")

	_, err = run(t, "--db", db, "appointments", "book",
		"--patient", "p1", "--at", "2030-01-01 10:00", "--tz", "Mars/Olympus", "--type", "scan")
	assert.ErrorContains(t, err, "unknown time zone")
}

func TestTreatmentCommands(t *testing.T) {
	isolateEnv(t)
	db := filepath.Join(t.TempDir(), "clinic")

	out, err := run(t, "--db", db, "treatments", "status", "--patient", "p1")
	require.NoError(t, err)
	assert.Equal(t, "No treatment plan on file.\n", out)

	_, err = run(t, "--db", db, "treatments", "set", "--patient", "p1",
		"--regimen", "long agonist", "--started", "2030-01-10")
	require.NoError(t, err)
	_, err = run(t, "--db", db, "treatments", "set", "--patient", "p1",
		"--regimen", "antagonist", "--protocol", "FSH 225 IU", "--started", "2030-03-01")
	require.NoError(t, err)

	out, err = run(t, "--db", db, "treatments", "status", "--patient", "p1")
	require.NoError(t, err)
	assert.Contains(t, out, "antagonist")
	assert.Contains(t, out, "2030-03-01")

	out, err = run(t, "--db", db, "treatments", "history", "--patient", "p1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "antagonist", "newest plan first")
	assert.Contains(t, lines[2], "long agonist")
}

func TestResultCommands(t *testing.T) {
	isolateEnv(t)
	db := filepath.Join(t.TempDir(), "clinic")

	out, err := run(t, "--db", db, "results", "list", "--patient", "p1")
	require.NoError(t, err)
	assert.Equal(t, "No embryology updates on file.\n", out)

	_, err = run(t, "--db", db, "results", "add", "--patient", "p1", "--day", "5",
		"--stage", "blastocyst", "--total", "3", "--good", "2", "--grades", "4AA", "--date", "2030-06-05")
	require.NoError(t, err)
	_, err = run(t, "--db", db, "results", "add", "--patient", "p1", "--day", "1",
		"--stage", "fertilization", "--total", "8", "--date", "2030-06-01")
	require.NoError(t, err)

	out, err = run(t, "--db", db, "results", "list", "--patient", "p1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "fertilization", "oldest update first")
	assert.Contains(t, lines[2], "4AA")

	out, err = run(t, "--db", db, "results", "summary", "--patient", "p1")
	require.NoError(t, err)
	assert.Contains(t, out, "- **Day 1** (fertilization) on 2030-06-01: total=8\n")
	assert.Contains(t, out, "- **Day 5** (blastocyst) on 2030-06-05: total=3, good=2, grades: 4AA\n")

	_, err = run(t, "--db", db, "results", "add", "--patient", "p1", "--day", "12")
	assert.Error(t, err)
}

func TestIngestCommand(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	doc := filepath.Join(dir, "embryology.txt")
	require.NoError(t, os.WriteFile(doc, []byte("Day 5 blastocyst\ngrade 4AA\n\n\nTwo embryos frozen\n"), 0o644))

	out, err := run(t, "--db", filepath.Join(dir, "clinic"), "ingest", "--progress", "--patient", "p9", doc)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var rec struct {
			ID        string         `json:"id"`
			Namespace string         `json:"namespace"`
			Vector    []float32      `json:"vector"`
			Metadata  map[string]any `json:"metadata"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		assert.Equal(t, "patient:p9", rec.Namespace)
		assert.Len(t, rec.Vector, 384)
		assert.Equal(t, "embryology.txt", rec.Metadata["source"])
	}
}

func TestReadChunks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\n  \nc\n"), 0o644))

	chunks, err := readChunks(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a\nb", "c"}, chunks)
}

func TestSetupLogger(t *testing.T) {
	isolateEnv(t)

	_, err := run(t, "--log-level", "loud", "classify", "hi")
	assert.ErrorContains(t, err, "invalid log level")

	out, err := run(t, "-l", "debug", "classify", "hi")
	require.NoError(t, err)
	assert.Equal(t, "greeting\n", out)
}
