package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/pushdate/pkg/config"
	"github.com/odvcencio/pushdate/pkg/object"
)

func TestInit(t *testing.T) {
	dir := t.TempDir()

	out, _, err := runCLI(t, dir, "--repository", "example/widgets", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote ")

	cfg, err := config.Read(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "example/widgets", cfg.Repository)
	info, err := os.Stat(cfg.Store)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, _, err = runCLI(t, dir, "init")
	require.Error(t, err, "init must not overwrite an existing config")
}

type storeReport struct {
	Latest  object.Hash `json:"latest"`
	Commits []struct {
		ID        object.Hash `json:"id"`
		Completed string      `json:"completed"`
	} `json:"commits"`
	PushedBeforeCommitted []object.Hash `json:"pushed_before_committed"`
}

// importWidgets imports the widgets fixture and returns the tip hashes
// printed by import, keyed by snapshot id.
func importWidgets(t *testing.T, dir string) map[string]object.Hash {
	t.Helper()
	_, _, err := runCLI(t, dir, "--repository", "example/widgets", "init")
	require.NoError(t, err)

	out, _, err := runCLI(t, dir, "import", "testdata/widgets.yaml")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "imported 5 commits and 3 pushes into example/widgets\n"), out)

	tips := make(map[string]object.Hash)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 3 && fields[0] == "tip" {
			tips[fields[2]] = object.Hash(fields[1])
		}
	}
	require.Len(t, tips, 2)
	return tips
}

func completedByOrigin(t *testing.T, dir string, r storeReport) map[string]string {
	t.Helper()
	cfg, err := config.Read(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	store := object.NewStore(cfg.Store)

	out := make(map[string]string, len(r.Commits))
	for _, c := range r.Commits {
		obj, err := store.ReadCommit(c.ID)
		require.NoError(t, err)
		out[obj.Origin] = c.Completed
	}
	return out
}

func TestImportThenStoreReconcile(t *testing.T) {
	dir := t.TempDir()
	tips := importWidgets(t, dir)

	out, stderr, err := runCLI(t, dir, "--format", "json", "store-reconcile")
	require.NoError(t, err)
	assert.Contains(t, stderr, "reported push capped by descendant")

	var r storeReport
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, tips["d4"], r.Latest)
	assert.Equal(t, []object.Hash{tips["d4"]}, r.PushedBeforeCommitted)
	assert.Equal(t, map[string]string{
		"a1": "2024-03-01T13:00:00Z",
		"b2": "2024-03-01T13:00:00Z",
		"c3": "2024-03-01T13:00:00Z",
		"d4": "2024-03-01T14:00:00Z",
		"e5": "min",
	}, completedByOrigin(t, dir, r))
}

func TestStoreReconcile_FromTip(t *testing.T) {
	dir := t.TempDir()
	tips := importWidgets(t, dir)

	out, _, err := runCLI(t, dir, "--format", "json", "store-reconcile", string(tips["e5"]))
	require.NoError(t, err)

	var r storeReport
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, map[string]string{"e5": "min"}, completedByOrigin(t, dir, r))
}

func TestStoreReconcile_Deadline(t *testing.T) {
	dir := t.TempDir()
	importWidgets(t, dir)

	out, _, err := runCLI(t, dir, "--format", "yaml", "store-reconcile", "--deadline", "2024-03-01T13:30:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "deadline: 2024-03-01T13:30:00Z\n")
	assert.Equal(t, 3, strings.Count(out, "completed: \"2024-03-01T13:00:00Z\""))
}

func TestStoreReconcile_RequiresRepository(t *testing.T) {
	_, _, err := runCLI(t, t.TempDir(), "store-reconcile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repository is required")
}

func TestImport_RequiresRepository(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anon.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"commits":[{"id":"a"}]}`), 0o644))

	_, _, err := runCLI(t, dir, "import", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repository is required")
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	importWidgets(t, dir)

	out, _, err := runCLI(t, dir, "verify")
	require.NoError(t, err)
	assert.Equal(t, "ok: verified 5 commit(s), 0 missing parent(s)\n", out)
}

func writeSnapshot(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestStoreReconcile_SharedStoreKeepsRepositoriesApart(t *testing.T) {
	dir := t.TempDir()
	tips := importWidgets(t, dir)

	other := writeSnapshot(t, dir, "other.json", `{"commits":[{"id":"z9","created":"2024-03-01T09:00:00Z"}]}`)
	out, _, err := runCLI(t, dir, "--repository", "example/other", "import", other)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "imported 1 commits and 0 pushes into example/other\n"), out)

	out, _, err = runCLI(t, dir, "--format", "json", "store-reconcile")
	require.NoError(t, err)
	var r storeReport
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, tips["d4"], r.Latest)
	assert.Equal(t, map[string]string{
		"a1": "2024-03-01T13:00:00Z",
		"b2": "2024-03-01T13:00:00Z",
		"c3": "2024-03-01T13:00:00Z",
		"d4": "2024-03-01T14:00:00Z",
		"e5": "min",
	}, completedByOrigin(t, dir, r))

	out, _, err = runCLI(t, dir, "--repository", "example/other", "--format", "json", "store-reconcile")
	require.NoError(t, err)
	r = storeReport{}
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, map[string]string{"z9": "min"}, completedByOrigin(t, dir, r))
}

func TestStoreReconcile_KeepsSubSecondCreationTimes(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runCLI(t, dir, "--repository", "example/subsecond", "init")
	require.NoError(t, err)

	path := writeSnapshot(t, dir, "subsecond.json", `{"commits":[{
		"id": "f6",
		"created": "2024-03-01T10:00:00.5Z",
		"pushed": "2024-03-01T10:00:00.2Z"
	}]}`)

	out, _, err := runCLI(t, dir, "--format", "json", "reconcile", path)
	require.NoError(t, err)
	var fromSnapshot storeReport
	require.NoError(t, json.Unmarshal([]byte(out), &fromSnapshot))
	assert.Equal(t, []object.Hash{"f6"}, fromSnapshot.PushedBeforeCommitted)

	_, _, err = runCLI(t, dir, "import", path)
	require.NoError(t, err)
	out, _, err = runCLI(t, dir, "--format", "json", "store-reconcile")
	require.NoError(t, err)
	var fromStore storeReport
	require.NoError(t, json.Unmarshal([]byte(out), &fromStore))
	require.Len(t, fromStore.PushedBeforeCommitted, 1)
	assert.Equal(t, fromStore.Latest, fromStore.PushedBeforeCommitted[0])
}
