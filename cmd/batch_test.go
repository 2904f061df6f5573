package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
targets:
  - https://acme.example
  - "  SkyHawk Drones  "
  - ""
`), 0644))

	targets, err := loadBatchFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://acme.example", "SkyHawk Drones"}, targets)
}

func TestLoadBatchFile_Missing(t *testing.T) {
	_, err := loadBatchFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read batch file")
}

func TestLoadBatchFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("targets: {not a list"), 0644))

	_, err := loadBatchFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse batch file")
}

func TestProcessBatch_StoresAndSkips(t *testing.T) {
	pageA := newPageServer(t, "<html><body>Acme builds drones.</body></html>")
	pageB := newPageServer(t, "<html><body>Acme builds drones too.</body></html>")
	e := newTestEnv(t, `{"name": "Acme Drones", "website": "https://acme.example", "category": "Drone Services"}`, "")

	// Both pages extract to the same company, so the second one is skipped.
	err := processBatch(context.Background(), e, []string{pageA.URL, pageB.URL}, 0, 1, 100)
	require.NoError(t, err)

	entries, err := e.Store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestProcessBatch_Limit(t *testing.T) {
	page := newPageServer(t, "<html><body>Acme builds drones.</body></html>")
	e := newTestEnv(t, `{"name": "Acme Drones", "category": "Drone Services"}`, "")

	err := processBatch(context.Background(), e, []string{page.URL, page.URL, page.URL}, 1, 2, 100)
	require.NoError(t, err)

	entries, err := e.Store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestProcessBatch_Empty(t *testing.T) {
	e := newTestEnv(t, `{}`, "")
	require.NoError(t, processBatch(context.Background(), e, nil, 0, 1, 100))
}
