package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dronedex/directory-cli/internal/extract"
	"github.com/dronedex/directory-cli/internal/fetch"
	"github.com/dronedex/directory-cli/internal/model"
	"github.com/dronedex/directory-cli/internal/search"
	"github.com/dronedex/directory-cli/internal/store"
	llmmocks "github.com/dronedex/directory-cli/pkg/llm/mocks"
)

// newTestEnv wires a sqlite store, a canned model response, and an optional
// search endpoint into an env for command-level tests.
func newTestEnv(t *testing.T, modelResponse string, searchURL string) *env {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	client := llmmocks.NewMockClient(t)
	client.On("Name").Return("mock").Maybe()
	client.On("Generate", mock.Anything, mock.AnythingOfType("string")).Return(modelResponse, nil).Maybe()

	opts := []search.Option{}
	if searchURL != "" {
		opts = append(opts, search.WithBaseURL(searchURL))
	}

	return &env{
		Store:     st,
		Extractor: extract.New(fetch.New(2*time.Second), client),
		Resolver:  search.NewResolver(opts...),
	}
}

func newPageServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIngestOne_StoresCompany(t *testing.T) {
	page := newPageServer(t, "<html><body>Acme builds drones.</body></html>")
	e := newTestEnv(t, `{
		"name": "Acme Drones",
		"category": "Drone Manufacturer",
		"description": "Builds industrial quadcopters.",
		"emails": ["a@x.com"]
	}`, "")

	rec, entry, err := ingestOne(context.Background(), e, page.URL)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "Acme Drones", entry.Name)
	assert.Equal(t, "a@x.com", entry.Email)
	// The model saw no website field, so the target URL backfills it.
	assert.Equal(t, page.URL, entry.Website)
	assert.Empty(t, rec.Warning)

	stored, err := e.Store.Get(context.Background(), entry.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Acme Drones", stored.Name)
}

func TestIngestOne_ResolvesCompanyName(t *testing.T) {
	page := newPageServer(t, "<html><body>SkyHawk aerial surveying.</body></html>")
	searchSrv := newPageServer(t, `<a class="result__a" href="`+page.URL+`">SkyHawk</a>`)

	e := newTestEnv(t, `{"name": "SkyHawk", "category": "Drone Services"}`, searchSrv.URL)

	_, entry, err := ingestOne(context.Background(), e, "SkyHawk Drones")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, page.URL, entry.Website)
}

func TestIngestOne_NameWithoutResult(t *testing.T) {
	searchSrv := newPageServer(t, `<html><body>No results.</body></html>`)
	e := newTestEnv(t, `{}`, searchSrv.URL)

	_, _, err := ingestOne(context.Background(), e, "Unknown Co")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not find website")
}

func TestIngestOne_SkipsExisting(t *testing.T) {
	page := newPageServer(t, "<html><body>Acme builds drones.</body></html>")
	e := newTestEnv(t, `{"name": "Acme", "category": "Drone Services"}`, "")

	require.NoError(t, e.Store.Insert(context.Background(), &model.Entry{
		Name:    "Existing",
		Website: page.URL,
	}))

	_, _, err := ingestOne(context.Background(), e, page.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestIngestOne_LowConfidenceNotStored(t *testing.T) {
	page := newPageServer(t, "<html><body>Grand Palace Hotel.</body></html>")
	e := newTestEnv(t, `{"name": "Grand Palace", "category": "Hospitality", "description": "Luxury hotel."}`, "")

	rec, entry, err := ingestOne(context.Background(), e, page.URL)
	require.NoError(t, err)
	assert.Nil(t, entry)
	require.NotNil(t, rec)
	assert.Contains(t, rec.Warning, "may not be drone-related")

	entries, err := e.Store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIngestOne_RejectedNotStored(t *testing.T) {
	page := newPageServer(t, "<html><body>Grand Palace Hotel.</body></html>")
	e := newTestEnv(t, `{"error": "Not a drone company", "reason": "hotel chain"}`, "")

	rec, entry, err := ingestOne(context.Background(), e, page.URL)
	require.NoError(t, err)
	assert.Nil(t, entry)
	require.NotNil(t, rec)
	assert.True(t, rec.Rejected())

	entries, err := e.Store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
