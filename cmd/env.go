package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/dronedex/directory-cli/internal/extract"
	"github.com/dronedex/directory-cli/internal/fetch"
	"github.com/dronedex/directory-cli/internal/search"
	"github.com/dronedex/directory-cli/internal/store"
	anthropicpkg "github.com/dronedex/directory-cli/pkg/anthropic"
	"github.com/dronedex/directory-cli/pkg/gemini"
	"github.com/dronedex/directory-cli/pkg/llm"
)

// env bundles the collaborators a command needs.
type env struct {
	Store     store.Store
	Extractor *extract.Extractor
	Resolver  *search.Resolver
}

func (e *env) Close() {
	if e.Store != nil {
		e.Store.Close() //nolint:errcheck
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "directory.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initModelClient() (llm.Client, error) {
	switch cfg.Model.Provider {
	case "gemini":
		return gemini.NewClient(cfg.Model.GeminiKey, gemini.WithModel(cfg.Model.GeminiModel)), nil
	case "anthropic":
		return anthropicpkg.NewClient(cfg.Model.AnthropicKey, anthropicpkg.WithModel(cfg.Model.AnthropicModel)), nil
	default:
		return nil, eris.Errorf("unsupported model provider: %s", cfg.Model.Provider)
	}
}

// initEnv builds the store, extractor, and resolver and runs migrations.
func initEnv(ctx context.Context) (*env, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}

	client, err := initModelClient()
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}

	fetcher := fetch.New(time.Duration(cfg.Fetch.TimeoutSecs) * time.Second)
	resolver := search.NewResolver(search.WithBaseURL(cfg.Search.BaseURL))

	return &env{
		Store:     st,
		Extractor: extract.New(fetcher, client),
		Resolver:  resolver,
	}, nil
}
