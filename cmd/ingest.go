package main

import (
	"context"
	"encoding/json"
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dronedex/directory-cli/internal/model"
)

var urlRe = regexp.MustCompile(`^https?://`)

var ingestCmd = &cobra.Command{
	Use:   "ingest <url-or-company-name>",
	Short: "Extract one company and add it to the directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("ingest"); err != nil {
			return err
		}

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		rec, entry, err := ingestOne(ctx, e, args[0])
		if err != nil {
			return err
		}

		out := json.NewEncoder(os.Stdout)
		out.SetIndent("", "  ")
		if entry != nil {
			return out.Encode(entry)
		}
		return out.Encode(rec)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

// ingestOne resolves a target to a URL, extracts a record, and inserts it if
// it survives the filters. A non-nil entry means a row was written; a record
// alone carries a rejection, a failure, or a low-confidence warning. Warned
// records are never stored: the caller gets the record back and decides
// whether to add the company by hand.
func ingestOne(ctx context.Context, e *env, target string) (*model.Record, *model.Entry, error) {
	target = strings.TrimSpace(target)
	url := target
	name := ""

	if !urlRe.MatchString(target) {
		name = target
		resolved, err := e.Resolver.Resolve(ctx, target)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "resolve website for %q", target)
		}
		if resolved == "" {
			return nil, nil, eris.Errorf("could not find website for company %q", target)
		}
		url = resolved
	}

	exists, err := e.Store.Exists(ctx, url, name)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, eris.Errorf("company already exists: %s", target)
	}

	rec := e.Extractor.ExtractFromURL(ctx, url)
	if rec.Rejected() || rec.Failed() {
		zap.L().Warn("ingest: record not stored",
			zap.String("target", target),
			zap.String("error", rec.Error),
		)
		return rec, nil, nil
	}
	if rec.Warning != "" {
		zap.L().Warn("ingest: low-confidence record not stored",
			zap.String("target", target),
			zap.String("warning", rec.Warning),
		)
		return rec, nil, nil
	}

	// Backfill identity the model could not see.
	if rec.Name == "" {
		rec.Name = name
	}
	if rec.Website == "" {
		rec.Website = url
	}

	exists, err = e.Store.Exists(ctx, rec.Website, rec.Name)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, eris.Errorf("company already exists: %s", rec.Name)
	}

	entry := model.EntryFromRecord(rec)
	if err := e.Store.Insert(ctx, &entry); err != nil {
		return nil, nil, err
	}

	zap.L().Info("ingest: company stored",
		zap.String("id", entry.ID),
		zap.String("name", entry.Name),
		zap.String("website", entry.Website),
	)
	return rec, &entry, nil
}
