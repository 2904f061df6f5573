// Package extract turns raw page text into a normalized directory record via
// a generative-text model.
package extract

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dronedex/directory-cli/internal/model"
	"github.com/dronedex/directory-cli/pkg/llm"
)

// lowConfidenceWarning flags records that pass the model but fail the local
// keyword heuristic. Advisory, never blocking.
const lowConfidenceWarning = "Company may not be drone-related - please verify"

// TextSource acquires the page text an extraction runs on.
type TextSource interface {
	FetchWithContactPage(ctx context.Context, url string) string
}

// Extractor drives one extraction: acquire text, call the model once, recover
// the response, classify, normalize. Stateless apart from its collaborators;
// safe for concurrent use.
type Extractor struct {
	source TextSource
	client llm.Client
}

// New creates an Extractor.
func New(source TextSource, client llm.Client) *Extractor {
	return &Extractor{source: source, client: client}
}

// ExtractFromURL acquires text for a URL and extracts a record from it.
// A totally unfetchable site degrades to empty input, not a failure.
func (e *Extractor) ExtractFromURL(ctx context.Context, url string) *model.Record {
	raw := e.source.FetchWithContactPage(ctx, url)
	return e.Extract(ctx, raw)
}

// Extract runs the model once over the given text and shapes the outcome.
// Every failure mode comes back as a record value; this method never panics
// and never returns an error.
func (e *Extractor) Extract(ctx context.Context, rawText string) *model.Record {
	prompt := BuildPrompt(rawText)

	start := time.Now()
	text, err := e.client.Generate(ctx, prompt)
	elapsed := time.Since(start)

	if err != nil {
		zap.L().Error("extract: model call failed",
			zap.String("provider", e.client.Name()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return recordForCallError(err)
	}

	zap.L().Info("extract: model call finished",
		zap.String("provider", e.client.Name()),
		zap.Duration("elapsed", elapsed),
	)

	parsed := RecoverJSON(text)
	if _, raw := parsed[RawTextKey]; raw && len(parsed) == 1 {
		zap.L().Error("extract: response not recoverable as JSON",
			zap.String("raw", text),
		)
	}

	// The model's own rejection wins over local classification.
	if getString(parsed, "error") == model.NotDroneError {
		rec := &model.Record{
			Error:  model.NotDroneError,
			Reason: getString(parsed, "reason"),
		}
		zap.L().Warn("extract: non-drone company rejected by model",
			zap.String("reason", rec.Reason),
		)
		return rec
	}

	rec := &model.Record{
		Name:        getString(parsed, "name"),
		Website:     getString(parsed, "website"),
		Description: getString(parsed, "description"),
		Category:    getString(parsed, "category"),
		CompanyType: getString(parsed, "company_type"),
		Region:      getString(parsed, "region"),
		RawText:     getString(parsed, RawTextKey),
	}

	if !IsDroneCompany(parsed) {
		zap.L().Warn("extract: keyword heuristic missed",
			zap.String("name", rec.Name),
		)
		rec.Warning = lowConfidenceWarning
	}

	rec.Emails = NormalizeEmails(parsed["emails"], parsed["email"])
	rec.Phones = NormalizePhones(parsed["phones"], parsed["phone"])
	rec.Addresses = NormalizeAddresses(parsed["addresses"], parsed["address"])

	zap.L().Info("extract: record built",
		zap.String("name", rec.Name),
		zap.String("category", rec.Category),
		zap.Int("emails", len(rec.Emails)),
		zap.Int("phones", len(rec.Phones)),
		zap.Int("addresses", len(rec.Addresses)),
		zap.Bool("low_confidence", rec.Warning != ""),
	)

	return rec
}

// recordForCallError maps a model-call failure to an error record by kind.
func recordForCallError(err error) *model.Record {
	switch llm.Classify(err) {
	case llm.KindQuotaExceeded:
		return &model.Record{Error: "Model API quota exceeded", Details: err.Error()}
	case llm.KindUpstream:
		return &model.Record{Error: "Model internal error", Details: err.Error()}
	default:
		return &model.Record{Error: err.Error()}
	}
}
