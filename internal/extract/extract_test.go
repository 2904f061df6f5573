package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dronedex/directory-cli/internal/model"
	"github.com/dronedex/directory-cli/pkg/llm"
	llmmocks "github.com/dronedex/directory-cli/pkg/llm/mocks"
)

// stubSource returns canned page text.
type stubSource struct {
	text string
}

func (s *stubSource) FetchWithContactPage(_ context.Context, _ string) string {
	return s.text
}

func newTestExtractor(t *testing.T, response string, err error) *Extractor {
	t.Helper()
	client := llmmocks.NewMockClient(t)
	client.On("Name").Return("mock").Maybe()
	if err != nil {
		client.On("Generate", mock.Anything, mock.AnythingOfType("string")).Return("", err).Once()
	} else {
		client.On("Generate", mock.Anything, mock.AnythingOfType("string")).Return(response, nil).Once()
	}
	return New(&stubSource{text: "Acme builds drones."}, client)
}

func TestExtract_AcceptedRecord(t *testing.T) {
	rec := newTestExtractor(t, `{
		"name": "Acme Drones",
		"website": "https://acme.example",
		"category": "Drone Manufacturer",
		"company_type": "Manufacturer",
		"region": "USA",
		"description": "Builds industrial quadcopters.",
		"emails": ["a@x.com", "a@x.com"],
		"email": "b@x.com",
		"phones": ["+1 555 0100"],
		"addresses": ["1 Sky Lane"]
	}`, nil).ExtractFromURL(context.Background(), "https://acme.example")

	assert.Empty(t, rec.Error)
	assert.Empty(t, rec.Warning)
	assert.Equal(t, "Acme Drones", rec.Name)
	assert.ElementsMatch(t, []string{"a@x.com", "b@x.com"}, rec.Emails)
	assert.Equal(t, []string{"15550100"}, rec.Phones)
	assert.Equal(t, []string{"1 Sky Lane"}, rec.Addresses)
}

func TestExtract_ModelRejectionPassesThrough(t *testing.T) {
	rec := newTestExtractor(t, `{"error": "Not a drone company", "reason": "hotel chain"}`, nil).
		Extract(context.Background(), "Grand Palace Hotel welcomes you")

	assert.True(t, rec.Rejected())
	assert.Equal(t, model.NotDroneError, rec.Error)
	assert.Equal(t, "hotel chain", rec.Reason)
	// No normalization on rejected records.
	assert.Nil(t, rec.Emails)
}

func TestExtract_LowConfidenceWarning(t *testing.T) {
	rec := newTestExtractor(t, `{
		"name": "Grand Palace",
		"category": "Hospitality",
		"description": "Rooms and dining."
	}`, nil).Extract(context.Background(), "some text")

	assert.Empty(t, rec.Error)
	assert.Equal(t, lowConfidenceWarning, rec.Warning)
	assert.Equal(t, "Grand Palace", rec.Name)
}

func TestExtract_FencedResponse(t *testing.T) {
	rec := newTestExtractor(t, "```json\n{\"name\": \"SkyHawk\", \"category\": \"Drone Services\"}\n```", nil).
		Extract(context.Background(), "text")

	assert.Empty(t, rec.Error)
	assert.Equal(t, "SkyHawk", rec.Name)
}

func TestExtract_UnparseableResponse(t *testing.T) {
	rec := newTestExtractor(t, "I could not find any company data on that page.", nil).
		Extract(context.Background(), "text")

	assert.Empty(t, rec.Error)
	assert.Equal(t, "I could not find any company data on that page.", rec.RawText)
	// Heuristic finds nothing, so the record is flagged, not rejected.
	assert.Equal(t, lowConfidenceWarning, rec.Warning)
	assert.Empty(t, rec.Emails)
}

func TestExtract_QuotaError(t *testing.T) {
	rec := newTestExtractor(t, "", llm.NewCallError(llm.KindQuotaExceeded, "429 resource exhausted")).
		Extract(context.Background(), "text")

	require.True(t, rec.Failed())
	assert.Equal(t, "Model API quota exceeded", rec.Error)
	assert.Contains(t, rec.Details, "429")
}

func TestExtract_UpstreamError(t *testing.T) {
	rec := newTestExtractor(t, "", llm.NewCallError(llm.KindUpstream, "500 internal")).
		Extract(context.Background(), "text")

	require.True(t, rec.Failed())
	assert.Equal(t, "Model internal error", rec.Error)
}

func TestExtract_GenericError(t *testing.T) {
	rec := newTestExtractor(t, "", llm.NewCallError(llm.KindOther, "connection reset")).
		Extract(context.Background(), "text")

	require.True(t, rec.Failed())
	assert.Equal(t, "connection reset", rec.Error)
	assert.Empty(t, rec.Details)
}

func TestExtract_PromptEmbedsText(t *testing.T) {
	client := llmmocks.NewMockClient(t)
	client.On("Name").Return("mock").Maybe()
	client.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		// Contract pieces the pipeline depends on.
		return strings.Contains(prompt, "Not a drone company") &&
			strings.Contains(prompt, "Drone Manufacturer, Drone Services, Drone Software") &&
			strings.Contains(prompt, "the page text goes here")
	})).Return(`{"category": "Drone Services"}`, nil).Once()

	New(&stubSource{}, client).Extract(context.Background(), "the page text goes here")
}
