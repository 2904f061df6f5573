// Package model defines the record types shared across the ingestion pipeline.
package model

// NotDroneError is the fixed rejection message the extraction model is
// instructed to emit for companies outside the drone vertical. The
// orchestrator passes it through unchanged, so it doubles as the wire
// contract between prompt and pipeline.
const NotDroneError = "Not a drone company"

// Record is the normalized output of one extraction run. Exactly one
// terminal state applies: accepted (no Error), rejected (Error ==
// NotDroneError plus Reason), call-failed (any other Error, optional
// Details), or accepted with a low-confidence Warning.
type Record struct {
	Name        string   `json:"name,omitempty"`
	Website     string   `json:"website,omitempty"`
	Emails      []string `json:"emails"`
	Phones      []string `json:"phones"`
	Addresses   []string `json:"addresses"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	CompanyType string   `json:"company_type,omitempty"`
	Region      string   `json:"region,omitempty"`

	Warning string `json:"warning,omitempty"`
	Error   string `json:"error,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Details string `json:"details,omitempty"`

	// RawText carries the unparseable model output when JSON recovery
	// falls through every attempt.
	RawText string `json:"raw_text,omitempty"`
}

// Rejected reports whether the model rejected the company as out of vertical.
func (r *Record) Rejected() bool {
	return r.Error == NotDroneError
}

// Failed reports whether the extraction call itself failed.
func (r *Record) Failed() bool {
	return r.Error != "" && r.Error != NotDroneError
}
