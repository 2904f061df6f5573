package extract

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// RawTextKey holds the unparseable model output when every recovery attempt
// fails.
const RawTextKey = "raw_text"

// RecoverJSON extracts a best-effort object from arbitrary model output.
// Attempts, in order: direct parse of the trimmed text; fence-strip plus
// first-brace-to-last-brace span; jsonrepair on that span; finally a
// passthrough map carrying the original text under RawTextKey. Every input
// yields a map.
func RecoverJSON(text string) map[string]any {
	trimmed := strings.TrimSpace(text)

	var out map[string]any
	if err := json.Unmarshal([]byte(trimmed), &out); err == nil {
		return out
	}

	span := jsonSpan(trimmed)
	if span != "" {
		if err := json.Unmarshal([]byte(span), &out); err == nil {
			return out
		}
		if repaired, err := jsonrepair.JSONRepair(span); err == nil {
			if err := json.Unmarshal([]byte(repaired), &out); err == nil {
				return out
			}
		}
	}

	return map[string]any{RawTextKey: text}
}

// jsonSpan strips markdown fences and returns the first brace-delimited run,
// greedy to the last closing brace. Returns "" when no braces are present.
func jsonSpan(text string) string {
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return strings.TrimSpace(text[start : end+1])
	}
	return ""
}
