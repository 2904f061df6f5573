package extract

import (
	"regexp"
	"sort"
	"strings"
)

var (
	emailValidRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	emailScanRe  = regexp.MustCompile(`[\w.-]+@[\w.-]+`)
	phoneScanRe  = regexp.MustCompile(`[+]?\d[\d\s\-()]+`)
	nonDigitRe   = regexp.MustCompile(`\D`)
	addrSplitRe  = regexp.MustCompile(`[*\n,]`)
)

// NormalizeEmails merges email candidates from a primary multi-valued source
// and a singular fallback source into one deduplicated set. List values are
// validated element-wise; string values are scanned for address-shaped runs
// and each match re-validated. Malformed or absent input degrades to an
// empty set, never an error.
func NormalizeEmails(primary, fallback any) []string {
	set := map[string]struct{}{}
	for _, src := range []any{primary, fallback} {
		collectEmails(src, set)
	}
	return sortedKeys(set)
}

func collectEmails(src any, set map[string]struct{}) {
	switch v := src.(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && emailValidRe.MatchString(s) {
				set[s] = struct{}{}
			}
		}
	case []string:
		for _, s := range v {
			if emailValidRe.MatchString(s) {
				set[s] = struct{}{}
			}
		}
	case string:
		for _, m := range emailScanRe.FindAllString(v, -1) {
			if emailValidRe.MatchString(m) {
				set[m] = struct{}{}
			}
		}
	}
}

// NormalizePhones merges phone candidates into a deduplicated digits-only
// set. List elements are stripped of every non-digit character; string values
// are scanned with an international-leaning pattern first.
func NormalizePhones(primary, fallback any) []string {
	set := map[string]struct{}{}
	for _, src := range []any{primary, fallback} {
		collectPhones(src, set)
	}
	return sortedKeys(set)
}

func collectPhones(src any, set map[string]struct{}) {
	switch v := src.(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				if digits := nonDigitRe.ReplaceAllString(s, ""); digits != "" {
					set[digits] = struct{}{}
				}
			}
		}
	case []string:
		for _, s := range v {
			if digits := nonDigitRe.ReplaceAllString(s, ""); digits != "" {
				set[digits] = struct{}{}
			}
		}
	case string:
		for _, m := range phoneScanRe.FindAllString(v, -1) {
			if digits := nonDigitRe.ReplaceAllString(m, ""); digits != "" {
				set[digits] = struct{}{}
			}
		}
	}
}

// NormalizeAddresses merges address candidates into a deduplicated,
// whitespace-normalized set. String values are split on '*', newline, or
// comma; every piece is trimmed with internal newlines collapsed to a space.
func NormalizeAddresses(primary, fallback any) []string {
	set := map[string]struct{}{}
	for _, src := range []any{primary, fallback} {
		collectAddresses(src, set)
	}
	return sortedKeys(set)
}

func collectAddresses(src any, set map[string]struct{}) {
	switch v := src.(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				if a := cleanAddress(s); a != "" {
					set[a] = struct{}{}
				}
			}
		}
	case []string:
		for _, s := range v {
			if a := cleanAddress(s); a != "" {
				set[a] = struct{}{}
			}
		}
	case string:
		for _, piece := range addrSplitRe.Split(v, -1) {
			if a := cleanAddress(piece); a != "" {
				set[a] = struct{}{}
			}
		}
	}
}

func cleanAddress(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
}

// sortedKeys returns the set contents in sorted order. Callers get stable
// output; no ordering is promised by the contract.
func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
