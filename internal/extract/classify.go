package extract

import "strings"

// droneKeywords is the fixed vocabulary of the local relevance heuristic.
// A record belongs to the vertical when any keyword appears as a substring
// of its category, description, or name, checked in that order.
var droneKeywords = []string{
	"drone", "uav", "uavs", "quadcopter", "multirotor", "aerial", "robotics",
	"unmanned", "autonomous", "flight", "aviation", "helicopter", "aircraft",
}

// IsDroneCompany reports whether an extracted record looks drone-related.
// Missing fields count as empty strings. Best-effort heuristic, not a
// certified classifier; the orchestrator surfaces a miss as a warning, never
// a rejection.
func IsDroneCompany(rec map[string]any) bool {
	for _, field := range []string{"category", "description", "name"} {
		v := strings.ToLower(getString(rec, field))
		if v == "" {
			continue
		}
		for _, kw := range droneKeywords {
			if strings.Contains(v, kw) {
				return true
			}
		}
	}
	return false
}

// getString returns rec[key] when it is a string, else "".
func getString(rec map[string]any, key string) string {
	if s, ok := rec[key].(string); ok {
		return s
	}
	return ""
}
