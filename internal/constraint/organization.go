package constraint

import "strings"

// OrganizationScore maps an NHC classification to a structural organization
// proxy in [0,1]. The ladder tracks the Saffir-Simpson scale: stronger
// classifications imply better-organized inner cores. The feed uses short
// codes (HU, TS, TD, PTC, STD, STS) but advisory text products spell the
// classification out, so both forms are accepted. Unrecognized text scores a
// neutral 0.5 rather than failing.
func OrganizationScore(classification string) float64 {
	c := strings.ToUpper(strings.TrimSpace(classification))

	// Post-tropical first: "REMNANTS OF X" must not match the TS code.
	switch {
	case c == "PTC" || c == "EX" || strings.Contains(c, "POST-TROPICAL") || strings.Contains(c, "REMNANT"):
		return 0.15
	case strings.Contains(c, "CATEGORY 5") || strings.Contains(c, "CAT 5"):
		return 0.95
	case strings.Contains(c, "CATEGORY 4") || strings.Contains(c, "CAT 4"):
		return 0.90
	case strings.Contains(c, "CATEGORY 3") || strings.Contains(c, "CAT 3") || strings.Contains(c, "MAJOR"):
		return 0.85
	case strings.Contains(c, "CATEGORY 2") || strings.Contains(c, "CAT 2"):
		return 0.75
	case c == "HU" || strings.Contains(c, "HURRICANE"):
		return 0.70
	case c == "TS" || c == "STS" || strings.Contains(c, "TROPICAL STORM"):
		return 0.55
	case c == "TD" || c == "STD" || strings.Contains(c, "TROPICAL DEPRESSION"):
		return 0.35
	default:
		return 0.50
	}
}

// IsTerminal reports whether a classification marks the end of a storm's
// tropical lifecycle, triggering timeline archival.
func IsTerminal(classification string) bool {
	c := strings.ToUpper(strings.TrimSpace(classification))
	return c == "PTC" || c == "EX" ||
		strings.Contains(c, "POST-TROPICAL") ||
		strings.Contains(c, "REMNANT") ||
		strings.Contains(c, "DISSIPATED")
}
