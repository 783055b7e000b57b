// Package scapeid canonicalizes problem names typed on the command line or
// stored in config files.
package scapeid

import "strings"

// Normalize lower-cases name, folds separators to '-', strips a "problem-"
// prefix and resolves known aliases. Unknown names come back normalized but
// otherwise unchanged.
func Normalize(name string) string {
	normalized := strings.TrimSpace(strings.ToLower(name))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	normalized = strings.Trim(normalized, "-")
	if normalized == "" {
		return ""
	}
	for _, candidate := range aliasCandidates(normalized) {
		if canonical, ok := canonicalName(candidate); ok {
			return canonical
		}
	}
	return normalized
}

func aliasCandidates(normalized string) []string {
	candidates := []string{normalized}
	trimmed := strings.Trim(strings.TrimPrefix(normalized, "problem"), "-")
	if trimmed != "" && trimmed != normalized {
		candidates = append(candidates, trimmed)
	}
	return candidates
}

func canonicalName(alias string) (string, bool) {
	switch strings.ReplaceAll(alias, "-", "") {
	case "integer", "int", "integertarget", "target":
		return "integer", true
	case "countones", "ones", "onemax", "bitstring":
		return "count-ones", true
	default:
		return "", false
	}
}
