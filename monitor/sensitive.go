package monitor

import "regexp"

// Coarse lexical heuristic, recall over precision. A page containing the word
// "session" in prose is an acceptable false positive for a triage tool.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)password`),
	regexp.MustCompile(`(?i)passwd`),
	regexp.MustCompile(`(?i)secret`),
	regexp.MustCompile(`(?i)api[-_]?key`),
	regexp.MustCompile(`(?i)token`),
	regexp.MustCompile(`(?i)cookie`),
	regexp.MustCompile(`(?i)session`),
	regexp.MustCompile(`(?i)credit[-_]?card`),
	regexp.MustCompile(`(?i)ssn`),
	regexp.MustCompile(`(?i)social[-_]?security`),
	regexp.MustCompile(`(?i)private[-_]?key`),
	regexp.MustCompile(`(?i)wallet`),
}

// ContainsSensitiveData reports whether the data matches any of the sensitive
// lexical patterns. Callers scan the full un-truncated body, truncating first
// would lose matches past the cap.
func ContainsSensitiveData(data string) bool {
	if data == "" {
		return false
	}
	for _, p := range sensitivePatterns {
		if p.MatchString(data) {
			return true
		}
	}
	return false
}
