package core

import "regexp"

var (
	parenGroup   = regexp.MustCompile(`\([^)]+\)`)
	bracketGroup = regexp.MustCompile(`\[[^\]]+\]`)
	nonNameChars = regexp.MustCompile(`[^A-Za-z0-9가-힣]`)
	spaceRuns    = regexp.MustCompile(` +`)
)

// CleanName normalizes an employer name for display and substring search:
// "(주)" and "[주]" style annotations are removed, every character other than
// ASCII letters, digits and Hangul syllables becomes a space, and runs of
// spaces collapse to one. Leading and trailing single spaces are kept.
//
// CleanName is idempotent.
func CleanName(s string) string {
	s = parenGroup.ReplaceAllString(s, "")
	s = bracketGroup.ReplaceAllString(s, "")
	s = nonNameChars.ReplaceAllString(s, " ")
	return spaceRuns.ReplaceAllString(s, " ")
}
