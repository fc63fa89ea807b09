package summary

import "regexp"

// Models that wrap JSON in prose add markdown code fences, a literal
// "json" language tag, and newlines. All three are stripped before
// schema parsing.
var curationPattern = regexp.MustCompile("(```|json|\n)")

// CurateModelOutput strips formatting artifacts from raw model text so
// the remainder parses as JSON. A response of "```json\n{...}\n```"
// curates to exactly "{...}".
func CurateModelOutput(raw string) string {
	return curationPattern.ReplaceAllString(raw, "")
}
