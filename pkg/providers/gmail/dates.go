package gmail

import "regexp"

// datePatterns cover the common written forms: numeric dates, month-name
// dates with optional year, day-of-week prefixed dates, ranges, and dates
// with a clock time attached. Order matters: longer forms first so a
// "Dec 15-17" range is not reported as a bare "Dec 15".
var datePatterns = []*regexp.Regexp{
	// Month-name range: Dec 15-17, January 3 - 5, 2026
	regexp.MustCompile(`(?i)\b(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\.?\s+\d{1,2}\s*[-\x{2013}]\s*\d{1,2}(?:,?\s+\d{4})?\b`),
	// Date with time: Dec 15 at 3pm, 12/15 at 14:30
	regexp.MustCompile(`(?i)\b(?:(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\.?\s+\d{1,2}|\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?)(?:st|nd|rd|th)?(?:,?\s+\d{4})?\s+at\s+\d{1,2}(?::\d{2})?\s*(?:am|pm)?\b`),
	// Day-of-week prefix: Friday, December 19
	regexp.MustCompile(`(?i)\b(?:Mon|Tue(?:s)?|Wed(?:nes)?|Thu(?:rs)?|Fri|Sat(?:ur)?|Sun)(?:day)?\.?,?\s+(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\.?\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?\b`),
	// Month-name date: December 15th, 2026 / Dec 15
	regexp.MustCompile(`(?i)\b(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\.?\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?\b`),
	// ISO date: 2026-12-15 (before the generic numeric form so the year
	// is not split off)
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	// Numeric date: 12/15/2026, 15-12-26, 12/15
	regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?\b`),
}

// maxRegexMatches bounds the fallback output on pathological bodies.
const maxRegexMatches = 50

// scanDates returns the deduplicated date-looking substrings of body.
// Earlier (longer) patterns claim their text so later patterns do not
// re-report fragments of it.
func scanDates(body string) []string {
	found := []string{}
	seen := map[string]bool{}
	claimed := make([]byte, len(body))

	for _, pattern := range datePatterns {
		for _, loc := range pattern.FindAllStringIndex(body, -1) {
			overlap := false
			for i := loc[0]; i < loc[1]; i++ {
				if claimed[i] != 0 {
					overlap = true
					break
				}
			}
			if overlap {
				continue
			}
			for i := loc[0]; i < loc[1]; i++ {
				claimed[i] = 1
			}
			match := body[loc[0]:loc[1]]
			if !seen[match] {
				seen[match] = true
				found = append(found, match)
				if len(found) >= maxRegexMatches {
					return found
				}
			}
		}
	}
	return found
}
