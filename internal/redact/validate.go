package redact

import (
	"regexp"
	"strings"
)

// broadRule is one heuristic pattern in the secondary validation pass. These
// intentionally overmatch; the whitelist suppresses clinical and calendar
// vocabulary so common phrases survive.
type broadRule struct {
	name     string
	category string
	pattern  *regexp.Regexp
}

var broadRules = []broadRule{
	{"residual_email", CategoryEmail, regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)},
	{"residual_phone", CategoryPhone, regexp.MustCompile(`\b\d{3}[-.\s]\d{3}[-.\s]\d{4}\b`)},
	{"residual_date", CategoryDate, regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)},
	{"long_digit_run", CategoryID, regexp.MustCompile(`\b\d{6,}\b`)},
	{"numeric_address", CategoryAddress, regexp.MustCompile(`\b\d{1,6}\s+[A-Z][a-z]+\s+(?:St|Ave|Rd|Blvd|Dr|Ln|Ct|Way|Pl|Cir)\.?\b`)},
	{"allcaps_sequence", CategoryPerson, regexp.MustCompile(`\b[A-Z]{2,}(?:\s+[A-Z]{2,}){1,3}\b`)},
	{"last_first", CategoryPerson, regexp.MustCompile(`\b[A-Z][a-z]+,\s[A-Z][a-z]+\b`)},
	{"capitalized_sequence", CategoryPerson, regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3}\b`)},
}

// validationWhitelist holds common clinical and calendar terms that trigger
// the broad capitalized-sequence patterns but are never PII. A match is
// suppressed only when every constituent word is whitelisted.
var validationWhitelist = map[string]bool{
	"january": true, "february": true, "march": true, "april": true,
	"may": true, "june": true, "july": true, "august": true,
	"september": true, "october": true, "november": true, "december": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
	"blood": true, "pressure": true, "heart": true, "rate": true,
	"patient": true, "history": true, "physical": true, "exam": true,
	"normal": true, "acute": true, "chronic": true, "stable": true,
	"hospital": true, "clinic": true, "emergency": true, "department": true,
	"general": true, "medical": true, "center": true, "health": true,
	"follow": true, "up": true, "lab": true, "labs": true, "report": true,
	"impression": true, "assessment": true, "plan": true, "diagnosis": true,
	"medications": true, "allergies": true, "review": true, "systems": true,
	"vital": true, "signs": true, "discharge": true, "summary": true,
	"progress": true, "note": true, "notes": true, "results": true,
	"left": true, "right": true, "upper": true, "lower": true,
	"bilateral": true, "chest": true, "pain": true, "abdominal": true,
	"white": true, "cell": true, "count": true, "complete": true,
	"metabolic": true, "panel": true, "glucose": true, "sodium": true,
	"potassium": true, "creatinine": true, "hemoglobin": true,
	"continue": true, "current": true, "daily": true, "twice": true,
	"oral": true, "dose": true, "tablet": true, "capsule": true,
	"of": true, "and": true, "the": true, "with": true, "no": true,
	"chief": true, "complaint": true, "present": true, "illness": true,
	"family": true, "social": true, "surgical": true, "past": true,
}

// whitelisted reports whether every word of the match is common clinical or
// calendar vocabulary.
func whitelisted(match string) bool {
	words := strings.Fields(match)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if !validationWhitelist[strings.ToLower(strings.Trim(w, ",."))] {
			return false
		}
	}
	return true
}

// applyValidation re-scans once-redacted text with the broad patterns and
// redacts anything the earlier phases missed, subject to the whitelist.
func applyValidation(text string, sess *session) string {
	for _, rule := range broadRules {
		text = replaceMatchesFiltered(text, rule.pattern, rule.category, sess, func(match string) bool {
			return !whitelisted(match)
		})
	}
	return text
}
