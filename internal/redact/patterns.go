package redact

import (
	"regexp"
	"strings"
)

// structuralRule is one deterministic pattern in the first redaction pass.
// Rules run in declaration order; ordering matters because broad numeric
// patterns (ZIP) must not consume values a narrower rule owns (SSN, phone).
type structuralRule struct {
	name     string
	category string
	pattern  *regexp.Regexp
}

var structuralRules = []structuralRule{
	{"email", CategoryEmail, regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)},
	{"ssn", CategorySSN, regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{"ssn_masked", CategorySSN, regexp.MustCompile(`\b(?:[Xx]{3}|\*{3})-(?:[Xx]{2}|\*{2})-\d{4}\b`)},
	{"ssn_last4", CategorySSN, regexp.MustCompile(`(?i)\bssn[\s:#]*(?:ending(?:\s+in)?|last\s*(?:four|4))[\s:#]*\d{4}\b`)},
	{"phone_paren", CategoryPhone, regexp.MustCompile(`\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`)},
	{"phone_intl", CategoryPhone, regexp.MustCompile(`\+1[-.\s]?\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`)},
	{"phone", CategoryPhone, regexp.MustCompile(`\b\d{3}[-.]\d{3}[-.]\d{4}\b`)},
	{"credit_card", CategoryCard, regexp.MustCompile(`\b\d{4}[- ]\d{4}[- ]\d{4}[- ]\d{4}\b`)},
	{"date_numeric", CategoryDate, regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)},
	{"date_iso", CategoryDate, regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)},
	{"date_written", CategoryDate, regexp.MustCompile(`(?i)\b(?:january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`)},
	{"date_written_dayfirst", CategoryDate, regexp.MustCompile(`(?i)\b\d{1,2}\s+(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{4}\b`)},
	{"age", CategoryAge, regexp.MustCompile(`(?i)\b\d{1,3}[-\s]?(?:years?[-\s]?old|y/?o)\b`)},
	{"age_labeled", CategoryAge, regexp.MustCompile(`(?i)\bage[d:]?\s+\d{1,3}\b`)},
	{"street_address", CategoryAddress, regexp.MustCompile(`\b\d{1,6}\s+(?:[A-Z][A-Za-z]+\s+){1,3}(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Court|Ct|Way|Place|Pl|Circle|Cir|Terrace|Ter)\.?\b`)},
	{"po_box", CategoryPOBox, regexp.MustCompile(`(?i)\bP\.?\s?O\.?\s?Box\s+\d+\b`)},
	{"city_state", CategoryLoc, regexp.MustCompile(`\b[A-Z][a-z]+(?:\s[A-Z][a-z]+)?,\s(?:A[KLRZ]|C[AOT]|D[CE]|FL|GA|HI|I[ADLN]|K[SY]|LA|M[ADEINOST]|N[CDEHJMVY]|O[HKR]|PA|RI|S[CD]|T[NX]|UT|V[AT]|W[AIVY])\b`)},
	{"name_last_first", CategoryPerson, regexp.MustCompile(`\b[A-Z][a-z]+,\s[A-Z][a-z]+\b`)},
	{"name_last_first_caps", CategoryPerson, regexp.MustCompile(`\b[A-Z]{2,},\s[A-Z]{2,}\b`)},
	{"name_allcaps_seq", CategoryPerson, regexp.MustCompile(`\b[A-Z]{2,}(?:\s+[A-Z]{2,}){1,3}\b`)},
	{"name_hyphen_apostrophe", CategoryPerson, regexp.MustCompile(`\b[A-Z][a-z]+['-][A-Z][a-z]+\b`)},
	{"name_suffixed", CategoryPerson, regexp.MustCompile(`\b[A-Z][a-z]+\s+[A-Z][a-z]+,?\s+(?:Jr|Sr|II|III|IV)\.?\b`)},
	{"insurance_id", CategoryID, regexp.MustCompile(`(?i)\b(?:policy|member|group|insurance)\s*(?:id|no|number|#)?\s*[:#]\s*[A-Z0-9-]{6,15}\b`)},
	{"zip", CategoryZip, regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)},
}

// medicalAcronyms are bare uppercase tokens that are clinical vocabulary, not
// names. The single-token ALL-CAPS scan skips them.
var medicalAcronyms = map[string]bool{
	"CBC": true, "WBC": true, "RBC": true, "BUN": true, "MRI": true,
	"EKG": true, "ECG": true, "EEG": true, "BMP": true, "CMP": true,
	"HDL": true, "LDL": true, "TSH": true, "PSA": true, "COPD": true,
	"CHF": true, "CAD": true, "HTN": true, "GERD": true, "UTI": true,
	"ICU": true, "PRN": true, "BID": true, "TID": true, "QID": true,
	"NPO": true, "DNR": true, "HIPAA": true, "PCR": true, "HIV": true,
	"AIDS": true, "STAT": true, "BMI": true, "INR": true, "PTT": true,
	"ESR": true, "CRP": true, "ALT": true, "AST": true, "NAD": true,
	"WNL": true, "SOB": true, "DOB": true, "MRN": true, "SSN": true,
	"LABS": true, "NKDA": true, "ROS": true, "HPI": true, "CTA": true,
	"GFR": true, "IVF": true, "NSR": true, "PERRLA": true, "TSHR": true,
}

// headingWords are ALL-CAPS section headings common in clinical documents.
// A sequence made up entirely of headings and acronyms is structure, not a
// name.
var headingWords = map[string]bool{
	"REVIEW": true, "OF": true, "AND": true, "SYSTEMS": true, "HISTORY": true,
	"PHYSICAL": true, "EXAM": true, "EXAMINATION": true, "ASSESSMENT": true,
	"PLAN": true, "IMPRESSION": true, "FINDINGS": true, "MEDICATIONS": true,
	"ALLERGIES": true, "VITAL": true, "SIGNS": true, "CHIEF": true,
	"COMPLAINT": true, "DISCHARGE": true, "SUMMARY": true, "REPORT": true,
	"RESULTS": true, "LABORATORY": true, "NOTES": true, "PROGRESS": true,
	"PATIENT": true, "NAME": true, "DATE": true, "PRESENT": true,
	"ILLNESS": true, "FAMILY": true, "SOCIAL": true, "SURGICAL": true,
	"PAST": true, "MEDICAL": true, "RECORD": true, "ACCOUNT": true,
	"NUMBER": true, "INSURANCE": true, "ADDRESS": true, "PHONE": true,
}

// applyStructural runs the deterministic regex pass. Each rule is a single
// left-to-right scan; an original value already assigned anywhere in the
// session reuses its placeholder.
func applyStructural(text string, sess *session) string {
	for _, rule := range structuralRules {
		if rule.name == "name_allcaps_seq" {
			text = replaceMatchesFiltered(text, rule.pattern, rule.category, sess, allCapsSequenceAccept)
			continue
		}
		text = replaceMatches(text, rule.pattern, rule.category, sess)
	}
	return text
}

// allCapsSequenceAccept rejects sequences made up entirely of clinical
// acronyms and section-heading vocabulary.
func allCapsSequenceAccept(match string) bool {
	for _, word := range strings.Fields(match) {
		if !medicalAcronyms[word] && !headingWords[word] {
			return true
		}
	}
	return false
}

var allCapsPattern = regexp.MustCompile(`\b[A-Z]{3,}\b`)

// applyAllCapsTokens redacts bare uppercase tokens of three or more letters
// that are not clinical acronyms; any other ALL-CAPS token in a medical
// document is overwhelmingly a name fragment.
func applyAllCapsTokens(text string, sess *session) string {
	return replaceMatchesFiltered(text, allCapsPattern, CategoryPerson, sess, func(match string) bool {
		upper := strings.ToUpper(match)
		return !medicalAcronyms[upper] && !headingWords[upper]
	})
}

func replaceMatches(text string, pattern *regexp.Regexp, category string, sess *session) string {
	return replaceMatchesFiltered(text, pattern, category, sess, nil)
}

// replaceMatchesFiltered rebuilds the text once, replacing every accepted
// match. Matches touching placeholder syntax are always skipped so earlier
// phases' output is never re-redacted.
func replaceMatchesFiltered(text string, pattern *regexp.Regexp, category string, sess *session, accept func(string) bool) string {
	locs := pattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))
	last := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		match := text[start:end]
		if adjacentToPlaceholder(text, start, end) || containsPlaceholder.MatchString(match) {
			continue
		}
		if accept != nil && !accept(match) {
			continue
		}
		sb.WriteString(text[last:start])
		sb.WriteString(sess.placeholderFor(category, match))
		last = end
	}
	sb.WriteString(text[last:])
	return sb.String()
}
