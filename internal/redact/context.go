package redact

import (
	"regexp"
	"sort"
	"strings"
)

// edit is one planned replacement. Detectors collect non-overlapping edits
// first; the buffer is rebuilt once, so no index arithmetic survives a
// mutation.
type edit struct {
	start       int
	end         int
	replacement string
}

// applyEdits rebuilds text with the given edits applied in one left-to-right
// pass. Edits are sorted by start; any edit overlapping an earlier one is
// dropped.
func applyEdits(text string, edits []edit) string {
	if len(edits) == 0 {
		return text
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var sb strings.Builder
	sb.Grow(len(text))
	last := 0
	for _, e := range edits {
		if e.start < last {
			continue
		}
		sb.WriteString(text[last:e.start])
		sb.WriteString(e.replacement)
		last = e.end
	}
	sb.WriteString(text[last:])
	return sb.String()
}

// usStateAbbreviations covers the 50 states plus DC and the territories.
var usStateAbbreviations = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true,
	"CT": true, "DE": true, "FL": true, "GA": true, "HI": true, "ID": true,
	"IL": true, "IN": true, "IA": true, "KS": true, "KY": true, "LA": true,
	"ME": true, "MD": true, "MA": true, "MI": true, "MN": true, "MS": true,
	"MO": true, "MT": true, "NE": true, "NV": true, "NH": true, "NJ": true,
	"NM": true, "NY": true, "NC": true, "ND": true, "OH": true, "OK": true,
	"OR": true, "PA": true, "RI": true, "SC": true, "SD": true, "TN": true,
	"TX": true, "UT": true, "VT": true, "VA": true, "WA": true, "WV": true,
	"WI": true, "WY": true, "DC": true, "PR": true, "VI": true, "GU": true,
	"AS": true, "MP": true,
}

var twoLetterToken = regexp.MustCompile(`\b[A-Z]{2}\b`)

// mrnPattern matches a record-number keyword followed by a separator and a
// 6-12 character alphanumeric token. Only the token (group 1) is replaced.
var mrnPattern = regexp.MustCompile(`(?i)\b(?:MRN|Medical Record Number|Medical Record No\.?|Patient ID|Chart Number|Chart No\.?|Account Number|Account No\.?|Member ID|Record Number)\s*[:#=-]?\s*([A-Za-z0-9]{6,12})\b`)

// nameLabels are checked longest-first so "Patient Name" is never consumed
// as the shorter label "Name".
var nameLabels = []string{
	"Responsible Party Name",
	"Emergency Contact Name",
	"Guarantor Name",
	"Provider Name",
	"Patient Name",
	"Full Name",
	"Pt Name",
	"Name",
}

// Name forms accepted after a label, in priority order: ALL-CAPS sequence,
// "Last, First" Title Case, Title Case with optional courtesy prefix.
var labeledNameForms = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Z]{2,}(?:\s+[A-Z]{2,}){0,3}`),
	regexp.MustCompile(`^[A-Z][a-z]+,\s*[A-Z][a-z]+`),
	regexp.MustCompile(`^(?:Dr\.|Mr\.|Ms\.|Mrs\.)?\s*[A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,2}`),
}

// applyContextual runs the positional detectors: standalone US state
// abbreviations, contextual record numbers, and labeled names.
func applyContextual(text string, sess *session) string {
	var edits []edit
	edits = append(edits, stateAbbreviationEdits(text, sess)...)
	text = applyEdits(text, edits)

	edits = edits[:0]
	edits = append(edits, recordNumberEdits(text, sess)...)
	text = applyEdits(text, edits)

	edits = edits[:0]
	edits = append(edits, labeledNameEdits(text, sess)...)
	return applyEdits(text, edits)
}

func stateAbbreviationEdits(text string, sess *session) []edit {
	var edits []edit
	for _, loc := range twoLetterToken.FindAllStringIndex(text, -1) {
		token := text[loc[0]:loc[1]]
		if !usStateAbbreviations[token] {
			continue
		}
		if adjacentToPlaceholder(text, loc[0], loc[1]) {
			continue
		}
		edits = append(edits, edit{loc[0], loc[1], sess.placeholderFor(CategoryLoc, token)})
	}
	return edits
}

func recordNumberEdits(text string, sess *session) []edit {
	var edits []edit
	for _, loc := range mrnPattern.FindAllStringSubmatchIndex(text, -1) {
		// Group 1 is the record number itself; the keyword stays.
		start, end := loc[2], loc[3]
		if start < 0 || adjacentToPlaceholder(text, start, end) {
			continue
		}
		value := text[start:end]
		edits = append(edits, edit{start, end, sess.placeholderFor(CategoryID, value)})
	}
	return edits
}

func labeledNameEdits(text string, sess *session) []edit {
	var edits []edit
	for _, label := range nameLabels {
		labelPattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(label) + `\s*:\s*`)
		for _, loc := range labelPattern.FindAllStringIndex(text, -1) {
			rest := text[loc[1]:]
			if containsPlaceholder.MatchString(rest) && containsPlaceholder.FindStringIndex(rest)[0] == 0 {
				continue // already redacted by an earlier phase or label
			}
			for _, form := range labeledNameForms {
				m := form.FindStringIndex(rest)
				if m == nil || m[0] != 0 {
					continue
				}
				name := strings.TrimSpace(rest[:m[1]])
				if name == "" {
					break
				}
				edits = append(edits, edit{loc[1], loc[1] + m[1], sess.placeholderFor(CategoryPerson, name)})
				break
			}
		}
	}
	return edits
}
