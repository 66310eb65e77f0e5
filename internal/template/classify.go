package template

import (
	"regexp"
	"strings"
)

// Content pattern families checked against the first three lines of a
// template, in priority order. Position is the fallback when no family hits.
var (
	headerPatterns = regexp.MustCompile(`(?:patient name|date of birth|dob:|mrn:|medical record|chart number|encounter date|visit date|report date|page \d+ of)`)

	footerPatterns = regexp.MustCompile(`(?:page \d+|end of (?:report|document)|clia|printed (?:on|by)|confidential|this fax|electronically (?:generated|transmitted))`)

	signaturePatterns = regexp.MustCompile(`(?:electronically signed|signed by|authenticated by|dictated by|transcribed by|reviewed and signed|/s/)`)

	legalPatterns = regexp.MustCompile(`(?:disclaimer|privileged|intended recipient|unauthorized (?:use|disclosure)|hipaa|protected health information|legal notice)`)

	medicationVocab = regexp.MustCompile(`(?:\bmg\b|\bml\b|tablet|capsule|daily|twice|refill|\bsig\b|\bpo\b|\bbid\b|\btid\b|\bprn\b)`)

	demographicVocab = regexp.MustCompile(`(?:\bmrn\b|\bssn\b|address|insurance|policy|subscriber|guarantor|emergency contact)`)
)

// classifyTemplateType assigns a template type from its first three lines,
// falling back to position and then vocabulary checks.
func classifyTemplateType(content, position string) string {
	lines := strings.Split(content, "\n")
	if len(lines) > 3 {
		lines = lines[:3]
	}
	head := strings.ToLower(strings.Join(lines, " "))

	switch {
	case headerPatterns.MatchString(head):
		return TypeHeader
	case footerPatterns.MatchString(head):
		return TypeFooter
	case signaturePatterns.MatchString(head):
		return TypeSignature
	case legalPatterns.MatchString(head):
		return TypeLegal
	}

	switch position {
	case PositionStart:
		return TypeHeader
	case PositionEnd:
		return TypeFooter
	}

	switch {
	case medicationVocab.MatchString(head):
		return TypeMedicationList
	case demographicVocab.MatchString(head):
		return TypeDemographics
	default:
		return TypeBoilerplate
	}
}
