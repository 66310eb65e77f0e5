package redact

import "fmt"

// Redaction phases that can surface errors. Pure passes never fail; only the
// external NER boundary produces runtime errors.
const (
	PhaseNER       = "ner"
	PhaseModelLoad = "model_load"
)

// PhaseError tags a failure with the phase it occurred in and, for NER
// failures, the index of the chunk that failed. It lets callers distinguish
// "model didn't load" from "one chunk timed out" and retry at the right
// granularity.
type PhaseError struct {
	Phase string
	Chunk int
	Err   error
}

func (e *PhaseError) Error() string {
	if e.Phase == PhaseNER {
		return fmt.Sprintf("redact: phase %s failed on chunk %d: %v", e.Phase, e.Chunk, e.Err)
	}
	return fmt.Sprintf("redact: phase %s failed: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }
