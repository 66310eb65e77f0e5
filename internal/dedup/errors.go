package dedup

import "fmt"

// Pipeline stages that can surface errors. Clustering and selection are pure
// and only fail on programming bugs.
const (
	StageEmbedding  = "embedding"
	StageSimilarity = "similarity"
	StageClustering = "clustering"
	StageSelection  = "selection"
)

// StageError tags a pipeline failure with the stage it occurred in and,
// where applicable, the document being processed.
type StageError struct {
	Stage      string
	DocumentID string
	Err        error
}

func (e *StageError) Error() string {
	if e.DocumentID != "" {
		return fmt.Sprintf("dedup: stage %s failed on document %s: %v", e.Stage, e.DocumentID, e.Err)
	}
	return fmt.Sprintf("dedup: stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
