package ner

import (
	"context"
)

// Recognizer is the external span-labeling capability consumed by the
// redaction engine: given a text chunk, return labeled entity spans over it.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Span, error)
	Close() error
}

// Ensure Client implements the interface
var _ Recognizer = (*Client)(nil)
