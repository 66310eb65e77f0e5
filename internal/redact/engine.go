package redact

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/chartscrub/chartscrub/internal/ner"
)

// nerLabelCategory maps recognizer labels onto placeholder categories.
var nerLabelCategory = map[string]string{
	"PER": CategoryPerson,
	"LOC": CategoryLoc,
	"ORG": CategoryOrg,
}

// Engine runs the multi-phase redaction pipeline over one document at a time.
// An Engine is safe for concurrent use; all per-call state lives in a session.
type Engine struct {
	config   Config
	provider *ner.Provider
	logger   *zap.Logger
}

// NewEngine creates a redaction engine. provider may be nil, in which case
// every call behaves as if Options.RegexOnly were set.
func NewEngine(cfg Config, provider *ner.Provider, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		config:   cfg,
		provider: provider,
		logger:   logger,
	}
}

// Scrub redacts PII from text and returns the redacted text together with the
// replacement map. In regex-only mode the external model phases are skipped
// and no confidence score is produced.
func (e *Engine) Scrub(ctx context.Context, text string, opts Options) (*ScrubResult, error) {
	if strings.TrimSpace(text) == "" {
		return NewScrubResult(text, nil, nil)
	}

	regexOnly := opts.RegexOnly || e.config.RegexOnlyMode || e.provider == nil
	sess := newSession()

	text = applyStructural(text, sess)
	text = applyAllCapsTokens(text, sess)
	text = applyContextual(text, sess)

	if !regexOnly {
		redacted, err := e.applyNER(ctx, text, sess)
		if err != nil {
			return nil, err
		}
		text = redacted
	}

	text = applyValidation(text, sess)

	var confidence *int
	if !regexOnly {
		score := verify(text)
		confidence = &score
	}

	e.logger.Debug("scrub complete",
		zap.Int("entity_count", len(sess.replacements)),
		zap.Bool("regex_only", regexOnly))

	return NewScrubResult(text, sess.replacements, confidence)
}

// applyNER splits the working text into sentence chunks, runs each through
// the recognizer, and replaces accepted spans. Chunks that are whitespace or
// placeholders only are passed through without a model call.
func (e *Engine) applyNER(ctx context.Context, text string, sess *session) (string, error) {
	rec, err := e.provider.Get(ctx)
	if err != nil {
		return "", &PhaseError{Phase: PhaseModelLoad, Err: err}
	}

	chunks := chunkSentences(text, e.config.ChunkSize)
	var out strings.Builder
	out.Grow(len(text))

	// Chunk offsets index the working text; bytes between chunks (leading
	// terminator runs the sentence scan does not cover) are carried over
	// verbatim so the output never loses input.
	prevEnd := 0
	for i, c := range chunks {
		if c.start > prevEnd {
			out.WriteString(text[prevEnd:c.start])
		}
		prevEnd = c.end

		if passthrough(c) {
			out.WriteString(c.text)
			continue
		}

		chunkCtx, cancel := context.WithTimeout(ctx, e.config.ChunkTimeout)
		spans, err := rec.Recognize(chunkCtx, c.text)
		cancel()
		if err != nil {
			return "", &PhaseError{Phase: PhaseNER, Chunk: i, Err: err}
		}

		out.WriteString(e.applySpans(c.text, spans, sess))
	}
	if prevEnd < len(text) {
		out.WriteString(text[prevEnd:])
	}

	return out.String(), nil
}

// applySpans rewrites one chunk, replacing accepted spans with placeholders.
// Spans arrive sorted by start offset; overlapping or out-of-range spans and
// spans that touch existing placeholders are skipped.
func (e *Engine) applySpans(text string, spans []ner.Span, sess *session) string {
	var out strings.Builder
	out.Grow(len(text))
	pos := 0

	for _, sp := range spans {
		if sp.Start < pos || sp.End > len(text) || sp.Start >= sp.End {
			continue
		}
		category, ok := nerLabelCategory[sp.Label]
		if !ok || !e.labelAllowed(sp.Label) || sp.Score <= e.config.MinNERScore {
			continue
		}
		original := text[sp.Start:sp.End]
		if isPlaceholder(original) || containsPlaceholder.MatchString(original) ||
			adjacentToPlaceholder(text, sp.Start, sp.End) {
			continue
		}
		out.WriteString(text[pos:sp.Start])
		out.WriteString(sess.placeholderFor(category, original))
		pos = sp.End
	}

	out.WriteString(text[pos:])
	return out.String()
}

func (e *Engine) labelAllowed(label string) bool {
	for _, l := range e.config.AllowedLabels {
		if l == label {
			return true
		}
	}
	return false
}
