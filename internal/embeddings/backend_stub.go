//go:build !onnx
// +build !onnx

package embeddings

import (
	"go.uber.org/zap"
)

// NewTransformerBackend returns nil when built without the 'onnx' tag;
// the ML service falls back to its tokenizer-only path.
func NewTransformerBackend(logger *zap.Logger, modelPath string, maxLength int) TransformerBackend {
	return nil
}
