package ner

import "time"

// Span is one labeled entity returned by the span-labeling capability,
// with offsets into the chunk that was submitted.
type Span struct {
	Label string  `json:"label"`
	Start int     `json:"start"`
	End   int     `json:"end"`
	Score float64 `json:"score"`
}

// Config contains configuration for the external NER capability.
type Config struct {
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint"`
	ModelName      string        `yaml:"model_name" mapstructure:"model_name"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"` // 30s
	RequestsPerSec float64       `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	Burst          int           `yaml:"burst" mapstructure:"burst"`
}

// request is the wire body sent to the inference endpoint. The aggregation
// strategy and ignored labels mirror the span-labeling contract the engine
// consumes.
type request struct {
	Text    string `json:"text"`
	Options struct {
		AggregationStrategy string   `json:"aggregation_strategy"`
		IgnoredLabels       []string `json:"ignored_labels"`
	} `json:"options"`
}

// response is the wire body returned by the inference endpoint.
type response struct {
	Spans []Span `json:"spans"`
}
