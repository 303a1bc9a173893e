// Package noop provides a disabled classification oracle. The pipeline runs
// entirely on its deterministic rules.
package noop

import (
	"context"

	"gstrone/internal/port"
)

// Oracle implements port.ClassificationOracle by never suggesting anything.
type Oracle struct{}

// New creates a disabled oracle.
func New() *Oracle {
	return &Oracle{}
}

// Classify returns no suggestion.
func (o *Oracle) Classify(ctx context.Context, input port.ClassifyInput) (*port.Suggestion, error) {
	return nil, nil
}

// Insights returns no insights.
func (o *Oracle) Insights(ctx context.Context, summary map[string]any) ([]string, error) {
	return nil, nil
}
