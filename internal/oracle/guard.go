// Package oracle wires classification oracle providers and wraps them with
// the timeout, retry, and circuit-backoff behavior the pipeline requires: a
// slow or down oracle degrades to deterministic classification, it never
// stalls or fails a generation run.
package oracle

import (
	"context"
	"log"
	"sync"
	"time"

	"gstrone/internal/port"
)

const (
	// circuitBackoff is how long the oracle is skipped after both the call
	// and its single retry fail.
	circuitBackoff = 2 * time.Minute
	defaultTimeout = 20 * time.Second
)

type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpen(now time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// Guard wraps an oracle with a per-call timeout, at most one retry, and a
// circuit that skips the provider entirely while it is backing off.
// It implements port.ClassificationOracle.
type Guard struct {
	inner   port.ClassificationOracle
	timeout time.Duration
	circuit circuitState
}

// NewGuard wraps inner. A zero timeout falls back to the default.
func NewGuard(inner port.ClassificationOracle, timeout time.Duration) *Guard {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Guard{inner: inner, timeout: timeout}
}

// Classify calls the wrapped oracle with a timeout and one bounded retry.
// A skipped or failing provider reports no suggestion rather than an error;
// callers fall back to their deterministic rules.
func (g *Guard) Classify(ctx context.Context, input port.ClassifyInput) (*port.Suggestion, error) {
	if g.circuit.isOpen(time.Now()) {
		return nil, nil
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		sugg, err := g.inner.Classify(callCtx, input)
		cancel()
		if err == nil {
			return sugg, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	g.circuit.open(time.Now().Add(circuitBackoff))
	log.Printf("oracle.Guard: classify failed, circuit open for %s: %v", circuitBackoff, lastErr)
	return nil, nil
}

// Insights calls the wrapped oracle once with a timeout. No retry; insights
// are purely cosmetic.
func (g *Guard) Insights(ctx context.Context, summary map[string]any) ([]string, error) {
	if g.circuit.isOpen(time.Now()) {
		return nil, nil
	}
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	insights, err := g.inner.Insights(callCtx, summary)
	if err != nil {
		log.Printf("oracle.Guard: insights failed: %v", err)
		return nil, nil
	}
	return insights, nil
}
