package oracle_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstrone/internal/config"
	"gstrone/internal/oracle"
	"gstrone/internal/oracle/noop"
	"gstrone/internal/port"
)

// scriptedOracle counts calls and answers from fixed values.
type scriptedOracle struct {
	calls int32
	sugg  *port.Suggestion
	err   error
}

func (s *scriptedOracle) Classify(_ context.Context, _ port.ClassifyInput) (*port.Suggestion, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.sugg, s.err
}

func (s *scriptedOracle) Insights(_ context.Context, _ map[string]any) ([]string, error) {
	atomic.AddInt32(&s.calls, 1)
	return nil, s.err
}

func TestGuard_PassesThroughSuggestion(t *testing.T) {
	inner := &scriptedOracle{sugg: &port.Suggestion{Category: "b2cl", Confidence: 0.95}}
	g := oracle.NewGuard(inner, 0)

	sugg, err := g.Classify(context.Background(), port.ClassifyInput{})
	require.NoError(t, err)
	require.NotNil(t, sugg)
	assert.Equal(t, "b2cl", sugg.Category)
	assert.Equal(t, int32(1), atomic.LoadInt32(&inner.calls))
}

func TestGuard_FailureRetriesOnceThenOpensCircuit(t *testing.T) {
	inner := &scriptedOracle{err: errors.New("upstream down")}
	g := oracle.NewGuard(inner, 0)

	sugg, err := g.Classify(context.Background(), port.ClassifyInput{})
	assert.NoError(t, err)
	assert.Nil(t, sugg)
	assert.Equal(t, int32(2), atomic.LoadInt32(&inner.calls))

	// Circuit is open: the provider is not called again.
	sugg, err = g.Classify(context.Background(), port.ClassifyInput{})
	assert.NoError(t, err)
	assert.Nil(t, sugg)
	assert.Equal(t, int32(2), atomic.LoadInt32(&inner.calls))
}

func TestGuard_InsightsFailureIsSilent(t *testing.T) {
	inner := &scriptedOracle{err: errors.New("upstream down")}
	g := oracle.NewGuard(inner, 0)

	insights, err := g.Insights(context.Background(), map[string]any{"warning_count": 2})
	assert.NoError(t, err)
	assert.Nil(t, insights)
	assert.Equal(t, int32(1), atomic.LoadInt32(&inner.calls))
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := oracle.New(&config.OracleConfig{Provider: "does-not-exist"})
	assert.Error(t, err)
}

func TestNew_RegisteredProviderIsGuarded(t *testing.T) {
	oracle.RegisterProvider("noop", func(_ *config.OracleConfig) (port.ClassificationOracle, error) {
		return noop.New(), nil
	})

	o, err := oracle.New(&config.OracleConfig{Provider: "noop", TimeoutSecs: 5})
	require.NoError(t, err)

	sugg, err := o.Classify(context.Background(), port.ClassifyInput{})
	assert.NoError(t, err)
	assert.Nil(t, sugg)
}
