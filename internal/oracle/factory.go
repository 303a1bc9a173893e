package oracle

import (
	"fmt"
	"time"

	"gstrone/internal/config"
	"gstrone/internal/port"
)

// ProviderFactory creates a ClassificationOracle from the oracle config.
type ProviderFactory func(cfg *config.OracleConfig) (port.ClassificationOracle, error)

// registry of oracle provider factories, populated via RegisterProvider at
// wiring time.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers an oracle provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// New creates the configured oracle wrapped in a Guard. Unknown providers are
// a wiring error, not a runtime fallback.
func New(cfg *config.OracleConfig) (port.ClassificationOracle, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown oracle provider: %s", cfg.Provider)
	}
	inner, err := factory(cfg)
	if err != nil {
		return nil, err
	}
	return NewGuard(inner, time.Duration(cfg.TimeoutSecs)*time.Second), nil
}
