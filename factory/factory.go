// Package factory assembles a configured Router: loads configuration,
// registers the built-in adapters and the backend signer table.
package factory

import (
	"fmt"

	xb "github.com/cordialsys/xbridge"
	"github.com/cordialsys/xbridge/adapter"
	"github.com/cordialsys/xbridge/adapter/across"
	"github.com/cordialsys/xbridge/adapter/oft"
	"github.com/cordialsys/xbridge/adapter/relay"
	"github.com/cordialsys/xbridge/chainops"
	"github.com/cordialsys/xbridge/config"
	"github.com/cordialsys/xbridge/quote"
	"github.com/cordialsys/xbridge/router"
	"github.com/pkg/errors"
)

type QuoteConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	// Scheme selects the quote format: "deposit" or "burn".
	Scheme string `yaml:"scheme"`
}

type RPCConfig struct {
	URL               string  `yaml:"url"`
	PrivateKey        string  `yaml:"private_key"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type Config struct {
	// Self is the aggregator's own account, the spender callers approve.
	Self  xb.Address  `yaml:"self"`
	Quote QuoteConfig `yaml:"quote"`
	// Signers maps a bridge name to its registered backend signer keys.
	Signers map[string][]xb.Address `yaml:"signers"`
	RPC     RPCConfig               `yaml:"rpc"`
}

func DefaultConfig() *Config {
	return &Config{
		Self: "0x00000000000000000000000000000000000a99e4",
		Quote: QuoteConfig{
			Name:    "xbridge",
			Version: "1",
			Scheme:  "deposit",
		},
		Signers: map[string][]xb.Address{},
		RPC: RPCConfig{
			RequestsPerSecond: 10,
		},
	}
}

// LoadConfig reads the "xbridge" section of the config file, falling back
// to defaults when no file exists.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.RequireConfig("xbridge", cfg, DefaultConfig()); err != nil {
		return nil, errors.Wrap(err, "could not load config")
	}
	if cfg.Self == "" {
		return nil, fmt.Errorf("config: self address must be set")
	}
	return cfg, nil
}

func newScheme(name string) (quote.Scheme, error) {
	switch name {
	case "", "deposit":
		return quote.DepositScheme(), nil
	case "burn":
		return quote.BurnScheme(), nil
	}
	return nil, fmt.Errorf("unknown quote scheme: %s", name)
}

// NewRouter wires the built-in adapters over the given backend.
func NewRouter(cfg *Config, backend chainops.Backend) (*router.Router, error) {
	state := router.NewState()
	for bridge, signers := range cfg.Signers {
		for _, signer := range signers {
			state.RegisterSigner(bridge, signer)
		}
	}

	scheme, err := newScheme(cfg.Quote.Scheme)
	if err != nil {
		return nil, err
	}
	domain := quote.Domain{
		Name:              cfg.Quote.Name,
		Version:           cfg.Quote.Version,
		ChainID:           backend.ChainID(),
		VerifyingContract: cfg.Self,
	}
	verifier := quote.NewVerifier(scheme, domain, state)

	registry := adapter.NewRegistry()
	registry.Register(across.New())
	registry.Register(oft.New())
	registry.Register(relay.New(verifier))

	return router.NewRouter(backend, cfg.Self, registry, state), nil
}
