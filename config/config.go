package config

import (
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v2"
)

// VenueConfig seeds one sandbox venue with its handle and reserves.
type VenueConfig struct {
	Name             string `yaml:"name"`
	Address          string `yaml:"address"`
	ReservePrincipal string `yaml:"reserve_principal"`
	ReserveBridge    string `yaml:"reserve_bridge"`
}

// Duration wraps time.Duration so YAML accepts "250ms"-style strings.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// RateLimitConfig throttles the trigger path.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// Config holds the full route, facility, and sandbox configuration.
type Config struct {
	// Identities
	Owner    string `yaml:"owner"`
	Executor string `yaml:"executor"`
	Facility string `yaml:"facility"`

	// Route
	PrincipalAsset string `yaml:"principal_asset"`
	BridgeAsset    string `yaml:"bridge_asset"`
	BorrowAmount   string `yaml:"borrow_amount"`

	// Credit facility
	PremiumBps        uint16 `yaml:"premium_bps"`
	FacilityLiquidity string `yaml:"facility_liquidity"`

	// Execution safeguards
	Hop1MinOutBps  uint16        `yaml:"hop1_min_out_bps"`
	Hop2MinOutBps  uint16        `yaml:"hop2_min_out_bps"`
	DeadlineBuffer Duration `yaml:"deadline_buffer"`

	// Trigger throttling; zero disables
	TriggerRateLimit RateLimitConfig `yaml:"trigger_rate_limit"`

	// Sandbox venues
	Venue1 VenueConfig `yaml:"venue1"`
	Venue2 VenueConfig `yaml:"venue2"`

	// History retained for the status surface
	HistorySize int `yaml:"history_size"`
}

// DefaultConfig returns a config with the premium rate and safeguards the
// route ships with. Addresses and amounts must still be supplied.
func DefaultConfig() *Config {
	return &Config{
		PremiumBps:  9,
		HistorySize: 128,
	}
}

// Load reads a YAML config file, applies env overrides, and validates it.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks addresses and amounts parse and the route is coherent.
func (c *Config) Validate() error {
	for name, addr := range map[string]string{
		"owner":           c.Owner,
		"executor":        c.Executor,
		"facility":        c.Facility,
		"principal_asset": c.PrincipalAsset,
		"bridge_asset":    c.BridgeAsset,
		"venue1.address":  c.Venue1.Address,
		"venue2.address":  c.Venue2.Address,
	} {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid %s address %q", name, addr)
		}
	}
	if c.PrincipalAsset == c.BridgeAsset {
		return fmt.Errorf("principal and bridge assets must differ")
	}
	amount, err := ParseAmount(c.BorrowAmount)
	if err != nil {
		return fmt.Errorf("invalid borrow_amount: %w", err)
	}
	if amount.Sign() <= 0 {
		return fmt.Errorf("borrow_amount must be positive")
	}
	if _, err := ParseAmount(c.FacilityLiquidity); err != nil {
		return fmt.Errorf("invalid facility_liquidity: %w", err)
	}
	for name, v := range map[string]VenueConfig{"venue1": c.Venue1, "venue2": c.Venue2} {
		if _, err := ParseAmount(v.ReservePrincipal); err != nil {
			return fmt.Errorf("invalid %s.reserve_principal: %w", name, err)
		}
		if _, err := ParseAmount(v.ReserveBridge); err != nil {
			return fmt.Errorf("invalid %s.reserve_bridge: %w", name, err)
		}
	}
	if c.Hop1MinOutBps >= 10000 || c.Hop2MinOutBps >= 10000 {
		return fmt.Errorf("min-out tolerance must be below 10000 bps")
	}
	return nil
}

// ParseAmount parses a base-10 quantity in base units.
func ParseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("not a base-10 integer: %q", s)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("negative amount: %q", s)
	}
	return amount, nil
}

// MustAmount parses a validated quantity. Panics on malformed input, so call
// only after Validate.
func MustAmount(s string) *big.Int {
	amount, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return amount
}
