// Package config loads simulation tuning from a YAML file, falling back to
// the built-in defaults when no file is given.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mbellver/estatesim/internal/pricing"
)

// Banking holds the lending constants.
type Banking struct {
	BaseInterestRate       float64 `yaml:"base_interest_rate"`        // annual
	MinInterestRate        float64 `yaml:"min_interest_rate"`
	MaxInterestRate        float64 `yaml:"max_interest_rate"`
	InitialMaxLoan         float64 `yaml:"initial_max_loan"`
	LoanToValueRatio       float64 `yaml:"loan_to_value_ratio"`
	AdminFeeFlat           float64 `yaml:"admin_fee_flat"`
	AdminFeeRate           float64 `yaml:"admin_fee_rate"`
	EarlyRepaymentFeeRate  float64 `yaml:"early_repayment_fee_rate"`
	RateProtectionBaseCost float64 `yaml:"rate_protection_base_cost"` // monthly
}

// Simulation holds the clock and world-generation knobs.
type Simulation struct {
	Seed                 int64         `yaml:"seed"` // 0 means derive from wall clock
	InitialProperties    int           `yaml:"initial_properties"`
	StartingCash         float64       `yaml:"starting_cash"`
	StartingCreditScore  int           `yaml:"starting_credit_score"`
	StartDate            string        `yaml:"start_date"` // YYYY-MM-DD, empty means today
	TickInterval         time.Duration `yaml:"tick_interval"`
	EventCheckTicks      int           `yaml:"event_check_ticks"` // clock ticks between world event rolls
	EvictionCost         float64       `yaml:"eviction_cost"`
	ManagerMonthlyFee    float64       `yaml:"manager_monthly_fee"`
	DailyTenantEventRoll float64       `yaml:"daily_tenant_event_roll"`
}

// Server holds the listen and persistence settings.
type Server struct {
	Addr         string `yaml:"addr"`
	DatabasePath string `yaml:"database_path"` // empty disables the audit database
}

// Config is the root configuration document.
type Config struct {
	Server     Server              `yaml:"server"`
	Simulation Simulation          `yaml:"simulation"`
	Banking    Banking             `yaml:"banking"`
	Taxes      pricing.TaxSchedule `yaml:"taxes"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:         ":8080",
			DatabasePath: "estatesim.db",
		},
		Simulation: Simulation{
			InitialProperties:    20,
			StartingCash:         250000,
			StartingCreditScore:  600,
			TickInterval:         time.Second,
			EventCheckTicks:      10,
			EvictionCost:         1000,
			ManagerMonthlyFee:    500,
			DailyTenantEventRoll: 0.1,
		},
		Banking: Banking{
			BaseInterestRate:       0.05,
			MinInterestRate:        0.02,
			MaxInterestRate:        0.12,
			InitialMaxLoan:         1000000,
			LoanToValueRatio:       0.70,
			AdminFeeFlat:           25,
			AdminFeeRate:           0.005,
			EarlyRepaymentFeeRate:  0.02,
			RateProtectionBaseCost: 100,
		},
		Taxes: pricing.DefaultTaxSchedule(),
	}
}

// Load reads a YAML config file layered over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// StartTime resolves the configured start date, defaulting to now.
func (s Simulation) StartTime() (time.Time, error) {
	if s.StartDate == "" {
		return time.Now(), nil
	}
	t, err := time.Parse("2006-01-02", s.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("start_date %q: %w", s.StartDate, err)
	}
	return t, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.Simulation.InitialProperties < 0 {
		return fmt.Errorf("initial_properties must not be negative")
	}
	if c.Simulation.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive")
	}
	if c.Simulation.EventCheckTicks <= 0 {
		return fmt.Errorf("event_check_ticks must be positive")
	}
	if c.Banking.LoanToValueRatio <= 0 || c.Banking.LoanToValueRatio > 1 {
		return fmt.Errorf("loan_to_value_ratio must be in (0,1]")
	}
	if c.Banking.MinInterestRate > c.Banking.MaxInterestRate {
		return fmt.Errorf("min_interest_rate exceeds max_interest_rate")
	}
	if _, err := c.Simulation.StartTime(); err != nil {
		return err
	}
	return nil
}
