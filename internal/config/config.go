package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Scheduler   SchedulerConfig `mapstructure:"scheduler"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Rules       RulesConfig     `mapstructure:"rules"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address returns the host:port listen address.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig contains Postgres connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"ssl_mode"`
	PoolSize int    `mapstructure:"pool_size"`
}

// DSN returns the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Database, d.Username, d.Password, d.SSLMode)
}

// SchedulerConfig contains the deadline sweep settings.
type SchedulerConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	SweepCron string `mapstructure:"sweep_cron"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// RulesConfig holds every jurisdiction constant the engine applies. UK civil
// procedure values change over time, so none of them are inlined in rule
// code; they load here with the current statutory defaults and may be
// overridden per deployment.
type RulesConfig struct {
	// Interest. Rates are percent per annum.
	StatutoryInterestRate  float64 `mapstructure:"statutory_interest_rate"`
	BankBaseRate           float64 `mapstructure:"bank_base_rate"`
	CommercialUplift       float64 `mapstructure:"commercial_uplift"`
	DefaultPaymentTermDays int     `mapstructure:"default_payment_term_days"`
	DaysPerYear            int     `mapstructure:"days_per_year"`

	// Late Payment of Commercial Debts compensation, B2B only.
	CompensationBands []CompensationBand `mapstructure:"compensation_bands"`

	// Court issue fee schedule, keyed to total claim value.
	FeeBands []FeeBand `mapstructure:"fee_bands"`
	FeeCap   float64   `mapstructure:"fee_cap"`

	// Viability thresholds.
	LimitationYears    int     `mapstructure:"limitation_years"`
	SmallClaimsCeiling float64 `mapstructure:"small_claims_ceiling"`

	// Escalation ladder offsets, in days from the payment due date (or the
	// anchoring timeline event for post-LBA stages).
	ReminderOffsetDays    int `mapstructure:"reminder_offset_days"`
	FinalDemandOffsetDays int `mapstructure:"final_demand_offset_days"`
	LBAOffsetDays         int `mapstructure:"lba_offset_days"`
	LBAWaitingDays        int `mapstructure:"lba_waiting_days"`
	JudgmentWaitDays      int `mapstructure:"judgment_wait_days"`
	PaymentGraceDays      int `mapstructure:"payment_grace_days"`
	EscalationWindowDays  int `mapstructure:"escalation_window_days"`
}

// CommercialRate is the annual rate applied to B2B claims: Bank of England
// base plus the statutory uplift.
func (r RulesConfig) CommercialRate() float64 {
	return r.BankBaseRate + r.CommercialUplift
}

// CompensationBand awards a fixed amount once the principal reaches the
// band's floor. Bands are evaluated highest floor first.
type CompensationBand struct {
	MinPrincipal float64 `mapstructure:"min_principal"`
	Amount       float64 `mapstructure:"amount"`
}

// FeeBand maps a claim-value floor to a court fee. A band carries either a
// flat fee or a percentage of the claim value; percentage bands are subject
// to the schedule's absolute cap. The band with the highest floor not
// exceeding the claim value applies.
type FeeBand struct {
	MinValue float64 `mapstructure:"min_value"`
	Fee      float64 `mapstructure:"fee"`
	Percent  float64 `mapstructure:"percent"`
}

// Load reads configuration from file and environment, applying defaults for
// anything unset.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/claimcraft")

	v.SetEnvPrefix("CLAIMCRAFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.Rules.CompensationBands) == 0 {
		cfg.Rules.CompensationBands = DefaultCompensationBands()
	}
	if len(cfg.Rules.FeeBands) == 0 {
		cfg.Rules.FeeBands = DefaultFeeBands()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "claimcraft")
	v.SetDefault("database.username", "claimcraft")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.pool_size", 10)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.sweep_cron", "0 7 * * *")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)

	v.SetDefault("rules.statutory_interest_rate", 8.0)
	v.SetDefault("rules.bank_base_rate", 5.25)
	v.SetDefault("rules.commercial_uplift", 8.0)
	v.SetDefault("rules.default_payment_term_days", 30)
	v.SetDefault("rules.days_per_year", 365)
	v.SetDefault("rules.fee_cap", 10000.0)
	v.SetDefault("rules.limitation_years", 6)
	v.SetDefault("rules.small_claims_ceiling", 10000.0)
	v.SetDefault("rules.reminder_offset_days", 7)
	v.SetDefault("rules.final_demand_offset_days", 14)
	v.SetDefault("rules.lba_offset_days", 30)
	v.SetDefault("rules.lba_waiting_days", 30)
	v.SetDefault("rules.judgment_wait_days", 28)
	v.SetDefault("rules.payment_grace_days", 14)
	v.SetDefault("rules.escalation_window_days", 3)
}

// DefaultCompensationBands returns the Late Payment of Commercial Debts
// (Interest) Act 1998 fixed-sum tiers.
func DefaultCompensationBands() []CompensationBand {
	return []CompensationBand{
		{MinPrincipal: 0, Amount: 40},
		{MinPrincipal: 1000, Amount: 70},
		{MinPrincipal: 10000, Amount: 100},
	}
}

// DefaultFeeBands returns the county court issue-fee schedule. The final
// band is percentage-based and capped at FeeCap.
func DefaultFeeBands() []FeeBand {
	return []FeeBand{
		{MinValue: 0, Fee: 35},
		{MinValue: 300, Fee: 50},
		{MinValue: 500, Fee: 70},
		{MinValue: 1000, Fee: 80},
		{MinValue: 1500, Fee: 115},
		{MinValue: 3000, Fee: 205},
		{MinValue: 5000, Fee: 455},
		{MinValue: 200000, Percent: 5.0},
	}
}

// Validate checks that loaded configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	return c.Rules.Validate()
}

// Validate checks the rule constants.
func (r RulesConfig) Validate() error {
	if r.StatutoryInterestRate < 0 {
		return fmt.Errorf("statutory interest rate must not be negative")
	}
	if r.CommercialRate() < 0 {
		return fmt.Errorf("commercial interest rate must not be negative")
	}
	if r.DefaultPaymentTermDays < 0 {
		return fmt.Errorf("default payment term must not be negative")
	}
	if r.DaysPerYear <= 0 {
		return fmt.Errorf("days per year must be positive")
	}
	if r.LimitationYears <= 0 {
		return fmt.Errorf("limitation period must be positive")
	}
	if r.SmallClaimsCeiling <= 0 {
		return fmt.Errorf("small claims ceiling must be positive")
	}
	if r.FeeCap <= 0 {
		return fmt.Errorf("fee cap must be positive")
	}
	if len(r.CompensationBands) == 0 {
		return fmt.Errorf("at least one compensation band is required")
	}
	if len(r.FeeBands) == 0 {
		return fmt.Errorf("at least one fee band is required")
	}
	for i, b := range r.FeeBands {
		if b.Fee < 0 || b.Percent < 0 {
			return fmt.Errorf("fee band %d must not be negative", i)
		}
		if b.Fee == 0 && b.Percent == 0 && b.MinValue > 0 {
			return fmt.Errorf("fee band %d carries neither a fee nor a percentage", i)
		}
	}
	return nil
}

// DefaultRules returns the rule constants with UK statutory defaults, for
// callers that evaluate claims without loading a config file.
func DefaultRules() RulesConfig {
	return RulesConfig{
		StatutoryInterestRate:  8.0,
		BankBaseRate:           5.25,
		CommercialUplift:       8.0,
		DefaultPaymentTermDays: 30,
		DaysPerYear:            365,
		CompensationBands:      DefaultCompensationBands(),
		FeeBands:               DefaultFeeBands(),
		FeeCap:                 10000.0,
		LimitationYears:        6,
		SmallClaimsCeiling:     10000.0,
		ReminderOffsetDays:     7,
		FinalDemandOffsetDays:  14,
		LBAOffsetDays:          30,
		LBAWaitingDays:         30,
		JudgmentWaitDays:       28,
		PaymentGraceDays:       14,
		EscalationWindowDays:   3,
	}
}
