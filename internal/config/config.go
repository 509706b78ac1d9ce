package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	SendGrid   SendGridConfig   `yaml:"sendgrid"`
	JWT        JWTConfig        `yaml:"jwt"`
	Log        LogConfig        `yaml:"log"`
	Rental     RentalConfig     `yaml:"rental"`
	Contract   ContractConfig   `yaml:"contract"`
	Settlement SettlementConfig `yaml:"settlement"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
}

// ServerConfig contains the REST listener and the gRPC health port
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	GRPCPort int    `yaml:"grpc_port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// SendGridConfig contains email delivery settings. An empty API key
// disables email; in-app notifications are still written.
type SendGridConfig struct {
	APIKey   string `yaml:"api_key"`
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// RentalConfig controls cart rental window validation.
// CutoffHour is a pointer so an explicit midnight cutoff survives defaulting.
type RentalConfig struct {
	CutoffHour *int   `yaml:"cutoff_hour"`
	Timezone   string `yaml:"timezone"`
	MinDays    int    `yaml:"min_days"`
	MaxDays    int    `yaml:"max_days"`
}

// ContractConfig points at the contract generation service
type ContractConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// SettlementConfig points at the payment service that executes refunds
type SettlementConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxAttempts    int    `yaml:"max_attempts"`
	BatchSize      int    `yaml:"batch_size"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ResumeContracts     string `yaml:"resume_contracts"`
	DispatchSettlements string `yaml:"dispatch_settlements"`
	SweepRejected       string `yaml:"sweep_rejected"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a configuration from YAML bytes, applies env overrides and validates it
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// SendGrid
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}
	if val := os.Getenv("SENDGRID_FROM"); val != "" {
		c.SendGrid.From = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("GRPC_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.GRPCPort)
	}

	// Collaborators
	if val := os.Getenv("CONTRACT_SERVICE_URL"); val != "" {
		c.Contract.BaseURL = val
	}
	if val := os.Getenv("SETTLEMENT_SERVICE_URL"); val != "" {
		c.Settlement.BaseURL = val
	}

	// Rental
	if val := os.Getenv("RENTAL_TIMEZONE"); val != "" {
		c.Rental.Timezone = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.Server.GRPCPort)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	// SendGrid validation
	if c.SendGrid.APIKey != "" && c.SendGrid.From == "" {
		return fmt.Errorf("sendgrid sender address is required when an API key is set")
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Rental defaults
	if c.Rental.CutoffHour == nil {
		noon := 12
		c.Rental.CutoffHour = &noon
	}
	if h := *c.Rental.CutoffHour; h < 0 || h > 23 {
		return fmt.Errorf("invalid rental cutoff hour: %d", h)
	}
	if c.Rental.MinDays == 0 {
		c.Rental.MinDays = 1
	}
	if c.Rental.MaxDays == 0 {
		c.Rental.MaxDays = 365
	}
	if c.Rental.MaxDays < c.Rental.MinDays {
		return fmt.Errorf("rental max days %d is below min days %d", c.Rental.MaxDays, c.Rental.MinDays)
	}
	if c.Rental.Timezone == "" {
		c.Rental.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(c.Rental.Timezone); err != nil {
		return fmt.Errorf("invalid rental timezone %q: %w", c.Rental.Timezone, err)
	}

	// Collaborators
	if c.Contract.BaseURL == "" {
		return fmt.Errorf("contract service URL is required")
	}
	if c.Contract.TimeoutSeconds == 0 {
		c.Contract.TimeoutSeconds = 10
	}
	if c.Settlement.BaseURL == "" {
		return fmt.Errorf("settlement service URL is required")
	}
	if c.Settlement.TimeoutSeconds == 0 {
		c.Settlement.TimeoutSeconds = 10
	}
	if c.Settlement.MaxAttempts == 0 {
		c.Settlement.MaxAttempts = 5
	}
	if c.Settlement.BatchSize == 0 {
		c.Settlement.BatchSize = 50
	}

	// Scheduler defaults
	if c.Scheduler.ResumeContracts == "" {
		c.Scheduler.ResumeContracts = "0 */5 * * * *" // every 5 minutes
	}
	if c.Scheduler.DispatchSettlements == "" {
		c.Scheduler.DispatchSettlements = "30 * * * * *" // every minute at :30
	}
	if c.Scheduler.SweepRejected == "" {
		c.Scheduler.SweepRejected = "0 */10 * * * *" // every 10 minutes
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the REST server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetGRPCAddress returns the health server address, empty when disabled
func (c *Config) GetGRPCAddress() string {
	if c.Server.GRPCPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

// Cutoff returns the configured same-day cutoff hour, noon when unset
func (c RentalConfig) Cutoff() int {
	if c.CutoffHour == nil {
		return 12
	}
	return *c.CutoffHour
}

// Location returns the timezone rental dates are evaluated in
func (c RentalConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Timeout returns the contract client timeout
func (c ContractConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout returns the settlement client timeout
func (c SettlementConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
