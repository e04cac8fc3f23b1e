package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

type Config struct {
	PostgresAddress  string `yaml:"postgresAddress"`
	PostgresPort     string `yaml:"postgresPort"`
	PostgresDB       string `yaml:"postgresDB"`
	PostgresUsername string `yaml:"postgresUsername"`
	PostgresPassword string `yaml:"postgresPassword"`

	Backend  string `yaml:"backend"`
	HTTPPort string `yaml:"httpPort"`
	Workers  int    `yaml:"workers"`
	LogLevel string `yaml:"logLevel"`
	Migrate  bool   `yaml:"migrate"`

	Seed     bool   `yaml:"seed"`
	SeedFile string `yaml:"seedFile"`

	// RateLimit is the sustained transfer rate per client in requests per second.
	// Zero disables limiting.
	RateLimit float64 `yaml:"rateLimit"`
	RateBurst int     `yaml:"rateBurst"`

	// TrustForwardedFor keys the rate limit on X-Forwarded-For. Enable only behind a
	// proxy that sets the header.
	TrustForwardedFor bool `yaml:"trustForwardedFor"`
}

// Default is the configuration used when neither a file nor the environment says otherwise.
func Default() Config {
	// In all cases the default behavior should be for the docker compose setup
	return Config{
		PostgresAddress:  "localhost",
		PostgresPort:     "5433",
		PostgresDB:       "postgres",
		PostgresUsername: "postgres",
		PostgresPassword: "testpassword",

		Backend:  BackendMemory,
		HTTPPort: "9446",
		Workers:  4,
		LogLevel: "info",
		Seed:     true,

		RateLimit: 10,
		RateBurst: 20,
	}
}

// ProcessEnvironmentVariables builds the configuration from the defaults, the YAML
// file named by LEDGER_CONFIG_FILE if any, then the environment.
func ProcessEnvironmentVariables() (*Config, error) {
	env := Default()

	if path := os.Getenv("LEDGER_CONFIG_FILE"); len(path) != 0 {
		if err := env.loadFile(path); err != nil {
			return nil, err
		}
	}

	overrideString(&env.PostgresAddress, "POSTGRES_ADDRESS")
	overrideString(&env.PostgresPort, "POSTGRES_PORT")
	overrideString(&env.PostgresDB, "POSTGRES_DB")
	overrideString(&env.PostgresUsername, "POSTGRES_USERNAME")
	overrideString(&env.PostgresPassword, "POSTGRES_PASSWORD")
	overrideString(&env.Backend, "LEDGER_BACKEND")
	overrideString(&env.HTTPPort, "LEDGER_HTTP_PORT")
	overrideString(&env.LogLevel, "LEDGER_LOG_LEVEL")
	overrideString(&env.SeedFile, "LEDGER_SEED_FILE")

	if err := overrideInt(&env.Workers, "LEDGER_WORKERS"); err != nil {
		return nil, err
	}
	if err := overrideInt(&env.RateBurst, "LEDGER_RATE_BURST"); err != nil {
		return nil, err
	}
	if err := overrideFloat(&env.RateLimit, "LEDGER_RATE_LIMIT"); err != nil {
		return nil, err
	}
	if err := overrideBool(&env.Seed, "LEDGER_SEED"); err != nil {
		return nil, err
	}
	if err := overrideBool(&env.Migrate, "LEDGER_MIGRATE"); err != nil {
		return nil, err
	}
	if err := overrideBool(&env.TrustForwardedFor, "LEDGER_TRUST_FORWARDED_FOR"); err != nil {
		return nil, err
	}

	if err := env.Validate(); err != nil {
		return nil, err
	}
	return &env, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendPostgres:
	default:
		return fmt.Errorf("LEDGER_BACKEND must be %q or %q, got %q", BackendMemory, BackendPostgres, c.Backend)
	}
	if c.Workers < 1 {
		return fmt.Errorf("LEDGER_WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return fmt.Errorf("rate limit and burst cannot be negative")
	}
	return nil
}

// PostgresDSN is the lib/pq connection string for the configured database.
func (c *Config) PostgresDSN() string {
	return "postgres://" + c.PostgresUsername + ":" +
		c.PostgresPassword + "@" + c.PostgresAddress + ":" +
		c.PostgresPort + "/" + c.PostgresDB + "?sslmode=disable"
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); len(v) != 0 {
		*dst = v
	}
}

func overrideInt(dst *int, key string) error {
	v := os.Getenv(key)
	if len(v) == 0 {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func overrideFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if len(v) == 0 {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func overrideBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if len(v) == 0 {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}
