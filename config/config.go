package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"pharma-supply/logger"
)

// Config holds every environment-sourced setting of the backend.
type Config struct {
	AppHost     string `env:"APP_HOST,default=0.0.0.0"`
	AppPort     string `env:"APP_PORT,default=8000"`
	FrontendURL string `env:"FRONTEND_URL,default=*"`

	DatabaseURL string `env:"DATABASE_URL"`
	SecretKey   string `env:"SECRET_KEY"`

	RPCURL          string        `env:"RPC_URL"`
	ContractAddress string        `env:"CONTRACT_ADDRESS"`
	PrivateKey      string        `env:"PRIVATE_KEY"`
	ChainID         int64         `env:"CHAIN_ID,default=11155111"`
	ContractABIPath string        `env:"CONTRACT_ABI_PATH,default=contract/PharmaSupply.json"`
	ReceiptTimeout  time.Duration `env:"LEDGER_RECEIPT_TIMEOUT,default=2m"`

	// OTPEchoInsecure returns the OTP code in the start-auth response. Development only.
	OTPEchoInsecure      bool `env:"OTP_ECHO_INSECURE,default=true"`
	ExposeInternalErrors bool `env:"EXPOSE_INTERNAL_ERRORS,default=true"`
	// RevenueOffsetHours shifts month boundaries of revenue windows back by this many hours.
	RevenueOffsetHours int  `env:"REVENUE_TZ_OFFSET_HOURS,default=7"`
	RequestLogEnabled  bool `env:"REQUEST_LOG_ENABLED,default=true"`

	// LogDir receives daily log files; "-" logs to stdout only.
	LogDir   string `env:"LOG_DIR,default=log/app"`
	LogLevel string `env:"LOG_LEVEL,default=info"`
}

// Load reads .env (when present), decodes the process environment and
// validates the result.
func Load() (*Config, error) {
	cfg, err := Decode()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode is Load without validation, for tools that need a subset of settings.
func Decode() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Warning("No .env file loaded: " + err.Error())
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	return &cfg, nil
}

// Validate reports the first missing or malformed required setting.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" || c.SecretKey == "" {
		return errors.New("set DATABASE_URL and SECRET_KEY in .env")
	}
	if c.RPCURL == "" || c.ContractAddress == "" {
		return errors.New("set RPC_URL and CONTRACT_ADDRESS in .env")
	}
	if !common.IsHexAddress(strings.TrimSpace(c.ContractAddress)) {
		return fmt.Errorf("CONTRACT_ADDRESS is not a valid address: %q", c.ContractAddress)
	}
	if c.ChainID <= 0 {
		return fmt.Errorf("CHAIN_ID must be positive, got %d", c.ChainID)
	}
	return nil
}

// ListenAddr is the host:port pair the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return c.AppHost + ":" + c.AppPort
}

// RevenueOffset returns the revenue window shift as a duration.
func (c *Config) RevenueOffset() time.Duration {
	return time.Duration(c.RevenueOffsetHours) * time.Hour
}
