package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gamalabdu/purchase-ledger/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment     DeploymentConfig     `validate:"required"`
	Server         ServerConfig         `validate:"required"`
	Logging        LoggingConfig        `validate:"required"`
	Stripe         StripeConfig         `validate:"required"`
	Reconciliation ReconciliationConfig `validate:"required"`
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type StripeConfig struct {
	SecretKey      string `mapstructure:"secret_key"`
	PublishableKey string `mapstructure:"publishable_key"`
	// Outbound API rate limit, requests per second with a small burst.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	SuccessURL        string  `mapstructure:"success_url"`
	CancelURL         string  `mapstructure:"cancel_url"`
}

type ReconciliationConfig struct {
	// PageLimit is the per-request page size used against the provider.
	PageLimit int64 `mapstructure:"page_limit"`
	// MaxRecords caps how many records a single collection fetch may
	// accumulate. Hitting the cap truncates the collection, it is not an error.
	MaxRecords int `mapstructure:"max_records"`
	// LookupMaxAttempts bounds the retry policy used for point lookups.
	LookupMaxAttempts int `mapstructure:"lookup_max_attempts"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/purchase-ledger")

	v.SetEnvPrefix("PURCHASELEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeAPI))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("stripe.requests_per_second", 25.0)
	v.SetDefault("stripe.burst", 50)
	v.SetDefault("reconciliation.page_limit", 100)
	v.SetDefault("reconciliation.max_records", 1000)
	v.SetDefault("reconciliation.lookup_max_attempts", 3)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// and tests, without touching the filesystem or environment.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Stripe: StripeConfig{
			RequestsPerSecond: 25.0,
			Burst:             50,
		},
		Reconciliation: ReconciliationConfig{
			PageLimit:         100,
			MaxRecords:        1000,
			LookupMaxAttempts: 3,
		},
	}
}
