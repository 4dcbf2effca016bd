package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/billforge/billforge/internal/types"
)

type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment" validate:"required"`
	Logging    LoggingConfig    `mapstructure:"logging" validate:"required"`
	Billing    BillingConfig    `mapstructure:"billing" validate:"required"`
	Gateway    GatewayConfig    `mapstructure:"gateway"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Webhook    WebhookConfig    `mapstructure:"webhook"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" validate:"required"`
}

// BillingConfig carries the process-wide billing knobs. It is passed into the
// services at construction rather than read from a global.
type BillingConfig struct {
	// DaysGrace is how many days an account stays active after it fails to pay.
	DaysGrace int `mapstructure:"days_grace" validate:"min=0"`
	// DaysTrial is the free trial length granted to new paid-plan signups.
	DaysTrial int `mapstructure:"days_trial" validate:"min=0"`
	// ExpiredPlanKey is the plan an expired subscription is downgraded to.
	// When empty, the zero-rate plan is used as fallback.
	ExpiredPlanKey string `mapstructure:"expired_plan_key"`
	// ProrationBasis selects whether payments are prorated against the plan's
	// full rate or its discounted rate.
	ProrationBasis types.ProrationBasis `mapstructure:"proration_basis"`
}

type GatewayConfig struct {
	// Provider selects the gateway implementation: "stripe" or "test".
	Provider string       `mapstructure:"provider"`
	Stripe   StripeConfig `mapstructure:"stripe"`
}

type StripeConfig struct {
	SecretKey string `mapstructure:"secret_key"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Topic   string `mapstructure:"topic"`
}

type SchedulerConfig struct {
	// ExpirySchedule is the cron expression for the daily lifecycle pass.
	ExpirySchedule string `mapstructure:"expiry_schedule"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/billforge")

	v.SetEnvPrefix("BILLFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
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
	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("billing.days_grace", 3)
	v.SetDefault("billing.days_trial", 30)
	v.SetDefault("billing.proration_basis", string(types.ProrationBasisPlanRate))
	v.SetDefault("gateway.provider", "test")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("webhook.topic", "billing.notifications")
	v.SetDefault("scheduler.expiry_schedule", "0 2 * * *")
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Billing.ProrationBasis != "" && !c.Billing.ProrationBasis.Validate() {
		return fmt.Errorf("invalid proration basis: %s", c.Billing.ProrationBasis)
	}
	return nil
}

// DSN builds the postgres connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode,
	)
}

// GetDefaultConfig returns a default configuration for local development and
// tests.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Billing: BillingConfig{
			DaysGrace:      3,
			DaysTrial:      30,
			ProrationBasis: types.ProrationBasisPlanRate,
		},
		Gateway: GatewayConfig{Provider: "test"},
		Webhook: WebhookConfig{Topic: "billing.notifications"},
	}
}
