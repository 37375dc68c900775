package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server ServerConfig
	DB     DBConfig
	CORS   CORSConfig
	Log    LogConfig
	Shop   ShopConfig
	Amelia AmeliaConfig
	Stripe StripeConfig
	Sweep  SweepConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Europe/Paris"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,X-Shop-Token"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Europe/Paris"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"3600"`
}

// ShopConfig covers the storefront side: the shared token its status-change
// hook authenticates with, and the statuses that trigger processing.
type ShopConfig struct {
	HookToken        string   `envconfig:"SHOP_HOOK_TOKEN" required:"true"`
	TriggerStatuses  []string `envconfig:"SHOP_TRIGGER_STATUSES" default:"processing,completed"`
	DefaultSeasonTag string   `envconfig:"SHOP_DEFAULT_SEASON_TAG" default:""`
}

type AmeliaConfig struct {
	Endpoint string        `envconfig:"AMELIA_ENDPOINT" required:"true"`
	APIToken string        `envconfig:"AMELIA_API_TOKEN" required:"true"`
	Timeout  time.Duration `envconfig:"AMELIA_TIMEOUT" default:"30s"`
	TimeZone string        `envconfig:"AMELIA_TIMEZONE" default:"Europe/Paris"`
	Locale   string        `envconfig:"AMELIA_LOCALE" default:"fr_FR"`
}

type StripeConfig struct {
	SecretKey string `envconfig:"STRIPE_SECRET_KEY" default:""`
	// When empty, webhook payloads are trusted as-is (weak mode).
	WebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET" default:""`
}

type SweepConfig struct {
	Enabled  bool          `envconfig:"SWEEP_ENABLED" default:"true"`
	Interval time.Duration `envconfig:"SWEEP_INTERVAL" default:"24h"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433",
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Europe/Paris",
		},
		Log: LogConfig{
			Level:          "error",
			TimeZone:       "Europe/Paris",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 3600,
		},
		Shop: ShopConfig{
			HookToken:       "test-token",
			TriggerStatuses: []string{"processing", "completed"},
		},
		Amelia: AmeliaConfig{
			Endpoint: "http://localhost:18080/wp-admin/admin-ajax.php",
			APIToken: "test-amelia-token",
			Timeout:  30 * time.Second,
			TimeZone: "Europe/Paris",
			Locale:   "fr_FR",
		},
		Sweep: SweepConfig{
			Enabled:  false,
			Interval: 24 * time.Hour,
		},
	}
}
