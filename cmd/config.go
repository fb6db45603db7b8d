package cmd

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config carries every runtime setting of the service. Values come from the
// environment, optionally seeded from a .env file; unset values fall back to
// the struct-tag defaults.
type Config struct {
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"giftflow"`
	DBSslMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	RefundGatewayURL       string `envconfig:"REFUND_GATEWAY_URL" required:"true"`
	VoiceCallGatewayURL    string `envconfig:"VOICE_CALL_GATEWAY_URL" required:"true"`
	NotificationGatewayURL string `envconfig:"NOTIFICATION_GATEWAY_URL" required:"true"`

	// WebhookSecret authenticates the server-to-server webhook channel.
	// Processors send it in the X-Webhook-Secret header.
	WebhookSecret string `envconfig:"WEBHOOK_SECRET" required:"true"`

	EscrowTTL      time.Duration `envconfig:"ESCROW_TTL" default:"48h"`
	ForceCallAfter time.Duration `envconfig:"FORCE_CALL_AFTER" default:"5m"`
	RerouteAfter   time.Duration `envconfig:"REROUTE_AFTER" default:"10m"`
	SearchRadiusKm float64       `envconfig:"SEARCH_RADIUS_KM" default:"5"`
}

// LoadConfig reads the .env file when present and parses the environment
// into a Config. A missing .env file is not an error; required settings
// still fail loudly.
func LoadConfig() (Config, error) {
	_ = godotenv.Load(".env")

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// DSN assembles the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}
