package utils

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Email    EmailConfig
	Booking  BookingConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// SeatMapTTL bounds how stale a cached seat map may be.
	SeatMapTTL time.Duration
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// BookingConfig carries the policy knobs of the booking core. The cancel
// window and payment grace window are business rules, not tunables to be
// changed casually; they default to the values the refund policy documents.
type BookingConfig struct {
	HoldTTL          time.Duration
	CancelWindow     time.Duration
	PaymentGrace     time.Duration
	ExpirySweepSpec  string  // cron spec for the expiry sweep
	HoldPurgeSpec    string  // cron spec for clearing expired holds
	ConvenienceFee   float64 // flat fee per seat
	TaxRate          float64 // applied to subtotal plus fees
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SEATMAP_TTL_SECONDS", 30)
	viper.SetDefault("HOLD_TTL_MINUTES", 10)
	viper.SetDefault("CANCEL_WINDOW_HOURS", 24)
	viper.SetDefault("PAYMENT_GRACE_HOURS", 24)
	viper.SetDefault("EXPIRY_SWEEP_SPEC", "@every 15m")
	viper.SetDefault("HOLD_PURGE_SPEC", "@every 1m")
	viper.SetDefault("CONVENIENCE_FEE", 30.0)
	viper.SetDefault("TAX_RATE", 0.18)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Addr:       viper.GetString("REDIS_ADDR"),
			Password:   viper.GetString("REDIS_PASS"),
			DB:         viper.GetInt("REDIS_DB"),
			SeatMapTTL: time.Duration(viper.GetInt("SEATMAP_TTL_SECONDS")) * time.Second,
		},
		Email: EmailConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASS"),
			From:     viper.GetString("EMAIL_FROM"),
		},
		Booking: BookingConfig{
			HoldTTL:         time.Duration(viper.GetInt("HOLD_TTL_MINUTES")) * time.Minute,
			CancelWindow:    time.Duration(viper.GetInt("CANCEL_WINDOW_HOURS")) * time.Hour,
			PaymentGrace:    time.Duration(viper.GetInt("PAYMENT_GRACE_HOURS")) * time.Hour,
			ExpirySweepSpec: viper.GetString("EXPIRY_SWEEP_SPEC"),
			HoldPurgeSpec:   viper.GetString("HOLD_PURGE_SPEC"),
			ConvenienceFee:  viper.GetFloat64("CONVENIENCE_FEE"),
			TaxRate:         viper.GetFloat64("TAX_RATE"),
		},
	}

	return config, nil
}
