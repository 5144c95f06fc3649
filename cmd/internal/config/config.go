package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultJWTSecret = "heal-together-dev-secret"

type Config struct {
	Port               string   `mapstructure:"PORT"`
	Env                string   `mapstructure:"ENV"`
	DBDriver           string   `mapstructure:"DB_DRIVER"`
	DatabaseURL        string   `mapstructure:"DATABASE_URL"`
	MongoURI           string   `mapstructure:"MONGODB_URI"`
	DBName             string   `mapstructure:"DB_NAME"`
	JWTSecret          string   `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int      `mapstructure:"JWT_EXPIRATION_HOURS"`
	CORSOrigins        []string `mapstructure:"-"`
	AuthProvider       string   `mapstructure:"AUTH_PROVIDER"`
	CognitoRegion      string   `mapstructure:"COGNITO_REGION"`
	CognitoClientID    string   `mapstructure:"COGNITO_CLIENT_ID"`
	CognitoUserPoolID  string   `mapstructure:"COGNITO_USER_POOL_ID"`
	BookingWindowDays  int      `mapstructure:"BOOKING_WINDOW_DAYS"`
	LogLevel           string   `mapstructure:"LOG_LEVEL"`
}

var keys = []string{
	"PORT", "ENV", "DB_DRIVER", "DATABASE_URL", "MONGODB_URI", "DB_NAME",
	"JWT_SECRET", "JWT_EXPIRATION_HOURS", "CORS_ORIGINS", "AUTH_PROVIDER",
	"COGNITO_REGION", "COGNITO_CLIENT_ID", "COGNITO_USER_POOL_ID",
	"BOOKING_WINDOW_DAYS", "LOG_LEVEL",
}

// Load reads the process environment, after merging an optional .env file
// into it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "5002")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "./database.db")
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("DB_NAME", "heal-together")
	v.SetDefault("JWT_SECRET", DefaultJWTSecret)
	v.SetDefault("JWT_EXPIRATION_HOURS", 168)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("AUTH_PROVIDER", "local")
	v.SetDefault("BOOKING_WINDOW_DAYS", 7)
	v.SetDefault("LOG_LEVEL", "info")

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	for _, origin := range strings.Split(v.GetString("CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) UsesCognito() bool {
	return c.AuthProvider == "cognito"
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpirationHours) * time.Hour
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "mysql", "postgres", "mongo":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite, mysql, postgres or mongo, got %q", c.DBDriver)
	}

	if c.DBDriver == "mongo" && c.MongoURI == "" {
		return errors.New("MONGODB_URI is required when DB_DRIVER is mongo")
	}
	if c.DBDriver != "mongo" && c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.IsProduction() && c.JWTSecret == DefaultJWTSecret {
		return errors.New("JWT_SECRET must be changed in production")
	}
	if c.JWTExpirationHours <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be positive, got %d", c.JWTExpirationHours)
	}

	switch c.AuthProvider {
	case "local":
	case "cognito":
		if c.CognitoRegion == "" || c.CognitoClientID == "" || c.CognitoUserPoolID == "" {
			return errors.New("COGNITO_REGION, COGNITO_CLIENT_ID and COGNITO_USER_POOL_ID are required when AUTH_PROVIDER is cognito")
		}
	default:
		return fmt.Errorf("AUTH_PROVIDER must be local or cognito, got %q", c.AuthProvider)
	}

	if c.BookingWindowDays < 1 || c.BookingWindowDays > 60 {
		return fmt.Errorf("BOOKING_WINDOW_DAYS must be between 1 and 60, got %d", c.BookingWindowDays)
	}
	return nil
}
