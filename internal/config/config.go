package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/wanderlist/wanderlist/pkg/logger"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	MongoDB  MongoDBConfig
	Redis    RedisConfig
	OIDC     OIDCConfig
	Session  SessionConfig
	Places   PlacesConfig
	Results  ResultsConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	BaseURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig selects the relational store. Driver is "sqlite" or "postgres".
type DatabaseConfig struct {
	Driver string
	DSN    string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type OIDCConfig struct {
	IssuerURL     string
	ClientID      string
	ClientSecret  string
	RedirectURL   string
	Scopes        []string
	AllowInsecure bool
}

type SessionConfig struct {
	Secret     string
	TTL        time.Duration
	LoginTTL   time.Duration
	CookieName string
	Secure     bool
}

type PlacesConfig struct {
	BaseURL          string
	APIKey           string
	Language         string
	RadiusMeters     int
	Limit            int
	Timeout          time.Duration
	BreakerThreshold uint32
	BreakerCooldown  time.Duration
}

type ResultsConfig struct {
	AttractionCap int
	FoodCap       int
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "5000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "wanderlist.db")
	v.SetDefault("MONGODB_DATABASE", "wanderlist")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("OIDC_ISSUER_URL", "https://accounts.google.com")
	v.SetDefault("OIDC_SCOPES", "openid,email,profile")
	v.SetDefault("SESSION_TTL_MINUTES", 10080)
	v.SetDefault("SESSION_LOGIN_TTL_MINUTES", 10)
	v.SetDefault("SESSION_COOKIE_NAME", "wanderlist_session")
	v.SetDefault("PLACES_BASE_URL", "https://api.opentripmap.com/0.1")
	v.SetDefault("PLACES_LANGUAGE", "en")
	v.SetDefault("PLACES_RADIUS_METERS", 20000)
	v.SetDefault("PLACES_LIMIT", 100)
	v.SetDefault("PLACES_TIMEOUT", 10)
	v.SetDefault("PLACES_BREAKER_THRESHOLD", 5)
	v.SetDefault("PLACES_BREAKER_COOLDOWN", 30)
	v.SetDefault("RESULTS_ATTRACTION_CAP", 5)
	v.SetDefault("RESULTS_FOOD_CAP", 3)

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			BaseURL:      strings.TrimRight(v.GetString("SERVER_BASE_URL"), "/"),
			ReadTimeout:  time.Duration(v.GetInt("SERVER_READ_TIMEOUT")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("SERVER_WRITE_TIMEOUT")) * time.Second,
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		OIDC: OIDCConfig{
			IssuerURL:     strings.TrimRight(v.GetString("OIDC_ISSUER_URL"), "/"),
			ClientID:      v.GetString("OIDC_CLIENT_ID"),
			ClientSecret:  v.GetString("OIDC_CLIENT_SECRET"),
			RedirectURL:   v.GetString("OIDC_REDIRECT_URL"),
			Scopes:        splitList(v.GetString("OIDC_SCOPES")),
			AllowInsecure: v.GetBool("ALLOW_INSECURE_TOKEN"),
		},
		Session: SessionConfig{
			Secret:     v.GetString("SESSION_SECRET"),
			TTL:        time.Duration(v.GetInt("SESSION_TTL_MINUTES")) * time.Minute,
			LoginTTL:   time.Duration(v.GetInt("SESSION_LOGIN_TTL_MINUTES")) * time.Minute,
			CookieName: v.GetString("SESSION_COOKIE_NAME"),
			Secure:     v.GetBool("SESSION_COOKIE_SECURE"),
		},
		Places: PlacesConfig{
			BaseURL:          strings.TrimRight(v.GetString("PLACES_BASE_URL"), "/"),
			APIKey:           v.GetString("PLACES_API_KEY"),
			Language:         v.GetString("PLACES_LANGUAGE"),
			RadiusMeters:     v.GetInt("PLACES_RADIUS_METERS"),
			Limit:            v.GetInt("PLACES_LIMIT"),
			Timeout:          time.Duration(v.GetInt("PLACES_TIMEOUT")) * time.Second,
			BreakerThreshold: v.GetUint32("PLACES_BREAKER_THRESHOLD"),
			BreakerCooldown:  time.Duration(v.GetInt("PLACES_BREAKER_COOLDOWN")) * time.Second,
		},
		Results: ResultsConfig{
			AttractionCap: v.GetInt("RESULTS_ATTRACTION_CAP"),
			FoodCap:       v.GetInt("RESULTS_FOOD_CAP"),
		},
	}

	if cfg.Session.Secret == "" {
		logger.Warn("SESSION_SECRET is not set; set a secure value in production")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the services cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.Places.RadiusMeters <= 0 {
		return fmt.Errorf("PLACES_RADIUS_METERS must be positive, got %d", c.Places.RadiusMeters)
	}
	if c.Results.AttractionCap < 0 || c.Results.FoodCap < 0 {
		return fmt.Errorf("result caps must not be negative")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive")
	}
	return nil
}

// RedirectURL is the OIDC callback, derived from the base URL when not set explicitly.
func (c *Config) RedirectURL() string {
	if c.OIDC.RedirectURL != "" {
		return c.OIDC.RedirectURL
	}
	base := c.Server.BaseURL
	if base == "" {
		base = "http://localhost:" + c.Server.Port
	}
	return base + "/auth"
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
