package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Config is the runtime configuration of the API and the CLI.
type Config struct {
	Port           int
	Env            string
	Domain         string
	AllowedOrigins []string

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	PostgresDSN   string

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	JWTSecret      string
	TokenTTL       time.Duration
	RequestTimeout time.Duration

	IssueLimitPrefix string
	IssueDailyLimit  int

	AuthorityCodeURL    string
	AuthorityCodeAPIKey string
}

// Production reports whether cookies should be marked Secure.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// SetDefaults registers every key with its default. Keys match the
// environment variable names, lower-cased.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("go_env", "development")
	v.SetDefault("domain", "localhost")
	v.SetDefault("allowed_origins", "")

	v.SetDefault("store_driver", DriverMongo)
	v.SetDefault("mongodb_uri", "")
	v.SetDefault("mongodb_database", "civicconnect")
	v.SetDefault("database_url", "")

	v.SetDefault("redis_address", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", 72*time.Hour)
	v.SetDefault("request_timeout", 10*time.Second)

	v.SetDefault("redis_queue_for_issue_limit", "issue_limit")
	v.SetDefault("issue_daily_limit", 0)

	v.SetDefault("authority_code_url", "")
	v.SetDefault("authority_code_api_key", "")
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:                v.GetInt("port"),
		Env:                 v.GetString("go_env"),
		Domain:              v.GetString("domain"),
		AllowedOrigins:      splitList(v.GetString("allowed_origins")),
		StoreDriver:         strings.ToLower(strings.TrimSpace(v.GetString("store_driver"))),
		MongoURI:            v.GetString("mongodb_uri"),
		MongoDatabase:       v.GetString("mongodb_database"),
		PostgresDSN:         v.GetString("database_url"),
		RedisAddress:        v.GetString("redis_address"),
		RedisPassword:       v.GetString("redis_password"),
		RedisDB:             v.GetInt("redis_db"),
		JWTSecret:           v.GetString("jwt_secret"),
		TokenTTL:            v.GetDuration("token_ttl"),
		RequestTimeout:      v.GetDuration("request_timeout"),
		IssueLimitPrefix:    v.GetString("redis_queue_for_issue_limit"),
		IssueDailyLimit:     v.GetInt("issue_daily_limit"),
		AuthorityCodeURL:    v.GetString("authority_code_url"),
		AuthorityCodeAPIKey: v.GetString("authority_code_api_key"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET environment variable is not set"))
	}
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("please define the MONGODB_URI environment variable"))
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("please define the DATABASE_URL environment variable"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q (want %s or %s)", c.StoreDriver, DriverMongo, DriverPostgres))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
