package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	appErr "github.com/hirehub/server/pkg/errors"
)

// MinSecretLen is the minimum signing key length in bytes (256 bits).
const MinSecretLen = 32

// Config holds application configuration loaded from environment variables or config files.
type Config struct {
	AppEnv          string        `mapstructure:"APP_ENV" validate:"required,oneof=development staging production test"`
	HTTPAddr        string        `mapstructure:"HTTP_ADDR" validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"required"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error dpanic panic fatal"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"required,oneof=json console"`

	DatabaseURL string `mapstructure:"DATABASE_URL" validate:"required,url|uri"`

	// RedisAddr is optional for the api process; without it failed chat appends are not retried.
	RedisAddr     string `mapstructure:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	AsynqConcurrency int `mapstructure:"ASYNQ_CONCURRENCY" validate:"gte=1,lte=1000"`

	GoMaxProcs int `mapstructure:"GOMAXPROCS" validate:"gte=0,lte=4096"`

	// JWTSecret signs bearer tokens. The token lifetime is fixed at 24h and not configurable.
	JWTSecret string `mapstructure:"JWT_SECRET"`

	FrontBaseURL       string        `mapstructure:"FRONT_BASE_URL" validate:"required,url"`
	CORSAllowedOrigins string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	OAuthTimeout       time.Duration `mapstructure:"OAUTH_TIMEOUT" validate:"required"`

	KakaoClientID         string `mapstructure:"KAKAO_CLIENT_ID"`
	KakaoClientSecret     string `mapstructure:"KAKAO_CLIENT_SECRET"`
	KakaoRedirectURI      string `mapstructure:"KAKAO_REDIRECT_URI"`
	KakaoFrontRedirectURL string `mapstructure:"KAKAO_FRONT_REDIRECT_URL"`

	NaverClientID         string `mapstructure:"NAVER_CLIENT_ID"`
	NaverClientSecret     string `mapstructure:"NAVER_CLIENT_SECRET"`
	NaverRedirectURI      string `mapstructure:"NAVER_REDIRECT_URI"`
	NaverFrontRedirectURL string `mapstructure:"NAVER_FRONT_REDIRECT_URL"`

	GoogleClientID         string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret     string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI      string `mapstructure:"GOOGLE_REDIRECT_URI"`
	GoogleFrontRedirectURL string `mapstructure:"GOOGLE_FRONT_REDIRECT_URL"`

	S3Bucket  string `mapstructure:"S3_BUCKET"`
	AWSRegion string `mapstructure:"AWS_REGION"`

	SeedAdmin bool `mapstructure:"SEED_ADMIN"`
}

// ProviderConfig is the client registration of one external identity provider.
type ProviderConfig struct {
	Name             string
	ClientID         string
	ClientSecret     string
	RedirectURI      string
	FrontRedirectURL string
}

// Enabled reports whether the provider has been configured at all.
func (p ProviderConfig) Enabled() bool { return p.ClientID != "" }

var (
	cfg      *Config
	validate = validator.New(validator.WithRequiredStructEnabled())
)

var keys = []string{
	"APP_ENV",
	"HTTP_ADDR",
	"SHUTDOWN_TIMEOUT",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"DATABASE_URL",
	"REDIS_ADDR",
	"REDIS_PASSWORD",
	"ASYNQ_CONCURRENCY",
	"GOMAXPROCS",
	"JWT_SECRET",
	"FRONT_BASE_URL",
	"CORS_ALLOWED_ORIGINS",
	"OAUTH_TIMEOUT",
	"KAKAO_CLIENT_ID",
	"KAKAO_CLIENT_SECRET",
	"KAKAO_REDIRECT_URI",
	"KAKAO_FRONT_REDIRECT_URL",
	"NAVER_CLIENT_ID",
	"NAVER_CLIENT_SECRET",
	"NAVER_REDIRECT_URI",
	"NAVER_FRONT_REDIRECT_URL",
	"GOOGLE_CLIENT_ID",
	"GOOGLE_CLIENT_SECRET",
	"GOOGLE_REDIRECT_URI",
	"GOOGLE_FRONT_REDIRECT_URL",
	"S3_BUCKET",
	"AWS_REGION",
	"SEED_ADMIN",
}

// Load initializes configuration using Viper. It loads from .env if present,
// applies defaults, binds env vars, and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", "0.0.0.0:8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ASYNQ_CONCURRENCY", 10)
	v.SetDefault("GOMAXPROCS", 0)
	v.SetDefault("FRONT_BASE_URL", "http://localhost:3000")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000,https://noeyos.store,http://noeyos.store")
	v.SetDefault("OAUTH_TIMEOUT", "5s")
	v.SetDefault("SEED_ADMIN", false)

	_ = v.ReadInConfig()

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	for key, dst := range map[string]*time.Duration{
		"SHUTDOWN_TIMEOUT": &c.ShutdownTimeout,
		"OAUTH_TIMEOUT":    &c.OAuthTimeout,
	} {
		if s := v.GetString(key); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
	}

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if len(c.JWTSecret) < MinSecretLen {
		return nil, appErr.New(appErr.CodeConfig, fmt.Sprintf("JWT_SECRET must be at least %d bytes", MinSecretLen))
	}
	for _, p := range c.Providers() {
		if err := p.validate(); err != nil {
			return nil, err
		}
	}

	if c.GoMaxProcs > 0 {
		runtime.GOMAXPROCS(c.GoMaxProcs)
	}

	cfg = &c
	return cfg, nil
}

// MustLoad loads configuration or exits the process on failure.
func MustLoad() *Config {
	c, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return c
}

// Get returns the loaded configuration. Panics if not loaded.
func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call config.Load or config.MustLoad first")
	}
	return cfg
}

// IsDevelopment reports whether development-only conveniences may run.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development" || c.AppEnv == "test"
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Providers returns the registrations of kakao, naver and google in that order.
func (c *Config) Providers() []ProviderConfig {
	return []ProviderConfig{
		{Name: "kakao", ClientID: c.KakaoClientID, ClientSecret: c.KakaoClientSecret, RedirectURI: c.KakaoRedirectURI, FrontRedirectURL: c.KakaoFrontRedirectURL},
		{Name: "naver", ClientID: c.NaverClientID, ClientSecret: c.NaverClientSecret, RedirectURI: c.NaverRedirectURI, FrontRedirectURL: c.NaverFrontRedirectURL},
		{Name: "google", ClientID: c.GoogleClientID, ClientSecret: c.GoogleClientSecret, RedirectURI: c.GoogleRedirectURI, FrontRedirectURL: c.GoogleFrontRedirectURL},
	}
}

func (p ProviderConfig) validate() error {
	if !p.Enabled() {
		return nil
	}
	if p.ClientSecret == "" || p.RedirectURI == "" {
		return appErr.New(appErr.CodeConfig, fmt.Sprintf("%s provider needs client secret and redirect uri", p.Name))
	}
	return nil
}
