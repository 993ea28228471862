// Package config loads service settings from the environment. A .env file is
// honoured when present; real environment variables win over it.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"

	"fithub/progression"
)

type Config struct {
	// --- Server ---
	Port        string `envconfig:"PORT" default:"3000"`
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	BodyLimitMB int    `envconfig:"BODY_LIMIT_MB" default:"4"`

	// --- Auth ---
	JWTSecret         string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL            time.Duration `envconfig:"JWT_TTL" default:"72h"`
	AdminUsername     string        `envconfig:"ADMIN_USERNAME" default:"admin"`
	AdminPasswordHash string        `envconfig:"ADMIN_PASSWORD_HASH"`

	// --- Database ---
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	DBHost         string `envconfig:"DB_HOST" default:"localhost"`
	DBPort         int    `envconfig:"DB_PORT" default:"5432"`
	DBUser         string `envconfig:"DB_USER" default:"postgres"`
	DBPassword     string `envconfig:"DB_PASSWORD"`
	DBName         string `envconfig:"DB_NAME" default:"fithub"`
	DBSSLMode      string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	DBMaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"100"`
	DBLogLevel     string `envconfig:"DB_LOG_LEVEL" default:"warn"`

	// --- EXP engine ---
	ExpDailyLimit          int64   `envconfig:"EXP_DAILY_LIMIT" default:"50000"`
	ExpPastDaysThreshold   int     `envconfig:"EXP_PAST_DAYS_THRESHOLD" default:"2"`
	ExpPastMultiplier      float64 `envconfig:"EXP_PAST_MULTIPLIER" default:"0.25"`
	ExpPastLimitMultiplier float64 `envconfig:"EXP_PAST_LIMIT_MULTIPLIER" default:"0.5"`
	ExpMaxPerSet           int64   `envconfig:"EXP_MAX_PER_SET" default:"2000"`
	ExpCoefficient         float64 `envconfig:"EXP_COEFFICIENT" default:"1.0"`

	// --- Business day ---
	Timezone     string `envconfig:"APP_TIMEZONE" default:"Asia/Tokyo"`
	DayResetHour int    `envconfig:"DAY_RESET_HOUR" default:"4"`

	// --- Streaks ---
	DefaultGraceDays    int    `envconfig:"STREAK_DEFAULT_GRACE_DAYS" default:"1"`
	StreakSweepEnabled  bool   `envconfig:"STREAK_SWEEP_ENABLED" default:"true"`
	StreakSweepSchedule string `envconfig:"STREAK_SWEEP_SCHEDULE" default:"5 4 * * *"`

	// --- Event history ---
	EventRetention     time.Duration `envconfig:"EVENT_RETENTION" default:"2160h"`
	EventPruneSchedule string        `envconfig:"EVENT_PRUNE_SCHEDULE" default:"30 4 * * *"`

	// --- Rate limiting ---
	RateLimitEnabled    bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RateLimitMax        int           `envconfig:"RATE_LIMIT_MAX" default:"100"`
	RateLimitWindow     time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"15m"`
	AuthRateLimitMax    int           `envconfig:"AUTH_RATE_LIMIT_MAX" default:"5"`
	AuthRateLimitWindow time.Duration `envconfig:"AUTH_RATE_LIMIT_WINDOW" default:"5m"`

	// --- Logging ---
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads .env (if any) and the environment, then validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug(".env file not found, using system environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}
	if c.ExpDailyLimit < 0 || c.ExpMaxPerSet < 0 {
		return fmt.Errorf("EXP limits must not be negative")
	}
	if c.ExpPastMultiplier <= 0 || c.ExpPastMultiplier > 1 {
		return fmt.Errorf("EXP_PAST_MULTIPLIER must be in (0, 1]")
	}
	if c.ExpPastLimitMultiplier <= 0 || c.ExpPastLimitMultiplier > 1 {
		return fmt.Errorf("EXP_PAST_LIMIT_MULTIPLIER must be in (0, 1]")
	}
	if c.ExpPastDaysThreshold < 1 {
		return fmt.Errorf("EXP_PAST_DAYS_THRESHOLD must be at least 1")
	}
	if c.DayResetHour < 0 || c.DayResetHour > 23 {
		return fmt.Errorf("DAY_RESET_HOUR must be between 0 and 23")
	}
	if err := progression.ValidateGraceDays(c.DefaultGraceDays); err != nil {
		return fmt.Errorf("STREAK_DEFAULT_GRACE_DAYS: %w", err)
	}
	if c.EventRetention < 0 {
		return fmt.Errorf("EVENT_RETENTION must not be negative")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// DatabaseDSN prefers DATABASE_URL and falls back to the discrete DB_* settings.
func (c *Config) DatabaseDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// ExpConfig maps the EXP_* settings onto the accrual rules.
func (c *Config) ExpConfig() progression.ExpConfig {
	return progression.ExpConfig{
		DailyLimit:          c.ExpDailyLimit,
		PastDaysThreshold:   c.ExpPastDaysThreshold,
		PastExpMultiplier:   c.ExpPastMultiplier,
		PastLimitMultiplier: c.ExpPastLimitMultiplier,
		MaxExpPerSet:        c.ExpMaxPerSet,
		ExpCoefficient:      c.ExpCoefficient,
	}
}

// Location resolves APP_TIMEZONE. Validate has already proven it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.WithError(err).Warnf("could not load %s, using UTC+9", c.Timezone)
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}

// SetupLogging applies LOG_LEVEL and LOG_FORMAT to the global logger.
func (c *Config) SetupLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}
