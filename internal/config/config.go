// Package config provides application configuration loaded from environment variables.
// Use the package-level Get() function to obtain the singleton Config instance.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sub-config structs
// ──────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        // e.g. "8080"
	Env          string        // "development" | "production"
	ReadTimeout  time.Duration // default 10s
	WriteTimeout time.Duration // default 10s
	AdminToken   string        // shared secret checked by the admin middleware
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	DSN             string        // full postgres DSN
	MaxOpenConns    int           // default 25
	MaxIdleConns    int           // default 10
	ConnMaxLifetime time.Duration // default 5m
}

// BettingConfig holds the pari-mutuel pool parameters.
type BettingConfig struct {
	HouseEdge     float64       // fraction of the pool retained, default 0.20
	BettingCutoff time.Duration // betting closes this long before start, default 1h
	MinBet        float64       // minimum stake, default 1
}

// PaymentConfig holds payment gateway settings. The gateway implementation is
// chosen once at startup from Method and injected into the services.
type PaymentConfig struct {
	Method             string // "card" (Stripe) | "pix" (Mercado Pago)
	Currency           string // ISO currency, default "brl"
	StripeSecretKey    string
	MercadoPagoToken   string
	MockActive         bool          // short-circuit all gateway calls (dev/test)
	RequestTimeout     time.Duration // default 30s
	StripeBaseURL      string        // default https://api.stripe.com
	MercadoPagoBaseURL string        // default https://api.mercadopago.com
}

// EmailConfig holds SMTP settings for best-effort notifications.
type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// ──────────────────────────────────────────────────────────────────────────────
// Top-level Config
// ──────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object for the entire application.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Betting BettingConfig
	Payment PaymentConfig
	Email   EmailConfig
}

// IsProd returns true when running in the production environment.
func (c *Config) IsProd() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// Returns the first validation error encountered.
func (c *Config) Validate() error {
	var errs []error

	if c.IsProd() && c.DB.DSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN must be set in production"))
	}
	if c.IsProd() && c.Server.AdminToken == "" {
		errs = append(errs, errors.New("ADMIN_TOKEN must be set in production"))
	}

	// House edge sanity check
	if c.Betting.HouseEdge <= 0 || c.Betting.HouseEdge >= 1 {
		errs = append(errs, fmt.Errorf(
			"BETTING_HOUSE_EDGE must be between 0 and 1 (exclusive), got %.4f",
			c.Betting.HouseEdge,
		))
	}
	if c.Betting.BettingCutoff <= 0 {
		errs = append(errs, fmt.Errorf(
			"BETTING_CUTOFF must be positive, got %s", c.Betting.BettingCutoff,
		))
	}

	// Real gateways need credentials unless the mock is on
	if !c.Payment.MockActive {
		switch c.Payment.Method {
		case "card":
			if c.Payment.StripeSecretKey == "" {
				errs = append(errs, errors.New("STRIPE_SECRET_KEY must be set when PAYMENT_METHOD=card"))
			}
		case "pix":
			if c.Payment.MercadoPagoToken == "" {
				errs = append(errs, errors.New("MERCADOPAGO_ACCESS_TOKEN must be set when PAYMENT_METHOD=pix"))
			}
		default:
			errs = append(errs, fmt.Errorf("PAYMENT_METHOD must be card or pix, got %q", c.Payment.Method))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Singleton
// ──────────────────────────────────────────────────────────────────────────────

var (
	instance *Config
	once     sync.Once
	loadErr  error
)

// Get returns the singleton Config, loading it once from environment variables.
// Panics if loading fails — call this early in main() to catch misconfigurations
// at startup.
func Get() *Config {
	once.Do(func() {
		instance, loadErr = load()
	})
	if loadErr != nil {
		panic(fmt.Sprintf("config: failed to load: %v", loadErr))
	}
	return instance
}

// MustLoad loads and validates configuration. Intended for use in main().
// Panics on any error so misconfiguration is caught immediately at boot.
func MustLoad() *Config {
	cfg := Get()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: validation failed: %v", err))
	}
	return cfg
}

// ──────────────────────────────────────────────────────────────────────────────
// Internal loader
// ──────────────────────────────────────────────────────────────────────────────

func load() (*Config, error) {
	cfg := &Config{}

	// ── Server ────────────────────────────────────────────────────────────────
	cfg.Server = ServerConfig{
		Port:         getEnv("SERVER_PORT", "8080"),
		Env:          getEnv("ENVIRONMENT", "development"),
		ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		AdminToken:   getEnv("ADMIN_TOKEN", ""),
	}

	// ── Database ──────────────────────────────────────────────────────────────
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		// Build DSN from individual components for convenience in dev
		dsn = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_NAME", "courtbet"),
			getEnv("DB_SSLMODE", "disable"),
		)
	}

	maxOpen, err := getInt("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err)
	}
	maxIdle, err := getInt("DB_MAX_IDLE_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_IDLE_CONNS: %w", err)
	}

	cfg.DB = DBConfig{
		DSN:             dsn,
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}

	// ── Betting ───────────────────────────────────────────────────────────────
	houseEdge, err := getFloat("BETTING_HOUSE_EDGE", 0.20)
	if err != nil {
		return nil, fmt.Errorf("BETTING_HOUSE_EDGE: %w", err)
	}
	minBet, err := getFloat("BETTING_MIN_BET", 1)
	if err != nil {
		return nil, fmt.Errorf("BETTING_MIN_BET: %w", err)
	}

	cfg.Betting = BettingConfig{
		HouseEdge:     houseEdge,
		BettingCutoff: getDuration("BETTING_CUTOFF", time.Hour),
		MinBet:        minBet,
	}

	// ── Payment ───────────────────────────────────────────────────────────────
	cfg.Payment = PaymentConfig{
		Method:             getEnv("PAYMENT_METHOD", "card"),
		Currency:           getEnv("PAYMENT_CURRENCY", "brl"),
		StripeSecretKey:    getEnv("STRIPE_SECRET_KEY", ""),
		MercadoPagoToken:   getEnv("MERCADOPAGO_ACCESS_TOKEN", ""),
		MockActive:         getEnv("PAYMENT_MOCK_ACTIVE", "false") == "true",
		RequestTimeout:     getDuration("PAYMENT_REQUEST_TIMEOUT", 30*time.Second),
		StripeBaseURL:      getEnv("STRIPE_BASE_URL", "https://api.stripe.com"),
		MercadoPagoBaseURL: getEnv("MERCADOPAGO_BASE_URL", "https://api.mercadopago.com"),
	}

	// ── Email ─────────────────────────────────────────────────────────────────
	cfg.Email = EmailConfig{
		Enabled:  getEnv("EMAIL_ENABLED", "false") == "true",
		Host:     getEnv("EMAIL_HOST", "localhost"),
		Port:     getEnv("EMAIL_PORT", "587"),
		Username: getEnv("EMAIL_USERNAME", ""),
		Password: getEnv("EMAIL_PASSWORD", ""),
		From:     getEnv("EMAIL_FROM", "noreply@courtbet.local"),
	}

	return cfg, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helper functions
// ──────────────────────────────────────────────────────────────────────────────

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", v)
	}
	return n, nil
}

func getFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float %q", v)
	}
	return f, nil
}

// getDuration parses an env var as a Go duration string (e.g. "15m", "2s").
// Falls back to defaultVal if the variable is unset or empty.
func getDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// Fall back to default rather than crash on a parse error
		return defaultVal
	}
	return d
}
