package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	CartModeSession = "session"
	CartModeServer  = "server"

	NotifyModeSync  = "sync"
	NotifyModeAsync = "async"

	MailTransportLog  = "log"
	MailTransportSMTP = "smtp"
	MailTransportHTTP = "http"
)

const devJWTSecret = "dev_secret_change_me"

// Config is the whole application configuration, read from the environment.
type Config struct {
	Port     string
	GoEnv    string // dev/prod
	LogLevel string
	FEURL    string // CORS origin
	// cookies are Secure unless explicitly disabled
	CookieSecure bool

	DatabaseURL      string
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	JWTSecret        string
	TokenTTL         time.Duration
	AllowAdminSignup bool
	AdminUsername    string
	AdminEmail       string
	AdminPassword    string
	AuthRateLimit    float64 // requests per second per client
	AuthRateBurst    int

	SeedSampleProducts bool

	CartMode       string
	CartSessionTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string
	KafkaTopic   string

	NotifyMode        string
	NotifyWorkers     int
	NotifyQueueSize   int
	NotifyMaxAttempts int
	NotifyBackoff     time.Duration
	NotifyMaxBackoff  time.Duration
	NotifySendTimeout time.Duration

	MailTransport string
	MailFrom      string
	SMTPHost      string
	SMTPPort      int
	EmailUser     string
	EmailPassword string
	MailAPIURL    string
	MailAPIKey    string

	StrictOrderTransitions bool
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

// Load reads the environment. Missing keys get defaults; malformed values and
// inconsistent combinations are errors.
func Load() (Config, error) {
	var err error
	cfg := Config{
		Port:     getenv("PORT", "5000"),
		GoEnv:    getenv("GO_ENV", "dev"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		FEURL:    getenv("FE_URL", "http://localhost:3000"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "grocery"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		CartMode: getenv("CART_MODE", CartModeSession),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "order-events"),

		NotifyMode: getenv("NOTIFY_MODE", NotifyModeAsync),

		MailTransport: getenv("MAIL_TRANSPORT", MailTransportLog),
		SMTPHost:      getenv("SMTP_HOST", "smtp.gmail.com"),
		EmailUser:     os.Getenv("EMAIL_USER"),
		EmailPassword: os.Getenv("EMAIL_PASSWORD"),
		MailAPIURL:    os.Getenv("MAIL_API_URL"),
		MailAPIKey:    os.Getenv("MAIL_API_KEY"),
	}
	cfg.MailFrom = getenv("MAIL_FROM", cfg.EmailUser)

	ints := []struct {
		key string
		def int
		dst *int
	}{
		{"POSTGRES_PORT", 5432, &cfg.PostgresPort},
		{"AUTH_RATE_BURST", 10, &cfg.AuthRateBurst},
		{"REDIS_DB", 0, &cfg.RedisDB},
		{"NOTIFY_WORKERS", 2, &cfg.NotifyWorkers},
		{"NOTIFY_QUEUE_SIZE", 100, &cfg.NotifyQueueSize},
		{"NOTIFY_MAX_ATTEMPTS", 5, &cfg.NotifyMaxAttempts},
		{"SMTP_PORT", 587, &cfg.SMTPPort},
	}
	for _, it := range ints {
		if *it.dst, err = atoiOr(it.key, it.def); err != nil {
			return Config{}, err
		}
	}

	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"TOKEN_TTL", 24 * time.Hour, &cfg.TokenTTL},
		{"CART_SESSION_TTL", 72 * time.Hour, &cfg.CartSessionTTL},
		{"NOTIFY_BACKOFF", 2 * time.Second, &cfg.NotifyBackoff},
		{"NOTIFY_MAX_BACKOFF", time.Minute, &cfg.NotifyMaxBackoff},
		{"NOTIFY_SEND_TIMEOUT", 10 * time.Second, &cfg.NotifySendTimeout},
	}
	for _, it := range durations {
		if *it.dst, err = durationOr(it.key, it.def); err != nil {
			return Config{}, err
		}
	}

	bools := []struct {
		key string
		def bool
		dst *bool
	}{
		{"COOKIE_SECURE", true, &cfg.CookieSecure},
		{"ALLOW_ADMIN_SIGNUP", false, &cfg.AllowAdminSignup},
		{"SEED_SAMPLE_PRODUCTS", true, &cfg.SeedSampleProducts},
		{"ORDER_STRICT_TRANSITIONS", false, &cfg.StrictOrderTransitions},
	}
	for _, it := range bools {
		if *it.dst, err = boolOr(it.key, it.def); err != nil {
			return Config{}, err
		}
	}

	if cfg.AuthRateLimit, err = floatOr("AUTH_RATE_LIMIT", 5); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		if c.IsProd() {
			return fmt.Errorf("JWT_SECRET is required")
		}
		c.JWTSecret = devJWTSecret
	}

	switch c.CartMode {
	case CartModeSession, CartModeServer:
	default:
		return fmt.Errorf("CART_MODE must be %q or %q", CartModeSession, CartModeServer)
	}

	switch c.NotifyMode {
	case NotifyModeSync, NotifyModeAsync:
	default:
		return fmt.Errorf("NOTIFY_MODE must be %q or %q", NotifyModeSync, NotifyModeAsync)
	}

	switch c.MailTransport {
	case MailTransportLog:
	case MailTransportSMTP:
		if c.EmailUser == "" || c.EmailPassword == "" {
			return fmt.Errorf("EMAIL_USER and EMAIL_PASSWORD are required for MAIL_TRANSPORT=smtp")
		}
	case MailTransportHTTP:
		if c.MailAPIURL == "" {
			return fmt.Errorf("MAIL_API_URL is required for MAIL_TRANSPORT=http")
		}
	default:
		return fmt.Errorf("MAIL_TRANSPORT must be one of log, smtp, http")
	}

	if c.NotifyWorkers < 1 {
		return fmt.Errorf("NOTIFY_WORKERS must be >= 1")
	}
	if c.NotifyMaxAttempts < 1 {
		return fmt.Errorf("NOTIFY_MAX_ATTEMPTS must be >= 1")
	}
	if c.AuthRateLimit <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT must be > 0")
	}
	return nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func floatOr(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return f, nil
}

func durationOr(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func boolOr(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be true/false: %w", key, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
