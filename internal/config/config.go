package config // package config loads application configuration from environment variables

import (
	"fmt"
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/furniture-catalog/internal/utils"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Secrets are read once at startup and passed
// explicitly to the components that need them.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	APIPrefix string // route prefix, e.g. "/api/v1/"
	LogLevel  string // logrus level name

	StoreDriver string // mysql | mongo | memory
	DBUser      string // database username
	DBPass      string // database password (optional)
	DBHost      string // database host address
	DBPort      string // database port number
	DBName      string // database name
	MongoURI    string // mongodb connection string
	MongoDB     string // mongodb database name

	AccessSecret   string // secret used to sign access tokens
	RefreshSecret  string // secret used to sign refresh tokens
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	UploadDir string // directory holding uploaded images
	AMQPURL   string // broker URL for the principal repair queue; empty disables it

	ShutdownTimeout time.Duration
}

// Load reads the configuration and exits the process when required values
// are missing or invalid.
func Load() Config {
	cfg, err := Parse()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	return cfg
}

// Parse reads configuration values from environment variables.  Every
// missing or malformed variable is reported in the returned error.
func Parse() (Config, error) {
	var r envReader
	cfg := Config{
		Env:       getenv("APP_ENV", "dev"),
		Port:      getenv("APP_PORT", "5000"),
		APIPrefix: normalizePrefix(getenv("API_URL", "/api/v1/")),
		LogLevel:  getenv("LOG_LEVEL", "info"),

		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", DriverMySQL)),

		AccessSecret:   r.must("ACCESS_TOKEN_SECRET"),
		RefreshSecret:  r.must("REFRESH_TOKEN_SECRET"),
		AccessTTLMin:   r.intOr("ACCESS_TOKEN_TTL_MIN", 50),
		RefreshTTLDays: r.intOr("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:     r.intOr("BCRYPT_COST", utils.DefaultBcryptCost),

		UploadDir: getenv("UPLOAD_DIR", "uploads"),
		AMQPURL:   firstEnv("RABBITMQ_URL", "AMQP_URL"),

		ShutdownTimeout: parseDur(getenv("SHUTDOWN_TIMEOUT", "10s")),
	}

	switch cfg.StoreDriver {
	case DriverMySQL:
		cfg.DBUser = r.must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
		cfg.DBHost = r.must("DB_HOST")
		cfg.DBPort = getenv("DB_PORT", "3306")
		cfg.DBName = r.must("DB_NAME")
	case DriverMongo:
		cfg.MongoURI = r.must("MONGODB_URI")
		cfg.MongoDB = getenv("MONGODB_DB", "furniture-store")
	case DriverMemory:
	default:
		r.invalid = append(r.invalid, "STORE_DRIVER="+cfg.StoreDriver)
	}

	if err := r.err(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if c.AccessSecret == c.RefreshSecret {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if c.AccessTTLMin <= 0 || c.RefreshTTLDays <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	return nil
}

// Tokens returns the signing configuration for the token codec.
func (c Config) Tokens() utils.TokenConfig {
	return utils.TokenConfig{
		AccessSecret:  c.AccessSecret,
		RefreshSecret: c.RefreshSecret,
		AccessTTL:     time.Duration(c.AccessTTLMin) * time.Minute,
		RefreshTTL:    time.Duration(c.RefreshTTLDays) * 24 * time.Hour,
	}
}

// envReader accumulates missing and malformed variables so that a single
// startup error lists all of them.
type envReader struct {
	missing []string
	invalid []string
}

// must retrieves the value of a required environment variable.
func (r *envReader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		r.missing = append(r.missing, key)
	}
	return v
}

// intOr is like getenv but converts the value into an integer.
func (r *envReader) intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		r.invalid = append(r.invalid, fmt.Sprintf("%s=%q", key, s))
		return def
	}
	return n
}

func (r *envReader) err() error {
	var parts []string
	if len(r.missing) > 0 {
		parts = append(parts, "missing required env vars: "+strings.Join(r.missing, ", "))
	}
	if len(r.invalid) > 0 {
		parts = append(parts, "invalid values: "+strings.Join(r.invalid, ", "))
	}
	if len(parts) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(parts, "; "))
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func normalizePrefix(p string) string {
	p = "/" + strings.Trim(p, "/")
	if p == "/" {
		return p
	}
	return p + "/"
}
