package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	CORS   CORSConfig
	Log    LogConfig
	Issue  IssueConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Seoul"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	PoolSize int    `envconfig:"REDIS_POOL_SIZE" default:"50"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Seoul"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"32400"` // 9*60*60
}

// IssueConfig tunes the admission/fulfillment pipeline.
type IssueConfig struct {
	LocalCacheSize int           `envconfig:"ISSUE_LOCAL_CACHE_SIZE" default:"1000"`
	LocalCacheTTL  time.Duration `envconfig:"ISSUE_LOCAL_CACHE_TTL" default:"10s"`
	SharedCacheTTL time.Duration `envconfig:"ISSUE_SHARED_CACHE_TTL" default:"30m"`

	WorkerEnabled      bool          `envconfig:"ISSUE_WORKER_ENABLED" default:"true"`
	WorkerPollInterval time.Duration `envconfig:"ISSUE_WORKER_POLL_INTERVAL" default:"1s"`

	// attempts on a queue head failing for an unclassified reason before it is dropped
	WorkerMaxAttempts     int           `envconfig:"ISSUE_WORKER_MAX_ATTEMPTS" default:"5"`
	WorkerRetryBackoffMax time.Duration `envconfig:"ISSUE_WORKER_RETRY_BACKOFF_MAX" default:"30s"`

	// The lease must outlive TxWorstCase; the coupon row lock stays the real guard.
	LockWait  time.Duration `envconfig:"ISSUE_LOCK_WAIT" default:"3s"`
	LockLease time.Duration `envconfig:"ISSUE_LOCK_LEASE" default:"10s"`

	TxMaxRetries  int           `envconfig:"ISSUE_TX_MAX_RETRIES" default:"3"`
	TxLockTimeout time.Duration `envconfig:"ISSUE_TX_LOCK_TIMEOUT" default:"2s"`
	TxBackoffBase time.Duration `envconfig:"ISSUE_TX_BACKOFF_BASE" default:"50ms"`

	// 0 disables the admission rate limiter
	AdmissionRPS   float64 `envconfig:"ISSUE_ADMISSION_RPS" default:"0"`
	AdmissionBurst int     `envconfig:"ISSUE_ADMISSION_BURST" default:"100"`
}

// TxWorstCase bounds one issuance transaction: every attempt waits out lock_timeout,
// and the retries sleep base, 2*base, 4*base... plus up to 20% jitter.
func (c IssueConfig) TxWorstCase() time.Duration {
	retries := min(max(c.TxMaxRetries, 0), 20)
	backoff := time.Duration((1<<retries)-1) * c.TxBackoffBase * 6 / 5
	return time.Duration(retries+1)*c.TxLockTimeout + backoff
}

func (c IssueConfig) Validate() error {
	if c.WorkerPollInterval <= 0 {
		return fmt.Errorf("ISSUE_WORKER_POLL_INTERVAL must be positive, got %s", c.WorkerPollInterval)
	}
	if c.TxLockTimeout > 0 && c.LockLease < c.TxWorstCase() {
		return fmt.Errorf("ISSUE_LOCK_LEASE %s is shorter than the worst-case issuance transaction %s",
			c.LockLease, c.TxWorstCase())
	}
	return nil
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Issue.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid issue config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Asia/Seoul",
			MaxConns: 20,
		},
		Redis: RedisConfig{
			Addr:     "localhost:16379",
			PoolSize: 20,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Seoul",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 32400,
		},
		Issue: IssueConfig{
			LocalCacheSize:        1000,
			LocalCacheTTL:         10 * time.Second,
			SharedCacheTTL:        30 * time.Minute,
			WorkerEnabled:         false, // e2e tests drain explicitly
			WorkerPollInterval:    100 * time.Millisecond,
			WorkerMaxAttempts:     5,
			WorkerRetryBackoffMax: 30 * time.Second,
			LockWait:              3 * time.Second,
			LockLease:             10 * time.Second,
			TxMaxRetries:          3,
			TxLockTimeout:         2 * time.Second,
			TxBackoffBase:         50 * time.Millisecond,
			AdmissionBurst:        100,
		},
	}
}
