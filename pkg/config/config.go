package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "FLEETDESK"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv    = "FLEETDESK_APP_ENV"
	EnvPort      = "FLEETDESK_APP_PORT"
	EnvDBDSN     = "FLEETDESK_DB_DSN"
	EnvDBHost    = "FLEETDESK_DB_HOST"
	EnvDBUser    = "FLEETDESK_DB_USER"
	EnvDBName    = "FLEETDESK_DB_NAME"
	EnvRedisURL  = "FLEETDESK_REDIS_URL"
	EnvJWTSecret = "FLEETDESK_JWT_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FLEETDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"FLEETDESK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FLEETDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FLEETDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FLEETDESK_DB_DSN"`
	Driver string `envconfig:"FLEETDESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FLEETDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"FLEETDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FLEETDESK_DB_USER"`
	LegacyPassword string `envconfig:"FLEETDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"FLEETDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"FLEETDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns     int           `envconfig:"FLEETDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns     int           `envconfig:"FLEETDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime  time.Duration `envconfig:"FLEETDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime  time.Duration `envconfig:"FLEETDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	StatementTimeout time.Duration `envconfig:"FLEETDESK_DB_STATEMENT_TIMEOUT" default:"5s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FLEETDESK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FLEETDESK_REDIS_ADDR"`
	Password     string        `envconfig:"FLEETDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"FLEETDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FLEETDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FLEETDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FLEETDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FLEETDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FLEETDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"FLEETDESK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"FLEETDESK_JWT_ISSUER" default:"fleetdesk"`
	ExpirationMinutes      int    `envconfig:"FLEETDESK_JWT_EXPIRATION_MINUTES" default:"1440"`
	RefreshTokenTTLMinutes int    `envconfig:"FLEETDESK_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// AccessTokenTTL returns the access token lifetime configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	MinLength        int `envconfig:"FLEETDESK_PASSWORD_MIN_LENGTH" default:"8"`
	ArgonMemoryKB    int `envconfig:"FLEETDESK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FLEETDESK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FLEETDESK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FLEETDESK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FLEETDESK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow       time.Duration `envconfig:"FLEETDESK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUserLimit    int           `envconfig:"FLEETDESK_AUTH_RATE_LIMIT_LOGIN_USER_LIMIT" default:"5"`
	LoginIPLimit      int           `envconfig:"FLEETDESK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow    time.Duration `envconfig:"FLEETDESK_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterUserLimit int           `envconfig:"FLEETDESK_AUTH_RATE_LIMIT_REGISTER_USER_LIMIT" default:"3"`
	RegisterIPLimit   int           `envconfig:"FLEETDESK_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"FLEETDESK_CORS_ALLOWED_ORIGINS" default:"*"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FLEETDESK_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
