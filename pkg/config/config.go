package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	Storage       StorageConfig
	Uploads       UploadsConfig
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
	Env          string `envconfig:"MATRIMONY_APP_ENV" required:"true"`
	Port         string `envconfig:"MATRIMONY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MATRIMONY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MATRIMONY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MATRIMONY_DB_DSN"`
	Driver string `envconfig:"MATRIMONY_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"MATRIMONY_DB_HOST"`
	Port     int    `envconfig:"MATRIMONY_DB_PORT" default:"5432"`
	User     string `envconfig:"MATRIMONY_DB_USER"`
	Password string `envconfig:"MATRIMONY_DB_PASSWORD"`
	Name     string `envconfig:"MATRIMONY_DB_NAME"`
	SSLMode  string `envconfig:"MATRIMONY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MATRIMONY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MATRIMONY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MATRIMONY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MATRIMONY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MATRIMONY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MATRIMONY_REDIS_ADDR"`
	Password     string        `envconfig:"MATRIMONY_REDIS_PASSWORD"`
	DB           int           `envconfig:"MATRIMONY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MATRIMONY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MATRIMONY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MATRIMONY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MATRIMONY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MATRIMONY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"MATRIMONY_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"MATRIMONY_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"MATRIMONY_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"MATRIMONY_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MATRIMONY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MATRIMONY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MATRIMONY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MATRIMONY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MATRIMONY_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"MATRIMONY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"MATRIMONY_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"MATRIMONY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow     time.Duration `envconfig:"MATRIMONY_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit int           `envconfig:"MATRIMONY_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit    int           `envconfig:"MATRIMONY_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MATRIMONY_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"MATRIMONY_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"MATRIMONY_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"MATRIMONY_GOOGLE_APPLICATION_CREDENTIALS"`
}

type StorageConfig struct {
	ProfileBucket string `envconfig:"MATRIMONY_STORAGE_PROFILE_BUCKET" default:"userphotos"`
	PostBucket    string `envconfig:"MATRIMONY_STORAGE_POST_BUCKET" default:"post-images"`
}

type UploadsConfig struct {
	MaxUploadMB int `envconfig:"MATRIMONY_MAX_UPLOAD_MB" default:"10"`
}

// MaxUploadBytes returns the multipart upload cap in bytes.
func (u UploadsConfig) MaxUploadBytes() int64 {
	mb := u.MaxUploadMB
	if mb <= 0 {
		mb = 10
	}
	return int64(mb) * 1024 * 1024
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
