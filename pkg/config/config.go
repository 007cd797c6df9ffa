package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Storage      StorageConfig
	Events       EventsConfig
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
	Env          string   `envconfig:"MEDINA_APP_ENV" required:"true"`
	Port         string   `envconfig:"MEDINA_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"MEDINA_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"MEDINA_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"MEDINA_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MEDINA_DB_DSN"`
	Driver string `envconfig:"MEDINA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MEDINA_DB_HOST"`
	LegacyPort     int    `envconfig:"MEDINA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MEDINA_DB_USER"`
	LegacyPassword string `envconfig:"MEDINA_DB_PASSWORD"`
	LegacyName     string `envconfig:"MEDINA_DB_NAME"`
	LegacySSLMode  string `envconfig:"MEDINA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MEDINA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEDINA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEDINA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEDINA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MEDINA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MEDINA_REDIS_ADDR"`
	Password     string        `envconfig:"MEDINA_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEDINA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEDINA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEDINA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEDINA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEDINA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEDINA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MEDINA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MEDINA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MEDINA_JWT_EXPIRATION_MINUTES" required:"true"`
	SessionTTLMinutes int    `envconfig:"MEDINA_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the server-side session lifetime configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MEDINA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MEDINA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MEDINA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MEDINA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MEDINA_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MEDINA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MEDINA_AUTO_MIGRATE" default:"false"`
}

type StorageConfig struct {
	BaseURL         string        `envconfig:"MEDINA_STORAGE_BASE_URL" required:"true"`
	ServiceKey      string        `envconfig:"MEDINA_STORAGE_SERVICE_KEY"`
	ProductBucket   string        `envconfig:"MEDINA_STORAGE_PRODUCT_BUCKET" default:"product-images"`
	RequestTimeout  time.Duration `envconfig:"MEDINA_STORAGE_REQUEST_TIMEOUT" default:"30s"`
	MaxUploadMB     int           `envconfig:"MEDINA_STORAGE_MAX_UPLOAD_MB" default:"10"`
	PlaceholderPath string        `envconfig:"MEDINA_STORAGE_PLACEHOLDER_PATH" default:"/assets/placeholder-product.jpg"`
}

type EventsConfig struct {
	OrdersChannel     string `envconfig:"MEDINA_EVENTS_ORDERS_CHANNEL" default:"medina:events:orders"`
	CartChannelPrefix string `envconfig:"MEDINA_EVENTS_CART_CHANNEL_PREFIX" default:"medina:events:cart"`
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
