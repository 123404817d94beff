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
	Checkout     CheckoutConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"SHOPLANE_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPLANE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPLANE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPLANE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPLANE_DB_DSN"`
	Driver string `envconfig:"SHOPLANE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SHOPLANE_DB_HOST"`
	Port     int    `envconfig:"SHOPLANE_DB_PORT" default:"5432"`
	User     string `envconfig:"SHOPLANE_DB_USER"`
	Password string `envconfig:"SHOPLANE_DB_PASSWORD"`
	Name     string `envconfig:"SHOPLANE_DB_NAME"`
	SSLMode  string `envconfig:"SHOPLANE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPLANE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPLANE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPLANE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPLANE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPLANE_REDIS_URL"`
	Address      string        `envconfig:"SHOPLANE_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPLANE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPLANE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPLANE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPLANE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPLANE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPLANE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPLANE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SHOPLANE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SHOPLANE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SHOPLANE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type CheckoutConfig struct {
	// StrictCoupons makes checkout abort when the supplied coupon is
	// invalid. With the flag off checkout proceeds at full price and the
	// response carries the coupon message, mirroring preview.
	StrictCoupons bool `envconfig:"SHOPLANE_CHECKOUT_STRICT_COUPONS" default:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHOPLANE_AUTO_MIGRATE" default:"false"`
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
