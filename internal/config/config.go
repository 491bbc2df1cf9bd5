package config

import (
	"errors"
	"flag"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Режимы развёртывания: какие хранилища участвуют в цепочке отката.
const (
	ModeFull   = "full"   // mongo -> snapshot -> mock
	ModeStatic = "static" // только snapshot
	ModeMemory = "memory" // только mock
)

// DefaultAuthSecret — секрет подписи cookie, если AUTH_SECRET не задан. Годится только для разработки.
const DefaultAuthSecret = "dev-secret-key"

// ErrInsecureAuthSecret — защита админки включена со встроенным секретом вне режима разработки.
var ErrInsecureAuthSecret = errors.New("REQUIRE_ADMIN is set but AUTH_SECRET is the built-in default")

type Config struct {
	// Storage
	MongoURI       string        `env:"MONGODB_URI"`
	MongoDatabase  string        `env:"MONGODB_DATABASE"`
	DeployMode     string        `env:"DEPLOY_MODE"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT"`

	SnapshotWrappers string `env:"SNAPSHOT_WRAPPERS"`
	SnapshotAdmins   string `env:"SNAPSHOT_ADMINS"`
	SnapshotDSN      string `env:"SNAPSHOT_DSN"`
	// AllowFallback разрешает командам CLI менять данные в резервном хранилище.
	AllowFallback bool `env:"ALLOW_FALLBACK"`

	// Admin
	AdminUsername   string `env:"ADMIN_USERNAME"`
	AdminPassword   string `env:"ADMIN_PASSWORD"`
	AuthSecret      string `env:"AUTH_SECRET"`
	RequireAdmin    bool   `env:"REQUIRE_ADMIN"`
	LoginRatePerMin int    `env:"LOGIN_RATE_PER_MIN"`

	// Catalog
	LateNightTZ string `env:"LATE_NIGHT_TZ"`

	// Server
	AppEnv  string `env:"APP_ENV"`
	BaseURL string `env:"BASE_URL"`
	LogFile string `env:"LOG_FILE"`
}

// IsDevelopment сообщает, включён ли режим разработки (общий дескриптор хранилища).
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// NewConfig собирает конфигурацию из .env, переменных окружения и флагов.
func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// флаги переопределяют значения из env
	flag.StringVar(&cfg.MongoURI, "d", cfg.MongoURI, "строка подключения к MongoDB")
	flag.StringVar(&cfg.MongoDatabase, "db-name", cfg.MongoDatabase, "имя базы данных")
	flag.StringVar(&cfg.DeployMode, "mode", cfg.DeployMode, "deploy mode: full | static | memory")
	flag.StringVar(&cfg.AppEnv, "env", cfg.AppEnv, "application environment (development | production)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.BoolVar(&cfg.RequireAdmin, "require-admin", cfg.RequireAdmin, "require admin cookie for catalog mutations")
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "listen address host:port")
	flag.BoolVar(&cfg.AllowFallback, "allow-fallback", cfg.AllowFallback, "allow CLI writes into a fallback backend")

	flag.Parse()

	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = "manacustomchoco"
	}
	switch strings.ToLower(cfg.DeployMode) {
	case ModeStatic, ModeMemory:
		cfg.DeployMode = strings.ToLower(cfg.DeployMode)
	default:
		cfg.DeployMode = ModeFull
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "production"
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.AdminUsername == "" {
		cfg.AdminUsername = "admin"
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = "admin123"
	}
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = DefaultAuthSecret
	}
	if cfg.LoginRatePerMin <= 0 {
		cfg.LoginRatePerMin = 10
	}
	if cfg.LateNightTZ == "" {
		cfg.LateNightTZ = "Asia/Kolkata"
	}
	// BaseURL: только "address:port", иначе значение по умолчанию
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]*:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}
}

// Validate проверяет сочетания настроек, с которыми сервер запускать нельзя.
func (c *Config) Validate() error {
	if c.RequireAdmin && c.AuthSecret == DefaultAuthSecret && !c.IsDevelopment() {
		return ErrInsecureAuthSecret
	}
	return nil
}

// PersistentSnapshot сообщает, переживает ли snapshot-хранилище перезапуск процесса.
func (c *Config) PersistentSnapshot() bool {
	dsn := strings.TrimSpace(c.SnapshotDSN)
	return dsn != "" && dsn != ":memory:" && !strings.Contains(dsn, "mode=memory")
}

var credentialsRe = regexp.MustCompile(`//([^:/@]+):([^@]+)@`)

// MaskedMongoURI — строка подключения со скрытым паролем, для логов и диагностики.
func (c *Config) MaskedMongoURI() string {
	return credentialsRe.ReplaceAllString(c.MongoURI, "//$1:****@")
}
