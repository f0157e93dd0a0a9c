package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// 設定キー（環境変数名と同じ）
const (
	KeyAppEnv          = "APP_ENV"
	KeyHTTPAddr        = "HTTP_ADDR"
	KeyStoreDriver     = "STORE_DRIVER"
	KeyDatabaseURL     = "DATABASE_URL"
	KeyStoreTimeout    = "STORE_TIMEOUT"
	KeyCORSOrigins     = "CORS_ORIGINS"
	KeyLogLevel        = "LOG_LEVEL"
	KeyLogFile         = "LOG_FILE"
	KeyShutdownTimeout = "SHUTDOWN_TIMEOUT"
	KeyDefaultProject  = "DEFAULT_PROJECT"
)

const (
	envProduction = "production"

	driverMemory   = "memory"
	driverSQLite   = "sqlite"
	driverPostgres = "postgres"

	defaultSQLiteDSN = "file:tracker.db"
)

// Config はプロセス全体の設定。
type Config struct {
	AppEnv          string
	HTTPAddr        string
	StoreDriver     string
	DatabaseURL     string
	StoreTimeout    time.Duration
	CORSOrigins     []string
	LogLevel        string
	LogFile         string
	ShutdownTimeout time.Duration
	DefaultProject  string
}

// IsProduction は APP_ENV=production のとき true。
func (c *Config) IsProduction() bool {
	return c.AppEnv == envProduction
}

// New は既定値と環境変数の自動参照を設定した viper を返す。
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyAppEnv, "development")
	v.SetDefault(KeyHTTPAddr, ":8080")
	v.SetDefault(KeyStoreDriver, driverMemory)
	v.SetDefault(KeyDatabaseURL, "")
	v.SetDefault(KeyStoreTimeout, "5s")
	v.SetDefault(KeyCORSOrigins, "http://localhost:3000")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyShutdownTimeout, "10s")
	v.SetDefault(KeyDefaultProject, "")
	v.AutomaticEnv()
	return v
}

// LoadDotEnv は .env を読み込む。ファイルがなければ何もしない。
// 既に設定済みの環境変数は上書きしない。
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// BindFlags はフラグを設定キーに結び付ける。フラグが明示された場合だけ環境変数より優先される。
// names のキーは設定キー、値はフラグ名。
func BindFlags(v *viper.Viper, fs *pflag.FlagSet, names map[string]string) error {
	for key, flagName := range names {
		f := fs.Lookup(flagName)
		if f == nil {
			return fmt.Errorf("flag --%s is not defined", flagName)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag --%s: %w", flagName, err)
		}
	}
	return nil
}

// Load は v から Config を組み立てて検証する。
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppEnv:         strings.TrimSpace(v.GetString(KeyAppEnv)),
		HTTPAddr:       strings.TrimSpace(v.GetString(KeyHTTPAddr)),
		StoreDriver:    strings.ToLower(strings.TrimSpace(v.GetString(KeyStoreDriver))),
		DatabaseURL:    strings.TrimSpace(v.GetString(KeyDatabaseURL)),
		CORSOrigins:    splitList(v.GetString(KeyCORSOrigins)),
		LogLevel:       strings.TrimSpace(v.GetString(KeyLogLevel)),
		LogFile:        strings.TrimSpace(v.GetString(KeyLogFile)),
		DefaultProject: strings.TrimSpace(v.GetString(KeyDefaultProject)),
	}

	var err error
	if cfg.StoreTimeout, err = parseDuration(v, KeyStoreTimeout); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = parseDuration(v, KeyShutdownTimeout); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("%s must not be empty", KeyHTTPAddr)
	}

	dsn, err := resolveStore(cfg.AppEnv, cfg.StoreDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	cfg.DatabaseURL = dsn

	for _, o := range cfg.CORSOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return nil, fmt.Errorf("%s: origin %q must start with http:// or https://", KeyCORSOrigins, o)
		}
	}

	return cfg, nil
}

// resolveStore はドライバと環境に応じて接続先を決める。
// production ではメモリストアを使えない。postgres は DATABASE_URL が必須。
func resolveStore(appEnv, driver, dsn string) (string, error) {
	switch driver {
	case driverMemory:
		if appEnv == envProduction {
			return "", fmt.Errorf("%s=%s is not allowed in production", KeyStoreDriver, driverMemory)
		}
		return "", nil
	case driverSQLite:
		if dsn == "" {
			return defaultSQLiteDSN, nil
		}
		return dsn, nil
	case driverPostgres:
		if dsn == "" {
			return "", fmt.Errorf("%s must be set when %s=%s", KeyDatabaseURL, KeyStoreDriver, driverPostgres)
		}
		return dsn, nil
	default:
		return "", fmt.Errorf("%s must be one of memory, sqlite, postgres (got %q)", KeyStoreDriver, driver)
	}
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

// splitList はカンマ区切りを分割し、空要素を除く。
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
