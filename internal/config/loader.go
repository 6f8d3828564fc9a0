package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rpattn/fleetreg/internal/db"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. FLEET_DATABASE_HOST.
const EnvPrefix = "FLEET"

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig
	Database db.Config
	Logging  LoggingConfig
	Upload   UploadConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string
	Format string
}

// UploadConfig bounds spreadsheet uploads.
type UploadConfig struct {
	MaxBytes      int64
	RatePerMinute int
	Burst         int
}

func setDefaults(v *viper.Viper) {
	dbDefaults := db.DefaultConfig()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.host", dbDefaults.Host)
	v.SetDefault("database.port", dbDefaults.Port)
	v.SetDefault("database.user", dbDefaults.User)
	v.SetDefault("database.password", dbDefaults.Password)
	v.SetDefault("database.dbname", dbDefaults.DBName)
	v.SetDefault("database.sslmode", dbDefaults.SSLMode)
	v.SetDefault("database.max_conns", dbDefaults.MaxConns)
	v.SetDefault("database.min_conns", dbDefaults.MinConns)
	v.SetDefault("database.max_conn_lifetime", dbDefaults.MaxConnLifetime.String())
	v.SetDefault("database.max_conn_idle_time", dbDefaults.MaxConnIdleTime.String())

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("upload.max_bytes", 10<<20)
	v.SetDefault("upload.rate_per_minute", 30)
	v.SetDefault("upload.burst", 5)
}

func newViper(configPath string) *viper.Viper {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load(envFile(configPath))

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv() // allow environment overrides
	setDefaults(v)
	return v
}

func envFile(configPath string) string {
	if configPath == "" {
		return ".env"
	}
	return strings.TrimRight(configPath, string(os.PathSeparator)) + string(os.PathSeparator) + ".env"
}

func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Info("no config.yaml found, using defaults and env vars")
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	slog.Info("loaded config file", "path", v.ConfigFileUsed())
	return nil
}

// Load reads config.yaml from configPath, then .env and FLEET_* overrides.
func Load(configPath string) (Config, error) {
	v := newViper(configPath)
	if err := readConfigFile(v); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetInt("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			CORSOrigins:     splitList(v.GetStringSlice("server.cors_origins")),
		},
		Database: databaseConfig(v),
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Upload: UploadConfig{
			MaxBytes:      v.GetInt64("upload.max_bytes"),
			RatePerMinute: v.GetInt("upload.rate_per_minute"),
			Burst:         v.GetInt("upload.burst"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDBConfig loads only the database section, for tooling that never
// starts the HTTP server.
func LoadDBConfig(configPath string) (db.Config, error) {
	v := newViper(configPath)
	if err := readConfigFile(v); err != nil {
		return db.Config{}, err
	}
	cfg := databaseConfig(v)
	if err := validateDatabase(cfg); err != nil {
		return db.Config{}, err
	}
	return cfg, nil
}

func databaseConfig(v *viper.Viper) db.Config {
	return db.Config{
		Host:            v.GetString("database.host"),
		Port:            v.GetInt("database.port"),
		User:            v.GetString("database.user"),
		Password:        v.GetString("database.password"),
		DBName:          v.GetString("database.dbname"),
		SSLMode:         v.GetString("database.sslmode"),
		MaxConns:        v.GetInt32("database.max_conns"),
		MinConns:        v.GetInt32("database.min_conns"),
		MaxConnLifetime: v.GetDuration("database.max_conn_lifetime"),
		MaxConnIdleTime: v.GetDuration("database.max_conn_idle_time"),
	}
}

// splitList accepts both YAML lists and comma-separated env values.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be json or text", c.Logging.Format))
	}
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, errors.New("upload.max_bytes must be positive"))
	}
	if c.Upload.RatePerMinute < 0 || c.Upload.Burst < 0 {
		errs = append(errs, errors.New("upload rate limits must not be negative"))
	}
	return errors.Join(errs...)
}

func validateDatabase(cfg db.Config) error {
	var errs []error
	if strings.TrimSpace(cfg.Host) == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("database.port %d out of range", cfg.Port))
	}
	if strings.TrimSpace(cfg.DBName) == "" {
		errs = append(errs, errors.New("database.dbname is required"))
	}
	if cfg.MaxConns < 0 || cfg.MinConns < 0 || (cfg.MaxConns > 0 && cfg.MinConns > cfg.MaxConns) {
		errs = append(errs, fmt.Errorf("database pool sizes invalid (min=%d max=%d)", cfg.MinConns, cfg.MaxConns))
	}
	return errors.Join(errs...)
}
