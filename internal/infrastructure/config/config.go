package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers
const (
	DriverJSON     = "json"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Printing PrintingConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Env     string
	Version string
	Port    int
	// FallbackPorts are tried in order when Port is taken
	FallbackPorts []int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	ShutdownTimeout  time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	// IdempotencyTTL is how long an Idempotency-Key blocks a repeated print
	IdempotencyTTL   time.Duration
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
}

// StorageConfig selects where records, history and settings live
type StorageConfig struct {
	Driver        string // json, sqlite, postgres
	DataDir       string
	RecordsFile   string
	HistoryFile   string
	LabelSizeFile string
	SQLitePath    string
}

// DatabaseConfig holds postgres connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
}

// RedisConfig holds Redis connection settings for the shared printer cache
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// PrintingConfig holds renderer and spooler settings
type PrintingConfig struct {
	LabelBackend    string // auto, cups, windows-raster, windows-vector
	DocumentBackend string
	LabelFormat     string // empty follows the backend, or png, pdf

	LpPath         string
	LpstatPath     string
	PowerShellPath string
	WmicPath       string

	ReaderPaths     []string
	ReaderTimeout   time.Duration
	EnablePrintTo   bool
	SwapSettle      time.Duration
	SwapVerifyRetry time.Duration
	SwapWait        time.Duration

	FontDirs         []string
	ScratchDir       string
	ScratchRetention time.Duration
	PrinterCacheTTL  time.Duration
	SheetTitle       string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with LABEL_ prefix (e.g., LABEL_APP_PORT), including .env
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	return LoadFrom(".", "./config", "/etc/labelprint")
}

// LoadFrom is Load with explicit config.toml search paths
func LoadFrom(paths ...string) (*Config, error) {
	// .env never overrides variables that are already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("LABEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Booleans whose default is true cannot be detected as unset later
	v.SetDefault("printing.enable_printto", true)

	fallbackPorts, err := parsePorts(v.GetStringSlice("app.fallback_ports"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:          v.GetString("app.name"),
			Env:           v.GetString("app.env"),
			Version:       v.GetString("app.version"),
			Port:          v.GetInt("app.port"),
			FallbackPorts: fallbackPorts,
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:  v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			IdempotencyTTL:   v.GetDuration("http.idempotency_ttl"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
		},
		Storage: StorageConfig{
			Driver:        strings.ToLower(v.GetString("storage.driver")),
			DataDir:       v.GetString("storage.data_dir"),
			RecordsFile:   v.GetString("storage.records_file"),
			HistoryFile:   v.GetString("storage.history_file"),
			LabelSizeFile: v.GetString("storage.label_size_file"),
			SQLitePath:    v.GetString("storage.sqlite_path"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Printing: PrintingConfig{
			LabelBackend:     strings.ToLower(v.GetString("printing.label_backend")),
			DocumentBackend:  strings.ToLower(v.GetString("printing.document_backend")),
			LabelFormat:      strings.ToLower(v.GetString("printing.label_format")),
			LpPath:           v.GetString("printing.lp_path"),
			LpstatPath:       v.GetString("printing.lpstat_path"),
			PowerShellPath:   v.GetString("printing.powershell_path"),
			WmicPath:         v.GetString("printing.wmic_path"),
			ReaderPaths:      v.GetStringSlice("printing.reader_paths"),
			ReaderTimeout:    v.GetDuration("printing.reader_timeout"),
			EnablePrintTo:    v.GetBool("printing.enable_printto"),
			SwapSettle:       v.GetDuration("printing.swap_settle"),
			SwapVerifyRetry:  v.GetDuration("printing.swap_verify_retry"),
			SwapWait:         v.GetDuration("printing.swap_wait"),
			FontDirs:         v.GetStringSlice("printing.font_dirs"),
			ScratchDir:       v.GetString("printing.scratch_dir"),
			ScratchRetention: v.GetDuration("printing.scratch_retention"),
			PrinterCacheTTL:  v.GetDuration("printing.printer_cache_ttl"),
			SheetTitle:       v.GetString("printing.sheet_title"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parsePorts accepts a TOML list or a comma separated environment value
func parsePorts(raw []string) ([]int, error) {
	var ports []int
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			p, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("app.fallback_ports: invalid port %q", part)
			}
			ports = append(ports, p)
		}
	}
	return ports, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "label-print-server"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "1.0.0"
	}
	if cfg.App.Port == 0 {
		cfg.App.Port = 8080
	}
	if len(cfg.App.FallbackPorts) == 0 {
		cfg.App.FallbackPorts = []int{8081, 8082, 8083, 8084, 5000, 5001, 5002, 5003, 5004}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	// printing waits on the spooler, so writes get more room than reads
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 120 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20 // 2MB
	}
	if cfg.HTTP.IdempotencyTTL == 0 {
		cfg.HTTP.IdempotencyTTL = 10 * time.Minute
	}
	// the shop-floor clients are served from other LAN hosts
	if len(cfg.HTTP.CORSAllowOrigins) == 0 {
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverJSON
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "."
	}
	if cfg.Storage.RecordsFile == "" {
		cfg.Storage.RecordsFile = "production_records.json"
	}
	if cfg.Storage.HistoryFile == "" {
		cfg.Storage.HistoryFile = "print_history.json"
	}
	if cfg.Storage.LabelSizeFile == "" {
		cfg.Storage.LabelSizeFile = "label_size.txt"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "labelprint.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "labelprint"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 5
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Printing.LabelBackend == "" {
		cfg.Printing.LabelBackend = "auto"
	}
	if cfg.Printing.DocumentBackend == "" {
		cfg.Printing.DocumentBackend = "auto"
	}
	if cfg.Printing.LpPath == "" {
		cfg.Printing.LpPath = "lp"
	}
	if cfg.Printing.LpstatPath == "" {
		cfg.Printing.LpstatPath = "lpstat"
	}
	if cfg.Printing.PowerShellPath == "" {
		cfg.Printing.PowerShellPath = "powershell"
	}
	if cfg.Printing.WmicPath == "" {
		cfg.Printing.WmicPath = "wmic"
	}
	if cfg.Printing.ReaderTimeout == 0 {
		cfg.Printing.ReaderTimeout = 10 * time.Second
	}
	if cfg.Printing.SwapSettle == 0 {
		cfg.Printing.SwapSettle = 2 * time.Second
	}
	if cfg.Printing.SwapVerifyRetry == 0 {
		cfg.Printing.SwapVerifyRetry = time.Second
	}
	if cfg.Printing.SwapWait == 0 {
		cfg.Printing.SwapWait = 5 * time.Second
	}
	if cfg.Printing.ScratchRetention == 0 {
		cfg.Printing.ScratchRetention = 24 * time.Hour
	}
	if cfg.Printing.PrinterCacheTTL == 0 {
		cfg.Printing.PrinterCacheTTL = 30 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if err := validatePort("app.port", c.App.Port); err != nil {
		return err
	}
	for _, p := range c.App.FallbackPorts {
		if err := validatePort("app.fallback_ports", p); err != nil {
			return err
		}
	}

	switch c.Storage.Driver {
	case DriverJSON, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("storage.driver must be one of json, sqlite, postgres, got %q", c.Storage.Driver)
	}

	if c.Storage.Driver == DriverPostgres {
		if c.Database.MaxOpenConns <= 0 {
			return fmt.Errorf("database.max_open_conns must be positive")
		}
		if c.Database.MaxIdleConns < 0 {
			return fmt.Errorf("database.max_idle_conns cannot be negative")
		}
		if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
			return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
				c.Database.MaxIdleConns, c.Database.MaxOpenConns)
		}
	}

	for key, name := range map[string]string{
		"printing.label_backend":    c.Printing.LabelBackend,
		"printing.document_backend": c.Printing.DocumentBackend,
	} {
		switch name {
		case "auto", "cups", "windows-raster", "windows-vector":
		default:
			return fmt.Errorf("%s must be one of auto, cups, windows-raster, windows-vector, got %q", key, name)
		}
	}

	switch c.Printing.LabelFormat {
	case "", "png", "pdf":
	default:
		return fmt.Errorf("printing.label_format must be png or pdf, got %q", c.Printing.LabelFormat)
	}

	if c.Printing.PrinterCacheTTL < 0 {
		return fmt.Errorf("printing.printer_cache_ttl cannot be negative")
	}

	return nil
}

func validatePort(key string, port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", key, port)
	}
	return nil
}

// Ports returns the primary port followed by the fallback ports, without
// duplicates
func (a *AppConfig) Ports() []int {
	seen := map[int]bool{}
	ports := make([]int, 0, len(a.FallbackPorts)+1)
	for _, p := range append([]int{a.Port}, a.FallbackPorts...) {
		if !seen[p] {
			seen[p] = true
			ports = append(ports, p)
		}
	}
	return ports
}

// RecordsPath returns the production records file location
func (s *StorageConfig) RecordsPath() string {
	return s.resolve(s.RecordsFile)
}

// HistoryPath returns the print history file location
func (s *StorageConfig) HistoryPath() string {
	return s.resolve(s.HistoryFile)
}

// LabelSizePath returns the label settings file location
func (s *StorageConfig) LabelSizePath() string {
	return s.resolve(s.LabelSizeFile)
}

// SQLiteFilePath returns the sqlite database location
func (s *StorageConfig) SQLiteFilePath() string {
	return s.resolve(s.SQLitePath)
}

func (s *StorageConfig) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.DataDir, name)
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
