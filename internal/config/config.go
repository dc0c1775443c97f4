package config

import (
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Log       LogConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Terminal  TerminalConfig
	Printer   PrinterConfig
	Store     StoreConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type LogConfig struct {
	Level string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
	// SeedFile is an optional catalog YAML imported at startup.
	SeedFile string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// TerminalConfig configures a POS terminal process.
type TerminalConfig struct {
	ID             string
	RemoteURL      string
	APIToken       string
	DBPath         string
	ProbeInterval  time.Duration
	ProbeTimeout   time.Duration
	RequestTimeout time.Duration
	StatusAddr     string
	DefaultTaxRate decimal.Decimal
}

type PrinterConfig struct {
	Type    string // usb, network or none
	USBPath string
	Address string
	Width   int
}

// StoreConfig is the shop identity printed on receipt headers.
type StoreConfig struct {
	Name    string
	Address string
	Phone   string
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "investify-pos")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "investify_pos")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Africa/Nairobi")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("TERMINAL_ID", "till-1")
	viper.SetDefault("TERMINAL_REMOTE_URL", "http://localhost:8080")
	viper.SetDefault("TERMINAL_DB_PATH", "./pos-terminal.db")
	viper.SetDefault("TERMINAL_PROBE_INTERVAL", "10s")
	viper.SetDefault("TERMINAL_PROBE_TIMEOUT", "3s")
	viper.SetDefault("TERMINAL_REQUEST_TIMEOUT", "15s")
	viper.SetDefault("TERMINAL_STATUS_ADDR", "127.0.0.1:9091")
	viper.SetDefault("TERMINAL_DEFAULT_TAX_RATE", "16")
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_USB_PATH", "/dev/usb/lp0")
	viper.SetDefault("PRINTER_WIDTH", 48)
	viper.SetDefault("STORE_NAME", "Investify Store")

	taxRate, err := decimal.NewFromString(viper.GetString("TERMINAL_DEFAULT_TAX_RATE"))
	if err != nil {
		log.Printf("Warning: invalid TERMINAL_DEFAULT_TAX_RATE %q, using 0: %v", viper.GetString("TERMINAL_DEFAULT_TAX_RATE"), err)
		taxRate = decimal.Zero
	}

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
			SeedFile: viper.GetString("CATALOG_SEED_FILE"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Terminal: TerminalConfig{
			ID:             viper.GetString("TERMINAL_ID"),
			RemoteURL:      viper.GetString("TERMINAL_REMOTE_URL"),
			APIToken:       viper.GetString("TERMINAL_API_TOKEN"),
			DBPath:         viper.GetString("TERMINAL_DB_PATH"),
			ProbeInterval:  viper.GetDuration("TERMINAL_PROBE_INTERVAL"),
			ProbeTimeout:   viper.GetDuration("TERMINAL_PROBE_TIMEOUT"),
			RequestTimeout: viper.GetDuration("TERMINAL_REQUEST_TIMEOUT"),
			StatusAddr:     viper.GetString("TERMINAL_STATUS_ADDR"),
			DefaultTaxRate: taxRate,
		},
		Printer: PrinterConfig{
			Type:    viper.GetString("PRINTER_TYPE"),
			USBPath: viper.GetString("PRINTER_USB_PATH"),
			Address: viper.GetString("PRINTER_ADDRESS"),
			Width:   viper.GetInt("PRINTER_WIDTH"),
		},
		Store: StoreConfig{
			Name:    viper.GetString("STORE_NAME"),
			Address: viper.GetString("STORE_ADDRESS"),
			Phone:   viper.GetString("STORE_PHONE"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
