package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	S3         S3Config
	Log        LogConfig
	Oracle     OracleConfig
	Email      EmailConfig
	Generation GenerationConfig
	CORS       CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings for raw export file storage.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OracleConfig holds classification oracle settings. Provider "noop" disables
// the network oracle; the pipeline then uses the deterministic rules only.
type OracleConfig struct {
	Provider      string  `mapstructure:"provider"`
	APIKey        string  `mapstructure:"api_key"`
	Model         string  `mapstructure:"model"`
	TimeoutSecs   int     `mapstructure:"timeout_secs"`
	MinConfidence float64 `mapstructure:"min_confidence"`
}

// EmailConfig holds notification email settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// GenerationConfig holds the statutory document generation knobs.
type GenerationConfig struct {
	// SellerStateCode is the 2-digit state code of the seller's registration,
	// used for the intra/inter-state split.
	SellerStateCode string `mapstructure:"seller_state_code"`
	// EcoGSTIN is the e-commerce operator's GSTIN reported in the platform
	// operator supplies table.
	EcoGSTIN string `mapstructure:"eco_gstin"`
	// SchemaVersion is the portal schema version stamped into the header.
	SchemaVersion string `mapstructure:"schema_version"`
	// ReconcileTolerance is the absolute currency difference tolerated when
	// cross-checking the rollup summary against the detail tables.
	ReconcileTolerance string `mapstructure:"reconcile_tolerance"`
	// CancelledEnumerationCap bounds explicit missing-serial enumeration.
	CancelledEnumerationCap int `mapstructure:"cancelled_enumeration_cap"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the GSTRONE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GSTRONE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "gstrone")
	v.SetDefault("db.password", "gstrone_secret")
	v.SetDefault("db.name", "gstrone_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "gstrone-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Oracle defaults
	v.SetDefault("oracle.provider", "noop")
	v.SetDefault("oracle.api_key", "")
	v.SetDefault("oracle.model", "gemini-2.0-flash")
	v.SetDefault("oracle.timeout_secs", 20)
	v.SetDefault("oracle.min_confidence", 0.75)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "ap-south-1")
	v.SetDefault("email.from_address", "noreply@gstrone.in")
	v.SetDefault("email.from_name", "GSTROne")

	// Generation defaults
	v.SetDefault("generation.seller_state_code", "27")
	v.SetDefault("generation.eco_gstin", "07AARCM9332R1CQ")
	v.SetDefault("generation.schema_version", "GST3.1.6")
	v.SetDefault("generation.reconcile_tolerance", "1.00")
	v.SetDefault("generation.cancelled_enumeration_cap", 100)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":          "GSTRONE_SERVER_PORT",
		"server.read_timeout":  "GSTRONE_SERVER_READ_TIMEOUT",
		"server.write_timeout": "GSTRONE_SERVER_WRITE_TIMEOUT",
		"server.environment":   "GSTRONE_SERVER_ENVIRONMENT",
		"db.host":              "GSTRONE_DB_HOST",
		"db.port":              "GSTRONE_DB_PORT",
		"db.user":              "GSTRONE_DB_USER",
		"db.password":          "GSTRONE_DB_PASSWORD",
		"db.name":              "GSTRONE_DB_NAME",
		"db.sslmode":           "GSTRONE_DB_SSLMODE",
		"db.max_open":          "GSTRONE_DB_MAX_OPEN",
		"db.max_idle":          "GSTRONE_DB_MAX_IDLE",
		"s3.region":            "GSTRONE_S3_REGION",
		"s3.bucket":            "GSTRONE_S3_BUCKET",
		"s3.endpoint":          "GSTRONE_S3_ENDPOINT",
		"s3.access_key":        "GSTRONE_S3_ACCESS_KEY",
		"s3.secret_key":        "GSTRONE_S3_SECRET_KEY",
		"s3.max_file_size_mb":  "GSTRONE_S3_MAX_FILE_SIZE_MB",
		"log.level":            "GSTRONE_LOG_LEVEL",
		"log.format":           "GSTRONE_LOG_FORMAT",
		"oracle.provider":       "GSTRONE_ORACLE_PROVIDER",
		"oracle.api_key":        "GSTRONE_ORACLE_API_KEY",
		"oracle.model":          "GSTRONE_ORACLE_MODEL",
		"oracle.timeout_secs":   "GSTRONE_ORACLE_TIMEOUT_SECS",
		"oracle.min_confidence": "GSTRONE_ORACLE_MIN_CONFIDENCE",
		"email.provider":        "GSTRONE_EMAIL_PROVIDER",
		"email.region":          "GSTRONE_EMAIL_REGION",
		"email.from_address":    "GSTRONE_EMAIL_FROM_ADDRESS",
		"email.from_name":       "GSTRONE_EMAIL_FROM_NAME",
		"generation.seller_state_code":         "GSTRONE_GENERATION_SELLER_STATE_CODE",
		"generation.eco_gstin":                 "GSTRONE_GENERATION_ECO_GSTIN",
		"generation.schema_version":            "GSTRONE_GENERATION_SCHEMA_VERSION",
		"generation.reconcile_tolerance":       "GSTRONE_GENERATION_RECONCILE_TOLERANCE",
		"generation.cancelled_enumeration_cap": "GSTRONE_GENERATION_CANCELLED_ENUMERATION_CAP",
		"cors.allowed_origins":                 "GSTRONE_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if GSTRONE_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("GSTRONE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Oracle = OracleConfig{
		Provider:      v.GetString("oracle.provider"),
		APIKey:        v.GetString("oracle.api_key"),
		Model:         v.GetString("oracle.model"),
		TimeoutSecs:   v.GetInt("oracle.timeout_secs"),
		MinConfidence: v.GetFloat64("oracle.min_confidence"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
	}
	cfg.Generation = GenerationConfig{
		SellerStateCode:         v.GetString("generation.seller_state_code"),
		EcoGSTIN:                v.GetString("generation.eco_gstin"),
		SchemaVersion:           v.GetString("generation.schema_version"),
		ReconcileTolerance:      v.GetString("generation.reconcile_tolerance"),
		CancelledEnumerationCap: v.GetInt("generation.cancelled_enumeration_cap"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	return cfg, nil
}
