package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	// Server
	Host        string `json:"host" validate:"required"`
	Port        int    `json:"port" validate:"min=1,max=65535"`
	Environment string `json:"environment" validate:"oneof=development staging production"`
	APIPrefix   string `json:"api_prefix" validate:"startswith=/"`
	LogLevel    string `json:"log_level" validate:"oneof=trace debug info warn error"`
	Transport   string `json:"transport" validate:"oneof=stdio sse http"`

	// CORS
	CORSOrigins []string `json:"cors_origins"`

	// Auth
	APIKeyHeader string   `json:"api_key_header" validate:"required"`
	APIKeys      []string `json:"api_keys"`
	EnableAuth   bool     `json:"enable_auth"`

	// Rate Limiting
	RateLimitPerMinute int `json:"rate_limit_per_minute" validate:"min=1"`

	// BigQuery
	GCPProjectID                 string `json:"gcp_project_id"`
	GoogleApplicationCredentials string `json:"google_application_credentials"`
	BigQueryLocation             string `json:"bigquery_location"`
	// BigQueryEndpoint points the client at an emulator; authentication is
	// disabled when set.
	BigQueryEndpoint string `json:"bigquery_endpoint" validate:"omitempty,url"`

	// Tools
	MaxBytesBilled    int64         `json:"max_bytes_billed" validate:"min=0"`
	MaxResultsCeiling int           `json:"max_results_ceiling" validate:"min=1"`
	ToolTimeout       time.Duration `json:"tool_timeout" validate:"min=0"`

	// Security
	ReadOnly           bool     `json:"read_only"`
	EnableDataMasking  bool     `json:"enable_data_masking"`
	SensitiveColumns   []string `json:"sensitive_columns"`
	EnableAuditLogging bool     `json:"enable_audit_logging"`
	// AuditDSN, when set, persists audit entries to PostgreSQL.
	AuditDSN string `json:"audit_dsn"`
}

// UnmarshalJSON accepts tool_timeout as a Go duration string ("90s") or
// as a number of seconds.
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	aux := struct {
		*plain
		ToolTimeout json.RawMessage `json:"tool_timeout"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.ToolTimeout) == 0 {
		return nil
	}
	d, err := parseTimeout(strings.Trim(string(aux.ToolTimeout), `"`))
	if err != nil {
		return fmt.Errorf("tool_timeout: %w", err)
	}
	c.ToolTimeout = d
	return nil
}

func Load() (*Config, error) {
	cfg := &Config{
		Host:               DefaultHost,
		Port:               DefaultPort,
		Environment:        DefaultEnvironment,
		APIPrefix:          DefaultAPIPrefix,
		LogLevel:           DefaultLogLevel,
		Transport:          DefaultTransport,
		CORSOrigins:        DefaultCORSOrigins,
		APIKeyHeader:       "X-API-Key",
		EnableAuth:         true,
		RateLimitPerMinute: DefaultRateLimitPerMinute,
		BigQueryLocation:   DefaultBigQueryLocation,
		MaxBytesBilled:     DefaultMaxBytesBilled,
		MaxResultsCeiling:  DefaultMaxResultsCeiling,
		ToolTimeout:        DefaultToolTimeout,
		SensitiveColumns:   DefaultSensitiveColumns,
		EnableAuditLogging: true,
	}

	// Load from JSON config file if specified
	if path := getEnv("BQMCP_CONFIG", ""); path != "" {
		if err := loadJSON(path, cfg); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	// Environment overrides
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints declared in struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func loadJSON(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) error {
	if v := getEnv("BQMCP_HOST", ""); v != "" {
		cfg.Host = v
	}
	if v := getEnv("BQMCP_PORT", ""); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BQMCP_PORT: %w", err)
		}
		cfg.Port = p
	}
	if v := getEnv("BQMCP_ENV", ""); v != "" {
		cfg.Environment = v
	}
	if v := getEnv("BQMCP_LOG_LEVEL", ""); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := getEnv("BQMCP_TRANSPORT", ""); v != "" {
		cfg.Transport = strings.ToLower(v)
	}
	if v := getEnv("BQMCP_API_KEYS", ""); v != "" {
		cfg.APIKeys = splitList(v)
	}
	if v := getEnv("GCP_PROJECT_ID", ""); v != "" {
		cfg.GCPProjectID = v
	}
	if v := getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""); v != "" {
		cfg.GoogleApplicationCredentials = v
	}
	if v := getEnv("BIGQUERY_LOCATION", ""); v != "" {
		cfg.BigQueryLocation = v
	}
	if v := getEnv("BIGQUERY_EMULATOR_HOST", ""); v != "" {
		if !strings.Contains(v, "://") {
			v = "http://" + v
		}
		cfg.BigQueryEndpoint = v
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		r, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_PER_MINUTE: %w", err)
		}
		cfg.RateLimitPerMinute = r
	}
	if v := getEnv("ENABLE_AUTH", ""); v != "" {
		cfg.EnableAuth = parseBool(v)
	}
	if v := getEnv("MAX_BYTES_BILLED", ""); v != "" {
		b, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_BYTES_BILLED: %w", err)
		}
		cfg.MaxBytesBilled = b
	}
	if v := getEnv("MAX_RESULTS_CEILING", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_RESULTS_CEILING: %w", err)
		}
		cfg.MaxResultsCeiling = n
	}
	if v := getEnv("TOOL_TIMEOUT", ""); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("TOOL_TIMEOUT: %w", err)
		}
		cfg.ToolTimeout = d
	}
	if v := getEnv("READ_ONLY", ""); v != "" {
		cfg.ReadOnly = parseBool(v)
	}
	if v := getEnv("ENABLE_DATA_MASKING", ""); v != "" {
		cfg.EnableDataMasking = parseBool(v)
	}
	if v := getEnv("SENSITIVE_COLUMNS", ""); v != "" {
		cfg.SensitiveColumns = splitList(v)
	}
	if v := getEnv("ENABLE_AUDIT_LOGGING", ""); v != "" {
		cfg.EnableAuditLogging = parseBool(v)
	}
	if v := getEnv("AUDIT_DSN", ""); v != "" {
		cfg.AuditDSN = v
	}
	return nil
}

// parseTimeout accepts "90s"-style durations or a bare number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func parseBool(v string) bool {
	return v == "true" || v == "1"
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
