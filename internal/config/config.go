// Package config handles application configuration loading from a YAML file and environment variables.
package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	contextutils "culturology/internal/utils"

	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the environment variable pointing at the YAML config file.
const ConfigFileEnv = "CULTUROLOGY_CONFIG_FILE"

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server" yaml:"server"`

	// Database configuration
	Database DatabaseConfig `json:"database" yaml:"database"`

	// AI provider used for quiz generation and chat
	AI AIConfig `json:"ai" yaml:"ai"`

	// Write endpoints require X-Api-Key to match one of these.
	AdminAPIKey     string `json:"admin_api_key" yaml:"admin_api_key"`
	AdminAPIKeyHash string `json:"admin_api_key_hash" yaml:"admin_api_key_hash"` // bcrypt

	// OpenTelemetry Configuration
	OpenTelemetry OpenTelemetryConfig `json:"open_telemetry" yaml:"open_telemetry"`

	// Internal fields
	IsTest bool `json:"is_test" yaml:"is_test"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port        string   `json:"port" yaml:"port"`
	Debug       bool     `json:"debug" yaml:"debug"`
	LogLevel    string   `json:"log_level" yaml:"log_level"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	// postgres://... selects lib/pq, sqlite:// or file: selects the embedded sqlite driver
	URL             string        `json:"url" yaml:"url"`
	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns"`       // Maximum number of open connections to the database
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns"`       // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"` // Maximum amount of time a connection may be reused
}

// AIConfig describes the OpenAI-compatible provider.
type AIConfig struct {
	Provider       string        `json:"provider" yaml:"provider"`
	BaseURL        string        `json:"base_url" yaml:"base_url"`
	APIKey         string        `json:"api_key" yaml:"api_key"`
	Model          string        `json:"model" yaml:"model"`
	MaxTokens      int           `json:"max_tokens" yaml:"max_tokens"`           // quiz completions
	ChatMaxTokens  int           `json:"chat_max_tokens" yaml:"chat_max_tokens"` // chat completions
	Temperature    float64       `json:"temperature" yaml:"temperature"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`

	BreakerFailureThreshold uint32        `json:"breaker_failure_threshold" yaml:"breaker_failure_threshold"`
	BreakerOpenTimeout      time.Duration `json:"breaker_open_timeout" yaml:"breaker_open_timeout"`

	// 0 seeds the fallback sampler from the clock
	FallbackSeed uint64 `json:"fallback_seed" yaml:"fallback_seed"`
}

// OpenTelemetryConfig holds all OpenTelemetry-related configuration
type OpenTelemetryConfig struct {
	Endpoint       string            `json:"endpoint" yaml:"endpoint"`               // Default: "http://localhost:4317"
	Protocol       string            `json:"protocol" yaml:"protocol"`               // "grpc" or "http", default: "grpc"
	Insecure       bool              `json:"insecure" yaml:"insecure"`               // Default: true (for localhost)
	Headers        map[string]string `json:"headers" yaml:"headers"`                 // For authenticated endpoints
	ServiceName    string            `json:"service_name" yaml:"service_name"`       // Default: "culturology"
	ServiceVersion string            `json:"service_version" yaml:"service_version"` // From version package
	EnableTracing  bool              `json:"enable_tracing" yaml:"enable_tracing"`
	EnableMetrics  bool              `json:"enable_metrics" yaml:"enable_metrics"`
	EnableLogging  bool              `json:"enable_logging" yaml:"enable_logging"`
	SamplingRate   float64           `json:"sampling_rate" yaml:"sampling_rate"` // Default: 1.0 (100%)
	UseAutoSDK     bool              `json:"use_auto_sdk" yaml:"use_auto_sdk"`
}

// NewConfig loads configuration from YAML file first, then overrides with environment variables
func NewConfig() (result0 *Config, err error) {
	config, err := loadConfigWithOverrides()
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config: %w", err)
	}

	config.overrideFromEnv()
	config.applyDefaults()

	return config, nil
}

// applyDefaults fills zero values with the documented defaults.
func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = DatabaseConnMaxLifetime
	}

	if c.AI.Provider == "" {
		c.AI.Provider = "openai"
	}
	if c.AI.MaxTokens <= 0 {
		c.AI.MaxTokens = DefaultQuizMaxTokens
	}
	if c.AI.ChatMaxTokens <= 0 {
		c.AI.ChatMaxTokens = DefaultChatMaxTokens
	}
	if c.AI.Temperature == 0 {
		c.AI.Temperature = DefaultAITemperature
	}
	if c.AI.RequestTimeout <= 0 {
		c.AI.RequestTimeout = AIRequestTimeout
	}
	if c.AI.BreakerFailureThreshold == 0 {
		c.AI.BreakerFailureThreshold = DefaultBreakerFailureThreshold
	}
	if c.AI.BreakerOpenTimeout <= 0 {
		c.AI.BreakerOpenTimeout = AIBreakerOpenTimeout
	}
	c.AI.BaseURL = strings.TrimRight(c.AI.BaseURL, "/")

	if c.OpenTelemetry.ServiceName == "" {
		c.OpenTelemetry.ServiceName = ServiceName
	}
	if c.OpenTelemetry.Protocol == "" {
		c.OpenTelemetry.Protocol = "grpc"
	}
	if c.OpenTelemetry.SamplingRate == 0 {
		c.OpenTelemetry.SamplingRate = 1.0
	}
}

// Validate reports configuration the service cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.AI.APIKey) == "" {
		missing = append(missing, "ai.api_key")
	}
	if strings.TrimSpace(c.AI.BaseURL) == "" {
		missing = append(missing, "ai.base_url")
	}
	if strings.TrimSpace(c.AI.Model) == "" {
		missing = append(missing, "ai.model")
	}
	if c.AdminAPIKey == "" && c.AdminAPIKeyHash == "" {
		missing = append(missing, "admin_api_key or admin_api_key_hash")
	}
	if strings.TrimSpace(c.Database.URL) == "" {
		missing = append(missing, "database.url")
	}

	if len(missing) > 0 {
		return contextutils.NewAppError(
			contextutils.ErrorCodeConfigurationMissing,
			contextutils.SeverityFatal,
			"Required configuration is missing",
			strings.Join(missing, ", "),
		)
	}
	return nil
}

// overrideFromEnv overrides config values with environment variables using reflection
func (c *Config) overrideFromEnv() {
	overrideStructFromEnv(c)
}

// overrideStructFromEnv recursively overrides struct fields with environment variables
func overrideStructFromEnv(v interface{}) {
	overrideStructFromEnvWithPrefix(v, "")
}

var durationType = reflect.TypeOf(time.Duration(0))

// overrideStructFromEnvWithPrefix recursively overrides struct fields with environment variables
func overrideStructFromEnvWithPrefix(v interface{}, prefix string) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		// Skip unexported fields
		if !field.CanSet() {
			continue
		}

		yamlTag := strings.SplitN(fieldType.Tag.Get("yaml"), ",", 2)[0]
		if yamlTag == "" || yamlTag == "-" {
			continue
		}

		envKey := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
		if prefix != "" {
			envKey = prefix + "_" + envKey
		}

		// durations accept "30s" as well as raw nanoseconds
		if field.Type() == durationType {
			if envVal := os.Getenv(envKey); envVal != "" {
				if d, err := time.ParseDuration(envVal); err == nil {
					field.SetInt(int64(d))
				} else if n, err := strconv.ParseInt(envVal, 10, 64); err == nil {
					field.SetInt(n)
				}
			}
			continue
		}

		switch field.Kind() {
		case reflect.String:
			if envVal := os.Getenv(envKey); envVal != "" {
				field.SetString(envVal)
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if intVal, err := strconv.ParseInt(envVal, 10, 64); err == nil {
					field.SetInt(intVal)
				}
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if uintVal, err := strconv.ParseUint(envVal, 10, 64); err == nil {
					field.SetUint(uintVal)
				}
			}
		case reflect.Float32, reflect.Float64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if floatVal, err := strconv.ParseFloat(envVal, 64); err == nil {
					field.SetFloat(floatVal)
				}
			}
		case reflect.Bool:
			if envVal := os.Getenv(envKey); envVal != "" {
				if boolVal, err := strconv.ParseBool(envVal); err == nil {
					field.SetBool(boolVal)
				}
			}
		case reflect.Slice:
			if envVal := os.Getenv(envKey); envVal != "" {
				// Handle string slices (like SERVER_CORS_ORIGINS)
				if field.Type().Elem().Kind() == reflect.String {
					slice := strings.Split(envVal, ",")
					field.Set(reflect.ValueOf(slice))
				}
			}
		case reflect.Struct:
			if field.CanAddr() {
				overrideStructFromEnvWithPrefix(field.Addr().Interface(), envKey)
			}
		case reflect.Ptr:
			if !field.IsNil() && field.Elem().Kind() == reflect.Struct {
				overrideStructFromEnvWithPrefix(field.Interface(), envKey)
			}
		}
	}
}

// loadConfigWithOverrides loads the config file named by CULTUROLOGY_CONFIG_FILE, or config.yaml
func loadConfigWithOverrides() (result0 *Config, err error) {
	if envPath := os.Getenv(ConfigFileEnv); envPath != "" {
		config, err := loadConfigFromFile(envPath)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config from %s: %w", envPath, err)
		}
		return config, nil
	}

	config, err := loadConfigFromFile("config.yaml")
	if os.IsNotExist(err) {
		// env-only deployments have no file at all
		return &Config{}, nil
	}
	return config, err
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (result0 *Config, err error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(yamlFile, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
