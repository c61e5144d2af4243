package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the validated runtime configuration.
type Config struct {
	Port            string `validate:"required,numeric"`
	DBType          string `validate:"required,oneof=mongo postgres supa memory"`
	MongoURI        string `validate:"required_if=DBType mongo"`
	MongoDatabase   string `validate:"required_if=DBType mongo"`
	PostgresDSN     string `validate:"required_if=DBType postgres,required_if=DBType supa"`
	AcceptedOrigins []string
	ReadTimeout     time.Duration `validate:"gt=0"`
	WriteTimeout    time.Duration `validate:"gt=0"`
	IdleTimeout     time.Duration `validate:"gt=0"`
	MaxUploadBytes  int64         `validate:"gt=0"`
	LogLevel        string        `validate:"oneof=trace debug info warn error"`
	LogFormat       string        `validate:"oneof=json console"`
}

// Load builds a Config from an environment map as returned by New.
func Load(env map[string]string) (Config, error) {
	cfg := Config{
		Port:            GetString(env, "PORT", "8080"),
		DBType:          strings.ToLower(GetString(env, "DB_TYPE", "mongo")),
		MongoURI:        GetString(env, "MONGO_URI", ""),
		MongoDatabase:   GetString(env, "MONGO_DATABASE", "company_ratings"),
		PostgresDSN:     GetString(env, "POSTGRES_DSN", ""),
		AcceptedOrigins: GetStrings(env, "ACCEPTED_ORIGINS", []string{"*"}),
		ReadTimeout:     time.Duration(GetInt(env, "READ_TIMEOUT_SECONDS", 180)) * time.Second,
		WriteTimeout:    time.Duration(GetInt(env, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second,
		IdleTimeout:     time.Duration(GetInt(env, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second,
		MaxUploadBytes:  int64(GetInt(env, "MAX_UPLOAD_MB", 32)) << 20,
		LogLevel:        strings.ToLower(GetString(env, "LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(GetString(env, "LOG_FORMAT", "json")),
	}

	if cfg.DBType == "supa" && cfg.PostgresDSN == "" {
		cfg.PostgresDSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
			GetString(env, "SUPABASE_DB_HOST", ""),
			GetString(env, "SUPABASE_DB_USER", ""),
			GetString(env, "SUPABASE_DB_PASSWORD", ""),
			GetString(env, "SUPABASE_DB_NAME", ""),
			GetString(env, "SUPABASE_DB_PORT", "5432"),
		)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Address is the listen address for the HTTP server.
func (c Config) Address() string {
	return fmt.Sprintf("0.0.0.0:%s", c.Port) // Bind to 0.0.0.0 for external access
}

func New() map[string]string {
	environ := os.Environ()
	envAsMap := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry != "" {
			key, value := split(entry)
			envAsMap[key] = value
		}
	}
	return envAsMap
}

// assumes entry is not the empty string
func split(entry string) (key, value string) {
	parts := strings.SplitN(entry, "=", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func GetString(config map[string]string, key string, defaultValue string) string {
	if config == nil {
		return defaultValue
	}

	if val, ok := config[key]; ok && val != "" {
		return val
	}
	return defaultValue
}

func GetInt(config map[string]string, key string, defaultValue int) int {
	if config == nil {
		return defaultValue
	}

	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asInt, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}

	return asInt
}

// GetStrings splits a comma separated value, dropping blank entries.
func GetStrings(config map[string]string, key string, defaultValue []string) []string {
	raw := GetString(config, key, "")
	if raw == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
