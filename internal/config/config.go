// Package config loads quizmaster's settings from an optional .env file
// and QUIZMASTER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/abhisek/quizmaster/internal/events"
	"github.com/abhisek/quizmaster/internal/llm"
	"github.com/abhisek/quizmaster/internal/store"
)

// Config is the resolved application configuration.
type Config struct {
	DBPath string `validate:"required"`

	// ProgressBackend selects where resumable sessions are kept.
	ProgressBackend string `validate:"oneof=sqlite redis memory"`
	RedisURL        string `validate:"required_if=ProgressBackend redis"`

	LogLevel  string `validate:"oneof=trace debug info warn error"`
	LogFormat string `validate:"oneof=text json"`
	LogFile   string

	EventTransport string   `validate:"oneof=gochannel kafka"`
	KafkaBrokers   []string `validate:"required_if=EventTransport kafka,dive,hostname_port"`
	KafkaTopic     string   `validate:"required"`
	KafkaGroup     string   `validate:"required"`

	LLM llm.Config `validate:"-"`
}

// Default returns the configuration used when nothing is set. The data
// directory is created if missing.
func Default() (Config, error) {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		return Config{}, fmt.Errorf("resolve database path: %w", err)
	}
	return Config{
		DBPath:          dbPath,
		ProgressBackend: "sqlite",
		LogLevel:        "info",
		LogFormat:       "text",
		LogFile:         filepath.Join(filepath.Dir(dbPath), "quizmaster.log"),
		EventTransport:  string(events.TransportGoChannel),
		KafkaTopic:      events.DefaultTopic,
		KafkaGroup:      "quizmaster-recorder",
		LLM:             llm.DefaultConfig(),
	}, nil
}

// Load reads envFile (or ./.env when envFile is empty and the file
// exists), then the environment. Variables already set in the
// environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment and validates it.
func FromEnv() (Config, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}

	vars := []struct {
		key string
		dst *string
	}{
		{"QUIZMASTER_DB", &cfg.DBPath},
		{"QUIZMASTER_PROGRESS_BACKEND", &cfg.ProgressBackend},
		{"QUIZMASTER_REDIS_URL", &cfg.RedisURL},
		{"QUIZMASTER_LOG_LEVEL", &cfg.LogLevel},
		{"QUIZMASTER_LOG_FORMAT", &cfg.LogFormat},
		{"QUIZMASTER_LOG_FILE", &cfg.LogFile},
		{"QUIZMASTER_EVENT_TRANSPORT", &cfg.EventTransport},
		{"QUIZMASTER_KAFKA_TOPIC", &cfg.KafkaTopic},
		{"QUIZMASTER_KAFKA_GROUP", &cfg.KafkaGroup},
	}
	for _, v := range vars {
		if val := strings.TrimSpace(os.Getenv(v.key)); val != "" {
			*v.dst = val
		}
	}
	cfg.ProgressBackend = strings.ToLower(cfg.ProgressBackend)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.EventTransport = strings.ToLower(cfg.EventTransport)

	if brokers := os.Getenv("QUIZMASTER_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	cfg.LLM = llm.ConfigFromEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks every field constraint and reports the first failure
// by its environment variable name.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	fe := verrs[0]
	return fmt.Errorf("invalid configuration: %s=%q fails %q", envName(fe.StructField()), fmt.Sprint(fe.Value()), fe.Tag())
}

var envNames = map[string]string{
	"DBPath":          "QUIZMASTER_DB",
	"ProgressBackend": "QUIZMASTER_PROGRESS_BACKEND",
	"RedisURL":        "QUIZMASTER_REDIS_URL",
	"LogLevel":        "QUIZMASTER_LOG_LEVEL",
	"LogFormat":       "QUIZMASTER_LOG_FORMAT",
	"EventTransport":  "QUIZMASTER_EVENT_TRANSPORT",
	"KafkaBrokers":    "QUIZMASTER_KAFKA_BROKERS",
	"KafkaTopic":      "QUIZMASTER_KAFKA_TOPIC",
	"KafkaGroup":      "QUIZMASTER_KAFKA_GROUP",
}

func envName(field string) string {
	// Dive errors name the element, e.g. "KafkaBrokers[0]".
	if i := strings.IndexByte(field, '['); i > 0 {
		field = field[:i]
	}
	if name, ok := envNames[field]; ok {
		return name
	}
	return field
}

// Events returns the event bus configuration.
func (c Config) Events() events.Config {
	return events.Config{
		Transport:     events.Transport(c.EventTransport),
		Brokers:       c.KafkaBrokers,
		Topic:         c.KafkaTopic,
		ConsumerGroup: c.KafkaGroup,
	}
}
