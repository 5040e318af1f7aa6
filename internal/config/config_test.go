package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizmaster/internal/events"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "QUIZMASTER_") {
			t.Setenv(key, "")
		}
	}
	t.Setenv("XDG_DATA_HOME", t.TempDir())
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.ProgressBackend)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "gochannel", cfg.EventTransport)
	assert.Equal(t, events.DefaultTopic, cfg.KafkaTopic)
	assert.True(t, strings.HasSuffix(cfg.DBPath, filepath.Join("quizmaster", "quizmaster.db")))
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("QUIZMASTER_DB", "/tmp/x.db")
	t.Setenv("QUIZMASTER_PROGRESS_BACKEND", "Redis")
	t.Setenv("QUIZMASTER_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("QUIZMASTER_LOG_FORMAT", "json")
	t.Setenv("QUIZMASTER_EVENT_TRANSPORT", "kafka")
	t.Setenv("QUIZMASTER_KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, "redis", cfg.ProgressBackend)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)

	ev := cfg.Events()
	assert.Equal(t, events.TransportKafka, ev.Transport)
	assert.Equal(t, "quizmaster-recorder", ev.ConsumerGroup)
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantVar string
	}{
		{"bad backend", map[string]string{"QUIZMASTER_PROGRESS_BACKEND": "mongo"}, "QUIZMASTER_PROGRESS_BACKEND"},
		{"redis without url", map[string]string{"QUIZMASTER_PROGRESS_BACKEND": "redis"}, "QUIZMASTER_REDIS_URL"},
		{"bad level", map[string]string{"QUIZMASTER_LOG_LEVEL": "loud"}, "QUIZMASTER_LOG_LEVEL"},
		{"kafka without brokers", map[string]string{"QUIZMASTER_EVENT_TRANSPORT": "kafka"}, "QUIZMASTER_KAFKA_BROKERS"},
		{"bad broker", map[string]string{"QUIZMASTER_EVENT_TRANSPORT": "kafka", "QUIZMASTER_KAFKA_BROKERS": "nohost"}, "QUIZMASTER_KAFKA_BROKERS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantVar)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	envDB := filepath.Join(dir, "env.db")
	require.NoError(t, os.WriteFile(path, []byte("QUIZMASTER_LOG_LEVEL=debug\nQUIZMASTER_DB="+filepath.Join(dir, "file.db")+"\n"), 0o644))
	t.Setenv("QUIZMASTER_DB", envDB)

	t.Cleanup(func() { os.Unsetenv("QUIZMASTER_LOG_LEVEL") })
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, envDB, cfg.DBPath, "environment wins over the file")

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
