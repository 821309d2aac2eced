package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConfig struct {
	Port    int           `env:"SAMPLE_PORT" envDefault:"8020"`
	BaseURL string        `env:"SAMPLE_BASE_URL" envDefault:"http://localhost:5000"`
	Timeout time.Duration `env:"SAMPLE_TIMEOUT" envDefault:"5s"`
	Brokers []string      `env:"SAMPLE_BROKERS" envDefault:"a:9092,b:9092" envSeparator:","`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg sampleConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 8020, cfg.Port)
	assert.Equal(t, "http://localhost:5000", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Brokers)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("SAMPLE_PORT", "9100")
	t.Setenv("SAMPLE_TIMEOUT", "250ms")

	var cfg sampleConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("SAMPLE_PORT", "not-a-number")

	var cfg sampleConfig
	err := Load(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoadWithPrefix(t *testing.T) {
	t.Setenv("TEST_SAMPLE_PORT", "7000")

	var cfg sampleConfig
	require.NoError(t, LoadWithPrefix(&cfg, "TEST_"))
	assert.Equal(t, 7000, cfg.Port)
}

func TestLoad_NonPointer(t *testing.T) {
	var cfg sampleConfig
	assert.Error(t, Load(cfg))
}
