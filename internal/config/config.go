package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all service configuration, loaded from the environment at
// startup. Validation happens once in main; the rest of the code never
// reads environment variables.
type Config struct {
	Port      string
	JWTSecret string

	// DeepL (primary translator)
	DeepLAPIKey     string
	DeepLAPIBaseURL string

	// Google Cloud adapters authenticate via Application Default
	// Credentials; UseMockProviders switches all provider adapters to
	// local mocks for development.
	UseMockProviders bool

	// MongoDB transcript storage; empty URI disables persistence and
	// falls back to the in-memory repository.
	MongoURI      string
	MongoDatabase string

	// RequestTimeout bounds every provider round trip made on behalf of
	// one inbound request.
	RequestTimeout time.Duration

	// Audio defaults for the one-shot endpoint
	SampleRate int
	Encoding   string
}

// Load reads configuration from the environment.
func Load() Config {
	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		DeepLAPIKey:     os.Getenv("DEEPL_API_KEY"),
		DeepLAPIBaseURL: os.Getenv("DEEPL_API_BASE_URL"),
		MongoURI:        os.Getenv("MONGODB_URI"),
		MongoDatabase:   getEnv("MONGODB_DATABASE", "trutalk"),
		Encoding:        getEnv("AUDIO_ENCODING", "MP3"),
		SampleRate:      48000,
		RequestTimeout:  30 * time.Second,
	}

	cfg.UseMockProviders = os.Getenv("USE_MOCK_PROVIDERS") == "true"

	if v := os.Getenv("AUDIO_SAMPLE_RATE"); v != "" {
		if rate, err := strconv.Atoi(v); err == nil && rate > 0 {
			cfg.SampleRate = rate
		}
	}

	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			cfg.RequestTimeout = time.Duration(seconds) * time.Second
		}
	}

	return cfg
}

// Validate reports the configuration problems that must stop startup.
// Missing provider credentials are a startup failure, not a load-time
// panic somewhere inside an adapter.
func (c Config) Validate() error {
	var problems []error

	if c.JWTSecret == "" {
		problems = append(problems, errors.New("JWT_SECRET is required"))
	}

	if !c.UseMockProviders && c.DeepLAPIKey == "" {
		problems = append(problems, errors.New("DEEPL_API_KEY is required unless USE_MOCK_PROVIDERS=true"))
	}

	if c.SampleRate < 8000 || c.SampleRate > 48000 {
		problems = append(problems, fmt.Errorf("sample rate %d outside supported range [8000, 48000]", c.SampleRate))
	}

	return errors.Join(problems...)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
