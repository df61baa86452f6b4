package config

import (
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	Server      ServerConfig
	Gemini      GeminiConfig
	Pipeline    PipelineConfig
	FAQ         FAQConfig
	ResponseLog ResponseLogConfig
	Log         LogConfig
	RateLimit   RateLimitConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type GeminiConfig struct {
	BaseURL     string
	Model       string
	Temperature float64
	APIKey      string
}

type PipelineConfig struct {
	MaxRetries  int
	TopK        int
	CallTimeout string
}

// Timeout parses the per-call timeout, falling back to 30s when the
// configured value is missing or unparseable.
func (p PipelineConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(p.CallTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

type FAQConfig struct {
	File string
}

type ResponseLogConfig struct {
	File string
}

type LogConfig struct {
	Level string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

func defaults() Config {
	dataDir := defaultDataDir()
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8000,
		},
		Gemini: GeminiConfig{
			BaseURL:     "https://generativelanguage.googleapis.com/v1beta",
			Model:       "gemini-2.5-flash",
			Temperature: 0.2,
		},
		Pipeline: PipelineConfig{
			MaxRetries:  2,
			TopK:        3,
			CallTimeout: "30s",
		},
		FAQ: FAQConfig{
			File: filepath.Join(dataDir, "faqs.json"),
		},
		ResponseLog: ResponseLogConfig{
			File: filepath.Join(dataDir, "responses.log"),
		},
		Log: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RPS:   5,
			Burst: 10,
		},
	}
}

// Load reads configuration from the platform-native backend, environment
// variables, and platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.deskd.app) and secrets
// fall back to macOS Keychain.
// On Linux the backend is a JSON file at $XDG_CONFIG_HOME/deskd/config.json
// and secrets live in $XDG_DATA_HOME/deskd/secrets.json.
//
// Environment variables (DESKD_*) override backend values on all platforms.
//
// A missing Gemini API key is not an error: the server starts in a degraded
// state and reports it through the health endpoint.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), keychainReader{})
}

// keychain abstracts secret storage for testing.
type keychain interface {
	Get(service, account string) (string, error)
	Set(service, account, value string) error
}

func loadWith(b ConfigBackend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	// Try the platform secret store for the API key if still empty.
	if cfg.Gemini.APIKey == "" {
		if key, err := kc.Get(secretService, "gemini_api_key"); err == nil && key != "" {
			cfg.Gemini.APIKey = key
		}
	}

	return cfg, nil
}

const secretService = "deskd"

// keychainReader reads and writes the platform secret store.
type keychainReader struct{}

func (keychainReader) Get(service, account string) (string, error) {
	out, err := keychainGet(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (keychainReader) Set(service, account, value string) error {
	return keychainSet(service, account, value)
}
