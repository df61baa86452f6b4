package config

import (
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"
)

// mockBackend is an in-memory ConfigBackend for tests.
type mockBackend struct {
	data map[string]string
}

func (m mockBackend) GetString(key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m mockBackend) GetInt(key string) (int, bool, error) {
	v, ok := m.data[key]
	if !ok {
		return 0, false, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, true, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return i, true, nil
}

func (m mockBackend) SetString(key, val string) error { m.data[key] = val; return nil }
func (m mockBackend) SetInt(key string, val int) error {
	m.data[key] = strconv.Itoa(val)
	return nil
}
func (m mockBackend) Delete(key string) error { delete(m.data, key); return nil }

// mockKeychain is a test double for the secret store.
type mockKeychain struct {
	values map[string]string
	getErr error
	setErr error
	sets   map[string]string
}

func (m *mockKeychain) Get(service, account string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.values[service+"/"+account], nil
}

func (m *mockKeychain) Set(service, account, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.sets == nil {
		m.sets = make(map[string]string)
	}
	m.sets[service+"/"+account] = value
	return nil
}

func clearEnvOverrides(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		if s.env != "" {
			t.Setenv(s.env, "")
		}
	}
}

// TestDefaults verifies all default values survive an empty backend.
func TestDefaults(t *testing.T) {
	clearEnvOverrides(t)

	cfg, err := loadWith(mockBackend{data: map[string]string{}}, &mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("Gemini.Model = %q, want %q", cfg.Gemini.Model, "gemini-2.5-flash")
	}
	if cfg.Gemini.Temperature != 0.2 {
		t.Errorf("Gemini.Temperature = %v, want 0.2", cfg.Gemini.Temperature)
	}
	if cfg.Pipeline.MaxRetries != 2 {
		t.Errorf("Pipeline.MaxRetries = %d, want 2", cfg.Pipeline.MaxRetries)
	}
	if cfg.Pipeline.TopK != 3 {
		t.Errorf("Pipeline.TopK = %d, want 3", cfg.Pipeline.TopK)
	}
	if cfg.Pipeline.Timeout() != 30*time.Second {
		t.Errorf("Pipeline.Timeout() = %v, want 30s", cfg.Pipeline.Timeout())
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.RateLimit.RPS != 5 || cfg.RateLimit.Burst != 10 {
		t.Errorf("RateLimit = %+v, want RPS 5 Burst 10", cfg.RateLimit)
	}
}

// TestBackendValues verifies backend values override defaults.
func TestBackendValues(t *testing.T) {
	clearEnvOverrides(t)

	b := mockBackend{data: map[string]string{
		"server.port":           "9100",
		"gemini.model":          "gemini-2.0-pro",
		"gemini.temperature":    "0.7",
		"pipeline.max_retries":  "4",
		"pipeline.call_timeout": "10s",
		"faq.file":              "/srv/deskd/faqs.yaml",
	}}

	cfg, err := loadWith(b, &mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Gemini.Model != "gemini-2.0-pro" {
		t.Errorf("Gemini.Model = %q, want %q", cfg.Gemini.Model, "gemini-2.0-pro")
	}
	if cfg.Gemini.Temperature != 0.7 {
		t.Errorf("Gemini.Temperature = %v, want 0.7", cfg.Gemini.Temperature)
	}
	if cfg.Pipeline.MaxRetries != 4 {
		t.Errorf("Pipeline.MaxRetries = %d, want 4", cfg.Pipeline.MaxRetries)
	}
	if cfg.Pipeline.Timeout() != 10*time.Second {
		t.Errorf("Pipeline.Timeout() = %v, want 10s", cfg.Pipeline.Timeout())
	}
	if cfg.FAQ.File != "/srv/deskd/faqs.yaml" {
		t.Errorf("FAQ.File = %q, want %q", cfg.FAQ.File, "/srv/deskd/faqs.yaml")
	}
}

// TestEnvOverride verifies environment variables override backend values.
func TestEnvOverride(t *testing.T) {
	clearEnvOverrides(t)

	b := mockBackend{data: map[string]string{
		"server.port": "9100",
	}}

	t.Setenv("DESKD_SERVER_PORT", "9200")
	t.Setenv("DESKD_GEMINI_API_KEY", "env-key")

	cfg, err := loadWith(b, &mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9200 {
		t.Errorf("Server.Port = %d, want 9200", cfg.Server.Port)
	}
	if cfg.Gemini.APIKey != "env-key" {
		t.Errorf("Gemini.APIKey = %q, want %q", cfg.Gemini.APIKey, "env-key")
	}
}

// TestKeychainFallback verifies the secret store supplies the API key when
// the environment does not.
func TestKeychainFallback(t *testing.T) {
	clearEnvOverrides(t)

	kc := &mockKeychain{values: map[string]string{
		"deskd/gemini_api_key": "keychain-key",
	}}

	cfg, err := loadWith(mockBackend{data: map[string]string{}}, kc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Gemini.APIKey != "keychain-key" {
		t.Errorf("Gemini.APIKey = %q, want %q", cfg.Gemini.APIKey, "keychain-key")
	}
}

// TestMissingAPIKeyNotFatal verifies the server can start without an API key.
func TestMissingAPIKeyNotFatal(t *testing.T) {
	clearEnvOverrides(t)

	cfg, err := loadWith(mockBackend{data: map[string]string{}}, &mockKeychain{getErr: errors.New("not found")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Gemini.APIKey != "" {
		t.Errorf("Gemini.APIKey = %q, want empty", cfg.Gemini.APIKey)
	}
}

func TestTimeoutFallback(t *testing.T) {
	p := PipelineConfig{CallTimeout: "not-a-duration"}
	if got := p.Timeout(); got != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s", got)
	}
	p = PipelineConfig{CallTimeout: "-5s"}
	if got := p.Timeout(); got != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s for negative duration", got)
	}
}

func TestAPIToken_EnvPrecedence(t *testing.T) {
	tok, err := apiTokenWith(&mockKeychain{values: map[string]string{"deskd/api_token": "stored"}}, "from-env")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "from-env" {
		t.Errorf("token = %q, want %q", tok, "from-env")
	}
}

func TestAPIToken_FromKeychain(t *testing.T) {
	kc := &mockKeychain{values: map[string]string{"deskd/api_token": "stored"}}
	tok, err := apiTokenWith(kc, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "stored" {
		t.Errorf("token = %q, want %q", tok, "stored")
	}
	if len(kc.sets) != 0 {
		t.Errorf("expected no writes, got %v", kc.sets)
	}
}

func TestAPIToken_GeneratedAndPersisted(t *testing.T) {
	kc := &mockKeychain{}
	tok, err := apiTokenWith(kc, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok == "" {
		t.Fatal("expected a generated token")
	}
	if kc.sets["deskd/api_token"] != tok {
		t.Errorf("persisted token = %q, want %q", kc.sets["deskd/api_token"], tok)
	}
}

func TestAPIToken_PersistError(t *testing.T) {
	kc := &mockKeychain{setErr: errors.New("disk full")}
	if _, err := apiTokenWith(kc, ""); err == nil {
		t.Fatal("expected error when the token cannot be persisted")
	}
}

func TestValidKeysExcludeSecrets(t *testing.T) {
	for _, k := range ValidKeys() {
		if k == "gemini.api_key" {
			t.Fatal("secret key exposed in ValidKeys")
		}
	}
}
