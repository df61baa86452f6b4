package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

const tokenAccount = "api_token"

func envAPIToken() string {
	return os.Getenv("DESKD_API_TOKEN")
}

// APIToken returns the bearer token protecting authenticated API routes.
//
// The DESKD_API_TOKEN environment variable takes precedence. Otherwise the
// token is read from the platform secret store; on first run a random one
// is generated and persisted so that CLI and server agree across restarts.
func APIToken() (string, error) {
	return apiTokenWith(keychainReader{}, envAPIToken())
}

func apiTokenWith(kc keychain, envToken string) (string, error) {
	if envToken != "" {
		return envToken, nil
	}

	if tok, err := kc.Get(secretService, tokenAccount); err == nil && tok != "" {
		return tok, nil
	}

	tok := uuid.NewString()
	if err := kc.Set(secretService, tokenAccount, tok); err != nil {
		return "", fmt.Errorf("persisting API token: %w", err)
	}
	return tok, nil
}
