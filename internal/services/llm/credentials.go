package llm

import (
	"os"
	"strings"

	"captioner/internal/services"
)

// CredentialEnv returns the environment variables consulted for the API key,
// in order.
func CredentialEnv() []string {
	return []string{"CAPTIONER_API_KEY", "OPENROUTER_API_KEY"}
}

// CredentialSource resolves the API key at request time.
type CredentialSource interface {
	APIKey() (string, error)
}

// StaticCredential is a fixed key, typically from the config file.
type StaticCredential string

// APIKey returns the trimmed key, or ErrMissingCredential when blank.
func (s StaticCredential) APIKey() (string, error) {
	if key := strings.TrimSpace(string(s)); key != "" {
		return key, nil
	}
	return "", services.ErrMissingCredential
}

// EnvCredential reads the first non-empty variable from the process environment.
type EnvCredential []string

// APIKey returns the first set variable's value.
func (e EnvCredential) APIKey() (string, error) {
	for _, name := range e {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			return value, nil
		}
	}
	return "", services.ErrMissingCredential
}

// ChainCredentials returns the first key any source yields.
type ChainCredentials []CredentialSource

// APIKey skips nil and failing sources.
func (c ChainCredentials) APIKey() (string, error) {
	for _, src := range c {
		if src == nil {
			continue
		}
		if key, err := src.APIKey(); err == nil && key != "" {
			return key, nil
		}
	}
	return "", services.ErrMissingCredential
}

// DefaultCredentials prefers the configured key and falls back to the
// environment.
func DefaultCredentials(configured string) CredentialSource {
	return ChainCredentials{StaticCredential(configured), EnvCredential(CredentialEnv())}
}
