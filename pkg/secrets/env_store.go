package secrets

import "os"

// envVarNames maps secret names to their environment variables.
var envVarNames = map[string]string{
	KeyApifyToken:   "APIFY_TOKEN",
	KeyGeminiAPIKey: "GEMINI_API_KEY",
}

// EnvStore implements Store over environment variables. It is read-only:
// deployments that configure secrets through the environment manage them
// outside the process.
type EnvStore struct{}

// NewEnvStore creates an environment-variable-backed store.
func NewEnvStore() *EnvStore {
	return &EnvStore{}
}

// Get reads a secret from its environment variable.
func (e *EnvStore) Get(name string) (string, error) {
	envVar, ok := envVarNames[name]
	if !ok {
		return "", ErrInvalidName
	}
	value := os.Getenv(envVar)
	if value == "" {
		return "", ErrNotFound
	}
	return value, nil
}

// Set is not supported for the environment store.
func (e *EnvStore) Set(name, value string) error {
	if !validName(name) {
		return ErrInvalidName
	}
	return ErrReadOnly
}

// Delete is not supported for the environment store.
func (e *EnvStore) Delete(name string) error {
	if !validName(name) {
		return ErrInvalidName
	}
	return ErrReadOnly
}
