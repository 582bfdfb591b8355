// Package secrets stores the API tokens the pipeline needs (scraping
// actor, inference backend) behind one Store interface, with a system
// keychain implementation for workstations and an environment
// implementation for containerized deployments.
package secrets

import "errors"

// Names of the secrets the pipeline recognizes.
const (
	KeyApifyToken   = "apify_token"
	KeyGeminiAPIKey = "gemini_api_key"
)

var (
	// ErrNotFound is returned when a secret is not present in the store.
	ErrNotFound = errors.New("secret not found")
	// ErrInvalidName is returned for an empty or unrecognized secret name.
	ErrInvalidName = errors.New("invalid secret name")
	// ErrReadOnly is returned by stores that cannot persist secrets.
	ErrReadOnly = errors.New("store is read-only")
)

// Store persists and retrieves named secrets.
type Store interface {
	Set(name, value string) error
	Get(name string) (string, error)
	Delete(name string) error
}

// knownNames guards against typos becoming silently unreachable secrets.
var knownNames = map[string]bool{
	KeyApifyToken:   true,
	KeyGeminiAPIKey: true,
}

func validName(name string) bool {
	return knownNames[name]
}

// Resolve returns the first non-empty value: the explicitly configured one,
// or the stored secret. A missing secret is not an error here; config
// validation decides whether the value was required.
func Resolve(store Store, configured, name string) string {
	if configured != "" {
		return configured
	}
	if store == nil {
		return ""
	}
	value, err := store.Get(name)
	if err != nil {
		return ""
	}
	return value
}

// DefaultStore returns the keyring store when the system keychain is
// usable, otherwise the environment store.
func DefaultStore() Store {
	if ks, err := NewKeyringStore(); err == nil {
		return ks
	}
	return NewEnvStore()
}
