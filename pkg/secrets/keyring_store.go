package secrets

import (
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "igdigest"

// KeyringStore implements Store using the system keychain.
type KeyringStore struct{}

// NewKeyringStore creates a keyring-backed store. It probes the keychain
// once so callers can fall back when no keychain is available (headless
// servers, containers).
func NewKeyringStore() (*KeyringStore, error) {
	const probe = "test_availability"
	if err := keyring.Set(keyringService, probe, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, probe)

	return &KeyringStore{}, nil
}

// Set saves a secret to the system keychain.
func (k *KeyringStore) Set(name, value string) error {
	if !validName(name) {
		return ErrInvalidName
	}
	if err := keyring.Set(keyringService, name, value); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}
	return nil
}

// Get retrieves a secret from the system keychain.
func (k *KeyringStore) Get(name string) (string, error) {
	if !validName(name) {
		return "", ErrInvalidName
	}
	value, err := keyring.Get(keyringService, name)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to retrieve from keyring: %w", err)
	}
	return value, nil
}

// Delete removes a secret from the system keychain.
func (k *KeyringStore) Delete(name string) error {
	if !validName(name) {
		return ErrInvalidName
	}
	err := keyring.Delete(keyringService, name)
	if err != nil {
		if err == keyring.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}
