package secrets

import "sync"

// MockStore is an in-memory Store for tests.
type MockStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{values: make(map[string]string)}
}

func (m *MockStore) Set(name, value string) error {
	if !validName(name) {
		return ErrInvalidName
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] = value
	return nil
}

func (m *MockStore) Get(name string) (string, error) {
	if !validName(name) {
		return "", ErrInvalidName
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[name]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *MockStore) Delete(name string) error {
	if !validName(name) {
		return ErrInvalidName
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[name]; !ok {
		return ErrNotFound
	}
	delete(m.values, name)
	return nil
}
