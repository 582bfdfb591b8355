package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStoreRoundTrip(t *testing.T) {
	store := NewMockStore()

	_, err := store.Get(KeyApifyToken)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(KeyApifyToken, "apify_api_abc"))
	value, err := store.Get(KeyApifyToken)
	require.NoError(t, err)
	assert.Equal(t, "apify_api_abc", value)

	require.NoError(t, store.Delete(KeyApifyToken))
	_, err = store.Get(KeyApifyToken)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(KeyApifyToken), ErrNotFound)
}

func TestInvalidNamesRejected(t *testing.T) {
	store := NewMockStore()

	assert.ErrorIs(t, store.Set("password", "x"), ErrInvalidName)
	_, err := store.Get("")
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.ErrorIs(t, store.Delete("unknown"), ErrInvalidName)
}

func TestEnvStore(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-gemini")

	store := NewEnvStore()
	value, err := store.Get(KeyGeminiAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "env-gemini", value)

	t.Setenv("APIFY_TOKEN", "")
	_, err = store.Get(KeyApifyToken)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Set(KeyApifyToken, "x"), ErrReadOnly)
	assert.ErrorIs(t, store.Delete(KeyApifyToken), ErrReadOnly)
}

func TestResolve(t *testing.T) {
	store := NewMockStore()
	require.NoError(t, store.Set(KeyApifyToken, "stored-token"))

	t.Run("configured value wins", func(t *testing.T) {
		assert.Equal(t, "explicit", Resolve(store, "explicit", KeyApifyToken))
	})

	t.Run("falls back to store", func(t *testing.T) {
		assert.Equal(t, "stored-token", Resolve(store, "", KeyApifyToken))
	})

	t.Run("missing everywhere yields empty", func(t *testing.T) {
		assert.Equal(t, "", Resolve(store, "", KeyGeminiAPIKey))
	})

	t.Run("nil store yields empty", func(t *testing.T) {
		assert.Equal(t, "", Resolve(nil, "", KeyApifyToken))
	})
}
