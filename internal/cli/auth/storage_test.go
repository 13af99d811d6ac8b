package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/snackshop-dev/snackadmin/internal/cli/config"
)

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	local := NewKeyringStore("local")
	prod := NewKeyringStore("production")

	require.NoError(t, local.Set(KeyToken, "abc"))

	v, err := local.Get(KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	_, err = prod.Get(KeyToken)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, local.Delete(KeyToken))
	require.NoError(t, local.Delete(KeyToken))
	_, err = local.Get(KeyToken)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore(t *testing.T) {
	path := FileStorePath(filepath.Join(t.TempDir(), "snackadmin"), "local")
	store := NewFileStore(path)

	_, err := store.Get(KeyToken)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(KeyToken, "abc"))
	require.NoError(t, store.Set(KeyUser, `{"id":"1"}`))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// A second store on the same file sees the values
	v, err := NewFileStore(path).Get(KeyUser)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"1"}`, v)

	require.NoError(t, store.Delete(KeyToken))
	require.NoError(t, store.Delete(KeyUser))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session-local.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewFileStore(path).Get(KeyToken)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestNewStore(t *testing.T) {
	s, err := NewStore(&config.Config{Storage: config.StorageFile, ConfigDir: t.TempDir(), Profile: "ci"})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = NewStore(&config.Config{Storage: config.StorageKeyring, Profile: "ci"})
	require.NoError(t, err)
	assert.IsType(t, &KeyringStore{}, s)

	_, err = NewStore(&config.Config{Storage: "vault"})
	assert.Error(t, err)
}
