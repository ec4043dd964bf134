package oauth

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadMissing(t *testing.T) {
	store := NewStore(t.TempDir())

	assert.True(t, store.LoadTokens().IsZero())
	assert.False(t, store.LoadCredentials().Complete())
}

func TestStore_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, TokensFileName), []byte("{not json"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, CredentialsFileName), []byte(""), 0600))

	store := NewStore(dir)

	assert.True(t, store.LoadTokens().IsZero())
	assert.Equal(t, Credentials{}, store.LoadCredentials())
}

func TestStore_SaveAndLoadTokens(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state"))

	expiry := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, store.SaveTokens(TokenSet{AccessToken: "A1", RefreshToken: "R1", Expiry: expiry}))

	tokens := store.LoadTokens()
	assert.Equal(t, "A1", tokens.AccessToken)
	assert.Equal(t, "R1", tokens.RefreshToken)
	assert.True(t, expiry.Equal(tokens.Expiry))

	// A second store over the same directory sees the persisted state.
	assert.Equal(t, tokens, NewStore(store.Dir()).LoadTokens())
}

func TestStore_SaveReplaces(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.SaveTokens(TokenSet{AccessToken: "A1", RefreshToken: "R1"}))
	require.NoError(t, store.SaveTokens(TokenSet{AccessToken: "A2", RefreshToken: "R1"}))

	assert.Equal(t, "A2", store.LoadTokens().AccessToken)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temporary files should be left behind")
	assert.Equal(t, TokensFileName, entries[0].Name())
}

func TestStore_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not enforced on windows")
	}

	dir := filepath.Join(t.TempDir(), "state")
	store := NewStore(dir)
	require.NoError(t, store.SaveTokens(TokenSet{AccessToken: "A1"}))
	require.NoError(t, store.SaveCredentials(Credentials{ClientID: "id", ClientSecret: "secret"}))

	for _, path := range []string{store.TokensPath(), store.CredentialsPath()} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), path)
	}

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestStore_ClearTokens(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.SaveTokens(TokenSet{AccessToken: "A1", RefreshToken: "R1"}))

	require.NoError(t, store.ClearTokens())
	assert.True(t, store.LoadTokens().IsZero())

	_, err := os.Stat(store.TokensPath())
	assert.True(t, os.IsNotExist(err))

	// Clearing again is a no-op.
	require.NoError(t, store.ClearTokens())
}

func TestStore_CredentialsIndependentOfTokens(t *testing.T) {
	store := NewStore(t.TempDir())
	creds := Credentials{ClientID: "id", ClientSecret: "secret"}

	require.NoError(t, store.SaveCredentials(creds))
	require.NoError(t, store.SaveTokens(TokenSet{AccessToken: "A1", RefreshToken: "R1"}))

	require.NoError(t, store.ClearTokens())
	assert.Equal(t, creds, store.LoadCredentials())

	require.NoError(t, store.SaveTokens(TokenSet{AccessToken: "A2"}))
	require.NoError(t, store.ClearCredentials())
	assert.Equal(t, "A2", store.LoadTokens().AccessToken)
	assert.False(t, store.LoadCredentials().Complete())
}

func TestStore_SaveFailsWhenDirIsFile(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	store := NewStore(filepath.Join(blocker, "state"))
	err := store.SaveTokens(TokenSet{AccessToken: "A1"})
	require.Error(t, err)

	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "save", storageErr.Operation)
}
