package storage

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPath(t *testing.T) {
	p, err := DefaultPath()
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".cryptotracker", "state.json"), p)
}

func TestOpen_MissingFileIsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	_, ok := s.Get(KeyAuthToken)
	assert.False(t, ok)
	assert.Equal(t, []string{}, s.Favorites())
}

func TestSaveAndOpen_RoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "state.json")

	s, err := Open(p)
	require.NoError(t, err)
	s.Set(KeyCurrency, "usd")
	s.Set(KeyAuthToken, "tok")
	s.SetFavorites([]string{"bitcoin", "solana"})
	require.NoError(t, s.Save())

	again, err := Open(p)
	require.NoError(t, err)

	cur, _ := again.Get(KeyCurrency)
	tok, _ := again.Get(KeyAuthToken)
	assert.Equal(t, "usd", cur)
	assert.Equal(t, "tok", tok)
	assert.Equal(t, []string{"bitcoin", "solana"}, again.Favorites())

	if runtime.GOOS != "windows" {
		st, err := os.Stat(p)
		require.NoError(t, err)
		assert.Zero(t, st.Mode().Perm()&0o077, "state file must not be group/other readable")
	}
}

func TestFavorites_CorruptEntryFallsBackToEmpty(t *testing.T) {
	p := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"favorites":"[not json","theme":"light"}`), 0o600))

	s, err := Open(p)
	require.NoError(t, err)

	assert.Equal(t, []string{}, s.Favorites())
	theme, ok := s.Get(KeyTheme)
	assert.True(t, ok)
	assert.Equal(t, "light", theme)
}

func TestOpen_CorruptFileIsEmpty(t *testing.T) {
	p := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(p, []byte(`{{{`), 0o600))

	s, err := Open(p)
	require.NoError(t, err)
	_, ok := s.Get(KeyTheme)
	assert.False(t, ok)
}

func TestOpen_NonStringEntriesAreIgnored(t *testing.T) {
	p := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"currency":42,"language":"en"}`), 0o600))

	s, err := Open(p)
	require.NoError(t, err)

	_, ok := s.Get(KeyCurrency)
	assert.False(t, ok)
	lang, _ := s.Get(KeyLanguage)
	assert.Equal(t, "en", lang)
}

func TestDelete(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	s.Set(KeyAuthToken, "tok")
	s.Delete(KeyAuthToken)
	_, ok := s.Get(KeyAuthToken)
	assert.False(t, ok)
}
