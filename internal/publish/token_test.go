package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 6, 9, 0, 0, 0, time.UTC)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func idToken(t *testing.T, sub string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub}).SignedString([]byte("k"))
	require.NoError(t, err)
	return signed
}

func TestParseKey(t *testing.T) {
	key, err := ParseKey("")
	require.NoError(t, err)
	assert.Nil(t, key)

	key, err = ParseKey(testKeyHex)
	require.NoError(t, err)
	require.NotNil(t, key)
	assert.Equal(t, byte(0x1f), key[31])

	_, err = ParseKey("abcd")
	assert.Error(t, err)
	_, err = ParseKey("zz")
	assert.Error(t, err)
}

func TestTokenStore_PlainRoundTrip(t *testing.T) {
	store := &TokenStore{Path: filepath.Join(t.TempDir(), "token.json")}
	tok := &Token{AccessToken: "abc", ExpiresAt: now.Add(time.Hour), ObtainedAt: now}
	require.NoError(t, store.Save(tok))

	info, err := os.Stat(store.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", loaded.AccessToken)
	assert.True(t, tok.ExpiresAt.Equal(loaded.ExpiresAt))
}

func TestTokenStore_EncryptedRoundTrip(t *testing.T) {
	key, err := ParseKey(testKeyHex)
	require.NoError(t, err)
	store := &TokenStore{Path: filepath.Join(t.TempDir(), "token.json"), Key: key}
	require.NoError(t, store.Save(&Token{AccessToken: "sealed-token"}))

	raw, err := os.ReadFile(store.Path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), encryptedPrefix))
	assert.NotContains(t, string(raw), "sealed-token")

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "sealed-token", loaded.AccessToken)

	// wrong key and no key both fail
	other := *key
	other[0] ^= 0xff
	_, err = (&TokenStore{Path: store.Path, Key: &other}).Load()
	assert.Error(t, err)
	_, err = (&TokenStore{Path: store.Path}).Load()
	assert.Error(t, err)
}

func TestLoadCredential(t *testing.T) {
	dir := t.TempDir()
	missing := &TokenStore{Path: filepath.Join(dir, "missing.json")}

	tok, err := LoadCredential(" env-token ", missing, now)
	require.NoError(t, err)
	assert.Equal(t, "env-token", tok.AccessToken)

	_, err = LoadCredential("", missing, now)
	assert.True(t, errors.Is(err, ErrNoCredential))

	_, err = LoadCredential("", nil, now)
	assert.True(t, errors.Is(err, ErrNoCredential))

	expired := &TokenStore{Path: filepath.Join(dir, "expired.json")}
	require.NoError(t, expired.Save(&Token{AccessToken: "old", ExpiresAt: now.Add(-time.Minute)}))
	_, err = LoadCredential("", expired, now)
	assert.True(t, errors.Is(err, ErrTokenExpired))

	valid := &TokenStore{Path: filepath.Join(dir, "valid.json")}
	require.NoError(t, valid.Save(&Token{AccessToken: "fresh"}))
	tok, err = LoadCredential("", valid, now)
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)
}

func TestToken_Subject(t *testing.T) {
	tok := &Token{IDToken: idToken(t, "member-42")}
	sub, ok := tok.Subject()
	assert.True(t, ok)
	assert.Equal(t, "member-42", sub)

	_, ok = (&Token{IDToken: "garbage"}).Subject()
	assert.False(t, ok)
	_, ok = (&Token{}).Subject()
	assert.False(t, ok)
}

func TestToken_Expired(t *testing.T) {
	assert.False(t, (&Token{}).Expired(now))
	assert.True(t, (&Token{ExpiresAt: now}).Expired(now))
	assert.False(t, (&Token{ExpiresAt: now.Add(time.Second)}).Expired(now))
}
