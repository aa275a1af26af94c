package backup

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKeyring(t *testing.T) *Keyring {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	k, err := NewKeyring(key)
	require.NoError(t, err)
	return k
}

func TestCipherRoundTrip(t *testing.T) {
	c := NewCipher(newTestKeyring(t))

	large := make([]byte, 1<<20)
	_, err := rand.Read(large)
	require.NoError(t, err)

	for _, plaintext := range [][]byte{{}, []byte("hello"), large} {
		sealed, err := c.Encrypt(plaintext)
		require.NoError(t, err)
		assert.Len(t, sealed, len(plaintext)+24+16)

		opened, err := c.Decrypt(sealed)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(plaintext, opened))
	}

	a, err := c.Encrypt([]byte("same"))
	require.NoError(t, err)
	b, err := c.Encrypt([]byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCipherDetectsTampering(t *testing.T) {
	c := NewCipher(newTestKeyring(t))
	sealed, err := c.Encrypt([]byte("inventory data"))
	require.NoError(t, err)

	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0xff
	_, err = c.Decrypt(tampered)
	assert.ErrorIs(t, err, ErrBackupCorrupted)

	_, err = c.Decrypt(sealed[:10])
	assert.ErrorIs(t, err, ErrBackupCorrupted)

	_, err = NewCipher(newTestKeyring(t)).Decrypt(sealed)
	assert.ErrorIs(t, err, ErrBackupCorrupted)
}

func TestLoadOrCreateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets", ".encryption_key")

	first, err := LoadOrCreateKey(path)
	require.NoError(t, err)

	encoded, err := os.ReadFile(path)
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(string(encoded))
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
		di, err := os.Stat(filepath.Dir(path))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o700), di.Mode().Perm())
	}

	sealed, err := NewCipher(first).Encrypt([]byte("payload"))
	require.NoError(t, err)

	// loaded as-is the second time
	second, err := LoadOrCreateKey(path)
	require.NoError(t, err)
	again, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, encoded, again)

	opened, err := NewCipher(second).Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), opened)
}

func TestLoadKeyRejectsWrongLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.key")
	require.NoError(t, os.WriteFile(path, []byte(base64.StdEncoding.EncodeToString(make([]byte, 16))), 0o600))

	_, err := LoadOrCreateKey(path)
	assert.ErrorIs(t, err, ErrInvalidKey)

	require.NoError(t, os.WriteFile(path, []byte("%%% not base64"), 0o600))
	_, err = LoadOrCreateKey(path)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestReleasedKeyringCannotSeal(t *testing.T) {
	k := newTestKeyring(t)
	c := NewCipher(k)
	sealed, err := c.Encrypt([]byte("data"))
	require.NoError(t, err)

	k.Release()
	_, err = c.Encrypt([]byte("data"))
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = c.Decrypt(sealed)
	assert.ErrorIs(t, err, ErrInvalidKey)
}
