package backup

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	keyFileMode = 0o600
	keyDirMode  = 0o700
)

var ErrInvalidKey = errors.New("invalid encryption key")

// Keyring holds the backup key sealed in a memguard enclave. The plaintext key
// only exists in locked memory while a seal or open is running.
type Keyring struct {
	enclave *memguard.Enclave
}

// LoadOrCreateKey reads the base64 key at path, generating and persisting a new
// random key when the file does not exist yet. An existing key is never replaced;
// losing it makes every backup sealed with it unrecoverable.
func LoadOrCreateKey(path string) (*Keyring, error) {
	encoded, err := os.ReadFile(path)
	if err == nil {
		return keyringFromEncoded(encoded)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), keyDirMode); err != nil {
		return nil, fmt.Errorf("create key directory: %w", err)
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	encodedKey := base64.StdEncoding.EncodeToString(key)

	// O_EXCL so a key written concurrently by someone else is never overwritten
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, keyFileMode)
	if err != nil {
		memguard.WipeBytes(key)
		if errors.Is(err, os.ErrExist) {
			return LoadOrCreateKey(path)
		}
		return nil, fmt.Errorf("create key file: %w", err)
	}
	if _, err := f.WriteString(encodedKey); err != nil {
		f.Close()
		memguard.WipeBytes(key)
		return nil, fmt.Errorf("write key file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		memguard.WipeBytes(key)
		return nil, fmt.Errorf("sync key file: %w", err)
	}
	if err := f.Close(); err != nil {
		memguard.WipeBytes(key)
		return nil, fmt.Errorf("close key file: %w", err)
	}
	return NewKeyring(key)
}

func keyringFromEncoded(encoded []byte) (*Keyring, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(encoded)))
	memguard.WipeBytes(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidKey, err.Error())
	}
	return NewKeyring(key)
}

// NewKeyring seals key into an enclave. key is wiped.
func NewKeyring(key []byte) (*Keyring, error) {
	if len(key) != chacha20poly1305.KeySize {
		memguard.WipeBytes(key)
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKey, chacha20poly1305.KeySize, len(key))
	}
	return &Keyring{enclave: memguard.NewEnclave(key)}, nil
}

// withKey opens the enclave for the duration of fn.
func (k *Keyring) withKey(fn func(key []byte) error) error {
	if k == nil || k.enclave == nil {
		return ErrInvalidKey
	}
	buf, err := k.enclave.Open()
	if err != nil {
		return fmt.Errorf("open key enclave: %w", err)
	}
	defer buf.Destroy()
	return fn(buf.Bytes())
}

// Release drops the reference to the enclave; the keyring is unusable afterwards.
// The sealed key itself is only wiped by memguard.Purge.
func (k *Keyring) Release() {
	if k != nil {
		k.enclave = nil
	}
}
