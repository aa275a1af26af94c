package backup

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Cipher seals whole files with XChaCha20-Poly1305.
// Output layout: 24-byte random nonce, ciphertext, 16-byte tag.
type Cipher struct {
	keyring *Keyring
}

func NewCipher(keyring *Keyring) *Cipher {
	return &Cipher{keyring: keyring}
}

func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	var sealed []byte
	err := c.keyring.withKey(func(key []byte) error {
		aead, err := chacha20poly1305.NewX(key)
		if err != nil {
			return err
		}
		nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
		if _, err := rand.Read(nonce); err != nil {
			return fmt.Errorf("generate nonce: %w", err)
		}
		sealed = aead.Seal(nonce, nonce, plaintext, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sealed, nil
}

// Decrypt fails with ErrBackupCorrupted when the data is truncated, tampered
// with or sealed under another key.
func (c *Cipher) Decrypt(sealed []byte) ([]byte, error) {
	var plaintext []byte
	err := c.keyring.withKey(func(key []byte) error {
		aead, err := chacha20poly1305.NewX(key)
		if err != nil {
			return err
		}
		if len(sealed) < aead.NonceSize()+aead.Overhead() {
			return ErrBackupCorrupted
		}
		nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
		plaintext, err = aead.Open(nil, nonce, ciphertext, nil)
		if err != nil {
			return ErrBackupCorrupted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}
