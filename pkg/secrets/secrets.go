package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// Cipher encrypts and decrypts sensitive field values at rest. It wraps
// AES-256-GCM with an HKDF-derived key so the raw app key never touches
// the cipher directly.
type Cipher struct {
	key []byte
}

// New creates a Cipher from a 32-byte app key.
func New(appKey []byte) (*Cipher, error) {
	key, err := deriveKey(appKey)
	if err != nil {
		return nil, err
	}
	return &Cipher{key: key}, nil
}

// EncryptString encrypts a string and returns base64-encoded ciphertext.
// Empty input passes through unchanged.
func (c *Cipher) EncryptString(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	ciphertext, err := c.EncryptBytes([]byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptString decrypts a base64-encoded ciphertext back to a string.
// Input that does not decode or decrypt is returned unchanged, so data
// written before encryption was enabled stays readable.
func (c *Cipher) DecryptString(token string) string {
	if token == "" {
		return ""
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return token
	}
	plaintext, err := c.DecryptBytes(raw)
	if err != nil {
		return token
	}
	return string(plaintext)
}

// EncryptBytes encrypts raw bytes. The returned ciphertext is
// nonce + encrypted data + tag.
func (c *Cipher) EncryptBytes(data []byte) ([]byte, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	return aesGCM.Seal(nonce, nonce, data, nil), nil
}

// DecryptBytes decrypts ciphertext produced by EncryptBytes.
func (c *Cipher) DecryptBytes(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}

	nonceSize := aesGCM.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, ErrInvalidCiphertext
	}
	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	return plaintext, nil
}
