package secrets

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the required app key size: 256 bits for AES-256.
	KeySize = 32

	// saltInfo provides domain separation for HKDF key derivation.
	saltInfo = "finbuddy-secrets-v1"
)

// deriveKey derives the cipher key from the app key using HKDF-SHA256.
func deriveKey(appKey []byte) ([]byte, error) {
	if len(appKey) != KeySize {
		return nil, ErrInvalidKey
	}

	r := hkdf.New(sha256.New, appKey, nil, []byte(saltInfo))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return key, nil
}
