// Package secrets provides field-level encryption for sensitive values
// stored in the document store (transaction counterparties, free-text
// messages). AES-256-GCM with an HKDF-derived key; ciphertexts are
// base64-encoded for storage in string fields.
//
// DecryptString deliberately falls back to returning its input when
// decryption fails, so records written before encryption was enabled
// remain readable.
package secrets
