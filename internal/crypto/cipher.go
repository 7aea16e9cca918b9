// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/MKhiriev/go-lst-sync/models"
)

// KeySize is the length of a symmetric document key in bytes.
const KeySize = chacha20poly1305.KeySize

var ErrInvalidKey = errors.New("invalid key length")

// xchachaCipher implements [Cipher] with XChaCha20-Poly1305. The 24-byte
// nonce is large enough to be drawn at random for every message.
type xchachaCipher struct {
	aead cipher.AEAD
}

// NewCipher builds a [Cipher] over a 32-byte key.
func NewCipher(key []byte) (Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKey, len(key), KeySize)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create aead: %w", err)
	}
	return &xchachaCipher{aead: aead}, nil
}

// Encrypt implements [Cipher].
func (c *xchachaCipher) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt implements [Cipher].
func (c *xchachaCipher) Decrypt(blob []byte) ([]byte, error) {
	nonceSize := c.aead.NonceSize()
	if len(blob) < nonceSize+c.aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", models.ErrAuthenticationFailure)
	}

	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]
	plain, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrAuthenticationFailure, err)
	}
	return plain, nil
}
