package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/cipher_mock.go -package=mock

// Cipher is the authenticated encryption applied to change and snapshot
// payloads before they leave the device and right after they arrive.
//
// The relay never holds the key, so everything it stores is opaque to it.
// Document ids and routing metadata are never passed through a Cipher.
type Cipher interface {
	// Encrypt seals plaintext with a fresh random nonce.
	// The result is laid out as nonce ‖ ciphertext ‖ tag.
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt opens a blob produced by Encrypt. Any tampering, truncation or
	// foreign key fails with [models.ErrAuthenticationFailure].
	Decrypt(blob []byte) ([]byte, error)
}
