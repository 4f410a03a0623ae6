package wallet

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Sealed layout: salt(32) | memory(4) | iterations(4) | parallelism(1) | nonce(24) | ciphertext.
// All integers are little endian. The KDF parameters travel with the data so
// DefaultParams can change without breaking stored wallets.
const (
	SaltSize   = 32
	headerSize = SaltSize + 4 + 4 + 1
)

// EncryptionParams are the Argon2id cost parameters.
type EncryptionParams struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
}

// DefaultParams returns the parameters new wallets are sealed with.
func DefaultParams() EncryptionParams {
	return EncryptionParams{Memory: 64 * 1024, Iterations: 3, Parallelism: 4}
}

func (p EncryptionParams) aead(password, salt []byte) (cipher.AEAD, error) {
	if p.Iterations == 0 || p.Parallelism == 0 {
		return nil, errors.New("invalid key derivation parameters")
	}
	key := argon2.IDKey(password, salt, p.Iterations, p.Memory, p.Parallelism, chacha20poly1305.KeySize)
	defer clear(key)
	return chacha20poly1305.NewX(key)
}

// Encrypt seals data under password with Argon2id and XChaCha20-Poly1305.
// ad is authenticated but not encrypted; Decrypt needs the same ad.
func Encrypt(data, password, ad []byte, params EncryptionParams) ([]byte, error) {
	random := make([]byte, SaltSize+chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(random); err != nil {
		return nil, fmt.Errorf("read random: %w", err)
	}
	salt, nonce := random[:SaltSize], random[SaltSize:]

	aead, err := params.aead(password, salt)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	out := make([]byte, 0, headerSize+len(nonce)+len(data)+aead.Overhead())
	out = append(out, salt...)
	out = binary.LittleEndian.AppendUint32(out, params.Memory)
	out = binary.LittleEndian.AppendUint32(out, params.Iterations)
	out = append(out, params.Parallelism)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, data, ad), nil
}

// Decrypt opens data sealed by Encrypt.
func Decrypt(sealed, password, ad []byte) ([]byte, error) {
	body := headerSize + chacha20poly1305.NonceSizeX
	if need := body + chacha20poly1305.Overhead; len(sealed) < need {
		return nil, fmt.Errorf("encrypted data too short: %d bytes, need at least %d", len(sealed), need)
	}
	params := EncryptionParams{
		Memory:      binary.LittleEndian.Uint32(sealed[SaltSize:]),
		Iterations:  binary.LittleEndian.Uint32(sealed[SaltSize+4:]),
		Parallelism: sealed[SaltSize+8],
	}
	aead, err := params.aead(password, sealed[:SaltSize])
	if err != nil {
		return nil, err
	}
	plain, err := aead.Open(nil, sealed[headerSize:body], sealed[body:], ad)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plain, nil
}
