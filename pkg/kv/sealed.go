package kv

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/zoudousouk/souk-go/pkg/config"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const saltKey = "_seal_salt"

// Sealed wraps a Store and encrypts every value with a key derived from a
// passphrase, for secrets such as the auth token that must not land on disk
// in the clear. Keys pass through unchanged; only values are sealed.
type Sealed struct {
	inner Store
	aead  interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
}

// NewSealed derives the sealing key via Argon2id and prepares the cipher.
// The per-store salt is created on first use and persisted in the inner
// store; losing it makes previously sealed values unreadable.
func NewSealed(ctx context.Context, inner Store, cfg config.SecurityConfig) (*Sealed, error) {
	if inner == nil {
		return nil, errors.New("inner store required")
	}
	if cfg.SealPassphrase == "" {
		return nil, errors.New("seal passphrase required")
	}

	salt, err := loadOrCreateSalt(ctx, inner)
	if err != nil {
		return nil, err
	}

	threads := cfg.ArgonParallelism
	if threads < 1 {
		threads = 1
	}
	key := argon2.IDKey(
		[]byte(cfg.SealPassphrase),
		salt,
		uint32(max(cfg.ArgonTime, 1)),
		uint32(max(cfg.ArgonMemoryKB, 8)),
		uint8(threads),
		chacha20poly1305.KeySize,
	)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("initializing cipher: %w", err)
	}
	return &Sealed{inner: inner, aead: aead}, nil
}

func loadOrCreateSalt(ctx context.Context, inner Store) ([]byte, error) {
	stored, err := inner.Get(ctx, saltKey)
	if err == nil {
		salt, decodeErr := base64.RawStdEncoding.DecodeString(stored)
		if decodeErr != nil {
			return nil, fmt.Errorf("decoding seal salt: %w", decodeErr)
		}
		return salt, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("loading seal salt: %w", err)
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating seal salt: %w", err)
	}
	if err := inner.Set(ctx, saltKey, base64.RawStdEncoding.EncodeToString(salt)); err != nil {
		return nil, fmt.Errorf("persisting seal salt: %w", err)
	}
	return salt, nil
}

func (s *Sealed) Get(ctx context.Context, key string) (string, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}
	raw, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("decoding sealed value for %q: %w", key, err)
	}
	if len(raw) < chacha20poly1305.NonceSizeX {
		return "", fmt.Errorf("sealed value for %q is truncated", key)
	}
	nonce, ciphertext := raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return "", fmt.Errorf("unsealing value for %q: %w", key, err)
	}
	return string(plaintext), nil
}

func (s *Sealed) Set(ctx context.Context, key, value string) error {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return s.inner.Set(ctx, key, base64.RawStdEncoding.EncodeToString(sealed))
}

func (s *Sealed) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}
