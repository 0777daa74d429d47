package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id cost parameters. Changing them only affects newly created hashes;
// Verify reads the costs back out of the encoded string.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
	argon2SaltLen = 16
)

// Argon2HashService implements ports.HashService with Argon2id and the
// standard PHC encoding ($argon2id$v=...$m=...,t=...,p=...$salt$hash).
type Argon2HashService struct{}

func NewArgon2HashService() *Argon2HashService {
	return &Argon2HashService{}
}

// Hash derives an Argon2id hash of the password under a fresh random salt.
func (s *Argon2HashService) Hash(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory, argon2Time, argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify reports whether password matches encodedHash. The costs embedded in
// the hash are used, so old hashes keep verifying after a parameter bump.
func (s *Argon2HashService) Verify(password string, encodedHash string) (bool, error) {
	salt, want, params, err := decodeArgon2Hash(encodedHash)
	if err != nil {
		return false, err
	}

	got := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, params.keyLen)

	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

func decodeArgon2Hash(encodedHash string) (salt, hash []byte, params argon2Params, err error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, nil, params, fmt.Errorf("invalid hash format: expected 6 parts, got %d", len(parts))
	}
	if parts[1] != "argon2id" {
		return nil, nil, params, fmt.Errorf("unsupported algorithm: %s", parts[1])
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, params, fmt.Errorf("parsing version: %w", err)
	}
	if version != argon2.Version {
		return nil, nil, params, fmt.Errorf("incompatible argon2 version: %d", version)
	}

	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.time, &params.threads); err != nil {
		return nil, nil, params, fmt.Errorf("parsing params: %w", err)
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, nil, params, fmt.Errorf("decoding salt: %w", err)
	}
	if hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, nil, params, fmt.Errorf("decoding hash: %w", err)
	}
	params.keyLen = uint32(len(hash))

	return salt, hash, params, nil
}
