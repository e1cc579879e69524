package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	// ErrPasswordMismatch is returned by Compare when the password does not match the hash.
	ErrPasswordMismatch = errors.New("password does not match")
	// ErrInvalidHash is returned when a stored hash is not a well-formed argon2id string.
	ErrInvalidHash = errors.New("invalid password hash")
	// ErrIncompatibleVersion is returned when a stored hash uses another argon2 version.
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
)

// Argon2Params tunes argon2id. Memory is in KiB.
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params are the interactive-login defaults (64 MiB, 3 passes, 2 lanes).
var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// Hasher hashes and verifies passwords using argon2id. Callers must not log or
// persist plaintext passwords.
type Hasher struct {
	Params Argon2Params
}

// NewHasher returns a Hasher with the given cost parameters. Zero fields fall back to
// DefaultArgon2Params.
func NewHasher(memoryKiB, iterations uint32, parallelism uint8) *Hasher {
	p := DefaultArgon2Params
	if memoryKiB > 0 {
		p.Memory = memoryKiB
	}
	if iterations > 0 {
		p.Iterations = iterations
	}
	if parallelism > 0 {
		p.Parallelism = parallelism
	}
	return &Hasher{Params: p}
}

// Hash produces an encoded argon2id hash of password with a fresh random salt, in the
// form $argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>.
func (h *Hasher) Hash(password []byte) (string, error) {
	salt := make([]byte, h.Params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey(password, salt, h.Params.Iterations, h.Params.Memory, h.Params.Parallelism, h.Params.KeyLength)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.Params.Memory, h.Params.Iterations, h.Params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Compare verifies password against the stored hash using the parameters encoded in
// the hash. Returns nil on match, ErrPasswordMismatch on mismatch, ErrInvalidHash or
// ErrIncompatibleVersion if the hash cannot be used.
func (h *Hasher) Compare(hash string, password []byte) error {
	p, salt, key, err := decodeHash(hash)
	if err != nil {
		return err
	}
	other := argon2.IDKey(password, salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	if subtle.ConstantTimeCompare(key, other) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

func decodeHash(encoded string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, ErrInvalidHash
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, ErrInvalidHash
	}
	if version != argon2.Version {
		return p, nil, nil, ErrIncompatibleVersion
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return p, nil, nil, ErrInvalidHash
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, ErrInvalidHash
	}
	p.SaltLength = uint32(len(salt))
	p.KeyLength = uint32(len(key))
	return p, salt, key, nil
}
