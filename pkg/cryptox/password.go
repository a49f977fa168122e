package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Configuration for Argon2id hashing.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 2         // Iteration count
	parallelism = 1         // Number of threads
	keyLength   = 32        // Length of the generated hash
	saltLength  = 16        // Length of the salt
)

// Limits on parameters read back from a stored hash. Anything outside them
// is treated as corrupt rather than handed to argon2.
const (
	maxMemory      = 1 << 20 // KiB
	maxIterations  = 10
	maxParallelism = 16
	minSaltLength  = 8
	maxSaltLength  = 64
	minKeyLength   = 16
	maxKeyLength   = 64
)

var errMalformedHash = errors.New("invalid hash format")

// PasswordHasher turns plaintext passwords into self-describing Argon2id
// hashes and checks candidates against stored hashes.
//
// The pepper is appended to every password before hashing. It is loaded once
// at start (see LoadOrCreatePepper) and never changes for the process lifetime.
type PasswordHasher struct {
	pepper string
}

func NewPasswordHasher(pepper string) *PasswordHasher {
	return &PasswordHasher{pepper: pepper}
}

// Hash generates a PHC-format Argon2id hash string including salt and parameters.
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	hash := argon2.IDKey(
		[]byte(password+h.pepper),
		salt,
		iterations,
		memory,
		parallelism,
		keyLength,
	)
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		b64Salt,
		b64Hash,
	), nil
}

// Verify reports whether password matches the encoded hash. Malformed or
// unrecognised hashes never match.
func (h *PasswordHasher) Verify(password, encodedHash string) bool {
	if isBcrypt(encodedHash) {
		return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
	}

	p, err := parseArgon2(encodedHash)
	if err != nil {
		return false
	}

	computed := argon2.IDKey(
		[]byte(password+h.pepper),
		p.salt,
		p.iterations,
		p.memory,
		p.parallelism,
		uint32(len(p.hash)), // #nosec G115 - bounded by the decoded hash length
	)
	return subtle.ConstantTimeCompare(computed, p.hash) == 1
}

// NeedsRehash reports whether the encoded hash was produced by a deprecated
// scheme or with parameters other than the current ones.
func (h *PasswordHasher) NeedsRehash(encodedHash string) bool {
	if isBcrypt(encodedHash) {
		return true
	}
	p, err := parseArgon2(encodedHash)
	if err != nil {
		return true
	}
	return p.memory != memory ||
		p.iterations != iterations ||
		p.parallelism != parallelism ||
		len(p.hash) != keyLength
}

// Accounts migrated from the previous service still carry bcrypt hashes.
func isBcrypt(encodedHash string) bool {
	return strings.HasPrefix(encodedHash, "$2a$") ||
		strings.HasPrefix(encodedHash, "$2b$") ||
		strings.HasPrefix(encodedHash, "$2y$")
}

type argon2Params struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	hash        []byte
}

// parseArgon2 splits $argon2id$v=19$m=X,t=Y,p=Z$salt$hash.
func parseArgon2(encodedHash string) (argon2Params, error) {
	var p argon2Params

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return p, fmt.Errorf("%w: expected 6 parts", errMalformedHash)
	}
	if parts[0] != "" || parts[1] != "argon2id" {
		return p, fmt.Errorf("%w: not argon2id", errMalformedHash)
	}
	if parts[2] != "v=19" {
		return p, fmt.Errorf("%w: wrong version", errMalformedHash)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return p, fmt.Errorf("%w: parameters: %v", errMalformedHash, err)
	}
	if p.memory == 0 || p.memory > maxMemory ||
		p.iterations == 0 || p.iterations > maxIterations ||
		p.parallelism == 0 || p.parallelism > maxParallelism {
		return p, fmt.Errorf("%w: parameters out of range", errMalformedHash)
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return p, fmt.Errorf("%w: salt: %v", errMalformedHash, err)
	}
	if p.hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return p, fmt.Errorf("%w: hash: %v", errMalformedHash, err)
	}
	if len(p.salt) < minSaltLength || len(p.salt) > maxSaltLength {
		return p, fmt.Errorf("%w: salt length %d", errMalformedHash, len(p.salt))
	}
	if len(p.hash) < minKeyLength || len(p.hash) > maxKeyLength {
		return p, fmt.Errorf("%w: digest length %d", errMalformedHash, len(p.hash))
	}
	return p, nil
}
