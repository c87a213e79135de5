package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/school-service/internal/config"
)

// ErrPasswordTooLong is returned by BcryptHasher for inputs over 72 bytes.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// Hasher turns plaintext passwords into stored digests and checks candidates against them.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// NewHasher returns the hasher for the configured scheme.
func NewHasher(scheme string, bcryptCost int) (Hasher, error) {
	switch scheme {
	case config.PasswordSchemeSHA256:
		return SHA256Hasher{}, nil
	case config.PasswordSchemeBcrypt:
		return NewBcryptHasher(bcryptCost), nil
	default:
		return nil, &config.ConfigurationError{Key: "AUTH_PASSWORD_SCHEME", Reason: fmt.Sprintf("unknown scheme %q", scheme)}
	}
}

// SHA256Hasher produces base64(SHA-256(password)). Digests are unsalted, so equal
// passwords share a digest across users; prefer BcryptHasher for new deployments.
type SHA256Hasher struct{}

// Hash never fails.
func (SHA256Hasher) Hash(password string) (string, error) {
	return sha256Digest(password), nil
}

// Verify reports whether password produces digest. Bcrypt digests are delegated to bcrypt.
func (SHA256Hasher) Verify(password, digest string) bool {
	if isBcryptDigest(digest) {
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(sha256Digest(password)), []byte(digest)) == 1
}

// BcryptHasher hashes with a per-digest random salt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher clamps cost into the range bcrypt accepts.
func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return BcryptHasher{cost: cost}
}

// Hash hashes a plaintext password with configured cost.
func (h BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify accepts bcrypt digests and legacy SHA-256 digests written before a scheme switch.
func (h BcryptHasher) Verify(password, digest string) bool {
	if isBcryptDigest(digest) {
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
	}
	return SHA256Hasher{}.Verify(password, digest)
}

func sha256Digest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func isBcryptDigest(digest string) bool {
	return strings.HasPrefix(digest, "$2a$") || strings.HasPrefix(digest, "$2b$") || strings.HasPrefix(digest, "$2y$")
}
