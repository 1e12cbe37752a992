// Package credential implements password hashing and bearer tokens.
package credential

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	legacyPrefix = "pbkdf2:"
	// Iterations assumed when a legacy hash omits them.
	legacyDefaultIterations = 260000
)

// BcryptHasher hashes new passwords with bcrypt and still verifies the
// pbkdf2:<digest>:<iterations>$<salt>$<hex> hashes of the previous backend.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(password, hashed string) bool {
	if strings.HasPrefix(hashed, legacyPrefix) {
		return verifyLegacy(password, hashed)
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

func (h *BcryptHasher) NeedsRehash(hashed string) bool {
	if strings.HasPrefix(hashed, legacyPrefix) {
		return true
	}
	cost, err := bcrypt.Cost([]byte(hashed))
	return err != nil || cost < h.cost
}

func verifyLegacy(password, hashed string) bool {
	parts := strings.SplitN(hashed, "$", 3)
	if len(parts) != 3 {
		return false
	}
	method, salt, want := parts[0], parts[1], parts[2]

	// method is pbkdf2:<digest>[:<iterations>]
	fields := strings.Split(method, ":")
	if len(fields) < 2 || len(fields) > 3 {
		return false
	}
	newHash, size := digest(fields[1])
	if newHash == nil {
		return false
	}
	iterations := legacyDefaultIterations
	if len(fields) == 3 {
		n, err := strconv.Atoi(fields[2])
		if err != nil || n <= 0 {
			return false
		}
		iterations = n
	}

	expected, err := hex.DecodeString(want)
	if err != nil || len(expected) != size {
		return false
	}
	got := pbkdf2.Key([]byte(password), []byte(salt), iterations, size, newHash)
	return subtle.ConstantTimeCompare(got, expected) == 1
}

func digest(name string) (func() hash.Hash, int) {
	switch name {
	case "sha256":
		return sha256.New, sha256.Size
	case "sha512":
		return sha512.New, sha512.Size
	case "sha1":
		return sha1.New, sha1.Size
	}
	return nil, 0
}
