// Package credential hashes and verifies account passwords.
package credential

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns passwords into stored digests and checks them
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
	NeedsRehash(digest string) bool
}

// Bcrypt hashes with bcrypt. Digests from LegacyDigest still verify so
// existing accounts can log in and be upgraded.
type Bcrypt struct {
	Cost int
}

// Ensure Bcrypt implements Hasher
var _ Hasher = Bcrypt{}

// NewBcrypt creates a bcrypt hasher. A zero cost uses bcrypt.DefaultCost.
func NewBcrypt(cost int) (Bcrypt, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return Bcrypt{}, fmt.Errorf("bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return Bcrypt{Cost: cost}, nil
}

// MaxPasswordBytes is the longest password bcrypt accepts
const MaxPasswordBytes = 72

// Hash returns a salted bcrypt digest
func (b Bcrypt) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost())
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether password matches digest
func (b Bcrypt) Verify(password, digest string) bool {
	if isLegacy(digest) {
		want := LegacyDigest(password)
		return subtle.ConstantTimeCompare([]byte(want), []byte(digest)) == 1
	}
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	return err == nil
}

// NeedsRehash reports whether digest should be replaced by a fresh Hash
func (b Bcrypt) NeedsRehash(digest string) bool {
	if isLegacy(digest) {
		return true
	}
	cost, err := bcrypt.Cost([]byte(digest))
	if err != nil {
		return true
	}
	return cost < b.cost()
}

func (b Bcrypt) cost() int {
	if b.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return b.Cost
}

// LegacyDigest is the unsalted lowercase hex SHA-256 of password, the
// format older databases store
func LegacyDigest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func isLegacy(digest string) bool {
	if len(digest) != sha256.Size*2 {
		return false
	}
	for _, c := range digest {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
