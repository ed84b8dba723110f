package user

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a salted bcrypt digest of pwd.
// Every call uses a fresh salt, so hashing the same password twice yields different digests.
func HashPassword(pwd string, cost int) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), cost)
	if err != nil {
		return nil, errors.Wrap(err, "hashing password")
	}
	return hash, nil
}

// VerifyPassword reports whether pwd matches hash.
// A mismatch, a malformed hash or any other failure all yield false.
func VerifyPassword(pwd string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(pwd)) == nil
}
