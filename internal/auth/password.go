package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt digest from the plaintext. The salt and cost
// parameters are embedded in the digest, so old hashes keep verifying after a
// cost upgrade.
func HashPassword(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword reports whether the plaintext matches the digest. bcrypt
// compares in constant time.
func CheckPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
