package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost trades login latency for brute-force resistance.
const bcryptCost = 12

// HashPassword returns a salted one-way hash of the password. The plaintext
// is never stored or logged.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the candidate matches the stored hash.
func CheckPassword(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
