package utils

import "golang.org/x/crypto/bcrypt"

// bcrypt cost 12 keeps a hash around 250ms on current hardware, slow
// enough to blunt offline attacks without hurting interactive login.
const passwordHashCost = 12

// HashPassword derives the stored credential from a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash. The
// cost recorded inside the hash is honored, so old hashes keep verifying
// after a cost bump.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
