package server

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor used when hashing the connection password
// for the config file. Range 4-31; 10-12 is the usual tradeoff.
const BcryptCost = 12

// HashPassword hashes a plaintext connection password with bcrypt so it can
// be stored in the config file's password_hash field.
func HashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", bcrypt.ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// checkServerPassword verifies a PASS argument against the configured
// connection password. A configured bcrypt hash takes precedence over the
// plaintext setting.
func (s *Server) checkServerPassword(given string) bool {
	if hash := s.cfg.Server.PasswordHash; hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(given)) == nil
	}
	return given == s.cfg.Server.Password
}
