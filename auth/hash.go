package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	saltLen    = 16
	keyLen     = 32
	argonTime  = 1
	argonMem   = 64 * 1024
	argonLanes = 2
)

// GenerateHash returns a fresh random salt and the salted digest of password, both hex encoded.
func GenerateHash(password string) (salt, hash string, err error) {
	raw := make([]byte, saltLen)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("auth: read salt: %w", err)
	}

	salt = hex.EncodeToString(raw)
	return salt, digest(password, salt), nil
}

// CheckHash reports whether password matches hash under salt.
func CheckHash(password, salt, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(digest(password, salt)), []byte(hash)) == 1
}

func digest(password, salt string) string {
	key := argon2.IDKey([]byte(password), []byte(salt), argonTime, argonMem, argonLanes, keyLen)
	return hex.EncodeToString(key)
}
