// Package digest fingerprints text with MD5 and mints random tokens. MD5 is
// used for deduplication keys, not for security.
package digest

import (
	"crypto/md5"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

// TokenBytes is the amount of randomness in a token from RandomBase64.
const TokenBytes = 36

// MD5Base64 returns md5(text) in standard padded base64.
func MD5Base64(text string) string {
	sum := md5.Sum([]byte(text))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// MD5UUID returns the 16 digest bytes of md5(text) as a UUID. No version or
// variant bits are set.
func MD5UUID(text string) uuid.UUID {
	return uuid.UUID(md5.Sum([]byte(text)))
}

func VerifyMD5Base64(text, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(MD5Base64(text)), []byte(hash)) == 1
}

func VerifyMD5UUID(text string, id uuid.UUID) bool {
	sum := MD5UUID(text)
	return subtle.ConstantTimeCompare(sum[:], id[:]) == 1
}

// RandomBase64 returns TokenBytes random bytes in standard base64.
func RandomBase64() (string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
