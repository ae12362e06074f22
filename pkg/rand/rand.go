package rand

import (
	"crypto/rand"
	"encoding/hex"
)

// Hex returns n random bytes hex encoded.
func Hex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
