package iam

import (
	"crypto/rand"
	"math/big"
)

const passwordCharset = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GeneratePassword returns a random password of the given length drawn from
// an unambiguous character set (no 0/O, 1/l). Used for new loginable
// contacts and for the client form's password decoration.
func GeneratePassword(length int) string {
	if length <= 0 {
		length = 10
	}
	out := make([]byte, length)
	max := big.NewInt(int64(len(passwordCharset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing means the process cannot mint credentials at
			// all; treat like UUID generation failure.
			panic(err)
		}
		out[i] = passwordCharset[n.Int64()]
	}
	return string(out)
}
