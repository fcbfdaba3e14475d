// utils/random.go
package utils

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
)

const base36Digits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RandomBase36 returns length upper-case base36 characters.
func RandomBase36(length int) string {
	b := make([]byte, length)
	max := big.NewInt(int64(len(base36Digits)))
	for i := range b {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = base36Digits[num.Int64()]
	}
	return string(b)
}

func FormatBase36(n int64) string {
	return strings.ToUpper(strconv.FormatInt(n, 36))
}
