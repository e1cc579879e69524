// Package otp generates one-time numeric codes for signup and signin verification.
package otp

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	minCode = 100000
	maxCode = 999999
)

// Generate returns a 6-digit code drawn uniformly from [100000, 999999] using crypto/rand.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxCode-minCode+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+minCode, 10), nil
}
