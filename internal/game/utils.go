package game

import (
	crand "crypto/rand"
	"math/big"
	"math/rand/v2"
)

// GenerateCode creates a random join code
func GenerateCode() string {
	code := make([]byte, CodeLength)
	for i := range CodeLength {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(CodeChars))))
		if err != nil {
			// fallback to math/rand if crypto fails
			code[i] = CodeChars[rand.IntN(len(CodeChars))]
			continue
		}
		code[i] = CodeChars[n.Int64()]
	}
	return string(code)
}

// UniqueCode generates a join code for which taken returns false
func UniqueCode(taken func(code string) bool) string {
	for {
		code := GenerateCode()
		if !taken(code) {
			return code
		}
	}
}

// ColorFor returns the palette color for a join index
func ColorFor(index int) string {
	if index < 0 {
		index = -index
	}
	return Colors[index%len(Colors)]
}
