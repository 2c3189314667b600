// Package password produces temporary credentials for newly provisioned accounts.
package password

import (
	"crypto/rand"
	"math/big"
)

const (
	Letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	Digits  = "23456789"
	Symbols = "!@#$%&*?"

	MinLength = 8
	MaxLength = 10
)

// Generate returns an 8-10 character password made of letters plus one digit and one
// symbol. The digit and symbol sit next to each other at the start or at the end.
func Generate() string {
	length := MinLength + randIntn(MaxLength-MinLength+1)

	pair := []byte{pick(Digits), pick(Symbols)}
	letters := make([]byte, length-len(pair))
	for i := range letters {
		letters[i] = pick(Letters)
	}

	if randIntn(2) == 0 {
		return string(pair) + string(letters)
	}
	return string(letters) + string(pair)
}

func pick(set string) byte {
	return set[randIntn(len(set))]
}

func randIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return int(v.Int64())
}
