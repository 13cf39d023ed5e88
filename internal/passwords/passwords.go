package passwords

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength is the most bytes bcrypt will hash.
const MaxLength = 72

var (
	ErrEmpty   = errors.New("password must not be empty")
	ErrTooLong = errors.New("password longer than 72 bytes")
)

// dummyHash is compared against when the user does not exist, so a failed
// login costs the same whether or not the username is known.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("biblioteca-dummy-password"), bcrypt.DefaultCost)

func Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmpty
	}
	if len(plain) > MaxLength {
		return "", ErrTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func Check(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Burn performs a throwaway comparison.
func Burn(plain string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
}
