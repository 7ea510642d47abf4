package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrTooLong = errors.New("password longer than 72 bytes")

// Bcrypt hashes passwords with golang.org/x/crypto/bcrypt at Cost.
type Bcrypt struct {
	Cost int
}

func NewBcrypt() Bcrypt {
	return Bcrypt{Cost: bcrypt.DefaultCost}
}

func (b Bcrypt) Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), b.Cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrTooLong
	}
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b Bcrypt) Compare(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
