package secret

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// Length matches the identity provider's temporary-credential policy.
	Length = 12

	upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lower   = "abcdefghijklmnopqrstuvwxyz"
	digits  = "0123456789"
	symbols = "!@#$%^&*"

	// Charset is the full alphabet temporary secrets are drawn from.
	Charset = upper + lower + digits + symbols
)

// Generator produces temporary credentials from crypto/rand. It holds no
// state and is safe for concurrent use.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns a Length-character secret containing at least one
// uppercase letter, one lowercase letter, one digit and one symbol, so it
// always satisfies the identity provider's complexity policy.
func (g *Generator) Generate() (string, error) {
	buf := make([]byte, Length)

	// One guaranteed character per class, the rest from the full alphabet.
	classes := []string{upper, lower, digits, symbols}
	for i := range buf {
		set := Charset
		if i < len(classes) {
			set = classes[i]
		}
		c, err := randomChar(set)
		if err != nil {
			return "", err
		}
		buf[i] = c
	}

	if err := shuffle(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func randomChar(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, fmt.Errorf("failed to draw random character: %w", err)
	}
	return set[n.Int64()], nil
}

// shuffle performs a Fisher-Yates shuffle so the class-guaranteed
// characters do not sit at predictable positions.
func shuffle(buf []byte) error {
	for i := len(buf) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("failed to shuffle secret: %w", err)
		}
		j := n.Int64()
		buf[i], buf[j] = buf[j], buf[i]
	}
	return nil
}
