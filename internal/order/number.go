package order

import (
	"crypto/rand"
	"fmt"
)

const (
	numberPrefix   = "PP-"
	numberLength   = 8
	numberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewNumber returns a human-readable order number: a constant prefix plus
// eight random uppercase alphanumerics. Collisions are not pre-checked; the
// unique constraint on orders.order_number aborts the transaction in the
// astronomically unlikely case.
func NewNumber() string {
	buf := make([]byte, numberLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken
		panic(fmt.Sprintf("order number entropy: %v", err))
	}
	for i, b := range buf {
		buf[i] = numberAlphabet[int(b)%len(numberAlphabet)]
	}
	return numberPrefix + string(buf)
}
