package orders

import (
	"crypto/rand"
	"fmt"
	"time"
)

const numberAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewOrderNumber builds a human-readable order number such as
// ORD-20260830-7KQ2M9. The suffix alphabet skips easily confused glyphs.
func NewOrderNumber(now time.Time) (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate order number: %w", err)
	}
	for i, b := range buf {
		buf[i] = numberAlphabet[int(b)%len(numberAlphabet)]
	}
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), string(buf)), nil
}
