// Package referral computes multi-level referral commissions and codes.
package referral

import (
	"strings"

	"github.com/google/uuid"
)

// CodePrefix starts every referral code.
const CodePrefix = "GE"

const (
	codeLength   = 6
	codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Rates is the commission ladder: the direct referrer first, then each
// upline above them.
var Rates = [...]float64{0.08, 0.03, 0.02, 0.01} //nolint:gochecknoglobals // fixed ladder

// Payout credits one upline for a referred deposit.
type Payout struct {
	UserID string  `json:"user_id"`
	Level  int     `json:"level"`
	Rate   float64 `json:"rate"`
	Amount float64 `json:"amount"`
}

// Commissions splits a deposit among uplines, nearest first. Levels beyond
// the ladder earn nothing, as do blank entries. A non-positive amount pays
// no one.
func Commissions(amount float64, uplines []string) []Payout {
	if amount <= 0 {
		return nil
	}
	var out []Payout
	for i, id := range uplines {
		if i >= len(Rates) {
			break
		}
		if id == "" {
			continue
		}
		out = append(out, Payout{
			UserID: id,
			Level:  i + 1,
			Rate:   Rates[i],
			Amount: amount * Rates[i],
		})
	}
	return out
}

// NewCode returns a fresh code such as GE4K2Z9Q.
func NewCode() string {
	id := uuid.New()
	var b strings.Builder
	b.Grow(len(CodePrefix) + codeLength)
	b.WriteString(CodePrefix)
	for i := 0; i < codeLength; i++ {
		b.WriteByte(codeAlphabet[int(id[i])%len(codeAlphabet)])
	}
	return b.String()
}

// ValidCode reports whether code has the referral code shape.
func ValidCode(code string) bool {
	rest, ok := strings.CutPrefix(code, CodePrefix)
	if !ok || len(rest) != codeLength {
		return false
	}
	for i := 0; i < len(rest); i++ {
		if !strings.ContainsRune(codeAlphabet, rune(rest[i])) {
			return false
		}
	}
	return true
}
