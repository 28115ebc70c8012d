package approval

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PIN policies.
const (
	PINFixed  = "fixed"  // every approved user gets Config.ApprovalPIN
	PINRandom = "random" // each approval draws Config.PINLength random digits
)

// DefaultApprovalPIN is issued under the fixed policy when none is configured.
const DefaultApprovalPIN = "1153"

const digits = "0123456789"

// GeneratePIN returns length random decimal digits from crypto/rand.
func GeneratePIN(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("pin length must be positive, got %d", length)
	}
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		b.WriteByte(digits[n.Int64()])
	}
	return b.String(), nil
}

// HashPIN returns the bcrypt hash of pin at the given cost.
// A cost of zero uses bcrypt.DefaultCost.
func HashPIN(pin string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPIN reports whether pin matches hash. An empty hash never matches.
func CheckPIN(hash, pin string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}

// issuePIN returns the PIN for a newly approved user under the configured policy.
func (w *Workflow) issuePIN() (string, error) {
	if w.cfg.PINPolicy == PINRandom {
		return GeneratePIN(w.cfg.PINLength)
	}
	return w.cfg.ApprovalPIN, nil
}
