package approval

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestGeneratePIN(t *testing.T) {
	for _, n := range []int{4, 6, 8} {
		pin, err := GeneratePIN(n)
		if err != nil {
			t.Fatalf("GeneratePIN(%d): %v", n, err)
		}
		if len(pin) != n {
			t.Errorf("len = %d, want %d", len(pin), n)
		}
		for _, r := range pin {
			if r < '0' || r > '9' {
				t.Errorf("pin %q contains non-digit", pin)
			}
		}
	}
	if _, err := GeneratePIN(0); err == nil {
		t.Error("expected error for zero length")
	}
}

func TestHashAndCheckPIN(t *testing.T) {
	h, err := HashPIN("1153", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPIN: %v", err)
	}
	if !CheckPIN(h, "1153") {
		t.Error("expected match")
	}
	if CheckPIN(h, "1154") {
		t.Error("expected mismatch")
	}
	if CheckPIN("", "1153") {
		t.Error("empty hash must never match")
	}
}
