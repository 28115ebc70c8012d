package normalize

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user@example.com", "user@example.com"},
		{"USER@EXAMPLE.COM", "user@example.com"},
		{"  User@Example.Com  ", "user@example.com"},
		{"", ""},
		{"   ", ""},
		{"Mixed.Case@Domain.ORG", "mixed.case@domain.org"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Email(tt.input)
			if got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPIN(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1153", "1153"},
		{"  1153  ", "1153"},
		{"\t0042\n", "0042"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := PIN(tt.input)
			if got != tt.want {
				t.Errorf("PIN(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCaption(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Easter Sunday", "Easter Sunday"},
		{"  Easter   Sunday  ", "Easter Sunday"},
		{"Choir\n\nrehearsal", "Choir rehearsal"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Caption(tt.input)
			if got != tt.want {
				t.Errorf("Caption(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestText(t *testing.T) {
	if got := Text("  Youth Revival  "); got != "Youth Revival" {
		t.Errorf("Text() = %q", got)
	}
}
