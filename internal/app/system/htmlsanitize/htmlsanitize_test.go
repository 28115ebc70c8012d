package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/congregate/internal/app/system/htmlsanitize"
)

func TestPlainText_Empty(t *testing.T) {
	if got := htmlsanitize.PlainText(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestPlainText_PlainTextUnchanged(t *testing.T) {
	if got := htmlsanitize.PlainText("Harvest festival"); got != "Harvest festival" {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestPlainText_RemovesScript(t *testing.T) {
	got := htmlsanitize.PlainText("Choir<script>alert('xss')</script>")
	if strings.Contains(got, "<script") {
		t.Errorf("expected script tag removed, got %q", got)
	}
}

func TestPlainText_StripsTagsKeepsText(t *testing.T) {
	got := htmlsanitize.PlainText("<b>Baptism</b> day")
	if got != "Baptism day" {
		t.Errorf("expected tags stripped, got %q", got)
	}
}

func TestPlainText_KeepsAmpersand(t *testing.T) {
	got := htmlsanitize.PlainText("Bread & Wine")
	if got != "Bread & Wine" {
		t.Errorf("expected ampersand preserved as text, got %q", got)
	}
}
