package security

import "testing"

func TestSanitize_StripsHTMLTags(t *testing.T) {
	sanitizer := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text unchanged", "Mens Cotton Jacket", "Mens Cotton Jacket"},
		{"empty input", "", ""},
		{"script tag removed", "<script>alert(1)</script>Gold Chain", "Gold Chain"},
		{"inline markup removed", "<b>Inspired</b> by nature", "Inspired by nature"},
		{"img tag removed", `before<img src="x" onerror="alert(1)">after`, "beforeafter"},
		{"surrounding whitespace trimmed", "  solid gold petite micropave  ", "solid gold petite micropave"},
		{"tags and whitespace combined", "  <p>100% cotton</p>  ", "100% cotton"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizer.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitize_IsIdempotent(t *testing.T) {
	sanitizer := NewTextSanitizer()

	input := "<div><script>x</script> Mens Casual <b>Slim Fit</b> </div>"
	once := sanitizer.Sanitize(input)
	twice := sanitizer.Sanitize(once)
	if once != twice {
		t.Errorf("Sanitize is not idempotent: %q != %q", once, twice)
	}
}
