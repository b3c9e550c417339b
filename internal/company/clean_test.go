package company

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"qualifier suffix stripped", "Acme Inc - Remote", "Acme Inc", true},
		{"salary shaped", "$240k – $290k USD", "", false},
		{"bare location word", "Remote", "", false},
		{"board name", "LinkedIn", "", false},
		{"plain company", "Stripe", "Stripe", true},
		{"parenthetical stripped", "Figma (Design Tools)", "Figma", true},
		{"at qualifier", "Acme Labs at Scale", "Acme Labs", true},
		{"job title rejected", "Senior Software Engineer", "", false},
		{"legal suffix overrides vocab", "Sales Inc", "Sales Inc", true},
		{"too short", "A", "", false},
		{"no letters", "12345", "", false},
		{"empty", "", "", false},
		{"fulltime suffix", "Globex Corp - Full-time", "Globex Corp", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Clean(tc.input)
			if ok != tc.ok {
				t.Fatalf("Clean(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			}
			if got != tc.want {
				t.Errorf("Clean(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestClean_LongNames(t *testing.T) {
	long := "Very Long Company Name - " + string(make([]byte, 100))
	if _, ok := Clean(long); ok {
		// Truncation at the first " - " keeps the head if it fits.
		got, _ := Clean(long)
		if got != "Very Long Company Name" {
			t.Errorf("expected truncated head, got %q", got)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Acme Inc", "acme-inc"},
		{"Acme  Inc.", "acme-inc"},
		{"Möbius GmbH", "m-bius-gmbh"},
		{"  spaced  ", "spaced"},
	}
	for _, tc := range tests {
		if got := Slugify(tc.input); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
