package location

import (
	"testing"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
)

func TestNormalizeRaw(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bullet separators become pipes",
			input: "San Francisco, CA • New York, NY • United States",
			want:  "san francisco, ca | new york, ny | united states",
		},
		{
			name:  "whitespace collapsed",
			input: "  New   York,\tNY ",
			want:  "new york, ny",
		},
		{
			name:  "punctuation outside separators stripped",
			input: "Berlin (Hybrid)",
			want:  "berlin hybrid",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeRaw(tc.input); got != tc.want {
				t.Errorf("NormalizeRaw(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestHasMultiLocationSignals(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"San Francisco, California, United States", false},
		{"A, B, C, D", true},
		{"Remote, Canada; Remote, US", true},
		{"London or Paris / Berlin", true},
		{"Multiple Locations", true},
		{"Any of: NYC, SF", true},
		{"Austin, TX", false},
		{"", false},
	}

	for _, tc := range tests {
		if got := HasMultiLocationSignals(tc.input); got != tc.want {
			t.Errorf("HasMultiLocationSignals(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestNormalize_Kind(t *testing.T) {
	tests := []struct {
		input string
		want  model.LocationKind
	}{
		{"Remote", model.LocationRemote},
		{"Remote - US", model.LocationRemote},
		{"Telecommute", model.LocationRemote},
		{"Work from home", model.LocationRemote},
		{"WFH, Anywhere", model.LocationRemote},
		{"Hybrid - New York", model.LocationHybrid},
		{"Remote and onsite", model.LocationHybrid},
		{"Onsite and remote", model.LocationHybrid},
		{"Onsite", model.LocationOnsite},
		{"San Francisco, CA", model.LocationUnknown},
		// boundary: must not match inside a word
		{"Remotely operated vehicles team", model.LocationUnknown},
	}

	for _, tc := range tests {
		got := Normalize(tc.input)
		if got.Kind != tc.want {
			t.Errorf("Normalize(%q).Kind = %s, want %s", tc.input, got.Kind, tc.want)
		}
		if (got.Kind == model.LocationRemote) != got.IsRemote {
			t.Errorf("Normalize(%q) IsRemote inconsistent with Kind", tc.input)
		}
	}
}

func TestNormalize_Extraction(t *testing.T) {
	tests := []struct {
		name                  string
		input                 string
		city, region, country string
	}{
		{"city region country", "San Francisco, California, United States", "San Francisco", "California", "US"},
		{"city state code", "San Francisco, CA", "San Francisco", "CA", ""},
		{"city country", "Berlin, Germany", "Berlin", "", "DE"},
		{"bare country", "United Kingdom", "", "", "GB"},
		{"bare city", "Tallinn", "Tallinn", "", ""},
		{"country first", "US, New York", "New York", "", "US"},
		{"trailing qualifier stripped", "London, United Kingdom (Remote)", "London", "", "GB"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.input)
			if got.City != tc.city || got.Region != tc.region || got.Country != tc.country {
				t.Errorf("Normalize(%q) = city %q region %q country %q, want %q %q %q",
					tc.input, got.City, got.Region, got.Country, tc.city, tc.region, tc.country)
			}
		})
	}
}

func TestNormalize_MultiLocationSuppressesExtraction(t *testing.T) {
	got := Normalize("San Francisco, CA | New York, NY")
	if !got.MultiLocation {
		t.Fatal("expected MultiLocation")
	}
	if got.City != "" || got.Region != "" || got.Country != "" {
		t.Errorf("expected no extraction for multi-location, got %+v", got)
	}
}

func TestNormalize_RemoteRegion(t *testing.T) {
	got := Normalize("Remote, US")
	if got.Kind != model.LocationRemote {
		t.Fatalf("expected remote, got %s", got.Kind)
	}
	if got.RemoteRegion != "US" {
		t.Errorf("expected remote region US, got %q", got.RemoteRegion)
	}

	got = Normalize("Remote, EMEA")
	if got.RemoteRegion != "EMEA" {
		t.Errorf("expected remote region EMEA, got %q", got.RemoteRegion)
	}
	if got.Country != "" {
		t.Errorf("EMEA must not be treated as a country, got %q", got.Country)
	}
}

func TestNormalize_Empty(t *testing.T) {
	got := Normalize("")
	want := model.NormalizedLocation{Kind: model.LocationUnknown}
	if got != want {
		t.Errorf("Normalize(\"\") = %+v, want all-null result", got)
	}
}
