package toolver

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "date only", raw: "2024.03.15", want: "2024.03.15"},
		{name: "nightly build", raw: "2024.03.15.232816", want: "2024.03.15.232816"},
		{name: "surrounding whitespace", raw: "  2024.01.01\n", want: "2024.01.01"},
		{name: "v prefix", raw: "v2024.01.01", want: "2024.01.01"},
		{name: "semver", raw: "1.2.3", wantErr: true},
		{name: "short month", raw: "2024.3.15", wantErr: true},
		{name: "impossible date", raw: "2024.13.40", wantErr: true},
		{name: "impossible time", raw: "2024.01.01.256199", wantErr: true},
		{name: "release name", raw: "yt-dlp 2024.01.01", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.raw)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidVersion) {
					t.Fatalf("Parse(%q) error = %v, want ErrInvalidVersion", tc.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tc.raw, err)
			}
			if got.String() != tc.want {
				t.Fatalf("Parse(%q) = %q, want %q", tc.raw, got.String(), tc.want)
			}
		})
	}
}

func TestIsUpdateNeededMatchesLexicographicOrder(t *testing.T) {
	tokens := []string{
		"2023.12.30",
		"2024.01.01",
		"2024.01.01.000001",
		"2024.01.01.235959",
		"2024.01.02",
		"2024.03.15",
		"2024.11.04.120000",
		"2025.01.01",
	}

	for _, a := range tokens {
		for _, b := range tokens {
			got := IsUpdateNeeded(MustParse(a), MustParse(b))
			want := b > a
			if got != want {
				t.Errorf("IsUpdateNeeded(local=%s, remote=%s) = %v, want %v", a, b, got, want)
			}
		}
	}
}

func TestIsUpdateNeededUnknownVersions(t *testing.T) {
	if !IsUpdateNeeded(Version{}, MustParse("2024.01.01")) {
		t.Fatalf("expected unknown local version to need an update")
	}
	if IsUpdateNeeded(MustParse("2024.01.01"), Version{}) {
		t.Fatalf("expected unknown remote version to never trigger an update")
	}
}

func TestFromOutput(t *testing.T) {
	v, err := FromOutput("\n2024.08.06\n")
	if err != nil {
		t.Fatalf("FromOutput: %v", err)
	}
	if v.String() != "2024.08.06" {
		t.Fatalf("unexpected version %q", v)
	}

	if _, err := FromOutput("Usage: yt-dlp [OPTIONS] URL\n"); err == nil {
		t.Fatalf("expected usage text to be rejected")
	}
	if _, err := FromOutput("   \n"); err == nil {
		t.Fatalf("expected empty output to be rejected")
	}
}
