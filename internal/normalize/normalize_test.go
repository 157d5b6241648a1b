package normalize

import (
	"testing"
	"time"
)

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"collapses whitespace", "  John   M.  Doe ", "John M. Doe"},
		{"nil", nil, ""},
		{"already clean", "hello", "hello"},
		{"non-string", 42, "42"},
		{"tabs and newlines", "a\tb\nc", "a b c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.input); got != tt.want {
				t.Errorf("Text(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"strips punctuation", "John M. Doe", "johnmdoe"},
		{"keeps digits", "AB-123 456", "ab123456"},
		{"accented letters kept", "Éloïse", "éloïse"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.input); got != tt.want {
				t.Errorf("Key(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNamesLike(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"exact", "John Doe", "John Doe", true},
		{"case and punctuation", "JOHN DOE", "john doe", true},
		{"middle initial", "John Doe", "John M Doe", false},
		{"substring", "John Doe", "Doe", true},
		{"prefix containment", "Maria Silva", "Maria Silva Santos", true},
		{"different", "John Doe", "Jane Roe", false},
		{"empty left", "", "John Doe", false},
		{"both empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NamesLike(tt.a, tt.b); got != tt.want {
				t.Errorf("NamesLike(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestParseISODate(t *testing.T) {
	if got := ParseISODate("2027-03-15"); got == nil {
		t.Fatal("expected a date, got nil")
	} else if got.Year() != 2027 || got.Month() != time.March || got.Day() != 15 {
		t.Errorf("got %v", got)
	}

	native := time.Date(2026, 1, 2, 13, 45, 0, 0, time.Local)
	if got := ParseISODate(native); got == nil {
		t.Fatal("expected a date for native time, got nil")
	} else if got.Day() != 2 || got.Hour() != 0 {
		t.Errorf("native time not truncated to date: %v", got)
	}

	for _, bad := range []any{nil, "", "not-a-date", "15/03/2027", 12345} {
		if got := ParseISODate(bad); got != nil {
			t.Errorf("ParseISODate(%v) = %v, want nil", bad, got)
		}
	}
}

func TestParseNumber(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	tests := []struct {
		name  string
		input any
		want  *float64
	}{
		{"plain float", 12.5, f(12.5)},
		{"int", 7, f(7)},
		{"thousands separators", "1,234.50", f(1234.5)},
		{"currency noise", "USD 12,000.00", f(12000)},
		{"negative", "-250.75", f(-250.75)},
		{"bool rejected", true, nil},
		{"empty string", "", nil},
		{"garbage", "n/a", nil},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNumber(tt.input)
			switch {
			case got == nil && tt.want == nil:
			case got == nil || tt.want == nil:
				t.Errorf("ParseNumber(%v) = %v, want %v", tt.input, got, tt.want)
			case *got != *tt.want:
				t.Errorf("ParseNumber(%v) = %v, want %v", tt.input, *got, *tt.want)
			}
		})
	}
}

func TestDedup(t *testing.T) {
	got := Dedup([]string{" apply early ", "apply  early", "", "book flights", "apply early"})
	want := []string{"apply early", "book flights"}
	if len(got) != len(want) {
		t.Fatalf("Dedup returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Dedup[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
