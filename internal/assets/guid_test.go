package assets

import "testing"

func TestValidGUID(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"valid lowercase", "0000000000000000000000000000aaaa", true},
		{"valid mixed case", "0000000000000000000000000000AaAa", true},
		{"too short", "0000000000000000000000000000aaa", false},
		{"too long", "0000000000000000000000000000aaaaa", false},
		{"non hex", "000000000000000000000000000zzaaa", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ValidGUID(c.in); got != c.want {
				t.Errorf("ValidGUID(%q) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}

func TestNormalizeGUID(t *testing.T) {
	got, ok := NormalizeGUID("0000000000000000000000000000AaAa")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got != "0000000000000000000000000000aaaa" {
		t.Errorf("got %q", got)
	}

	if _, ok := NormalizeGUID("not-a-guid"); ok {
		t.Errorf("expected not ok for invalid guid")
	}
}
