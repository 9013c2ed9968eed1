package fuzzy

import "testing"

func TestRatio(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"Олександр Петренко", "Олександр Петренко", 100},
		{"", "", 100},
		{"abc", "xyz", 0},
		{"abc", "", 0},
		{"this is a test", "this is a test!", 97},
		{"kitten", "sitting", 62},
	}
	for _, tc := range cases {
		if got := Ratio(tc.a, tc.b); got != tc.want {
			t.Fatalf("Ratio(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestMatchesIsReflexive(t *testing.T) {
	for _, s := range []string{"", "a", "Іван Франко", "John Smith"} {
		if !Matches(s, s, 100) {
			t.Fatalf("expected %q to match itself", s)
		}
	}
}

func TestMatchesIsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Volodymyr Zelenskyi", "Volodymyr Zelensky"},
		{"Петро Порошенко", "Порошенка"},
		{"abc", "cab"},
		{"Anna", "Hannah Arendt"},
	}
	for _, p := range pairs {
		for _, threshold := range []int{0, 50, 75, 90, 100} {
			if Matches(p[0], p[1], threshold) != Matches(p[1], p[0], threshold) {
				t.Fatalf("asymmetric match for %q/%q at %d", p[0], p[1], threshold)
			}
		}
	}
}

func TestMatcherDefaultsThreshold(t *testing.T) {
	m := NewMatcher(0)
	if m.Threshold != DefaultThreshold {
		t.Fatalf("expected default threshold, got %d", m.Threshold)
	}
	if !m.Match("Volodymyr Zelenskyi", "Volodymyr Zelensky") {
		t.Fatalf("expected close spelling variant to match")
	}
	if m.Match("Volodymyr Zelenskyi", "Petro Poroshenko") {
		t.Fatalf("expected different person not to match")
	}
}
