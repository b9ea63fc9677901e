package filter

import (
	"sync"
	"testing"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		term, name string
		want       bool
	}{
		{"", "anything", true},
		{"  ", "anything", true},
		{"chu", "Churn-Model", true},
		{"MODEL", "churn-model", true},
		{"straße", "STRASSE-exp", true},
		{"xyz", "churn", false},
	}
	for _, tt := range tests {
		if got := Match(tt.term, tt.name); got != tt.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tt.term, tt.name, got, tt.want)
		}
	}
}

func TestMatchConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				if !Match("straße", "Team-STRASSE-exp") || Match("xyz", "churn") {
					t.Error("unexpected match result")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestGlob(t *testing.T) {
	tests := []struct {
		pattern, name string
		want          bool
	}{
		{"", "x", true},
		{"team-*", "team-a", true},
		{"team-*", "other", false},
		{"prod/**", "prod/a/b", true},
		{"[", "x", false},
	}
	for _, tt := range tests {
		if got := Glob(tt.pattern, tt.name); got != tt.want {
			t.Errorf("Glob(%q, %q) = %v, want %v", tt.pattern, tt.name, got, tt.want)
		}
	}
}

func TestApply(t *testing.T) {
	items := []string{"team-churn", "team-fraud", "sandbox-churn"}
	got := Apply(items, func(s string) string { return s }, Options{Search: "CHURN", Glob: "team-*"})
	if len(got) != 1 || got[0] != "team-churn" {
		t.Errorf("Apply() = %v", got)
	}
	all := Apply(items, func(s string) string { return s }, Options{})
	if len(all) != 3 {
		t.Errorf("Apply() with no options = %v", all)
	}
}
