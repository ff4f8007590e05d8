package service

import (
	"context"
	"reflect"
	"testing"
)

func TestSplitThemes(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"Todos", nil},
		{" Star Wars , ,Technic", []string{"Star Wars", "Technic"}},
		{"Todos,City", []string{"City"}},
		{"all", nil},
	}
	for _, tt := range tests {
		if got := SplitThemes(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitThemes(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveThemes(t *testing.T) {
	svc := newTestService(testCatalog(), 0)
	ctx := context.Background()

	tests := []struct {
		name  string
		names []string
		want  []int
	}{
		{"no filter", nil, nil},
		{"exact with descendants", []string{"Star Wars"}, []int{1, 2}},
		{"case and punctuation", []string{"episode-iv"}, []int{2}},
		{"typo", []string{"Tecnhic"}, []int{3}},
		{"word order", []string{"Wars Star"}, []int{1, 2}},
		{"several", []string{"Technic", "Episode IV"}, []int{2, 3}},
		{"unknown matches nothing", []string{"Otros"}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ResolveThemes(ctx, tt.names)
			if err != nil {
				t.Fatalf("ResolveThemes: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveThemes(%q) = %v, want %v", tt.names, got, tt.want)
			}
		})
	}
}

func TestCountSets(t *testing.T) {
	svc := newTestService(testCatalog(), 0)
	ctx := context.Background()
	if n, err := svc.CountSets(ctx, nil); err != nil || n != 3 {
		t.Errorf("CountSets(all) = %d, %v; want 3", n, err)
	}
	if n, _ := svc.CountSets(ctx, []string{"Star Wars"}); n != 1 {
		t.Errorf("CountSets(Star Wars) = %d, want 1", n)
	}
	if n, _ := svc.CountSets(ctx, []string{"Otros"}); n != 0 {
		t.Errorf("CountSets(Otros) = %d, want 0", n)
	}
}

func TestSimilarity(t *testing.T) {
	if d := damerauLevenshtein("tecnhic", "technic"); d != 1 {
		t.Errorf("transposition distance = %d, want 1", d)
	}
	if s := similarity("technic", "technic"); s != 1 {
		t.Errorf("similarity of equal strings = %v", s)
	}
	if s := similarity("", "city"); s != 0 {
		t.Errorf("similarity with empty = %v", s)
	}
}
