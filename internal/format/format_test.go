package format

import (
	"testing"

	"techtrove/internal/models"
)

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"image design tools", "Image Design Tools"},
		{"already Capitalized", "Already Capitalized"},
		{"chatGPT", "ChatGPT"},
		{"a", "A"},
		{"  leading spaces", "  Leading Spaces"},
		{"hyphen-ated word", "Hyphen-Ated Word"},
		{"under_score stays", "Under_score Stays"},
		{"3d modelling", "3d Modelling"},
		{"multiple   spaces", "Multiple   Spaces"},
		{"ünïcode wörds", "Ünïcode Wörds"},
		{"tab\tseparated", "Tab\tSeparated"},
	}

	for _, tt := range tests {
		if got := TitleCase(tt.in); got != tt.want {
			t.Errorf("TitleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAbbreviateHits(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{1, "1"},
		{847, "847"},
		{999, "999"},
		{1000, "1k"},
		{1049, "1k"},
		{1050, "1.1k"},
		{1234, "1.2k"},
		{1500, "1.5k"},
		{9999, "10k"},
		{25500, "25.5k"},
		{100000, "100k"},
		{1000000, "1000k"},
	}

	for _, tt := range tests {
		if got := AbbreviateHits(tt.in); got != tt.want {
			t.Errorf("AbbreviateHits(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestListing(t *testing.T) {
	cats := []models.Category{
		{
			Name: "image design",
			Tools: []models.Tool{
				{Title: "pixel forge", AddedBy: "Jane Doe", HitCount: 1234, Active: true},
				{Title: "sketch pad", AddedBy: "ADMIN", HitCount: 17, Active: true},
			},
		},
		{Name: "writing helpers"},
	}

	out := Listing(cats)
	if len(out) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(out))
	}

	if out[0].Name != "Image Design" {
		t.Errorf("category name = %q", out[0].Name)
	}
	if out[1].Name != "Writing Helpers" {
		t.Errorf("category name = %q", out[1].Name)
	}
	if len(out[1].Tools) != 0 {
		t.Errorf("empty category should have no tools, got %d", len(out[1].Tools))
	}

	first := out[0].Tools[0]
	if first.Title != "Pixel Forge" {
		t.Errorf("title = %q", first.Title)
	}
	if first.AddedBy != "jane doe" {
		t.Errorf("addedBy = %q, want lowercase", first.AddedBy)
	}
	if first.HitCount != "1.2k" {
		t.Errorf("hitCount = %q, want %q", first.HitCount, "1.2k")
	}

	second := out[0].Tools[1]
	if second.AddedBy != "admin" {
		t.Errorf("addedBy = %q", second.AddedBy)
	}
	if second.HitCount != "17" {
		t.Errorf("hitCount = %q, want %q", second.HitCount, "17")
	}
}
