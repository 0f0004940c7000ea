package tagset

import (
	"reflect"
	"testing"
)

func TestWhitelistAllowsIgnoresCase(t *testing.T) {
	w := NewWhitelist([]string{"Title", "ARTIST", " genre "})

	for _, key := range []string{"title", "TITLE", "TiTlE", "artist", "GENRE"} {
		if !w.Allows(key) {
			t.Errorf("Allows(%q) = false, want true", key)
		}
	}
	if w.Allows("REPLAYGAIN_TRACK_GAIN") {
		t.Error("non-whitelisted key allowed")
	}
}

func TestFilterDropsAndUppercases(t *testing.T) {
	w := NewWhitelist([]string{"TITLE", "ARTIST"})
	tags := map[string]string{
		"title":                 "So What",
		"artist":                "Miles Davis",
		"replaygain_track_gain": "-3.2 dB",
		"cuesheet":              "garbage",
	}

	got := Filter(tags, w)
	want := []Entry{
		{Key: "ARTIST", Value: "Miles Davis"},
		{Key: "TITLE", Value: "So What"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Filter = %v, want %v", got, want)
	}
}

func TestFilterIdempotent(t *testing.T) {
	w := NewWhitelist([]string{"TITLE", "ARTIST", "GENRE"})
	tags := map[string]string{"title": "Blue in Green", "genre": "Jazz"}

	first := Filter(tags, w)

	// Re-filter what the first pass would have written back.
	roundTrip := make(map[string]string, len(first))
	for _, e := range first {
		roundTrip[e.Key] = e.Value
	}
	second := Filter(roundTrip, w)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("not idempotent: first %v, second %v", first, second)
	}
}

func TestFilterCollapsesCaseDuplicatesDeterministically(t *testing.T) {
	w := NewWhitelist([]string{"TITLE"})
	tags := map[string]string{
		"Title": "b",
		"TITLE": "a",
		"title": "c",
	}

	// Sorted key order makes "title" the last writer, every run.
	for i := 0; i < 10; i++ {
		got := Filter(tags, w)
		if len(got) != 1 || got[0].Value != "c" {
			t.Fatalf("run %d: Filter = %v", i, got)
		}
	}
}

func TestFilterEmptyInput(t *testing.T) {
	w := NewWhitelist([]string{"TITLE"})
	if got := Filter(nil, w); len(got) != 0 {
		t.Fatalf("Filter(nil) = %v", got)
	}
}
