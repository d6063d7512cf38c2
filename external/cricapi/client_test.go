package cricapi

import "testing"

func TestMapMatchItem_FillsTeamsAndFormat(t *testing.T) {
	t.Parallel()

	item := matchListItem{
		ID:        "9b2c5d",
		Name:      "England vs New Zealand, 1st ODI",
		MatchType: "odi",
		Venue:     "Lord's",
		DateTime:  "2026-06-02T10:00:00",
		Teams:     []string{"England", "New Zealand"},
		Status:    "Match not started",
		Ended:     false,
	}

	mapped := mapMatchItem(item, nil)
	if mapped.ExternalID != "9b2c5d" {
		t.Fatalf("unexpected external id: %s", mapped.ExternalID)
	}
	if mapped.TeamA != "England" || mapped.TeamB != "New Zealand" {
		t.Fatalf("unexpected teams: %q vs %q", mapped.TeamA, mapped.TeamB)
	}
	if mapped.Format != "odi" {
		t.Fatalf("unexpected format: %s", mapped.Format)
	}
	if mapped.StartsAt.IsZero() {
		t.Fatalf("expected start time parsed")
	}
}

func TestMapMatchItem_SingleTeamListing(t *testing.T) {
	t.Parallel()

	mapped := mapMatchItem(matchListItem{ID: "x", Teams: []string{"India"}}, nil)
	if mapped.TeamA != "India" {
		t.Fatalf("unexpected team a: %q", mapped.TeamA)
	}
	if mapped.TeamB != "" {
		t.Fatalf("expected empty team b, got %q", mapped.TeamB)
	}
}

func TestAbbreviateBody_TruncatesLongPayloads(t *testing.T) {
	t.Parallel()

	long := make([]byte, 600)
	for i := range long {
		long[i] = 'a'
	}
	out := abbreviateBody(long)
	if len(out) != 243 {
		t.Fatalf("unexpected abbreviated length: %d", len(out))
	}
}
