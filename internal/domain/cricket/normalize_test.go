package cricket

import "testing"

func TestNormalizePlayerStats_SynonymFields(t *testing.T) {
	t.Parallel()

	raw := RawScorecard{
		MatchExternalID: "m-1",
		Entries: []map[string]any{
			{
				"name": "Rohit",
				"r":    float64(45),
				"b":    float64(30),
				"4s":   float64(5),
				"6s":   float64(2),
				"sr":   float64(150),
			},
			{
				"player":  "Bumrah",
				"wickets": float64(3),
				"overs":   float64(4),
				"m":       float64(1),
				"econ":    "6.25",
			},
		},
	}

	stats := NormalizePlayerStats(raw)
	if len(stats) != 2 {
		t.Fatalf("expected 2 players, got %d", len(stats))
	}

	rohit := stats["Rohit"]
	if rohit.Runs != 45 || rohit.BallsFaced != 30 || rohit.Fours != 5 || rohit.Sixes != 2 {
		t.Fatalf("unexpected batting stats: %+v", rohit)
	}
	if rohit.StrikeRate != 150 {
		t.Fatalf("unexpected strike rate: %v", rohit.StrikeRate)
	}

	bumrah := stats["Bumrah"]
	if bumrah.Wickets != 3 || bumrah.Maidens != 1 {
		t.Fatalf("unexpected bowling stats: %+v", bumrah)
	}
	if bumrah.EconomyRate != 6.25 {
		t.Fatalf("unexpected economy: %v", bumrah.EconomyRate)
	}
}

func TestNormalizePlayerStats_MergesAllRounderRows(t *testing.T) {
	t.Parallel()

	// Scorecards list all-rounders once per discipline. The batting, bowling
	// and fielding rows must fold into a single record instead of the last
	// row wiping the earlier ones.
	raw := RawScorecard{
		MatchExternalID: "m-1",
		Entries: []map[string]any{
			{
				"batsman": "R Jadeja",
				"runs":    float64(55),
				"balls":   float64(40),
				"4s":      float64(6),
				"sr":      float64(137.5),
			},
			{
				"bowler":  "R Jadeja",
				"overs":   float64(4),
				"r":       float64(28),
				"wickets": float64(2),
				"econ":    float64(7),
			},
			{
				"name": "R Jadeja",
				"ct":   float64(1),
			},
		},
	}

	stats := NormalizePlayerStats(raw)
	if len(stats) != 1 {
		t.Fatalf("expected 1 player, got %d", len(stats))
	}

	jadeja := stats["R Jadeja"]
	if jadeja.Runs != 55 || jadeja.BallsFaced != 40 || jadeja.Fours != 6 {
		t.Fatalf("batting stats lost in merge: %+v", jadeja)
	}
	if jadeja.Wickets != 2 || jadeja.OversBowled != 4 || jadeja.EconomyRate != 7 {
		t.Fatalf("bowling stats lost in merge: %+v", jadeja)
	}
	if jadeja.Catches != 1 {
		t.Fatalf("fielding stats lost in merge: %+v", jadeja)
	}
}

func TestNormalizePlayerStats_BowlingRowDoesNotOverwriteRuns(t *testing.T) {
	t.Parallel()

	// A bowling line carries r as runs conceded, so its single-letter batting
	// synonyms must not be read as batting figures.
	stats := NormalizePlayerStats(RawScorecard{
		Entries: []map[string]any{
			{"name": "Ashwin", "r": float64(31), "b": float64(22)},
			{"name": "Ashwin", "o": float64(3), "r": float64(19), "w": float64(1)},
		},
	})

	ashwin := stats["Ashwin"]
	if ashwin.Runs != 31 || ashwin.BallsFaced != 22 {
		t.Fatalf("bowling row overwrote batting figures: %+v", ashwin)
	}
	if ashwin.Wickets != 1 || ashwin.OversBowled != 3 {
		t.Fatalf("unexpected bowling stats: %+v", ashwin)
	}
}

func TestNormalizePlayerStats_MissingFieldsDefaultToZero(t *testing.T) {
	t.Parallel()

	stats := NormalizePlayerStats(RawScorecard{
		Entries: []map[string]any{{"name": "Kohli"}},
	})

	kohli, ok := stats["Kohli"]
	if !ok {
		t.Fatal("expected player to survive normalization")
	}
	if kohli != (Stats{}) {
		t.Fatalf("expected zero stats, got %+v", kohli)
	}
}

func TestNormalizePlayerStats_DropsNamelessEntries(t *testing.T) {
	t.Parallel()

	stats := NormalizePlayerStats(RawScorecard{
		Entries: []map[string]any{
			{"runs": float64(10)},
			{"name": "", "runs": float64(10)},
		},
	})
	if len(stats) != 0 {
		t.Fatalf("expected nameless entries to be dropped, got %d", len(stats))
	}
}
