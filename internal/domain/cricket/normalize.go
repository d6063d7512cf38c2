package cricket

import (
	"strconv"
	"strings"
)

// Providers disagree on statistic field names. Each canonical field maps to
// its known synonyms, tried in priority order; missing numerics default to
// zero instead of failing the whole entry.
var fieldSynonyms = map[string][]string{
	"runs":        {"runs", "r"},
	"balls_faced": {"balls", "balls_faced", "b"},
	"fours":       {"fours", "4s"},
	"sixes":       {"sixes", "6s"},
	"strike_rate": {"sr", "strike_rate", "strikeRate"},
	"wickets":     {"wickets", "w"},
	"overs":       {"overs", "o"},
	"maidens":     {"maidens", "m"},
	"economy":     {"economy", "econ", "eco"},
	"catches":     {"catches", "ct"},
	"stumpings":   {"stumpings", "st"},
	"run_outs":    {"runouts", "run_outs", "runout"},
}

var nameSynonyms = []string{"name", "player", "player_name", "batsman", "bowler"}

// On a bowling line r is runs conceded and b is balls bowled, so the
// single-letter batting synonyms are only trusted on rows without bowling
// figures.
var bowlingRowKeys = []string{"overs", "o", "wickets", "w", "economy", "econ", "eco"}

var ambiguousOnBowlingRows = map[string]struct{}{"r": {}, "b": {}}

// NormalizePlayerStats resolves heterogeneous provider entries into the
// canonical per-player shape, keyed by player name. A player appearing on
// several rows (batting, bowling, fielding sections) is folded into one
// record: each row only sets the fields it actually carries, so later rows
// fill gaps instead of wiping earlier sections. Entries without a
// recognizable name are dropped.
func NormalizePlayerStats(raw RawScorecard) map[string]Stats {
	out := make(map[string]Stats, len(raw.Entries))
	for _, entry := range raw.Entries {
		name := playerName(entry)
		if name == "" {
			continue
		}
		merged := out[name]
		mergeEntry(&merged, entry)
		out[name] = merged
	}
	return out
}

func mergeEntry(dst *Stats, entry map[string]any) {
	bowling := hasBowlingFigures(entry)

	setInt(&dst.Runs, entry, "runs", bowling)
	setInt(&dst.BallsFaced, entry, "balls_faced", bowling)
	setInt(&dst.Fours, entry, "fours", bowling)
	setInt(&dst.Sixes, entry, "sixes", bowling)
	setFloat(&dst.StrikeRate, entry, "strike_rate", bowling)
	setInt(&dst.Wickets, entry, "wickets", bowling)
	setFloat(&dst.OversBowled, entry, "overs", bowling)
	setInt(&dst.Maidens, entry, "maidens", bowling)
	setFloat(&dst.EconomyRate, entry, "economy", bowling)
	setInt(&dst.Catches, entry, "catches", bowling)
	setInt(&dst.Stumpings, entry, "stumpings", bowling)
	setInt(&dst.RunOuts, entry, "run_outs", bowling)
}

func hasBowlingFigures(entry map[string]any) bool {
	for _, key := range bowlingRowKeys {
		if _, ok := entry[key]; ok {
			return true
		}
	}
	return false
}

func setInt(dst *int, entry map[string]any, canonical string, bowlingRow bool) {
	if f, ok := lookupField(entry, canonical, bowlingRow); ok {
		*dst = int(f)
	}
}

func setFloat(dst *float64, entry map[string]any, canonical string, bowlingRow bool) {
	if f, ok := lookupField(entry, canonical, bowlingRow); ok {
		*dst = f
	}
}

func lookupField(entry map[string]any, canonical string, bowlingRow bool) (float64, bool) {
	for _, key := range fieldSynonyms[canonical] {
		if bowlingRow {
			if _, ambiguous := ambiguousOnBowlingRows[key]; ambiguous {
				continue
			}
		}
		v, ok := entry[key]
		if !ok {
			continue
		}
		if f, ok := numeric(v); ok {
			return f, true
		}
	}
	return 0, false
}

func playerName(entry map[string]any) string {
	for _, key := range nameSynonyms {
		if v, ok := entry[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
