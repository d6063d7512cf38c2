package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wicketplay/fantasy-cricket/internal/domain/match"
	"github.com/wicketplay/fantasy-cricket/internal/domain/playerstats"
	"github.com/wicketplay/fantasy-cricket/internal/infrastructure/repository/memory"
	basecache "github.com/wicketplay/fantasy-cricket/internal/platform/cache"
)

func TestMatchRepository_ServesFromCache(t *testing.T) {
	t.Parallel()

	backing := memory.NewMatchRepository(match.Match{ID: "M1", ExternalID: "ext-1", Status: match.StatusUpcoming})
	repo := NewMatchRepository(backing, basecache.NewStore(time.Minute))

	first, found, err := repo.GetByID(context.Background(), "M1")
	require.NoError(t, err)
	require.True(t, found)

	// Mutate the backing store directly; the cached entry keeps serving the
	// old row until something invalidates it.
	_, err = backing.UpdateStatus(context.Background(), "M1", match.StatusUpcoming, match.StatusLive)
	require.NoError(t, err)

	cached, _, err := repo.GetByID(context.Background(), "M1")
	require.NoError(t, err)
	require.Equal(t, first.Status, cached.Status)
}

func TestMatchRepository_WriteInvalidates(t *testing.T) {
	t.Parallel()

	backing := memory.NewMatchRepository(match.Match{ID: "M1", ExternalID: "ext-1", Status: match.StatusUpcoming})
	repo := NewMatchRepository(backing, basecache.NewStore(time.Minute))

	_, err := repo.ListByStatus(context.Background(), match.StatusUpcoming)
	require.NoError(t, err)

	changed, err := repo.UpdateStatus(context.Background(), "M1", match.StatusUpcoming, match.StatusLive)
	require.NoError(t, err)
	require.True(t, changed)

	upcoming, err := repo.ListByStatus(context.Background(), match.StatusUpcoming)
	require.NoError(t, err)
	require.Empty(t, upcoming, "stale listing survived the status change")

	live, err := repo.ListByStatus(context.Background(), match.StatusLive)
	require.NoError(t, err)
	require.Len(t, live, 1)
}

func TestPlayerStatsRepository_UpsertInvalidatesListing(t *testing.T) {
	t.Parallel()

	backing := memory.NewPlayerStatsRepository()
	repo := NewPlayerStatsRepository(backing, basecache.NewStore(time.Minute))

	seed := playerstats.PlayerStats{MatchID: "M1", PlayerName: "V Kohli", Runs: 10, TotalPoints: 10}
	require.NoError(t, repo.Upsert(context.Background(), seed))

	rows, err := repo.ListByMatchID(context.Background(), "M1")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	seed.Runs = 50
	seed.TotalPoints = 58
	require.NoError(t, repo.Upsert(context.Background(), seed))

	rows, err = repo.ListByMatchID(context.Background(), "M1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 58, rows[0].TotalPoints)
}
