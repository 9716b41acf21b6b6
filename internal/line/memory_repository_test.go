package line_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subwayline/subwayline/internal/line"
	"github.com/subwayline/subwayline/internal/station"
)

func TestInMemoryRepository_CreateAndGet(t *testing.T) {
	repo := line.NewInMemoryRepository()
	ctx := context.Background()

	l := line.NewLine("line_1", "Line 2", "green", section(t, stationA, stationB, 10))
	require.NoError(t, repo.Create(ctx, l))

	got, err := repo.Get(ctx, "line_1")
	require.NoError(t, err)
	assert.Equal(t, "Line 2", got.Name)
	assert.Equal(t, []string{"stn_a", "stn_b"}, stationIDs(t, got.Sections))

	// Stored lines are copies.
	require.NoError(t, got.AddSection(section(t, stationB, stationC, 3)))
	again, err := repo.Get(ctx, "line_1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Sections.Len())

	_, err = repo.Get(ctx, "line_missing")
	assert.ErrorIs(t, err, line.ErrLineNotFound)
}

func TestInMemoryRepository_DuplicateName(t *testing.T) {
	repo := line.NewInMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, line.NewLine("line_1", "Line 2", "green", section(t, stationA, stationB, 10))))
	err := repo.Create(ctx, line.NewLine("line_2", "Line 2", "red", section(t, stationX, stationY, 4)))
	assert.ErrorIs(t, err, line.ErrDuplicateLineName)
}

func TestInMemoryRepository_Mutate(t *testing.T) {
	repo := line.NewInMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, line.NewLine("line_1", "Line 2", "green", section(t, stationA, stationB, 10))))

	updated, err := repo.Mutate(ctx, "line_1", func(l *line.Line) error {
		return l.AddSection(section(t, stationA, stationC, 4))
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"stn_a", "stn_c", "stn_b"}, stationIDs(t, updated.Sections))

	got, err := repo.Get(ctx, "line_1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Sections.Len())
}

func TestInMemoryRepository_MutateFailureKeepsLine(t *testing.T) {
	repo := line.NewInMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, line.NewLine("line_1", "Line 2", "green", section(t, stationA, stationB, 10))))

	boom := errors.New("boom")
	_, err := repo.Mutate(ctx, "line_1", func(l *line.Line) error {
		l.Rename("Changed", "red")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.Get(ctx, "line_1")
	require.NoError(t, err)
	assert.Equal(t, "Line 2", got.Name)

	_, err = repo.Mutate(ctx, "line_missing", func(*line.Line) error { return nil })
	assert.ErrorIs(t, err, line.ErrLineNotFound)
}

func TestInMemoryRepository_ListOrder(t *testing.T) {
	repo := line.NewInMemoryRepository()
	ctx := context.Background()

	first := line.NewLine("line_b", "Line 1", "blue", section(t, stationA, stationB, 10))
	second := line.NewLine("line_a", "Line 2", "green", section(t, stationX, stationY, 10))
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, first))

	lines, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "line_b", lines[0].ID)
	assert.Equal(t, "line_a", lines[1].ID)
}

func TestInMemoryRepository_DeleteAndHasStation(t *testing.T) {
	repo := line.NewInMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, line.NewLine("line_1", "Line 2", "green", section(t, stationA, stationB, 10))))

	has, err := repo.HasStation(ctx, "stn_b")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, repo.Delete(ctx, "line_1"))
	assert.ErrorIs(t, repo.Delete(ctx, "line_1"), line.ErrLineNotFound)

	has, err = repo.HasStation(ctx, "stn_b")
	require.NoError(t, err)
	assert.False(t, has)
}

type repoUsage struct{ repo line.Repository }

func (u repoUsage) StationInUse(ctx context.Context, id string) (bool, error) {
	return u.repo.HasStation(ctx, id)
}

func TestInMemoryRepository_StationGuard(t *testing.T) {
	ctx := context.Background()
	stations := station.NewInMemoryRepository()
	for _, ref := range []line.StationRef{stationA, stationB, stationC} {
		require.NoError(t, stations.Create(ctx, &station.Station{ID: ref.ID, Name: ref.Name, CreatedAt: time.Now()}))
	}
	repo := line.NewInMemoryRepository(line.WithStationGuard(stations))

	err := repo.Create(ctx, line.NewLine("line_0", "Line 0", "red", section(t, stationX, stationA, 3)))
	assert.ErrorIs(t, err, station.ErrStationNotFound)
	_, err = repo.Get(ctx, "line_0")
	assert.ErrorIs(t, err, line.ErrLineNotFound)

	require.NoError(t, repo.Create(ctx, line.NewLine("line_1", "Line 1", "green", section(t, stationA, stationB, 10))))
	require.NoError(t, stations.Delete(ctx, stationC.ID, repoUsage{repo}))

	_, err = repo.Mutate(ctx, "line_1", func(l *line.Line) error {
		return l.AddSection(section(t, stationB, stationC, 3))
	})
	assert.ErrorIs(t, err, station.ErrStationNotFound)

	got, err := repo.Get(ctx, "line_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"stn_a", "stn_b"}, stationIDs(t, got.Sections))

	assert.ErrorIs(t, stations.Delete(ctx, stationA.ID, repoUsage{repo}), station.ErrStationInUse)
}
