package network

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MiguelIbrahimE/TrainBuilder/internal/apperr"
	"github.com/MiguelIbrahimE/TrainBuilder/internal/cache"
	"github.com/MiguelIbrahimE/TrainBuilder/internal/models"
	"github.com/MiguelIbrahimE/TrainBuilder/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := store.NewFileStore(dir)
	require.NoError(t, err)
	return NewService(repo, cache.NewLocalCache(time.Minute)), repo, dir
}

// latSpanForKm returns the latitude delta covering the given north-south
// distance
func latSpanForKm(km float64) float64 {
	return km / (6371 * math.Pi / 180)
}

func tm(v float64) *float64 { return &v }

func regionalStation(name string, lat, lon float64) AddStationRequest {
	return AddStationRequest{
		Name:        name,
		Location:    models.Coordinates{Lat: lat, Lon: lon},
		Platforms:   5,
		StationType: models.StationRegional,
	}
}

func TestCreate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	t.Run("Defaults", func(t *testing.T) {
		network, err := svc.Create(ctx, "", "netherlands")
		require.NoError(t, err)

		assert.NotEmpty(t, network.ID)
		assert.Equal(t, "My Railway Network", network.Name)
		assert.Equal(t, StartingBudget, network.Budget)
		assert.Equal(t, 2024, network.GameYear)
		assert.Equal(t, 1, network.GameMonth)
		assert.Equal(t, models.SchemaVersion, network.SchemaVersion)
		assert.Empty(t, network.Stations)
		assert.Empty(t, network.Tracks)
		assert.Empty(t, network.Crossovers)
	})

	t.Run("Persisted immediately", func(t *testing.T) {
		network, err := svc.Create(ctx, "Benelux Express", "benelux")
		require.NoError(t, err)

		loaded, err := svc.Get(ctx, network.ID)
		require.NoError(t, err)
		assert.Equal(t, "Benelux Express", loaded.Name)
	})

	t.Run("Unknown region rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, "X", "atlantis")
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}

func TestGet(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	t.Run("Unknown network", func(t *testing.T) {
		_, err := svc.Get(ctx, "missing")
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("Cache serves repeated reads", func(t *testing.T) {
		network, err := svc.Create(ctx, "", "belgium")
		require.NoError(t, err)

		first, err := svc.Get(ctx, network.ID)
		require.NoError(t, err)
		second, err := svc.Get(ctx, network.ID)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestAddStation(t *testing.T) {
	ctx := context.Background()

	t.Run("Regional station debits exactly its cost", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		network, err := svc.Create(ctx, "", "netherlands")
		require.NoError(t, err)

		station, budget, err := svc.AddStation(ctx, network.ID, regionalStation("Centraal", 52.37, 4.90))
		require.NoError(t, err)

		assert.Equal(t, int64(30_000_000), station.Cost)
		assert.Equal(t, int64(970_000_000), budget)

		loaded, err := svc.Get(ctx, network.ID)
		require.NoError(t, err)
		assert.Len(t, loaded.Stations, 1)
		assert.Equal(t, int64(970_000_000), loaded.Budget)
	})

	t.Run("Validation failures leave the document untouched", func(t *testing.T) {
		svc, _, dir := newTestService(t)
		network, err := svc.Create(ctx, "", "netherlands")
		require.NoError(t, err)
		before := readRaw(t, dir, network.ID)

		cases := []AddStationRequest{
			{Location: models.Coordinates{Lat: 52, Lon: 4}, Platforms: 5, StationType: models.StationRegional},       // no name
			{Name: "X", Location: models.Coordinates{Lat: 99, Lon: 4}, Platforms: 5, StationType: models.StationRegional}, // bad lat
			{Name: "X", Location: models.Coordinates{Lat: 52, Lon: 4}, Platforms: 50, StationType: models.StationRegional}, // bad platforms
			{Name: "X", Location: models.Coordinates{Lat: 52, Lon: 4}, Platforms: 2, StationType: models.StationRegional},  // out of class range
		}
		for _, req := range cases {
			_, _, err := svc.AddStation(ctx, network.ID, req)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		}

		assert.Equal(t, before, readRaw(t, dir, network.ID))
	})

	t.Run("Insufficient budget reports both amounts", func(t *testing.T) {
		svc, repo, dir := newTestService(t)
		network, err := svc.Create(ctx, "", "netherlands")
		require.NoError(t, err)

		network.Budget = 1_000_000
		require.NoError(t, repo.Put(ctx, network))
		before := readRaw(t, dir, network.ID)

		_, _, err = svc.AddStation(ctx, network.ID, regionalStation("Centraal", 52.37, 4.90))
		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, apperr.KindInsufficientBudget, e.Kind)
		assert.Equal(t, int64(30_000_000), e.Required)
		assert.Equal(t, int64(1_000_000), e.Available)

		assert.Equal(t, before, readRaw(t, dir, network.ID))
	})

	t.Run("Unknown network", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, _, err := svc.AddStation(ctx, "missing", regionalStation("X", 1, 1))
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestAddTrack(t *testing.T) {
	ctx := context.Background()

	buildTwoStations := func(t *testing.T, svc *Service, networkID string) (string, string) {
		t.Helper()
		a, _, err := svc.AddStation(ctx, networkID, regionalStation("A", 0, 0))
		require.NoError(t, err)
		b, _, err := svc.AddStation(ctx, networkID, regionalStation("B", latSpanForKm(10), 0))
		require.NoError(t, err)
		return a.ID, b.ID
	}

	t.Run("Ten kilometer non-electrified track", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		network, err := svc.Create(ctx, "", "netherlands")
		require.NoError(t, err)
		fromID, toID := buildTwoStations(t, svc, network.ID)

		track, budget, err := svc.AddTrack(ctx, network.ID, AddTrackRequest{
			TrackType:  models.TrackNonElectrified,
			FromNodeID: fromID,
			ToNodeID:   toID,
			Waypoints: []models.Coordinates{
				{Lat: 0, Lon: 0},
				{Lat: latSpanForKm(10), Lon: 0},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, 10.0, track.LengthKm)
		assert.Equal(t, int64(20_000_000), track.Cost)
		assert.Equal(t, int64(150_000), track.MaintenanceCost)
		assert.Equal(t, 120, track.SpeedLimit)
		// 1B - 2*30M stations - 20M track
		assert.Equal(t, int64(920_000_000), budget)
	})

	t.Run("Unknown station reference rejected", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		network, err := svc.Create(ctx, "", "netherlands")
		require.NoError(t, err)
		fromID, _ := buildTwoStations(t, svc, network.ID)

		_, _, err = svc.AddTrack(ctx, network.ID, AddTrackRequest{
			TrackType:  models.TrackNonElectrified,
			FromNodeID: fromID,
			ToNodeID:   "ghost",
			Waypoints: []models.Coordinates{
				{Lat: 0, Lon: 0},
				{Lat: latSpanForKm(10), Lon: 0},
			},
		})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("Short route rejected without budget change", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		network, err := svc.Create(ctx, "", "netherlands")
		require.NoError(t, err)
		fromID, toID := buildTwoStations(t, svc, network.ID)

		budgetBefore := mustGet(t, svc, network.ID).Budget

		_, _, err = svc.AddTrack(ctx, network.ID, AddTrackRequest{
			TrackType:  models.TrackNonElectrified,
			FromNodeID: fromID,
			ToNodeID:   toID,
			Waypoints: []models.Coordinates{
				{Lat: 0, Lon: 0},
				{Lat: latSpanForKm(0.3), Lon: 0},
			},
		})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		assert.Equal(t, budgetBefore, mustGet(t, svc, network.ID).Budget)
	})

	t.Run("Fewer than two waypoints rejected", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		network, err := svc.Create(ctx, "", "netherlands")
		require.NoError(t, err)
		fromID, toID := buildTwoStations(t, svc, network.ID)

		_, _, err = svc.AddTrack(ctx, network.ID, AddTrackRequest{
			TrackType:  models.TrackNonElectrified,
			FromNodeID: fromID,
			ToNodeID:   toID,
			Waypoints:  []models.Coordinates{{Lat: 0, Lon: 0}},
		})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}

func TestAddCrossover(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	network, err := svc.Create(ctx, "", "belgium")
	require.NoError(t, err)

	crossover, budget, err := svc.AddCrossover(ctx, network.ID, AddCrossoverRequest{
		Name:            "Brussels North Junction",
		Location:        models.Coordinates{Lat: 50.86, Lon: 4.36},
		CrossoverType:   models.CrossoverJunction,
		TerrainModifier: tm(1.8),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3_600_000), crossover.Cost)
	assert.Equal(t, StartingBudget-3_600_000, budget)
}

func TestRemoveTrack(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	network, err := svc.Create(ctx, "", "netherlands")
	require.NoError(t, err)
	a, _, err := svc.AddStation(ctx, network.ID, regionalStation("A", 0, 0))
	require.NoError(t, err)
	b, _, err := svc.AddStation(ctx, network.ID, regionalStation("B", latSpanForKm(10), 0))
	require.NoError(t, err)

	track, budgetAfterBuild, err := svc.AddTrack(ctx, network.ID, AddTrackRequest{
		TrackType:  models.TrackNonElectrified,
		FromNodeID: a.ID,
		ToNodeID:   b.ID,
		Waypoints: []models.Coordinates{
			{Lat: 0, Lon: 0},
			{Lat: latSpanForKm(10), Lon: 0},
		},
	})
	require.NoError(t, err)

	t.Run("Refunds 30 percent", func(t *testing.T) {
		budget, refund, err := svc.RemoveTrack(ctx, network.ID, track.ID)
		require.NoError(t, err)

		assert.Equal(t, int64(6_000_000), refund) // floor(20M * 0.3)
		assert.Equal(t, budgetAfterBuild+6_000_000, budget)

		loaded := mustGet(t, svc, network.ID)
		assert.Empty(t, loaded.Tracks)
	})

	t.Run("Unknown track", func(t *testing.T) {
		_, _, err := svc.RemoveTrack(ctx, network.ID, "ghost")
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestRemoveStation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	network, err := svc.Create(ctx, "", "netherlands")
	require.NoError(t, err)
	a, _, err := svc.AddStation(ctx, network.ID, regionalStation("A", 0, 0))
	require.NoError(t, err)
	b, _, err := svc.AddStation(ctx, network.ID, regionalStation("B", latSpanForKm(10), 0))
	require.NoError(t, err)
	c, _, err := svc.AddStation(ctx, network.ID, regionalStation("C", latSpanForKm(20), 0))
	require.NoError(t, err)

	addTrack := func(from, to string, fromKm, toKm float64) *models.Track {
		track, _, err := svc.AddTrack(ctx, network.ID, AddTrackRequest{
			TrackType:  models.TrackNonElectrified,
			FromNodeID: from,
			ToNodeID:   to,
			Waypoints: []models.Coordinates{
				{Lat: latSpanForKm(fromKm), Lon: 0},
				{Lat: latSpanForKm(toKm), Lon: 0},
			},
		})
		require.NoError(t, err)
		return track
	}

	trackAB := addTrack(a.ID, b.ID, 0, 10)  // 20M
	trackBC := addTrack(b.ID, c.ID, 10, 20) // 20M

	budgetBefore := mustGet(t, svc, network.ID).Budget

	t.Run("Cascades to connected tracks and refunds them", func(t *testing.T) {
		budget, refund, err := svc.RemoveStation(ctx, network.ID, b.ID)
		require.NoError(t, err)

		// 50% of the 30M station plus 30% of each 20M track
		assert.Equal(t, int64(15_000_000+6_000_000+6_000_000), refund)
		assert.Equal(t, budgetBefore+refund, budget)

		loaded := mustGet(t, svc, network.ID)
		assert.Len(t, loaded.Stations, 2)
		assert.Nil(t, loaded.FindStation(b.ID))
		assert.Empty(t, loaded.Tracks)
		assert.Nil(t, loaded.FindTrack(trackAB.ID))
		assert.Nil(t, loaded.FindTrack(trackBC.ID))
	})

	t.Run("Unknown station", func(t *testing.T) {
		_, _, err := svc.RemoveStation(ctx, network.ID, "ghost")
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestRemoveCrossover(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	network, err := svc.Create(ctx, "", "belgium")
	require.NoError(t, err)
	crossover, budgetAfterBuild, err := svc.AddCrossover(ctx, network.ID, AddCrossoverRequest{
		Location:      models.Coordinates{Lat: 50.85, Lon: 4.35},
		CrossoverType: models.CrossoverFlyingJunction,
	})
	require.NoError(t, err)

	budget, refund, err := svc.RemoveCrossover(ctx, network.ID, crossover.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(4_000_000), refund) // floor(10M * 0.4)
	assert.Equal(t, budgetAfterBuild+4_000_000, budget)
}

func TestGetStats(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	network, err := svc.Create(ctx, "", "netherlands")
	require.NoError(t, err)
	a, _, err := svc.AddStation(ctx, network.ID, regionalStation("A", 0, 0))
	require.NoError(t, err)
	b, _, err := svc.AddStation(ctx, network.ID, regionalStation("B", latSpanForKm(10), 0))
	require.NoError(t, err)
	_, _, err = svc.AddTrack(ctx, network.ID, AddTrackRequest{
		TrackType:  models.TrackNonElectrified,
		FromNodeID: a.ID,
		ToNodeID:   b.ID,
		Waypoints: []models.Coordinates{
			{Lat: 0, Lon: 0},
			{Lat: latSpanForKm(10), Lon: 0},
		},
	})
	require.NoError(t, err)

	stats, err := svc.GetStats(ctx, network.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(80_000_000), stats.TotalValue) // 2 stations + track
	assert.Equal(t, int64(150_000), stats.AnnualMaintenance)
	assert.Equal(t, 2, stats.StationCount)
	assert.Equal(t, 1, stats.TrackCount)
	assert.Equal(t, 10.0, stats.TotalTrackLength)
	assert.Equal(t, stats.EstimatedRevenue-stats.AnnualMaintenance, stats.NetIncome)
	assert.Positive(t, stats.EstimatedRevenue)
}

func TestConcurrentMutationsAreSerialized(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	network, err := svc.Create(ctx, "", "netherlands")
	require.NoError(t, err)

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := svc.AddStation(ctx, network.ID, regionalStation("S", float64(i), 0))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	loaded := mustGet(t, svc, network.ID)
	assert.Len(t, loaded.Stations, workers)
	assert.Equal(t, StartingBudget-int64(workers)*30_000_000, loaded.Budget)
}

// stallingRepo blocks the first repository read between the load and the
// caller's next step, long enough for another goroutine to run a mutation.
type stallingRepo struct {
	store.Repository
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (r *stallingRepo) Get(ctx context.Context, id string) (*models.Network, error) {
	network, err := r.Repository.Get(ctx, id)
	r.once.Do(func() {
		close(r.entered)
		<-r.release
	})
	return network, err
}

func TestSlowReaderDoesNotResurrectStaleCache(t *testing.T) {
	ctx := context.Background()
	fileStore, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	repo := &stallingRepo{
		Repository: fileStore,
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	local := cache.NewLocalCache(time.Minute)
	svc := NewService(repo, local)

	network, err := svc.Create(ctx, "", "netherlands")
	require.NoError(t, err)
	local.Invalidate(ctx, network.ID)

	// Reader misses the cache and stalls with the pre-mutation document
	readerDone := make(chan error, 1)
	go func() {
		_, err := svc.Get(ctx, network.ID)
		readerDone <- err
	}()
	<-repo.entered

	mutationDone := make(chan error, 1)
	go func() {
		_, _, err := svc.AddStation(ctx, network.ID, regionalStation("Centraal", 52.37, 4.90))
		mutationDone <- err
	}()

	time.Sleep(50 * time.Millisecond)
	close(repo.release)
	require.NoError(t, <-readerDone)
	require.NoError(t, <-mutationDone)

	// The cached document must reflect the mutation, not the stale read
	loaded := mustGet(t, svc, network.ID)
	assert.Equal(t, StartingBudget-30_000_000, loaded.Budget)
	assert.Len(t, loaded.Stations, 1)
}

func mustGet(t *testing.T, svc *Service, id string) *models.Network {
	t.Helper()
	network, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	return network
}

func readRaw(t *testing.T, dir, id string) []byte {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(dir, id+".json"))
	require.NoError(t, err)
	return raw
}
