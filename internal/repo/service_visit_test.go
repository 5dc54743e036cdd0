package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
	"github.com/pkordes/vehicle-logbook/backend/internal/repo"
	"github.com/pkordes/vehicle-logbook/backend/testutil"
)

// seedGraph creates a vehicle and a provider and returns their IDs.
func seedGraph(t *testing.T, rs repo.Repos) (vehicleID, providerID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	v, err := rs.Vehicles.Create(ctx, vehicleFixture())
	require.NoError(t, err)
	p, err := rs.Providers.Create(ctx, domain.ServiceProvider{ID: uuid.New(), Name: "AutoFix", ContactInfo: "555-1234"})
	require.NoError(t, err)
	return v.ID, p.ID
}

func visitFixture(vehicleID, providerID uuid.UUID, day int) domain.ServiceVisit {
	v := domain.ServiceVisit{
		ID:         uuid.New(),
		Date:       time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
		Mileage:    45000 + day,
		Cost:       59.99,
		VehicleID:  &vehicleID,
		ProviderID: &providerID,
		Items: []domain.SavedServiceItem{
			{Name: "Oil Change", Cost: 39.99},
			{Name: "Filter", Cost: 20},
		},
	}
	v.Recalculate()
	return v
}

func TestServiceVisitRepo_CreateAndGet(t *testing.T) {
	rs := newTestRepos(t)
	ctx := context.Background()
	vehicleID, providerID := seedGraph(t, rs)

	input := visitFixture(vehicleID, providerID, 15)
	tax := 4.8
	input.Tax = &tax
	input.Recalculate()

	created, err := rs.Visits.Create(ctx, input)
	require.NoError(t, err)
	require.Len(t, created.Items, 2)

	got, err := rs.Visits.GetByID(ctx, created.ID)
	require.NoError(t, err)

	assert.True(t, got.Date.Equal(input.Date))
	assert.Equal(t, input.Mileage, got.Mileage)
	assert.InDelta(t, 59.99, got.Cost, 1e-9)
	require.NotNil(t, got.Tax)
	assert.InDelta(t, 4.8, *got.Tax, 1e-9)
	assert.Nil(t, got.Discount)
	assert.InDelta(t, 64.79, got.Total, 1e-9)
	require.NotNil(t, got.VehicleID)
	assert.Equal(t, vehicleID, *got.VehicleID)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Oil Change", got.Items[0].Name)
	assert.Equal(t, 0, got.Items[0].Position)
	assert.Equal(t, "Filter", got.Items[1].Name)
	require.NotNil(t, got.Items[1].VisitID)
	assert.Equal(t, created.ID, *got.Items[1].VisitID)
}

func TestServiceVisitRepo_GetByID_NotFound(t *testing.T) {
	rs := newTestRepos(t)

	_, err := rs.Visits.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServiceVisitRepo_ListFiltersByVehicle(t *testing.T) {
	rs := newTestRepos(t)
	ctx := context.Background()
	vehicleID, providerID := seedGraph(t, rs)
	otherID, _ := seedGraph(t, rs)

	_, err := rs.Visits.Create(ctx, visitFixture(vehicleID, providerID, 2))
	require.NoError(t, err)
	_, err = rs.Visits.Create(ctx, visitFixture(vehicleID, providerID, 1))
	require.NoError(t, err)
	_, err = rs.Visits.Create(ctx, visitFixture(otherID, providerID, 3))
	require.NoError(t, err)

	got, err := rs.Visits.List(ctx, repo.VisitFilter{VehicleID: &vehicleID})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Date.Before(got[1].Date), "oldest first")
	for _, v := range got {
		assert.Len(t, v.Items, 2)
	}
}

func TestServiceVisitRepo_ListPaged(t *testing.T) {
	rs := newTestRepos(t)
	ctx := context.Background()
	vehicleID, providerID := seedGraph(t, rs)

	for day := 1; day <= 3; day++ {
		_, err := rs.Visits.Create(ctx, visitFixture(vehicleID, providerID, day))
		require.NoError(t, err)
	}

	page, total, err := rs.Visits.ListPaged(ctx, repo.VisitFilter{VehicleID: &vehicleID}, domain.PaginationParams{Page: 1, Limit: 2})

	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, 3, page[0].Date.Day(), "newest first")
}

func TestServiceVisitRepo_UpdateReplacesItems(t *testing.T) {
	rs := newTestRepos(t)
	ctx := context.Background()
	vehicleID, providerID := seedGraph(t, rs)

	created, err := rs.Visits.Create(ctx, visitFixture(vehicleID, providerID, 1))
	require.NoError(t, err)

	created.Items = []domain.SavedServiceItem{{Name: "Alignment", Cost: 90}}
	created.Cost = 90
	created.Recalculate()
	_, err = rs.Visits.Update(ctx, created)
	require.NoError(t, err)

	got, err := rs.Visits.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Alignment", got.Items[0].Name)
}

func TestServiceVisitRepo_UnlinkThenDeleteVehicle(t *testing.T) {
	rs := newTestRepos(t)
	ctx := context.Background()
	vehicleID, providerID := seedGraph(t, rs)

	created, err := rs.Visits.Create(ctx, visitFixture(vehicleID, providerID, 1))
	require.NoError(t, err)

	n, err := rs.Visits.UnlinkVehicle(ctx, vehicleID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, rs.Vehicles.Delete(ctx, vehicleID))

	got, err := rs.Visits.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.VehicleID)
	require.NotNil(t, got.ProviderID)
	assert.ErrorIs(t, got.Validate(), domain.ErrVisitNoVehicle)
}

func TestServiceVisitRepo_Delete(t *testing.T) {
	rs := newTestRepos(t)
	ctx := context.Background()
	vehicleID, providerID := seedGraph(t, rs)

	created, err := rs.Visits.Create(ctx, visitFixture(vehicleID, providerID, 1))
	require.NoError(t, err)

	require.NoError(t, rs.Visits.Delete(ctx, created.ID))
	assert.ErrorIs(t, rs.Visits.Delete(ctx, created.ID), domain.ErrNotFound)
}

func TestRefuelRepo_VisitsAndUnlink(t *testing.T) {
	rs := newTestRepos(t)
	ctx := context.Background()
	vehicleID, _ := seedGraph(t, rs)

	station, err := rs.Refuels.CreateStation(ctx, domain.RefuelStation{ID: uuid.New(), Name: "Shell", Location: "Main St"})
	require.NoError(t, err)

	wash := 8.0
	visit := domain.RefuelVisit{
		ID:            uuid.New(),
		Odometer:      10300,
		Date:          time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		Gallons:       10,
		CostPerGallon: 3.5,
		CarWashCost:   &wash,
		VehicleID:     &vehicleID,
		StationID:     &station.ID,
	}
	visit.Recalculate()
	_, err = rs.Refuels.CreateVisit(ctx, visit)
	require.NoError(t, err)

	got, err := rs.Refuels.ListVisits(ctx, repo.VisitFilter{VehicleID: &vehicleID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 43.0, got[0].Total, 1e-9)
	require.NotNil(t, got[0].CarWashCost)

	n, err := rs.Refuels.UnlinkStation(ctx, station.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, rs.Refuels.DeleteStation(ctx, station.ID))

	got, err = rs.Refuels.ListVisits(ctx, repo.VisitFilter{VehicleID: &vehicleID})
	require.NoError(t, err)
	assert.Nil(t, got[0].StationID)
}

func TestStore_WithTx_RollsBackOnError(t *testing.T) {
	store := repo.NewStore(testutil.NewTx(t))
	ctx := context.Background()
	boom := errors.New("boom")
	v := vehicleFixture()

	err := store.WithTx(ctx, func(rs repo.Repos) error {
		if _, err := rs.Vehicles.Create(ctx, v); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	_, err = store.Repos().Vehicles.GetByID(ctx, v.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDataRepo_PurgeAll(t *testing.T) {
	rs := newTestRepos(t)
	ctx := context.Background()
	vehicleID, providerID := seedGraph(t, rs)
	_, err := rs.Visits.Create(ctx, visitFixture(vehicleID, providerID, 1))
	require.NoError(t, err)

	require.NoError(t, rs.Data.PurgeAll(ctx))

	vehicles, err := rs.Vehicles.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, vehicles)
	visits, err := rs.Visits.List(ctx, repo.VisitFilter{})
	require.NoError(t, err)
	assert.Empty(t, visits)
}
