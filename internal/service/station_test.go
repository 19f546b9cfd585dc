package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gamehub/station-server-go/internal/errors"
	"github.com/gamehub/station-server-go/internal/model"
)

func occupiedStation(id string) *model.Station {
	sessionID := "session-1"
	return &model.Station{
		ID:               id,
		Name:             "PC-01",
		Type:             model.CategoryPC,
		Status:           model.StationInUse,
		CurrentSessionID: &sessionID,
	}
}

func TestStationService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to available", func(t *testing.T) {
		repo := new(mockStationRepo)
		repo.On("Create", mock.Anything, model.CreateStationParams{
			Name:   "PS5-01",
			Type:   model.CategoryConsole,
			Status: model.StationAvailable,
		}).Return(availableStation("station-1", model.CategoryConsole), nil)

		station, err := NewStationService(fakeTx{}, repo, nil).Create(ctx, model.CreateStationParams{
			Name: "  PS5-01 ",
			Type: model.CategoryConsole,
		})

		require.NoError(t, err)
		assert.Equal(t, model.StationAvailable, station.Status)
	})

	t.Run("in_use cannot be set directly", func(t *testing.T) {
		repo := new(mockStationRepo)

		_, err := NewStationService(fakeTx{}, repo, nil).Create(ctx, model.CreateStationParams{
			Name:   "PC-02",
			Type:   model.CategoryPC,
			Status: model.StationInUse,
		})

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
		assert.Contains(t, appErr.Details, "status")
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing fields are enumerated", func(t *testing.T) {
		_, err := NewStationService(fakeTx{}, new(mockStationRepo), nil).Create(ctx, model.CreateStationParams{})

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		details := appErr.Details.(map[string]string)
		assert.Equal(t, "is required", details["name"])
		assert.Equal(t, "is required", details["type"])
	})
}

func TestStationService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("occupied station keeps its type", func(t *testing.T) {
		repo := new(mockStationRepo)
		repo.On("FindByIDForUpdate", mock.Anything, "station-1").Return(occupiedStation("station-1"), nil)
		console := model.CategoryConsole

		_, err := NewStationService(fakeTx{}, repo, nil).Update(ctx, "station-1", model.StationPatch{Type: &console})

		assert.True(t, apperrors.Is(err, apperrors.ErrCodeStationOccupied))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("occupied station cannot enter maintenance", func(t *testing.T) {
		repo := new(mockStationRepo)
		repo.On("FindByIDForUpdate", mock.Anything, "station-1").Return(occupiedStation("station-1"), nil)
		maintenance := model.StationMaintenance

		_, err := NewStationService(fakeTx{}, repo, nil).Update(ctx, "station-1", model.StationPatch{Status: &maintenance})

		assert.True(t, apperrors.Is(err, apperrors.ErrCodeStationOccupied))
	})

	t.Run("occupied station can be renamed", func(t *testing.T) {
		repo := new(mockStationRepo)
		name := "PC-01 (window)"
		renamed := occupiedStation("station-1")
		renamed.Name = name
		repo.On("FindByIDForUpdate", mock.Anything, "station-1").Return(occupiedStation("station-1"), nil)
		repo.On("Update", mock.Anything, "station-1", model.StationPatch{Name: &name}).Return(renamed, nil)

		station, err := NewStationService(fakeTx{}, repo, nil).Update(ctx, "station-1", model.StationPatch{Name: &name})

		require.NoError(t, err)
		assert.Equal(t, name, station.Name)
	})

	t.Run("status change is published", func(t *testing.T) {
		repo := new(mockStationRepo)
		publisher := &fakePublisher{}
		maintenance := model.StationMaintenance
		updated := availableStation("station-2", model.CategoryPC)
		updated.Status = model.StationMaintenance
		repo.On("FindByIDForUpdate", mock.Anything, "station-2").Return(availableStation("station-2", model.CategoryPC), nil)
		repo.On("Update", mock.Anything, "station-2", model.StationPatch{Status: &maintenance}).Return(updated, nil)

		_, err := NewStationService(fakeTx{}, repo, publisher).Update(ctx, "station-2", model.StationPatch{Status: &maintenance})

		require.NoError(t, err)
		require.Len(t, publisher.events, 1)
		assert.Contains(t, string(publisher.events[0].Data), `"status":"maintenance"`)
	})

	t.Run("unknown station is not found", func(t *testing.T) {
		repo := new(mockStationRepo)
		repo.On("FindByIDForUpdate", mock.Anything, "missing").Return(nil, nil)
		name := "x"

		_, err := NewStationService(fakeTx{}, repo, nil).Update(ctx, "missing", model.StationPatch{Name: &name})

		assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))
	})
}

func TestStationService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("occupied station cannot be deleted", func(t *testing.T) {
		repo := new(mockStationRepo)
		repo.On("FindByIDForUpdate", mock.Anything, "station-1").Return(occupiedStation("station-1"), nil)

		err := NewStationService(fakeTx{}, repo, nil).Delete(ctx, "station-1")

		assert.True(t, apperrors.Is(err, apperrors.ErrCodeStationOccupied))
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("free station is deleted", func(t *testing.T) {
		repo := new(mockStationRepo)
		repo.On("FindByIDForUpdate", mock.Anything, "station-2").Return(availableStation("station-2", model.CategoryPC), nil)
		repo.On("Delete", mock.Anything, "station-2").Return(nil)

		require.NoError(t, NewStationService(fakeTx{}, repo, nil).Delete(ctx, "station-2"))
		repo.AssertExpectations(t)
	})
}
