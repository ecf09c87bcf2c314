package applicationController

import (
	"context"
	"testing"

	"apartmentqueue/internal/models"
	"apartmentqueue/internal/services"
	"apartmentqueue/internal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockApplicationService struct {
	mock.Mock
}

func (m *MockApplicationService) SubmitApplication(
	ctx context.Context,
	request services.SubmitApplicationRequest,
) (*models.Application, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func (m *MockApplicationService) GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func (m *MockApplicationService) ApproveApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func (m *MockApplicationService) RejectApplication(
	ctx context.Context,
	id uuid.UUID,
	description string,
) (*models.Application, error) {
	args := m.Called(ctx, id, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func (m *MockApplicationService) AcceptOffer(
	ctx context.Context,
	applicationID, apartmentID uuid.UUID,
) (services.AcceptOfferResult, error) {
	args := m.Called(ctx, applicationID, apartmentID)
	return args.Get(0).(services.AcceptOfferResult), args.Error(1)
}

type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) ListForEntity(
	ctx context.Context,
	entityType models.HistoryEntityType,
	entityID uuid.UUID,
) ([]*models.HistoryEvent, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.HistoryEvent), args.Error(1)
}

func roo(value int) *int {
	return &value
}

func TestSubmit_Validation(t *testing.T) {
	apartment := uuid.New()

	testCases := []struct {
		name    string
		request SubmitApplicationRequest
	}{
		{
			name:    "missing type",
			request: SubmitApplicationRequest{ApplicantToken: "t", ApartmentIDs: []uuid.UUID{apartment}},
		},
		{
			name: "unknown type",
			request: SubmitApplicationRequest{
				Type:           "rental",
				ApplicantToken: "t",
				ApartmentIDs:   []uuid.UUID{apartment},
			},
		},
		{
			name:    "no apartments",
			request: SubmitApplicationRequest{Type: models.OwnershipTypeHaso, ApplicantToken: "t", RightOfOccupancyID: roo(1)},
		},
		{
			name: "duplicate apartments",
			request: SubmitApplicationRequest{
				Type:               models.OwnershipTypeHaso,
				ApplicantToken:     "t",
				RightOfOccupancyID: roo(1),
				ApartmentIDs:       []uuid.UUID{apartment, apartment},
			},
		},
		{
			name: "negative ordering key",
			request: SubmitApplicationRequest{
				Type:               models.OwnershipTypeHaso,
				ApplicantToken:     "t",
				RightOfOccupancyID: roo(-1),
				ApartmentIDs:       []uuid.UUID{apartment},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			applications := &MockApplicationService{}
			controller := newController(applications, &MockHistoryService{})

			_, err := controller.Submit(context.Background(), &tc.request)
			assert.ErrorIs(t, err, types.ErrValidation)
			applications.AssertNotCalled(t, "SubmitApplication", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmit_PassesRequestThrough(t *testing.T) {
	applications := &MockApplicationService{}
	controller := newController(applications, &MockHistoryService{})
	apartments := []uuid.UUID{uuid.New(), uuid.New()}
	created := &models.Application{ApplicantToken: "token"}

	applications.On("SubmitApplication", mock.Anything, services.SubmitApplicationRequest{
		Type:               models.OwnershipTypeHaso,
		ApplicantToken:     "token",
		RightOfOccupancyID: roo(7),
		HouseholdSize:      2,
		HasChildren:        true,
		ApartmentIDs:       apartments,
	}).Return(created, nil)

	result, err := controller.Submit(context.Background(), &SubmitApplicationRequest{
		Type:               models.OwnershipTypeHaso,
		ApplicantToken:     "token",
		RightOfOccupancyID: roo(7),
		HouseholdSize:      2,
		HasChildren:        true,
		ApartmentIDs:       apartments,
	})
	require.NoError(t, err)
	assert.Same(t, created, result)
	applications.AssertExpectations(t)
}

func TestReject_RequiresDescription(t *testing.T) {
	applications := &MockApplicationService{}
	controller := newController(applications, &MockHistoryService{})
	id := uuid.New()

	_, err := controller.Reject(context.Background(), id, &RejectApplicationRequest{})
	assert.ErrorIs(t, err, types.ErrValidation)

	applications.On("RejectApplication", mock.Anything, id, "incomplete").
		Return(&models.Application{IsRejected: true}, nil)
	application, err := controller.Reject(context.Background(), id, &RejectApplicationRequest{Description: "incomplete"})
	require.NoError(t, err)
	assert.True(t, application.IsRejected)
}

func TestAcceptOffer_RequiresApartment(t *testing.T) {
	applications := &MockApplicationService{}
	controller := newController(applications, &MockHistoryService{})

	_, err := controller.AcceptOffer(context.Background(), uuid.New(), &AcceptOfferRequest{})
	assert.ErrorIs(t, err, types.ErrValidation)
	applications.AssertNotCalled(t, "AcceptOffer", mock.Anything, mock.Anything, mock.Anything)
}

func TestHistory(t *testing.T) {
	id := uuid.New()

	t.Run("unknown application", func(t *testing.T) {
		applications := &MockApplicationService{}
		history := &MockHistoryService{}
		applications.On("GetApplication", mock.Anything, id).Return(nil, types.NotFoundf("application %s", id))

		_, err := newController(applications, history).History(context.Background(), id)
		assert.ErrorIs(t, err, types.ErrNotFound)
		history.AssertNotCalled(t, "ListForEntity", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty history is not nil", func(t *testing.T) {
		applications := &MockApplicationService{}
		history := &MockHistoryService{}
		applications.On("GetApplication", mock.Anything, id).Return(&models.Application{}, nil)
		history.On("ListForEntity", mock.Anything, models.HistoryEntityApplication, id).Return(nil, nil)

		events, err := newController(applications, history).History(context.Background(), id)
		require.NoError(t, err)
		assert.NotNil(t, events)
		assert.Empty(t, events)
	})
}
