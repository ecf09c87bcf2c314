package apartmentController

import (
	"context"
	"testing"

	"apartmentqueue/internal/models"
	"apartmentqueue/internal/queue"
	"apartmentqueue/internal/services"
	"apartmentqueue/internal/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockApartmentService struct {
	mock.Mock
}

func (m *MockApartmentService) UpsertApartment(
	ctx context.Context,
	request services.UpsertApartmentRequest,
) (*models.Apartment, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Apartment), args.Error(1)
}

type MockQueueService struct {
	mock.Mock
}

func (m *MockQueueService) GetQueueForApartment(ctx context.Context, apartmentID uuid.UUID) ([]queue.Position, error) {
	args := m.Called(ctx, apartmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]queue.Position), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) GetCurrentPayment(ctx context.Context, apartmentID uuid.UUID) (services.CurrentPayment, error) {
	args := m.Called(ctx, apartmentID)
	return args.Get(0).(services.CurrentPayment), args.Error(1)
}

func TestUpsert(t *testing.T) {
	apartments := &MockApartmentService{}
	controller := newController(apartments, &MockQueueService{}, &MockPaymentService{})
	id := uuid.New()
	payment := decimal.RequireFromString("18500.00")

	apartments.On("UpsertApartment", mock.Anything, services.UpsertApartmentRequest{
		ID:                      id,
		OwnershipType:           models.OwnershipTypeHaso,
		RightOfOccupancyPayment: &payment,
	}).Return(&models.Apartment{ID: id}, nil)

	apartment, err := controller.Upsert(context.Background(), id, &UpsertApartmentRequest{
		OwnershipType:           models.OwnershipTypeHaso,
		RightOfOccupancyPayment: &payment,
	})
	require.NoError(t, err)
	assert.Equal(t, id, apartment.ID)

	_, err = controller.Upsert(context.Background(), id, &UpsertApartmentRequest{OwnershipType: "condo"})
	assert.ErrorIs(t, err, types.ErrValidation)
	apartments.AssertNumberOfCalls(t, "UpsertApartment", 1)
}

func TestQueueAndPayment(t *testing.T) {
	queues := &MockQueueService{}
	payments := &MockPaymentService{}
	controller := newController(&MockApartmentService{}, queues, payments)
	id := uuid.New()

	positions := []queue.Position{{ApplicationID: uuid.New(), Position: 1, IsWinner: true}}
	queues.On("GetQueueForApartment", mock.Anything, id).Return(positions, nil)
	payments.On("GetCurrentPayment", mock.Anything, id).
		Return(services.CurrentPayment{}, types.Domainf("apartment %s has no payment", id))

	result, err := controller.Queue(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, positions, result)

	_, err = controller.CurrentPayment(context.Background(), id)
	assert.ErrorIs(t, err, types.ErrDomain)
}
