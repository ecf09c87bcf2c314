package services

import (
	"context"

	"apartmentqueue/internal/models"
	"apartmentqueue/internal/repositories"
	"apartmentqueue/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UpsertApartmentRequest struct {
	ID                      uuid.UUID
	OwnershipType           models.OwnershipType
	ProjectID               *uuid.UUID
	RightOfOccupancyPayment *decimal.Decimal
}

type ApartmentService struct {
	tx    Transactor
	repos repositories.Repository
	log   logger.Logger
}

func NewApartmentService(tx Transactor, repos repositories.Repository) *ApartmentService {
	return &ApartmentService{
		tx:    tx,
		repos: repos,
		log:   logger.New("apartmentService"),
	}
}

// UpsertApartment syncs apartment master data. Availability is owned by the
// queue and is never changed here.
func (s *ApartmentService) UpsertApartment(
	ctx context.Context,
	request UpsertApartmentRequest,
) (*models.Apartment, error) {
	log := s.log.Function("UpsertApartment")

	if request.ID == uuid.Nil {
		return nil, types.Validationf("apartment id is required")
	}
	if !request.OwnershipType.IsValid() {
		return nil, types.Validationf("unknown ownership type %q", request.OwnershipType)
	}
	if request.RightOfOccupancyPayment != nil && request.RightOfOccupancyPayment.IsNegative() {
		return nil, types.Validationf("right of occupancy payment cannot be negative")
	}

	var apartment *models.Apartment
	err := s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		upsert := &models.Apartment{
			ID:                      request.ID,
			OwnershipType:           request.OwnershipType,
			ProjectID:               request.ProjectID,
			IsAvailable:             true,
			RightOfOccupancyPayment: request.RightOfOccupancyPayment,
		}
		if err := s.repos.Apartment.Upsert(ctx, tx, upsert); err != nil {
			return err
		}

		var err error
		apartment, err = s.repos.Apartment.GetByID(ctx, tx, request.ID)
		return err
	})
	if err != nil {
		return nil, log.Err("failed to upsert apartment", err, "apartmentID", request.ID)
	}

	return apartment, nil
}

func (s *ApartmentService) GetApartment(ctx context.Context, id uuid.UUID) (*models.Apartment, error) {
	var apartment *models.Apartment
	err := s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		apartment, err = s.repos.Apartment.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return apartment, nil
}
