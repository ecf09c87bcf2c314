package services

import (
	"context"
	"time"

	"apartmentqueue/internal/events"
	"apartmentqueue/internal/models"
	"apartmentqueue/internal/repositories"
	"apartmentqueue/internal/types"
	"apartmentqueue/internal/utils"
	"apartmentqueue/internal/valuation"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentSource string

const (
	PaymentSourceRevaluation PaymentSource = "revaluation"
	PaymentSourceOriginal    PaymentSource = "original"
)

type CurrentPayment struct {
	ApartmentID   uuid.UUID       `json:"apartmentId"`
	Amount        decimal.Decimal `json:"amount"`
	Source        PaymentSource   `json:"source"`
	RevaluationID *uuid.UUID      `json:"revaluationId,omitempty"`
}

type RevaluationRequest struct {
	EndDate        time.Time
	AlterationWork decimal.Decimal
}

type ImportResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

type ValuationService struct {
	tx     Transactor
	repos  repositories.Repository
	lookup *CostIndexLookupService
	events EventPublisher
	log    logger.Logger
}

func NewValuationService(
	tx Transactor,
	repos repositories.Repository,
	lookup *CostIndexLookupService,
	publisher EventPublisher,
) *ValuationService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &ValuationService{
		tx:     tx,
		repos:  repos,
		lookup: lookup,
		events: publisher,
		log:    logger.New("valuationService"),
	}
}

func (s *ValuationService) IndexValueAsOf(ctx context.Context, date time.Time) (decimal.Decimal, error) {
	series, err := s.lookup.Series(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return series.ValueAsOf(date)
}

func (s *ValuationService) CalculateEndValue(
	ctx context.Context,
	startValue decimal.Decimal,
	startDate time.Time,
	endDate time.Time,
	adjustment decimal.Decimal,
) (valuation.Result, error) {
	series, err := s.lookup.Series(ctx)
	if err != nil {
		return valuation.Result{}, err
	}
	return series.CalculateEndValue(startValue, startDate, endDate, adjustment)
}

// RecordRevaluation terminates the reservation and stores an immutable
// revaluation with both index values frozen. The series is read inside the
// transaction so a concurrent index insert cannot skew the frozen values.
func (s *ValuationService) RecordRevaluation(
	ctx context.Context,
	reservationID uuid.UUID,
	request RevaluationRequest,
) (*models.ApartmentRevaluation, error) {
	log := s.log.Function("RecordRevaluation")

	if request.EndDate.IsZero() {
		return nil, types.Validationf("end date is required")
	}
	endDate := utils.NormalizeDate(request.EndDate)

	var revaluation *models.ApartmentRevaluation
	err := s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		reservation, err := s.repos.Reservation.GetByIDForUpdate(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		if reservation.IsTerminated() {
			return types.Validationf("reservation %s is already terminated", reservationID)
		}
		if endDate.Before(reservation.StartDate) {
			return types.Validationf(
				"end date %s precedes reservation start %s",
				utils.FormatDate(endDate),
				utils.FormatDate(reservation.StartDate),
			)
		}
		if reservation.RightOfOccupancyPayment == nil {
			return types.Domainf("reservation %s has no right of occupancy payment", reservationID)
		}

		series, err := s.lookup.SeriesTx(ctx, tx)
		if err != nil {
			return err
		}

		startPayment := *reservation.RightOfOccupancyPayment
		result, err := series.CalculateEndValue(startPayment, reservation.StartDate, endDate, request.AlterationWork)
		if err != nil {
			return err
		}

		revaluation = &models.ApartmentRevaluation{
			ReservationID:                reservation.ID,
			ApartmentID:                  reservation.ApartmentID,
			StartDate:                    reservation.StartDate,
			StartCostIndexValue:          result.StartIndex,
			StartRightOfOccupancyPayment: startPayment,
			AlterationWork:               request.AlterationWork,
			EndDate:                      endDate,
			EndCostIndexValue:            result.EndIndex,
			EndRightOfOccupancyPayment:   result.EndValue,
		}
		if revaluation.ID, err = uuid.NewV7(); err != nil {
			return err
		}
		if err := s.repos.Revaluation.Create(ctx, tx, revaluation); err != nil {
			return err
		}

		reservation.State = models.ReservationStateTerminated
		reservation.EndDate = &endDate
		if err := s.repos.Reservation.Terminate(ctx, tx, reservation); err != nil {
			return err
		}

		history := newHistoryBatch()
		history.add(
			models.HistoryEntityReservation,
			reservation.ID,
			models.HistoryActionTerminated,
			"reservation terminated with revaluation",
			map[string]any{
				"revaluationId": revaluation.ID,
				"endPayment":    result.EndValue.StringFixed(2),
			},
		)
		return history.flush(ctx, tx, s.repos.History)
	})
	if err != nil {
		return nil, log.Err("failed to record revaluation", err, "reservationID", reservationID)
	}

	publish(log, s.events, events.VALUATION_CHANNEL, events.Event{
		Type: events.REVALUATION_RECORDED,
		Data: map[string]any{
			"reservationId": reservationID,
			"apartmentId":   revaluation.ApartmentID,
			"endPayment":    revaluation.EndRightOfOccupancyPayment.StringFixed(2),
		},
	})

	return revaluation, nil
}

func (s *ValuationService) GetCurrentPayment(ctx context.Context, apartmentID uuid.UUID) (CurrentPayment, error) {
	var payment CurrentPayment
	err := s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		payment, err = currentPayment(ctx, tx, s.repos, apartmentID)
		return err
	})
	if err != nil {
		return CurrentPayment{}, s.log.Function("GetCurrentPayment").
			Err("failed to resolve current payment", err, "apartmentID", apartmentID)
	}
	return payment, nil
}

// currentPayment prefers the end payment of the apartment's most recently
// created revaluation over the original payment.
func currentPayment(
	ctx context.Context,
	tx *gorm.DB,
	repos repositories.Repository,
	apartmentID uuid.UUID,
) (CurrentPayment, error) {
	apartment, err := repos.Apartment.GetByID(ctx, tx, apartmentID)
	if err != nil {
		return CurrentPayment{}, err
	}

	latest, err := repos.Revaluation.LatestForApartment(ctx, tx, apartmentID)
	if err != nil {
		return CurrentPayment{}, err
	}
	if latest != nil {
		id := latest.ID
		return CurrentPayment{
			ApartmentID:   apartmentID,
			Amount:        latest.EndRightOfOccupancyPayment,
			Source:        PaymentSourceRevaluation,
			RevaluationID: &id,
		}, nil
	}

	if apartment.RightOfOccupancyPayment == nil {
		return CurrentPayment{}, types.Domainf("apartment %s has no right of occupancy payment", apartmentID)
	}

	return CurrentPayment{
		ApartmentID: apartmentID,
		Amount:      *apartment.RightOfOccupancyPayment,
		Source:      PaymentSourceOriginal,
	}, nil
}

func (s *ValuationService) AddCostIndex(
	ctx context.Context,
	validFrom time.Time,
	value decimal.Decimal,
) (*models.CostIndex, error) {
	log := s.log.Function("AddCostIndex")

	index, err := newCostIndex(validFrom, value)
	if err != nil {
		return nil, err
	}

	err = s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return s.repos.CostIndex.Create(ctx, tx, index)
	})
	if err != nil {
		return nil, log.Err("failed to add cost index", err, "validFrom", utils.FormatDate(index.ValidFrom))
	}

	s.afterSeriesChange(ctx, log, 1)
	return index, nil
}

// ImportCostIndices adds missing points in one transaction. Points already
// stored with the same value are skipped; a stored point with a different
// value fails the whole import.
func (s *ValuationService) ImportCostIndices(ctx context.Context, points []valuation.Point) (ImportResult, error) {
	log := s.log.Function("ImportCostIndices")

	if _, err := valuation.NewSeries(points); err != nil {
		return ImportResult{}, types.Validationf("%v", err)
	}

	var result ImportResult
	err := s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		existing, err := s.repos.CostIndex.List(ctx, tx)
		if err != nil {
			return err
		}

		stored := make(map[string]decimal.Decimal, len(existing))
		for _, index := range existing {
			stored[utils.FormatDate(index.ValidFrom)] = index.Value
		}

		for _, point := range points {
			index, err := newCostIndex(point.ValidFrom, point.Value)
			if err != nil {
				return err
			}

			date := utils.FormatDate(index.ValidFrom)
			if value, ok := stored[date]; ok {
				if !value.Equal(index.Value) {
					return types.Validationf("cost index for %s already stored as %s", date, value)
				}
				result.Skipped++
				continue
			}

			if err := s.repos.CostIndex.Create(ctx, tx, index); err != nil {
				return err
			}
			result.Created++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, log.Err("failed to import cost indices", err, "count", len(points))
	}

	if result.Created > 0 {
		s.afterSeriesChange(ctx, log, result.Created)
	}
	return result, nil
}

func (s *ValuationService) ListCostIndices(ctx context.Context) ([]*models.CostIndex, error) {
	var indices []*models.CostIndex
	err := s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		indices, err = s.repos.CostIndex.List(ctx, tx)
		return err
	})
	if err != nil {
		return nil, s.log.Function("ListCostIndices").Err("failed to list cost indices", err)
	}
	return indices, nil
}

func (s *ValuationService) afterSeriesChange(ctx context.Context, log logger.Logger, added int) {
	s.lookup.Invalidate(ctx)
	publish(log, s.events, events.COST_INDEX_CHANNEL, events.Event{
		Type: events.COST_INDEX_CHANGED,
		Data: map[string]any{"added": added},
	})
}

func newCostIndex(validFrom time.Time, value decimal.Decimal) (*models.CostIndex, error) {
	if validFrom.IsZero() {
		return nil, types.Validationf("cost index date is required")
	}
	if !value.IsPositive() {
		return nil, types.Validationf("cost index value %s must be positive", value)
	}
	return &models.CostIndex{ValidFrom: utils.NormalizeDate(validFrom), Value: value}, nil
}
