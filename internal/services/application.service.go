package services

import (
	"context"
	"fmt"
	"time"

	"apartmentqueue/internal/events"
	"apartmentqueue/internal/models"
	"apartmentqueue/internal/repositories"
	"apartmentqueue/internal/types"
	"apartmentqueue/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubmitApplicationRequest struct {
	Type               models.OwnershipType
	ApplicantToken     string
	RightOfOccupancyID *int
	HouseholdSize      int
	IsOver55           bool
	HasHasoOwnership   bool
	HasChildren        bool
	// ApartmentIDs in preference order, most preferred first.
	ApartmentIDs []uuid.UUID
}

type AcceptOfferResult struct {
	Application *models.Application `json:"application"`
	Reservation *models.Reservation `json:"reservation"`
	Deactivated int                 `json:"deactivatedPriorities"`
}

type ApplicationService struct {
	tx     Transactor
	repos  repositories.Repository
	events EventPublisher
	today  func() time.Time
	log    logger.Logger
}

func NewApplicationService(
	tx Transactor,
	repos repositories.Repository,
	publisher EventPublisher,
) *ApplicationService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &ApplicationService{
		tx:     tx,
		repos:  repos,
		events: publisher,
		today:  utils.Today,
		log:    logger.New("applicationService"),
	}
}

func (r SubmitApplicationRequest) validate() error {
	if !r.Type.IsValid() {
		return types.Validationf("unknown application type %q", r.Type)
	}
	if r.ApplicantToken == "" {
		return types.Validationf("applicant token is required")
	}
	if len(r.ApartmentIDs) == 0 {
		return types.Validationf("at least one apartment is required")
	}

	seen := make(map[uuid.UUID]struct{}, len(r.ApartmentIDs))
	for _, id := range r.ApartmentIDs {
		if id == uuid.Nil {
			return types.Validationf("apartment id is required")
		}
		if _, dup := seen[id]; dup {
			return types.Validationf("apartment %s listed more than once", id)
		}
		seen[id] = struct{}{}
	}

	if r.Type == models.OwnershipTypeHaso {
		if r.RightOfOccupancyID == nil {
			return types.Validationf("haso application requires a right of occupancy id")
		}
		if *r.RightOfOccupancyID < 0 {
			return types.Validationf("right of occupancy id cannot be negative")
		}
	}
	return nil
}

// SubmitApplication stores the application and places it in the queue of
// every listed apartment: HASO applications get ranked priorities, HITAS
// applications are appended to each apartment's queue.
func (s *ApplicationService) SubmitApplication(
	ctx context.Context,
	request SubmitApplicationRequest,
) (*models.Application, error) {
	log := s.log.Function("SubmitApplication")

	if err := request.validate(); err != nil {
		return nil, err
	}

	householdSize := request.HouseholdSize
	if householdSize < 1 {
		householdSize = 1
	}

	application := &models.Application{
		Type:             request.Type,
		ApplicantToken:   request.ApplicantToken,
		HouseholdSize:    householdSize,
		IsOver55:         request.IsOver55,
		HasHasoOwnership: request.HasHasoOwnership,
		HasChildren:      request.HasChildren,
	}
	application.ID = uuid.New()
	if request.Type == models.OwnershipTypeHaso {
		roo := *request.RightOfOccupancyID
		application.RightOfOccupancyID = &roo
	}

	err := s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := s.repos.Application.Create(ctx, tx, application); err != nil {
			return err
		}

		history := newHistoryBatch()
		history.add(
			models.HistoryEntityApplication,
			application.ID,
			models.HistoryActionCreated,
			"application submitted",
			map[string]any{"type": application.Type, "apartments": len(request.ApartmentIDs)},
		)

		switch application.Type {
		case models.OwnershipTypeHaso:
			priorities, err := s.buildPriorities(ctx, tx, application, request.ApartmentIDs)
			if err != nil {
				return err
			}
			application.Priorities = priorities
		case models.OwnershipTypeHitas:
			if err := s.enqueueHitas(ctx, tx, application, request.ApartmentIDs); err != nil {
				return err
			}
		}

		return history.flush(ctx, tx, s.repos.History)
	})
	if err != nil {
		return nil, log.Err("failed to submit application", err, "type", request.Type)
	}

	return application, nil
}

// BuildPriorities get-or-creates the apartments and one priority per
// apartment with the list index as priority number. Calling it again with
// the same list changes nothing.
func (s *ApplicationService) BuildPriorities(
	ctx context.Context,
	applicationID uuid.UUID,
	apartmentIDs []uuid.UUID,
) ([]models.ApartmentPriority, error) {
	var priorities []models.ApartmentPriority
	err := s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		application, err := s.repos.Application.GetByID(ctx, tx, applicationID)
		if err != nil {
			return err
		}
		priorities, err = s.buildPriorities(ctx, tx, application, apartmentIDs)
		return err
	})
	if err != nil {
		return nil, s.log.Function("BuildPriorities").
			Err("failed to build priorities", err, "applicationID", applicationID)
	}
	return priorities, nil
}

func (s *ApplicationService) buildPriorities(
	ctx context.Context,
	tx *gorm.DB,
	application *models.Application,
	apartmentIDs []uuid.UUID,
) ([]models.ApartmentPriority, error) {
	if application.Type != models.OwnershipTypeHaso {
		return nil, types.Validationf("application %s is not a haso application", application.ID)
	}

	priorities := make([]models.ApartmentPriority, 0, len(apartmentIDs))
	for index, apartmentID := range apartmentIDs {
		if _, err := s.ensureApartment(ctx, tx, apartmentID, models.OwnershipTypeHaso); err != nil {
			return nil, err
		}

		priority := models.ApartmentPriority{
			ApplicationID:  application.ID,
			ApartmentID:    apartmentID,
			PriorityNumber: index,
			IsActive:       true,
		}
		if err := s.repos.Priority.GetOrCreate(ctx, tx, &priority); err != nil {
			return nil, err
		}
		priorities = append(priorities, priority)
	}

	return priorities, nil
}

func (s *ApplicationService) enqueueHitas(
	ctx context.Context,
	tx *gorm.DB,
	application *models.Application,
	apartmentIDs []uuid.UUID,
) error {
	for _, apartmentID := range apartmentIDs {
		if _, err := s.ensureApartment(ctx, tx, apartmentID, models.OwnershipTypeHitas); err != nil {
			return err
		}

		entry := &models.HitasQueueEntry{
			ApplicationID: application.ID,
			ApartmentID:   apartmentID,
		}
		entry.ID = uuid.New()
		if err := s.repos.HitasQueue.Append(ctx, tx, entry); err != nil {
			return err
		}
	}
	return nil
}

func (s *ApplicationService) ensureApartment(
	ctx context.Context,
	tx *gorm.DB,
	apartmentID uuid.UUID,
	ownershipType models.OwnershipType,
) (*models.Apartment, error) {
	apartment, err := s.repos.Apartment.GetOrCreate(ctx, tx, apartmentID, ownershipType)
	if err != nil {
		return nil, err
	}
	if apartment.OwnershipType != ownershipType {
		return nil, types.Validationf(
			"apartment %s is %s, not %s",
			apartmentID,
			apartment.OwnershipType,
			ownershipType,
		)
	}
	return apartment, nil
}

func (s *ApplicationService) GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var application *models.Application
	err := s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		application, err = s.repos.Application.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}

		priorities, err := s.repos.Priority.ListForApplication(ctx, tx, id)
		if err != nil {
			return err
		}
		application.Priorities = make([]models.ApartmentPriority, len(priorities))
		for i, p := range priorities {
			application.Priorities[i] = *p
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return application, nil
}

func (s *ApplicationService) ApproveApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	log := s.log.Function("ApproveApplication")

	var application *models.Application
	err := s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		application, err = s.repos.Application.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if application.IsApproved {
			return nil
		}

		reason, err := application.Approve()
		if err != nil {
			return err
		}
		if err := s.repos.Application.Update(ctx, tx, application); err != nil {
			return err
		}

		history := newHistoryBatch()
		history.add(models.HistoryEntityApplication, id, models.HistoryActionApproved, reason, nil)
		return history.flush(ctx, tx, s.repos.History)
	})
	if err != nil {
		return nil, log.Err("failed to approve application", err, "applicationID", id)
	}

	return application, nil
}

// RejectApplication marks the application rejected and deactivates its
// active priorities so it cannot keep a winning position.
func (s *ApplicationService) RejectApplication(
	ctx context.Context,
	id uuid.UUID,
	description string,
) (*models.Application, error) {
	log := s.log.Function("RejectApplication")

	if description == "" {
		return nil, types.Validationf("rejection description is required")
	}

	var application *models.Application
	deactivated := 0
	err := s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		application, err = s.repos.Application.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		reason, err := application.Reject(description)
		if err != nil {
			return err
		}
		if err := s.repos.Application.Update(ctx, tx, application); err != nil {
			return err
		}

		history := newHistoryBatch()
		history.add(models.HistoryEntityApplication, id, models.HistoryActionRejected, reason, nil)

		deactivated, err = s.deactivatePriorities(
			ctx,
			tx,
			application.ID,
			uuid.Nil,
			models.ReasonApplicationRejected,
			history,
		)
		if err != nil {
			return err
		}

		return history.flush(ctx, tx, s.repos.History)
	})
	if err != nil {
		return nil, log.Err("failed to reject application", err, "applicationID", id)
	}

	publish(log, s.events, events.QUEUE_CHANNEL, events.Event{
		Type: events.APPLICATION_REJECTED,
		Data: map[string]any{"applicationId": id, "deactivatedPriorities": deactivated},
	})

	return application, nil
}

// AcceptOffer records the accepted offer, deactivates the application's
// other priorities, marks the apartment unavailable and opens a
// reservation. All of it commits together or not at all.
func (s *ApplicationService) AcceptOffer(
	ctx context.Context,
	applicationID uuid.UUID,
	apartmentID uuid.UUID,
) (AcceptOfferResult, error) {
	log := s.log.Function("AcceptOffer")

	var result AcceptOfferResult
	err := s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		application, err := s.repos.Application.GetByIDForUpdate(ctx, tx, applicationID)
		if err != nil {
			return err
		}

		apartment, err := s.repos.Apartment.GetByID(ctx, tx, apartmentID)
		if err != nil {
			return err
		}
		if !apartment.IsAvailable {
			return types.Validationf("apartment %s is no longer available", apartmentID)
		}
		if apartment.OwnershipType != application.Type {
			return types.Validationf("apartment %s is %s, application is %s", apartmentID, apartment.OwnershipType, application.Type)
		}

		if err := s.requireQueuePlace(ctx, tx, application, apartmentID); err != nil {
			return err
		}

		reason, err := application.AcceptOffer()
		if err != nil {
			return err
		}
		if err := s.repos.Application.Update(ctx, tx, application); err != nil {
			return err
		}

		history := newHistoryBatch()
		history.add(
			models.HistoryEntityApplication,
			applicationID,
			models.HistoryActionOffer,
			reason,
			map[string]any{"apartmentId": apartmentID},
		)

		result.Deactivated, err = s.DeactivateOtherPrioritiesOnOfferAcceptance(ctx, tx, application, apartmentID, history)
		if err != nil {
			return err
		}

		reservation := &models.Reservation{
			ApartmentID:   apartmentID,
			ApplicationID: applicationID,
			OwnershipType: application.Type,
			State:         models.ReservationStateReserved,
			StartDate:     s.today(),
		}
		reservation.ID = uuid.New()

		if application.Type == models.OwnershipTypeHaso {
			payment, err := currentPayment(ctx, tx, s.repos, apartmentID)
			if err != nil {
				return err
			}
			reservation.RightOfOccupancyPayment = &payment.Amount
		}

		if err := s.repos.Reservation.Create(ctx, tx, reservation); err != nil {
			return err
		}
		history.add(
			models.HistoryEntityReservation,
			reservation.ID,
			models.HistoryActionCreated,
			"reservation opened on accepted offer",
			map[string]any{"apartmentId": apartmentID, "applicationId": applicationID},
		)

		result.Application = application
		result.Reservation = reservation
		return history.flush(ctx, tx, s.repos.History)
	})
	if err != nil {
		return AcceptOfferResult{}, log.Err(
			"failed to accept offer",
			err,
			"applicationID", applicationID,
			"apartmentID", apartmentID,
		)
	}

	publish(log, s.events, events.QUEUE_CHANNEL, events.Event{
		Type: events.OFFER_ACCEPTED,
		Data: map[string]any{
			"applicationId":         applicationID,
			"apartmentId":           apartmentID,
			"reservationId":         result.Reservation.ID,
			"deactivatedPriorities": result.Deactivated,
		},
	})

	return result, nil
}

func (s *ApplicationService) requireQueuePlace(
	ctx context.Context,
	tx *gorm.DB,
	application *models.Application,
	apartmentID uuid.UUID,
) error {
	switch application.Type {
	case models.OwnershipTypeHaso:
		priorities, err := s.repos.Priority.ListForApplication(ctx, tx, application.ID)
		if err != nil {
			return err
		}
		for _, p := range priorities {
			if p.ApartmentID == apartmentID && p.IsActive {
				return nil
			}
		}
	case models.OwnershipTypeHitas:
		entries, err := s.repos.HitasQueue.ListForApartments(ctx, tx, []uuid.UUID{apartmentID})
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.ApplicationID == application.ID {
				return nil
			}
		}
	}
	return types.Validationf("application %s is not queued for apartment %s", application.ID, apartmentID)
}

// DeactivateOtherPrioritiesOnOfferAcceptance deactivates every active
// priority of the application except the accepted apartment's and marks
// that apartment unavailable. It runs inside the caller's transaction.
func (s *ApplicationService) DeactivateOtherPrioritiesOnOfferAcceptance(
	ctx context.Context,
	tx *gorm.DB,
	application *models.Application,
	apartmentID uuid.UUID,
	history *historyBatch,
) (int, error) {
	deactivated, err := s.deactivatePriorities(
		ctx,
		tx,
		application.ID,
		apartmentID,
		models.ReasonOfferAccepted,
		history,
	)
	if err != nil {
		return 0, err
	}

	if err := s.repos.Apartment.MarkUnavailable(ctx, tx, apartmentID); err != nil {
		return 0, err
	}
	history.add(
		models.HistoryEntityApartment,
		apartmentID,
		models.HistoryActionUnavailable,
		"apartment reserved by accepted offer",
		map[string]any{"applicationId": application.ID},
	)

	return deactivated, nil
}

// deactivatePriorities deactivates the application's active priorities,
// keeping the one for keep when it is not uuid.Nil.
func (s *ApplicationService) deactivatePriorities(
	ctx context.Context,
	tx *gorm.DB,
	applicationID uuid.UUID,
	keep uuid.UUID,
	reason string,
	history *historyBatch,
) (int, error) {
	priorities, err := s.repos.Priority.ListForApplication(ctx, tx, applicationID)
	if err != nil {
		return 0, err
	}

	var ids []uuid.UUID
	for _, p := range priorities {
		if !p.IsActive || p.ApartmentID == keep {
			continue
		}
		ids = append(ids, p.ID)
		history.add(
			models.HistoryEntityPriority,
			p.ID,
			models.HistoryActionDeactivated,
			reason,
			map[string]any{
				"applicationId":  applicationID,
				"apartmentId":    p.ApartmentID,
				"priorityNumber": p.PriorityNumber,
			},
		)
	}

	affected, err := s.repos.Priority.Deactivate(ctx, tx, ids)
	if err != nil {
		return 0, err
	}
	if int(affected) != len(ids) {
		return 0, fmt.Errorf(
			"%w: expected to deactivate %d priorities, changed %d",
			types.ErrConcurrencyConflict,
			len(ids),
			affected,
		)
	}
	return len(ids), nil
}
