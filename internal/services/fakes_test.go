package services

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"apartmentqueue/internal/events"
	"apartmentqueue/internal/models"
	"apartmentqueue/internal/repositories"
	"apartmentqueue/internal/types"
	"apartmentqueue/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	errInjected         = errors.New("injected store failure")
	errPresetPriorityID = errors.New("priority id is assigned on insert")
)

// memoryStore backs the fake repositories. The fake transactor snapshots it
// before each transaction and restores it when the transaction fails.
type memoryStore struct {
	apartments   map[uuid.UUID]models.Apartment
	applications map[uuid.UUID]models.Application
	priorities   map[uuid.UUID]models.ApartmentPriority
	hitas        map[uuid.UUID]models.HitasQueueEntry
	reservations map[uuid.UUID]models.Reservation
	revaluations []models.ApartmentRevaluation
	costIndices  []models.CostIndex
	history      []models.HistoryEvent
	clock        time.Time

	failDeactivate   bool
	failReservations bool
	resolutionLocks  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		apartments:   make(map[uuid.UUID]models.Apartment),
		applications: make(map[uuid.UUID]models.Application),
		priorities:   make(map[uuid.UUID]models.ApartmentPriority),
		hitas:        make(map[uuid.UUID]models.HitasQueueEntry),
		reservations: make(map[uuid.UUID]models.Reservation),
		clock:        time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *memoryStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memoryStore) clone() memoryStore {
	c := *s
	c.apartments = maps.Clone(s.apartments)
	c.applications = maps.Clone(s.applications)
	c.priorities = maps.Clone(s.priorities)
	c.hitas = maps.Clone(s.hitas)
	c.reservations = maps.Clone(s.reservations)
	c.revaluations = slices.Clone(s.revaluations)
	c.costIndices = slices.Clone(s.costIndices)
	c.history = slices.Clone(s.history)
	return c
}

func (s *memoryStore) activePriorities(applicationID uuid.UUID) []models.ApartmentPriority {
	var active []models.ApartmentPriority
	for _, p := range s.priorities {
		if p.ApplicationID == applicationID && p.IsActive {
			active = append(active, p)
		}
	}
	slices.SortFunc(active, func(a, b models.ApartmentPriority) int {
		return cmp.Compare(a.PriorityNumber, b.PriorityNumber)
	})
	return active
}

func (s *memoryStore) historyWithReason(reason string) []models.HistoryEvent {
	var matched []models.HistoryEvent
	for _, event := range s.history {
		if event.Reason == reason {
			matched = append(matched, event)
		}
	}
	return matched
}

type fakeTransactor struct {
	mu    sync.Mutex
	store *memoryStore
	calls int
}

func (f *fakeTransactor) Execute(ctx context.Context, fn func(context.Context, *gorm.DB) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	snapshot := f.store.clone()
	if err := fn(ctx, nil); err != nil {
		*f.store = snapshot
		return err
	}
	return nil
}

type fakeApartmentRepository struct{ s *memoryStore }

func (r fakeApartmentRepository) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*models.Apartment, error) {
	apartment, ok := r.s.apartments[id]
	if !ok {
		return nil, types.NotFoundf("apartment %s", id)
	}
	return &apartment, nil
}

func (r fakeApartmentRepository) GetOrCreate(
	_ context.Context,
	_ *gorm.DB,
	id uuid.UUID,
	ownershipType models.OwnershipType,
) (*models.Apartment, error) {
	if apartment, ok := r.s.apartments[id]; ok {
		return &apartment, nil
	}
	apartment := models.Apartment{ID: id, OwnershipType: ownershipType, IsAvailable: true, CreatedAt: r.s.tick()}
	r.s.apartments[id] = apartment
	return &apartment, nil
}

func (r fakeApartmentRepository) Upsert(_ context.Context, _ *gorm.DB, apartment *models.Apartment) error {
	stored, ok := r.s.apartments[apartment.ID]
	if !ok {
		stored = *apartment
		stored.CreatedAt = r.s.tick()
	}
	stored.OwnershipType = apartment.OwnershipType
	stored.ProjectID = apartment.ProjectID
	stored.RightOfOccupancyPayment = apartment.RightOfOccupancyPayment
	r.s.apartments[apartment.ID] = stored
	return nil
}

func (r fakeApartmentRepository) MarkUnavailable(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	apartment, ok := r.s.apartments[id]
	if !ok {
		return types.NotFoundf("apartment %s", id)
	}
	apartment.IsAvailable = false
	r.s.apartments[id] = apartment
	return nil
}

func (r fakeApartmentRepository) ListByProject(
	_ context.Context,
	_ *gorm.DB,
	projectID uuid.UUID,
) ([]*models.Apartment, error) {
	var apartments []*models.Apartment
	for _, apartment := range r.s.apartments {
		if apartment.ProjectID != nil && *apartment.ProjectID == projectID {
			apartments = append(apartments, &apartment)
		}
	}
	return apartments, nil
}

func (r fakeApartmentRepository) ListByIDs(_ context.Context, _ *gorm.DB, ids []uuid.UUID) ([]*models.Apartment, error) {
	var apartments []*models.Apartment
	for _, id := range ids {
		if apartment, ok := r.s.apartments[id]; ok {
			apartments = append(apartments, &apartment)
		}
	}
	return apartments, nil
}

type fakeApplicationRepository struct{ s *memoryStore }

func (r fakeApplicationRepository) Create(_ context.Context, _ *gorm.DB, application *models.Application) error {
	if err := application.Validate(); err != nil {
		return err
	}
	stored := *application
	stored.Priorities = nil
	stored.CreatedAt = r.s.tick()
	r.s.applications[application.ID] = stored
	return nil
}

func (r fakeApplicationRepository) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*models.Application, error) {
	application, ok := r.s.applications[id]
	if !ok {
		return nil, types.NotFoundf("application %s", id)
	}
	return &application, nil
}

func (r fakeApplicationRepository) GetByIDForUpdate(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*models.Application, error) {
	return r.GetByID(ctx, tx, id)
}

func (r fakeApplicationRepository) Update(_ context.Context, _ *gorm.DB, application *models.Application) error {
	if err := application.Validate(); err != nil {
		return err
	}
	if _, ok := r.s.applications[application.ID]; !ok {
		return types.NotFoundf("application %s", application.ID)
	}
	stored := *application
	stored.Priorities = nil
	r.s.applications[application.ID] = stored
	return nil
}

type fakePriorityRepository struct{ s *memoryStore }

func (r fakePriorityRepository) GetOrCreate(_ context.Context, _ *gorm.DB, priority *models.ApartmentPriority) error {
	if priority.ID != uuid.Nil {
		return errPresetPriorityID
	}
	for _, existing := range r.s.priorities {
		if existing.ApartmentID == priority.ApartmentID && existing.ApplicationID == priority.ApplicationID {
			*priority = existing
			return nil
		}
	}
	priority.ID = uuid.Must(uuid.NewV7())
	priority.IsActive = true
	priority.CreatedAt = r.s.tick()
	r.s.priorities[priority.ID] = *priority
	return nil
}

func (r fakePriorityRepository) ListForApplication(
	_ context.Context,
	_ *gorm.DB,
	applicationID uuid.UUID,
) ([]*models.ApartmentPriority, error) {
	var priorities []*models.ApartmentPriority
	for _, p := range r.s.priorities {
		if p.ApplicationID == applicationID {
			priorities = append(priorities, &p)
		}
	}
	slices.SortFunc(priorities, func(a, b *models.ApartmentPriority) int {
		return cmp.Compare(a.PriorityNumber, b.PriorityNumber)
	})
	return priorities, nil
}

func (r fakePriorityRepository) ListActiveCandidates(
	_ context.Context,
	_ *gorm.DB,
	apartmentIDs []uuid.UUID,
) ([]repositories.PriorityCandidate, error) {
	if apartmentIDs != nil && len(apartmentIDs) == 0 {
		return nil, nil
	}

	var candidates []repositories.PriorityCandidate
	for _, p := range r.s.priorities {
		if !p.IsActive {
			continue
		}
		if apartmentIDs != nil && !slices.Contains(apartmentIDs, p.ApartmentID) {
			continue
		}
		application := r.s.applications[p.ApplicationID]
		if application.Type != models.OwnershipTypeHaso || application.RightOfOccupancyID == nil {
			continue
		}
		candidates = append(candidates, repositories.PriorityCandidate{
			ID:                 p.ID,
			ApartmentID:        p.ApartmentID,
			ApplicationID:      p.ApplicationID,
			PriorityNumber:     p.PriorityNumber,
			IsActive:           p.IsActive,
			RightOfOccupancyID: *application.RightOfOccupancyID,
			IsApproved:         application.IsApproved,
		})
	}
	return candidates, nil
}

func (r fakePriorityRepository) ApartmentIDsForApplications(
	_ context.Context,
	_ *gorm.DB,
	applicationIDs []uuid.UUID,
) ([]uuid.UUID, error) {
	var apartmentIDs []uuid.UUID
	for _, p := range r.s.priorities {
		if slices.Contains(applicationIDs, p.ApplicationID) && !slices.Contains(apartmentIDs, p.ApartmentID) {
			apartmentIDs = append(apartmentIDs, p.ApartmentID)
		}
	}
	return apartmentIDs, nil
}

func (r fakePriorityRepository) Deactivate(_ context.Context, _ *gorm.DB, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if r.s.failDeactivate {
		return 0, errInjected
	}

	var affected int64
	for _, id := range ids {
		p, ok := r.s.priorities[id]
		if !ok || !p.IsActive {
			continue
		}
		p.IsActive = false
		r.s.priorities[id] = p
		affected++
	}
	return affected, nil
}

func (r fakePriorityRepository) LockResolution(context.Context, *gorm.DB) error {
	r.s.resolutionLocks++
	return nil
}

type fakeHitasQueueRepository struct{ s *memoryStore }

func (r fakeHitasQueueRepository) Append(_ context.Context, _ *gorm.DB, entry *models.HitasQueueEntry) error {
	if _, ok := r.s.apartments[entry.ApartmentID]; !ok {
		return types.NotFoundf("apartment %s", entry.ApartmentID)
	}

	highest := 0
	for _, existing := range r.s.hitas {
		if existing.ApartmentID != entry.ApartmentID {
			continue
		}
		if existing.ApplicationID == entry.ApplicationID {
			*entry = existing
			return nil
		}
		highest = max(highest, existing.Order)
	}

	entry.Order = highest + 1
	entry.CreatedAt = r.s.tick()
	r.s.hitas[entry.ID] = *entry
	return nil
}

func (r fakeHitasQueueRepository) ListForApartments(
	_ context.Context,
	_ *gorm.DB,
	apartmentIDs []uuid.UUID,
) ([]*models.HitasQueueEntry, error) {
	var entries []*models.HitasQueueEntry
	for _, entry := range r.s.hitas {
		if !slices.Contains(apartmentIDs, entry.ApartmentID) {
			continue
		}
		application := r.s.applications[entry.ApplicationID]
		entry.Application = &application
		entries = append(entries, &entry)
	}
	slices.SortFunc(entries, func(a, b *models.HitasQueueEntry) int {
		return cmp.Or(
			cmp.Compare(a.ApartmentID.String(), b.ApartmentID.String()),
			cmp.Compare(a.Order, b.Order),
		)
	})
	return entries, nil
}

func (r fakeHitasQueueRepository) UpdateOrders(_ context.Context, _ *gorm.DB, entries []*models.HitasQueueEntry) error {
	for _, entry := range entries {
		stored := r.s.hitas[entry.ID]
		stored.Order = entry.Order
		r.s.hitas[entry.ID] = stored
	}
	return nil
}

type fakeReservationRepository struct{ s *memoryStore }

func (r fakeReservationRepository) Create(_ context.Context, _ *gorm.DB, reservation *models.Reservation) error {
	if r.s.failReservations {
		return errInjected
	}
	reservation.CreatedAt = r.s.tick()
	r.s.reservations[reservation.ID] = *reservation
	return nil
}

func (r fakeReservationRepository) GetByIDForUpdate(
	_ context.Context,
	_ *gorm.DB,
	id uuid.UUID,
) (*models.Reservation, error) {
	reservation, ok := r.s.reservations[id]
	if !ok {
		return nil, types.NotFoundf("reservation %s", id)
	}
	return &reservation, nil
}

func (r fakeReservationRepository) Terminate(_ context.Context, _ *gorm.DB, reservation *models.Reservation) error {
	stored := r.s.reservations[reservation.ID]
	stored.State = reservation.State
	stored.EndDate = reservation.EndDate
	r.s.reservations[reservation.ID] = stored
	return nil
}

type fakeRevaluationRepository struct{ s *memoryStore }

func (r fakeRevaluationRepository) Create(_ context.Context, _ *gorm.DB, revaluation *models.ApartmentRevaluation) error {
	for _, existing := range r.s.revaluations {
		if existing.ReservationID == revaluation.ReservationID {
			return types.Validationf("reservation %s already revalued", revaluation.ReservationID)
		}
	}
	revaluation.CreatedAt = r.s.tick()
	r.s.revaluations = append(r.s.revaluations, *revaluation)
	return nil
}

func (r fakeRevaluationRepository) LatestForApartment(
	_ context.Context,
	_ *gorm.DB,
	apartmentID uuid.UUID,
) (*models.ApartmentRevaluation, error) {
	var latest *models.ApartmentRevaluation
	for _, revaluation := range r.s.revaluations {
		if revaluation.ApartmentID != apartmentID {
			continue
		}
		if latest == nil || revaluation.CreatedAt.After(latest.CreatedAt) ||
			(revaluation.CreatedAt.Equal(latest.CreatedAt) && bytes.Compare(revaluation.ID[:], latest.ID[:]) > 0) {
			latest = &revaluation
		}
	}
	return latest, nil
}

type fakeCostIndexRepository struct{ s *memoryStore }

func (r fakeCostIndexRepository) List(context.Context, *gorm.DB) ([]*models.CostIndex, error) {
	indices := make([]*models.CostIndex, len(r.s.costIndices))
	for i := range r.s.costIndices {
		index := r.s.costIndices[i]
		indices[i] = &index
	}
	slices.SortFunc(indices, func(a, b *models.CostIndex) int {
		return a.ValidFrom.Compare(b.ValidFrom)
	})
	return indices, nil
}

func (r fakeCostIndexRepository) Create(_ context.Context, _ *gorm.DB, index *models.CostIndex) error {
	for _, existing := range r.s.costIndices {
		if existing.ValidFrom.Equal(index.ValidFrom) {
			return types.Validationf("cost index %s already exists", utils.FormatDate(index.ValidFrom))
		}
	}
	index.ID = len(r.s.costIndices) + 1
	r.s.costIndices = append(r.s.costIndices, *index)
	return nil
}

type fakeHistoryRepository struct{ s *memoryStore }

func (r fakeHistoryRepository) Append(_ context.Context, _ *gorm.DB, history []*models.HistoryEvent) error {
	for _, event := range history {
		event.CreatedAt = r.s.tick()
		r.s.history = append(r.s.history, *event)
	}
	return nil
}

func (r fakeHistoryRepository) ListForEntity(
	_ context.Context,
	_ *gorm.DB,
	entityType models.HistoryEntityType,
	entityID uuid.UUID,
) ([]*models.HistoryEvent, error) {
	var history []*models.HistoryEvent
	for _, event := range r.s.history {
		if event.EntityType == entityType && event.EntityID == entityID {
			history = append(history, &event)
		}
	}
	return history, nil
}

func (r fakeHistoryRepository) ListForBatch(_ context.Context, _ *gorm.DB, batchID uuid.UUID) ([]*models.HistoryEvent, error) {
	var history []*models.HistoryEvent
	for _, event := range r.s.history {
		if event.BatchID == batchID {
			history = append(history, &event)
		}
	}
	return history, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(channel events.Channel, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	event.Channel = channel
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) messageTypes() []events.MessageType {
	p.mu.Lock()
	defer p.mu.Unlock()
	messageTypes := make([]events.MessageType, len(p.events))
	for i, event := range p.events {
		messageTypes[i] = event.Type
	}
	return messageTypes
}

type testEnv struct {
	store       *memoryStore
	tx          *fakeTransactor
	repos       repositories.Repository
	publisher   *recordingPublisher
	apartment   *ApartmentService
	application *ApplicationService
	lottery     *LotteryService
	valuation   *ValuationService
	history     *HistoryService
}

func newTestEnv() *testEnv {
	store := newMemoryStore()
	tx := &fakeTransactor{store: store}
	repos := repositories.Repository{
		Apartment:   fakeApartmentRepository{store},
		Application: fakeApplicationRepository{store},
		Priority:    fakePriorityRepository{store},
		HitasQueue:  fakeHitasQueueRepository{store},
		Reservation: fakeReservationRepository{store},
		Revaluation: fakeRevaluationRepository{store},
		CostIndex:   fakeCostIndexRepository{store},
		History:     fakeHistoryRepository{store},
	}
	publisher := &recordingPublisher{}
	lookup := NewCostIndexLookupService(tx, repos.CostIndex, nil, 0)

	return &testEnv{
		store:       store,
		tx:          tx,
		repos:       repos,
		publisher:   publisher,
		apartment:   NewApartmentService(tx, repos),
		application: NewApplicationService(tx, repos, publisher),
		lottery:     NewLotteryService(tx, repos, publisher, 0),
		valuation:   NewValuationService(tx, repos, lookup, publisher),
		history:     NewHistoryService(tx, repos),
	}
}

func (e *testEnv) addApartment(ownershipType models.OwnershipType, payment string, projectID *uuid.UUID) uuid.UUID {
	apartment := models.Apartment{
		ID:            uuid.New(),
		OwnershipType: ownershipType,
		ProjectID:     projectID,
		IsAvailable:   true,
		CreatedAt:     e.store.tick(),
	}
	if payment != "" {
		amount := decimal.RequireFromString(payment)
		apartment.RightOfOccupancyPayment = &amount
	}
	e.store.apartments[apartment.ID] = apartment
	return apartment.ID
}
