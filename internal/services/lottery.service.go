package services

import (
	"bytes"
	"context"
	cryptorand "crypto/rand"
	"fmt"
	"math/rand/v2"
	"slices"

	"apartmentqueue/internal/events"
	"apartmentqueue/internal/models"
	"apartmentqueue/internal/queue"
	"apartmentqueue/internal/repositories"
	"apartmentqueue/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope limits a conflict resolution run. Listed applications contribute
// every apartment they hold a priority on. An empty scope covers all
// apartments.
type Scope struct {
	ApplicationIDs []uuid.UUID
	ApartmentIDs   []uuid.UUID
}

func (s Scope) IsEmpty() bool {
	return len(s.ApplicationIDs) == 0 && len(s.ApartmentIDs) == 0
}

type ResolveResult struct {
	BatchID     uuid.UUID `json:"batchId"`
	Passes      int       `json:"passes"`
	Deactivated int       `json:"deactivated"`
	// FirstPlaceHolders counts applications winning at least one apartment
	// after the final pass.
	FirstPlaceHolders int `json:"firstPlaceHolders"`
}

type ShuffleResult struct {
	BatchID    uuid.UUID `json:"batchId"`
	Apartments int       `json:"apartments"`
	Entries    int       `json:"entries"`
}

type LotteryRequest struct {
	ProjectID    *uuid.UUID
	ApartmentIDs []uuid.UUID
}

type LotteryResult struct {
	HasoApartments  []uuid.UUID   `json:"hasoApartments"`
	HitasApartments []uuid.UUID   `json:"hitasApartments"`
	Resolution      ResolveResult `json:"resolution"`
	Shuffle         ShuffleResult `json:"shuffle"`
}

type LotteryService struct {
	tx      Transactor
	repos   repositories.Repository
	events  EventPublisher
	newRand func() *rand.Rand
	// maxPasses, when positive, caps the computed pass bound.
	maxPasses int
	log       logger.Logger
}

func NewLotteryService(
	tx Transactor,
	repos repositories.Repository,
	publisher EventPublisher,
	maxPasses int,
) *LotteryService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &LotteryService{
		tx:        tx,
		repos:     repos,
		events:    publisher,
		newRand:   secureRand,
		maxPasses: maxPasses,
		log:       logger.New("lotteryService"),
	}
}

// secureRand returns a ChaCha8 generator seeded from the OS so draws cannot
// be predicted.
func secureRand() *rand.Rand {
	var seed [32]byte
	_, _ = cryptorand.Read(seed[:])
	return rand.New(rand.NewChaCha8(seed))
}

// RunLotteryForProject shuffles the HITAS queues and resolves first-place
// conflicts for the HASO apartments of a project or an explicit apartment
// list.
func (s *LotteryService) RunLotteryForProject(ctx context.Context, request LotteryRequest) (LotteryResult, error) {
	log := s.log.Function("RunLotteryForProject")

	var apartments []*models.Apartment
	err := s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		switch {
		case request.ProjectID != nil:
			apartments, err = s.repos.Apartment.ListByProject(ctx, tx, *request.ProjectID)
		case len(request.ApartmentIDs) > 0:
			apartments, err = s.repos.Apartment.ListByIDs(ctx, tx, request.ApartmentIDs)
		default:
			err = types.Validationf("project or apartments are required")
		}
		return err
	})
	if err != nil {
		return LotteryResult{}, log.Err("failed to load lottery apartments", err)
	}
	if len(apartments) == 0 {
		return LotteryResult{}, types.NotFoundf("no apartments in lottery scope")
	}

	var result LotteryResult
	for _, apartment := range apartments {
		switch apartment.OwnershipType {
		case models.OwnershipTypeHaso:
			result.HasoApartments = append(result.HasoApartments, apartment.ID)
		case models.OwnershipTypeHitas:
			result.HitasApartments = append(result.HitasApartments, apartment.ID)
		}
	}

	if len(result.HitasApartments) > 0 {
		if result.Shuffle, err = s.ShuffleHitas(ctx, result.HitasApartments); err != nil {
			return LotteryResult{}, err
		}
	}

	if len(result.HasoApartments) > 0 {
		scope := Scope{ApartmentIDs: result.HasoApartments}
		if result.Resolution, err = s.ResolveFirstPlaceConflicts(ctx, scope); err != nil {
			return LotteryResult{}, err
		}
	}

	log.Info(
		"Lottery completed",
		"hasoApartments", len(result.HasoApartments),
		"hitasApartments", len(result.HitasApartments),
		"passes", result.Resolution.Passes,
		"deactivated", result.Resolution.Deactivated,
	)
	publish(log, s.events, events.QUEUE_CHANNEL, events.Event{
		Type: events.LOTTERY_COMPLETED,
		Data: map[string]any{
			"projectId":       request.ProjectID,
			"hasoApartments":  len(result.HasoApartments),
			"hitasApartments": len(result.HitasApartments),
			"deactivated":     result.Resolution.Deactivated,
		},
	})

	return result, nil
}

// ResolveFirstPlaceConflicts repeats single resolution passes until one
// changes nothing. Each pass is its own transaction holding the resolution
// advisory lock, so a failed pass leaves earlier passes committed and the
// run can simply be repeated.
func (s *LotteryService) ResolveFirstPlaceConflicts(ctx context.Context, scope Scope) (ResolveResult, error) {
	log := s.log.Function("ResolveFirstPlaceConflicts")

	result := ResolveResult{BatchID: uuid.New()}
	apartmentIDs, err := s.scopeApartments(ctx, scope)
	if err != nil {
		return result, log.Err("failed to resolve scope", err)
	}
	if apartmentIDs != nil && len(apartmentIDs) == 0 {
		result.Passes = 1
		return result, nil
	}

	limit := 0
	for {
		if limit > 0 && result.Passes >= limit {
			return result, log.Err(
				"conflict resolution did not converge",
				fmt.Errorf("%w: still changing after %d passes", types.ErrNonTermination, result.Passes),
				"batchID", result.BatchID,
			)
		}

		pass := result.Passes + 1
		var changed int
		err := s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
			if err := s.repos.Priority.LockResolution(ctx, tx); err != nil {
				return err
			}

			priorities, err := s.loadPriorities(ctx, tx, apartmentIDs)
			if err != nil {
				return err
			}
			if limit == 0 {
				limit = s.passLimit(priorities)
			}

			changed, err = s.applyPass(ctx, tx, priorities, pass, result.BatchID)
			if err != nil || changed > 0 {
				return err
			}

			holders, err := firstPlaceHolders(priorities)
			if err != nil {
				return err
			}
			result.FirstPlaceHolders = holders
			return nil
		})
		if err != nil {
			return result, log.Err("resolution pass failed", err, "pass", pass, "batchID", result.BatchID)
		}

		result.Passes = pass
		result.Deactivated += changed
		if changed == 0 {
			break
		}
	}

	log.Info(
		"First-place conflicts resolved",
		"passes", result.Passes,
		"deactivated", result.Deactivated,
		"firstPlaceHolders", result.FirstPlaceHolders,
		"batchID", result.BatchID,
	)
	if result.Deactivated > 0 {
		publish(log, s.events, events.QUEUE_CHANNEL, events.Event{
			Type: events.CONFLICTS_RESOLVED,
			Data: map[string]any{
				"batchId":           result.BatchID,
				"passes":            result.Passes,
				"deactivated":       result.Deactivated,
				"firstPlaceHolders": result.FirstPlaceHolders,
			},
		})
	}

	return result, nil
}

// firstPlaceHolders counts applications holding a first place once a pass
// changed nothing. An approved application still holding more than one
// means the pass logic and the winner rules disagree.
func firstPlaceHolders(priorities []queue.Priority) (int, error) {
	counts, err := queue.FirstPlaceCount(priorities)
	if err != nil {
		return 0, err
	}

	approved := make(map[uuid.UUID]bool, len(priorities))
	for _, p := range priorities {
		approved[p.ApplicationID] = p.Approved
	}
	for applicationID, count := range counts {
		if approved[applicationID] && count > 1 {
			return 0, fmt.Errorf(
				"%w: application %s holds %d first places after a quiet pass",
				types.ErrNonTermination,
				applicationID,
				count,
			)
		}
	}
	return len(counts), nil
}

// passLimit is one changing pass per approved application plus the final
// quiet pass, optionally capped by configuration.
func (s *LotteryService) passLimit(priorities []queue.Priority) int {
	limit := queue.MaxPasses(priorities)
	if s.maxPasses > 0 && s.maxPasses < limit {
		return s.maxPasses
	}
	return limit
}

func (s *LotteryService) applyPass(
	ctx context.Context,
	tx *gorm.DB,
	priorities []queue.Priority,
	pass int,
	batchID uuid.UUID,
) (int, error) {
	superseded, err := queue.FirstPlaceConflicts(priorities)
	if err != nil {
		return 0, err
	}
	if len(superseded) == 0 {
		return 0, nil
	}

	history := &historyBatch{id: batchID}
	ids := make([]uuid.UUID, len(superseded))
	for i, p := range superseded {
		ids[i] = p.ID
		history.add(
			models.HistoryEntityPriority,
			p.ID,
			models.HistoryActionDeactivated,
			models.ReasonSupersededByFirstPlace,
			map[string]any{
				"pass":           pass,
				"applicationId":  p.ApplicationID,
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
			"%w: pass %d expected %d deactivations, changed %d",
			types.ErrConcurrencyConflict,
			pass,
			len(ids),
			affected,
		)
	}

	if err := history.flush(ctx, tx, s.repos.History); err != nil {
		return 0, err
	}
	return len(ids), nil
}

// scopeApartments returns nil for an empty scope, meaning every apartment.
func (s *LotteryService) scopeApartments(ctx context.Context, scope Scope) ([]uuid.UUID, error) {
	if scope.IsEmpty() {
		return nil, nil
	}

	// non-nil even when empty; nil would widen the run to every apartment
	apartmentIDs := append(make([]uuid.UUID, 0, len(scope.ApartmentIDs)), scope.ApartmentIDs...)
	if len(scope.ApplicationIDs) > 0 {
		err := s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
			held, err := s.repos.Priority.ApartmentIDsForApplications(ctx, tx, scope.ApplicationIDs)
			if err != nil {
				return err
			}
			apartmentIDs = append(apartmentIDs, held...)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	slices.SortFunc(apartmentIDs, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
	return slices.Compact(apartmentIDs), nil
}

func (s *LotteryService) loadPriorities(
	ctx context.Context,
	tx *gorm.DB,
	apartmentIDs []uuid.UUID,
) ([]queue.Priority, error) {
	candidates, err := s.repos.Priority.ListActiveCandidates(ctx, tx, apartmentIDs)
	if err != nil {
		return nil, err
	}

	priorities := make([]queue.Priority, len(candidates))
	for i, c := range candidates {
		priorities[i] = queue.Priority{
			ID:                 c.ID,
			ApartmentID:        c.ApartmentID,
			ApplicationID:      c.ApplicationID,
			PriorityNumber:     c.PriorityNumber,
			RightOfOccupancyID: c.RightOfOccupancyID,
			Approved:           c.IsApproved,
			Active:             c.IsActive,
		}
	}
	return priorities, nil
}

// ShuffleHitas redraws the queue of every listed HITAS apartment
// independently. Rejected applications are kept after the drawn entries in
// their previous order.
func (s *LotteryService) ShuffleHitas(ctx context.Context, apartmentIDs []uuid.UUID) (ShuffleResult, error) {
	log := s.log.Function("ShuffleHitas")

	result := ShuffleResult{BatchID: uuid.New()}
	err := s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		entries, err := s.repos.HitasQueue.ListForApartments(ctx, tx, apartmentIDs)
		if err != nil {
			return err
		}

		byID := make(map[uuid.UUID]*models.HitasQueueEntry, len(entries))
		var eligible []queue.HitasEntry
		rejected := make(map[uuid.UUID][]*models.HitasQueueEntry)
		for _, entry := range entries {
			byID[entry.ID] = entry
			if entry.Application != nil && entry.Application.IsRejected {
				rejected[entry.ApartmentID] = append(rejected[entry.ApartmentID], entry)
				continue
			}
			eligible = append(eligible, queue.HitasEntry{
				ID:            entry.ID,
				ApartmentID:   entry.ApartmentID,
				ApplicationID: entry.ApplicationID,
				HasChildren:   entry.Application != nil && entry.Application.HasChildren,
				Order:         entry.Order,
			})
		}

		history := &historyBatch{id: result.BatchID}
		var updated []*models.HitasQueueEntry
		shuffled := queue.ShuffleHitasByApartment(eligible, s.newRand)
		for apartmentID, drawn := range shuffled {
			for _, e := range drawn {
				entry := byID[e.ID]
				entry.Order = e.Order
				updated = append(updated, entry)
			}

			tail := rejected[apartmentID]
			slices.SortFunc(tail, func(a, b *models.HitasQueueEntry) int { return a.Order - b.Order })
			for i, entry := range tail {
				entry.Order = len(drawn) + i + 1
				updated = append(updated, entry)
			}
			delete(rejected, apartmentID)
		}
		for _, tail := range rejected {
			slices.SortFunc(tail, func(a, b *models.HitasQueueEntry) int { return a.Order - b.Order })
			for i, entry := range tail {
				entry.Order = i + 1
				updated = append(updated, entry)
			}
		}

		for _, entry := range updated {
			history.add(
				models.HistoryEntityHitasEntry,
				entry.ID,
				models.HistoryActionReordered,
				"hitas lottery draw",
				map[string]any{"apartmentId": entry.ApartmentID, "order": entry.Order},
			)
		}

		if err := s.repos.HitasQueue.UpdateOrders(ctx, tx, updated); err != nil {
			return err
		}

		result.Apartments = len(shuffled)
		result.Entries = len(updated)
		return history.flush(ctx, tx, s.repos.History)
	})
	if err != nil {
		return ShuffleResult{}, log.Err("failed to shuffle hitas queues", err, "apartmentCount", len(apartmentIDs))
	}

	return result, nil
}

// GetQueueForApartment lists the current queue: active HASO priorities by
// right of occupancy id, or non-rejected HITAS entries by order.
func (s *LotteryService) GetQueueForApartment(ctx context.Context, apartmentID uuid.UUID) ([]queue.Position, error) {
	var positions []queue.Position
	err := s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		apartment, err := s.repos.Apartment.GetByID(ctx, tx, apartmentID)
		if err != nil {
			return err
		}

		switch apartment.OwnershipType {
		case models.OwnershipTypeHaso:
			priorities, err := s.loadPriorities(ctx, tx, []uuid.UUID{apartmentID})
			if err != nil {
				return err
			}
			positions, err = queue.HasoQueue(apartmentID, priorities)
			return err
		default:
			entries, err := s.repos.HitasQueue.ListForApartments(ctx, tx, []uuid.UUID{apartmentID})
			if err != nil {
				return err
			}
			var queued []queue.HitasEntry
			for _, entry := range entries {
				if entry.Application != nil && entry.Application.IsRejected {
					continue
				}
				queued = append(queued, queue.HitasEntry{
					ID:            entry.ID,
					ApartmentID:   entry.ApartmentID,
					ApplicationID: entry.ApplicationID,
					Order:         entry.Order,
				})
			}
			positions = queue.HitasQueue(queued)
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	if positions == nil {
		positions = []queue.Position{}
	}
	return positions, nil
}
