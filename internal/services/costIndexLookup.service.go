package services

import (
	"context"
	"sync"
	"time"

	"apartmentqueue/internal/constants"
	"apartmentqueue/internal/database"
	"apartmentqueue/internal/events"
	"apartmentqueue/internal/repositories"
	"apartmentqueue/internal/valuation"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

// CostIndexLookupService serves the cost index series from an in-process
// copy, then valkey, then the database. Every write to the series must call
// Invalidate, and other instances learn of writes through COST_INDEX_CHANGED.
type CostIndexLookupService struct {
	tx    Transactor
	repo  repositories.CostIndexRepository
	cache database.CacheClient
	ttl   time.Duration
	log   logger.Logger

	mu       sync.RWMutex
	local    *valuation.Series
	loadedAt time.Time
	now      func() time.Time
}

func NewCostIndexLookupService(
	tx Transactor,
	repo repositories.CostIndexRepository,
	cache database.CacheClient,
	ttl time.Duration,
) *CostIndexLookupService {
	return &CostIndexLookupService{
		tx:    tx,
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		log:   logger.New("costIndexLookupService"),
		now:   time.Now,
	}
}

func (s *CostIndexLookupService) cacheEnabled() bool {
	return s.cache != nil && s.ttl > 0
}

func (s *CostIndexLookupService) builder(ctx context.Context) *database.CacheBuilder {
	return database.NewCacheBuilder(s.cache, constants.CostIndexCacheKey).
		WithHash(constants.CostIndexCacheHash).
		WithContext(ctx)
}

func (s *CostIndexLookupService) cached() (valuation.Series, bool) {
	if s.ttl <= 0 {
		return valuation.Series{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.local == nil || s.now().Sub(s.loadedAt) >= s.ttl {
		return valuation.Series{}, false
	}
	return *s.local, true
}

func (s *CostIndexLookupService) remember(series valuation.Series) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.local = &series
	s.loadedAt = s.now()
}

// Series returns the full series. Cache failures fall back to the database.
func (s *CostIndexLookupService) Series(ctx context.Context) (valuation.Series, error) {
	log := s.log.Function("Series")

	if series, ok := s.cached(); ok {
		return series, nil
	}

	if s.cacheEnabled() {
		var points []valuation.Point
		found, err := s.builder(ctx).Get(&points)
		if err != nil {
			log.Warn("failed to read cost index cache", "error", err)
		}
		if found {
			if series, err := valuation.NewSeries(points); err == nil {
				s.remember(series)
				return series, nil
			}
			log.Warn("discarding corrupt cost index cache entry")
		}
	}

	series, err := s.load(ctx)
	if err != nil {
		return valuation.Series{}, err
	}

	if s.cacheEnabled() {
		if err := s.builder(ctx).WithStruct(series.Points()).WithTTL(s.ttl).Set(); err != nil {
			log.Warn("failed to write cost index cache", "error", err)
		}
	}

	s.remember(series)
	return series, nil
}

// SeriesTx reads straight from the database inside an open transaction.
func (s *CostIndexLookupService) SeriesTx(ctx context.Context, tx *gorm.DB) (valuation.Series, error) {
	indices, err := s.repo.List(ctx, tx)
	if err != nil {
		return valuation.Series{}, err
	}

	points := make([]valuation.Point, len(indices))
	for i, index := range indices {
		points[i] = valuation.Point{ValidFrom: index.ValidFrom, Value: index.Value}
	}
	return valuation.NewSeries(points)
}

func (s *CostIndexLookupService) load(ctx context.Context) (valuation.Series, error) {
	var series valuation.Series
	err := s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		series, err = s.SeriesTx(ctx, tx)
		return err
	})
	if err != nil {
		return valuation.Series{}, s.log.Function("load").Err("failed to load cost index series", err)
	}
	return series, nil
}

func (s *CostIndexLookupService) Invalidate(ctx context.Context) {
	s.mu.Lock()
	s.local = nil
	s.mu.Unlock()

	if s.cache == nil {
		return
	}
	if err := s.builder(ctx).Delete(); err != nil {
		s.log.Function("Invalidate").Warn("failed to invalidate cost index cache", "error", err)
	}
}

// Refresh drops the cached series and loads it again.
func (s *CostIndexLookupService) Refresh(ctx context.Context) (int, error) {
	s.Invalidate(ctx)
	series, err := s.Series(ctx)
	if err != nil {
		return 0, err
	}
	return series.Len(), nil
}

// HandleEvent drops the cached series when any instance reports a change.
func (s *CostIndexLookupService) HandleEvent(event events.Event) error {
	if event.Type != events.COST_INDEX_CHANGED {
		return nil
	}
	s.Invalidate(context.Background())
	return nil
}
