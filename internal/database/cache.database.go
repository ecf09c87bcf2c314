package database

import (
	"fmt"

	"apartmentqueue/config"

	"github.com/valkey-io/valkey-go"
)

// Valkey database indexes keep cached lookups apart from pub/sub traffic.
const (
	// GENERAL_CACHE_INDEX (DB 0) holds the cost index series and other
	// read-mostly lookups.
	GENERAL_CACHE_INDEX = iota

	// EVENTS_CACHE_INDEX (DB 1) carries domain event pub/sub.
	EVENTS_CACHE_INDEX
)

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")
	log.Info("initializing cache database")

	address := fmt.Sprintf("%s:%d", config.DatabaseCacheAddress, config.DatabaseCachePort)

	var cacheDB Cache
	var err error

	cacheDB.General, err = valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{address},
		SelectDB:    GENERAL_CACHE_INDEX,
	})
	if err != nil {
		return log.Err("failed to create general valkey client", err)
	}

	cacheDB.Events, err = valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{address},
		SelectDB:    EVENTS_CACHE_INDEX,
	})
	if err != nil {
		cacheDB.General.Close()
		return log.Err("failed to create events valkey client", err)
	}

	s.Cache = cacheDB
	return nil
}
