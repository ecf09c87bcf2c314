package queue

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
)

// HitasEntry is one application's place in a HITAS apartment queue.
type HitasEntry struct {
	ID            uuid.UUID
	ApartmentID   uuid.UUID
	ApplicationID uuid.UUID
	HasChildren   bool
	Order         int
}

// ShuffleHitas orders a single apartment's queue: applications with children
// first, each group shuffled uniformly, orders assigned from 1. The input is
// not modified.
func ShuffleHitas(entries []HitasEntry, rng *rand.Rand) []HitasEntry {
	var withChildren, withoutChildren []HitasEntry
	for _, e := range entries {
		if e.HasChildren {
			withChildren = append(withChildren, e)
		} else {
			withoutChildren = append(withoutChildren, e)
		}
	}

	rng.Shuffle(len(withChildren), func(i, j int) {
		withChildren[i], withChildren[j] = withChildren[j], withChildren[i]
	})
	rng.Shuffle(len(withoutChildren), func(i, j int) {
		withoutChildren[i], withoutChildren[j] = withoutChildren[j], withoutChildren[i]
	})

	shuffled := append(withChildren, withoutChildren...)
	for i := range shuffled {
		shuffled[i].Order = i + 1
	}
	return shuffled
}

// ShuffleHitasByApartment groups entries by apartment and shuffles each group
// with its own random source, so one apartment's draw never depends on
// another's.
func ShuffleHitasByApartment(
	entries []HitasEntry,
	newRand func() *rand.Rand,
) map[uuid.UUID][]HitasEntry {
	grouped := make(map[uuid.UUID][]HitasEntry)
	for _, e := range entries {
		grouped[e.ApartmentID] = append(grouped[e.ApartmentID], e)
	}

	result := make(map[uuid.UUID][]HitasEntry, len(grouped))
	for apartmentID, group := range grouped {
		// stable input order keeps seeded draws reproducible
		slices.SortFunc(group, func(a, b HitasEntry) int {
			if c := cmp.Compare(a.Order, b.Order); c != 0 {
				return c
			}
			return cmp.Compare(a.ApplicationID.String(), b.ApplicationID.String())
		})
		result[apartmentID] = ShuffleHitas(group, newRand())
	}
	return result
}
