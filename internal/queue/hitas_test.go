package queue

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hitasEntries(apartmentID uuid.UUID, children []bool) []HitasEntry {
	entries := make([]HitasEntry, len(children))
	for i, hasChildren := range children {
		entries[i] = HitasEntry{
			ID:            uuid.New(),
			ApartmentID:   apartmentID,
			ApplicationID: uuid.New(),
			HasChildren:   hasChildren,
			Order:         i + 1,
		}
	}
	return entries
}

func seeded(seed uint64) func() *rand.Rand {
	return func() *rand.Rand {
		return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

func TestShuffleHitas_ChildrenFirst(t *testing.T) {
	apartmentID := uuid.New()
	rng := rand.New(rand.NewPCG(1, 2))

	for round := 0; round < 100; round++ {
		children := make([]bool, 1+rng.IntN(15))
		for i := range children {
			children[i] = rng.IntN(2) == 0
		}
		entries := hitasEntries(apartmentID, children)

		shuffled := ShuffleHitas(entries, rng)
		require.Len(t, shuffled, len(entries))

		maxChildOrder, minChildlessOrder := 0, len(entries)+1
		for i, e := range shuffled {
			assert.Equal(t, i+1, e.Order)
			if e.HasChildren {
				maxChildOrder = max(maxChildOrder, e.Order)
			} else {
				minChildlessOrder = min(minChildlessOrder, e.Order)
			}
		}
		assert.Less(t, maxChildOrder, minChildlessOrder, "round %d", round)
	}
}

func TestShuffleHitas_KeepsEveryApplication(t *testing.T) {
	entries := hitasEntries(uuid.New(), []bool{true, false, true, false, false})

	shuffled := ShuffleHitas(entries, seeded(7)())

	var before, after []uuid.UUID
	for _, e := range entries {
		before = append(before, e.ApplicationID)
	}
	for _, e := range shuffled {
		after = append(after, e.ApplicationID)
	}
	assert.ElementsMatch(t, before, after)

	// input orders untouched
	for i, e := range entries {
		assert.Equal(t, i+1, e.Order)
	}
}

func TestShuffleHitas_Empty(t *testing.T) {
	assert.Empty(t, ShuffleHitas(nil, seeded(1)()))
}

func TestShuffleHitas_CoversAllPermutations(t *testing.T) {
	entries := hitasEntries(uuid.New(), []bool{false, false, false})
	names := map[uuid.UUID]string{
		entries[0].ApplicationID: "a",
		entries[1].ApplicationID: "b",
		entries[2].ApplicationID: "c",
	}

	rng := rand.New(rand.NewPCG(3, 4))
	seen := make(map[string]int)
	for i := 0; i < 600; i++ {
		var key strings.Builder
		for _, e := range ShuffleHitas(entries, rng) {
			key.WriteString(names[e.ApplicationID])
		}
		seen[key.String()]++
	}

	assert.Len(t, seen, 6)
}

func TestShuffleHitasByApartment_Independent(t *testing.T) {
	apartmentA, apartmentB := uuid.New(), uuid.New()
	entriesA := hitasEntries(apartmentA, []bool{true, false, false, true, false, false})
	entriesB := hitasEntries(apartmentB, []bool{false, true, false})

	alone := ShuffleHitasByApartment(entriesA, seeded(99))
	together := ShuffleHitasByApartment(append(append([]HitasEntry{}, entriesB...), entriesA...), seeded(99))

	require.Len(t, together, 2)
	assert.Equal(t, alone[apartmentA], together[apartmentA])
	assert.Len(t, together[apartmentB], 3)
}
