package queue

import (
	"cmp"
	"slices"

	"github.com/google/uuid"
)

// Position is one row of an apartment's queue as exposed to callers.
type Position struct {
	ApplicationID uuid.UUID `json:"applicationId"`
	Position      int       `json:"position"`
	IsWinner      bool      `json:"isWinner"`
}

// HasoQueue lists the apartment's active priorities ordered by right of
// occupancy id. The first row is the winning priority.
func HasoQueue(apartmentID uuid.UUID, priorities []Priority) ([]Position, error) {
	var active []Priority
	for _, p := range priorities {
		if p.Active && p.ApartmentID == apartmentID {
			active = append(active, p)
		}
	}

	if _, err := Winners(active); err != nil {
		return nil, err
	}

	slices.SortFunc(active, func(a, b Priority) int {
		return cmp.Compare(a.RightOfOccupancyID, b.RightOfOccupancyID)
	})

	positions := make([]Position, len(active))
	for i, p := range active {
		positions[i] = Position{
			ApplicationID: p.ApplicationID,
			Position:      i + 1,
			IsWinner:      i == 0,
		}
	}
	return positions, nil
}

// HitasQueue lists the apartment's entries by order. Entries whose
// application is excluded (for example rejected) are dropped before calling.
func HitasQueue(entries []HitasEntry) []Position {
	ordered := slices.Clone(entries)
	slices.SortFunc(ordered, func(a, b HitasEntry) int {
		return cmp.Compare(a.Order, b.Order)
	})

	positions := make([]Position, len(ordered))
	for i, e := range ordered {
		positions[i] = Position{
			ApplicationID: e.ApplicationID,
			Position:      i + 1,
			IsWinner:      i == 0,
		}
	}
	return positions
}
