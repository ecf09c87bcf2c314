// Package queue holds the apartment queue ordering rules: HASO first-place
// conflict resolution and the HITAS children-first shuffle. It works on plain
// values so the rules can be exercised without a database.
package queue

import (
	"cmp"
	"fmt"
	"slices"

	"apartmentqueue/internal/types"

	"github.com/google/uuid"
)

// Priority is the view of one HASO apartment priority the resolver needs.
type Priority struct {
	ID                 uuid.UUID
	ApartmentID        uuid.UUID
	ApplicationID      uuid.UUID
	PriorityNumber     int
	RightOfOccupancyID int
	Approved           bool
	Active             bool
}

// Winners returns, for every apartment with at least one active priority,
// the active priority whose application has the smallest right of occupancy
// id. Two different applications sharing that id for one apartment is
// reported as ErrDuplicateOrderingKey.
func Winners(priorities []Priority) (map[uuid.UUID]Priority, error) {
	winners := make(map[uuid.UUID]Priority)
	seen := make(map[uuid.UUID]map[int]uuid.UUID)

	for _, p := range priorities {
		if !p.Active {
			continue
		}

		owners, ok := seen[p.ApartmentID]
		if !ok {
			owners = make(map[int]uuid.UUID)
			seen[p.ApartmentID] = owners
		}
		if owner, dup := owners[p.RightOfOccupancyID]; dup && owner != p.ApplicationID {
			return nil, fmt.Errorf(
				"%w: %d on apartment %s (applications %s and %s)",
				types.ErrDuplicateOrderingKey,
				p.RightOfOccupancyID,
				p.ApartmentID,
				owner,
				p.ApplicationID,
			)
		}
		owners[p.RightOfOccupancyID] = p.ApplicationID

		current, ok := winners[p.ApartmentID]
		if !ok || p.RightOfOccupancyID < current.RightOfOccupancyID {
			winners[p.ApartmentID] = p
		}
	}

	return winners, nil
}

// FirstPlaceConflicts runs a single pass: for every approved application
// holding more than one winning priority, all but the most preferred one
// (lowest PriorityNumber) are returned for deactivation. The result is sorted
// by application then priority number.
func FirstPlaceConflicts(priorities []Priority) ([]Priority, error) {
	winners, err := Winners(priorities)
	if err != nil {
		return nil, err
	}

	firstPlaces := make(map[uuid.UUID][]Priority)
	for _, w := range winners {
		if !w.Approved {
			continue
		}
		firstPlaces[w.ApplicationID] = append(firstPlaces[w.ApplicationID], w)
	}

	var superseded []Priority
	for _, wins := range firstPlaces {
		if len(wins) < 2 {
			continue
		}
		slices.SortFunc(wins, byPriorityNumber)
		superseded = append(superseded, wins[1:]...)
	}

	slices.SortFunc(superseded, func(a, b Priority) int {
		if c := cmp.Compare(a.ApplicationID.String(), b.ApplicationID.String()); c != 0 {
			return c
		}
		return byPriorityNumber(a, b)
	})

	return superseded, nil
}

// MaxPasses bounds the fixed-point loop. Once the k approved applications
// with the smallest ids are settled they never change again, so at most one
// changing pass per approved application plus a final quiet pass is needed.
func MaxPasses(priorities []Priority) int {
	approved := make(map[uuid.UUID]struct{})
	for _, p := range priorities {
		if p.Approved {
			approved[p.ApplicationID] = struct{}{}
		}
	}
	return len(approved) + 1
}

// Resolution describes a completed in-memory fixed-point run.
type Resolution struct {
	Passes      int
	Deactivated [][]Priority
	Final       []Priority
}

func (r Resolution) DeactivatedCount() int {
	count := 0
	for _, pass := range r.Deactivated {
		count += len(pass)
	}
	return count
}

// Resolve applies FirstPlaceConflicts until a pass changes nothing. The input
// slice is not modified.
func Resolve(priorities []Priority) (Resolution, error) {
	state := slices.Clone(priorities)
	index := make(map[uuid.UUID]int, len(state))
	for i, p := range state {
		index[p.ID] = i
	}

	limit := MaxPasses(state)
	resolution := Resolution{}

	for {
		if resolution.Passes >= limit {
			return resolution, fmt.Errorf(
				"%w: still changing after %d passes",
				types.ErrNonTermination,
				resolution.Passes,
			)
		}
		resolution.Passes++

		superseded, err := FirstPlaceConflicts(state)
		if err != nil {
			return resolution, err
		}
		if len(superseded) == 0 {
			break
		}

		for _, p := range superseded {
			state[index[p.ID]].Active = false
		}
		resolution.Deactivated = append(resolution.Deactivated, superseded)
	}

	resolution.Final = state
	return resolution, nil
}

// FirstPlaceCount returns how many winning priorities each application holds.
func FirstPlaceCount(priorities []Priority) (map[uuid.UUID]int, error) {
	winners, err := Winners(priorities)
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int)
	for _, w := range winners {
		counts[w.ApplicationID]++
	}
	return counts, nil
}

func byPriorityNumber(a, b Priority) int {
	if c := cmp.Compare(a.PriorityNumber, b.PriorityNumber); c != 0 {
		return c
	}
	return cmp.Compare(a.ApartmentID.String(), b.ApartmentID.String())
}
