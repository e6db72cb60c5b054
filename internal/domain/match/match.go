// Package match holds the pure matching and proximity rules. Everything here
// is side-effect free and deterministic given the same candidate ordering;
// persistence of any resulting linkage is the caller's job.
package match

import (
	"foundly-match-service/internal/domain/geo"
	"foundly-match-service/internal/domain/item"
)

// Find returns the first candidate that is a plausible counterpart for
// newItem, or nil when none qualifies. Filters, in order: the candidate is
// not the item itself, is well-formed (malformed records are skipped, never
// fatal), has the opposite status, the same category (case-sensitive as
// stored), lies within radiusKm when both sides carry a location (a missing
// location on either side disables only the distance check), and shares at
// least one title word.
func Find(newItem *item.Item, candidates []*item.Item, radiusKm float64) *item.Item {
	if newItem == nil || newItem.Validate() != nil {
		return nil
	}

	origin, hasOrigin := newItem.Coord()

	for _, candidate := range candidates {
		if candidate == nil || candidate.ID == newItem.ID {
			continue
		}
		if candidate.Validate() != nil {
			continue
		}
		if candidate.Status != newItem.Status.Opposite() {
			continue
		}
		if candidate.Category != newItem.Category {
			continue
		}
		if pos, ok := candidate.Coord(); hasOrigin && ok {
			if geo.DistanceKm(origin, pos) > radiusKm {
				continue
			}
		}
		if !HasCommonWord(newItem.Title, candidate.Title) {
			continue
		}
		return candidate
	}

	return nil
}

// Nearby returns every candidate within radiusKm of origin, in input order.
// The origin item itself, items without a location, and items owned by the
// origin's owner are excluded. Unlike Find this ignores status and category:
// the result is used to alert nearby users, not to pair items.
func Nearby(origin *item.Item, candidates []*item.Item, radiusKm float64) []*item.Item {
	if origin == nil {
		return nil
	}

	from, ok := origin.Coord()
	if !ok {
		return nil
	}

	var nearby []*item.Item
	for _, candidate := range candidates {
		if candidate == nil || candidate.ID == origin.ID {
			continue
		}
		if candidate.OwnedBy(origin.OwnerID) {
			continue
		}
		pos, ok := candidate.Coord()
		if !ok {
			continue
		}
		if geo.DistanceKm(from, pos) <= radiusKm {
			nearby = append(nearby, candidate)
		}
	}
	return nearby
}

// WithinRadius returns every item located within radiusKm of a raw
// coordinate, in input order. Used for map-style "what is around me" queries
// where the origin is a device position rather than an item.
func WithinRadius(origin geo.Coord, candidates []*item.Item, radiusKm float64) []*item.Item {
	var result []*item.Item
	for _, candidate := range candidates {
		if candidate == nil {
			continue
		}
		pos, ok := candidate.Coord()
		if !ok {
			continue
		}
		if geo.DistanceKm(origin, pos) <= radiusKm {
			result = append(result, candidate)
		}
	}
	return result
}
