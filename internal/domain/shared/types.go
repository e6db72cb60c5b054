package shared

import "github.com/google/uuid"

// MatchOutcome represents the result of processing one item-created event
type MatchOutcome struct {
	ItemID          uuid.UUID
	MatchedItemID   *uuid.UUID
	ProximityAlerts int
}

// Matched returns true if the event produced a cross-reference
func (o *MatchOutcome) Matched() bool {
	return o.MatchedItemID != nil
}
