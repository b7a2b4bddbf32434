package core

import (
	"context"
	"fmt"
)

// LocationHistoryRule blocks commits that rewrite a container's placement
// trail. The trail may only grow, and its verification timestamps must stay
// non-decreasing.
type LocationHistoryRule struct{}

func (LocationHistoryRule) Name() string { return "location-history-append-only" }

func (LocationHistoryRule) Evaluate(_ context.Context, _ TransactionView, changes []Change) (Result, error) {
	var result Result
	for _, ch := range changes {
		if ch.Entity != EntityPart || ch.Action != ActionUpdate {
			continue
		}
		before, ok := ch.Before.(Part)
		if !ok {
			continue
		}
		after, ok := ch.After.(Part)
		if !ok {
			continue
		}
		for _, bc := range before.Containers {
			ac, ok := after.FindContainer(bc.Barcode)
			if !ok {
				continue
			}
			if ac.LocationHistory.Len() < bc.LocationHistory.Len() {
				result.Violations = append(result.Violations, Violation{
					Rule:     "location-history-append-only",
					Severity: SeverityBlock,
					Message:  fmt.Sprintf("container %s placement trail shrank from %d to %d entries", bc.Barcode, bc.LocationHistory.Len(), ac.LocationHistory.Len()),
					Entity:   EntityContainer,
					EntityID: bc.Barcode,
				})
			}
		}
		for _, ac := range after.Containers {
			if !ac.LocationHistory.Ordered() {
				result.Violations = append(result.Violations, Violation{
					Rule:     "location-history-append-only",
					Severity: SeverityBlock,
					Message:  fmt.Sprintf("container %s placement trail is out of order", ac.Barcode),
					Entity:   EntityContainer,
					EntityID: ac.Barcode,
				})
			}
		}
	}
	return result, nil
}

var _ Rule = LocationHistoryRule{}
