package core

import (
	"context"
	"fmt"
)

// DefaultPickListRule blocks commits that leave a user with more than one
// default pick list.
type DefaultPickListRule struct{}

func (DefaultPickListRule) Name() string { return "single-default-picklist" }

func (DefaultPickListRule) Evaluate(_ context.Context, view TransactionView, changes []Change) (Result, error) {
	if !touchesEntity(changes, EntityPickList) {
		return Result{}, nil
	}
	var result Result
	defaults := map[string]string{}
	for _, list := range view.ListPickLists() {
		if !list.Default {
			continue
		}
		if prev, dup := defaults[list.OwnerID]; dup {
			result.Violations = append(result.Violations, Violation{
				Rule:     "single-default-picklist",
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("user %s has two default pick lists (%s and %s)", list.OwnerID, prev, list.ID),
				Entity:   EntityPickList,
				EntityID: list.ID,
			})
			continue
		}
		defaults[list.OwnerID] = list.ID
	}
	return result, nil
}

var _ Rule = DefaultPickListRule{}
