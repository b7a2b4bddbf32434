package core

import (
	"context"
	"fmt"
)

// PickListCountRule blocks commits where a pick list's cached parts count
// disagrees with its membership.
type PickListCountRule struct{}

func (PickListCountRule) Name() string { return "picklist-count" }

func (PickListCountRule) Evaluate(_ context.Context, view TransactionView, changes []Change) (Result, error) {
	if !touchesEntity(changes, EntityPickList) {
		return Result{}, nil
	}
	var result Result
	for _, list := range view.ListPickLists() {
		if list.PartsCount == len(list.Parts) {
			continue
		}
		result.Violations = append(result.Violations, Violation{
			Rule:     "picklist-count",
			Severity: SeverityBlock,
			Message:  fmt.Sprintf("pick list %s caches %d parts but holds %d", list.ID, list.PartsCount, len(list.Parts)),
			Entity:   EntityPickList,
			EntityID: list.ID,
		})
	}
	return result, nil
}

var _ Rule = PickListCountRule{}
