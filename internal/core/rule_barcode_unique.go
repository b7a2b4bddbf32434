package core

import (
	"context"
	"fmt"

	"limscore/pkg/domain"
)

// BarcodeUniqueRule blocks a commit that would leave two active containers,
// or two container groups, sharing a barcode. Containers in the deleting
// state release their barcode and are skipped.
type BarcodeUniqueRule struct{}

func (BarcodeUniqueRule) Name() string { return "barcode-unique" }

func (BarcodeUniqueRule) Evaluate(_ context.Context, view TransactionView, changes []Change) (Result, error) {
	if !touchesEntity(changes, EntityPart, EntityContainerGroup) {
		return Result{}, nil
	}
	var result Result
	seen := map[string]string{}
	for _, part := range view.ListParts() {
		for _, c := range part.Containers {
			if c.Barcode == "" || c.CurrentStatus == StatusDeleting {
				continue
			}
			if prev, dup := seen[c.Barcode]; dup {
				result.Violations = append(result.Violations, Violation{
					Rule:     "barcode-unique",
					Severity: SeverityBlock,
					Message:  fmt.Sprintf("barcode %q held by parts %s and %s", c.Barcode, prev, part.ID),
					Entity:   EntityPart,
					EntityID: part.ID,
				})
				continue
			}
			seen[c.Barcode] = part.ID
		}
	}
	groupSeen := map[string]string{}
	for _, group := range view.ListContainerGroups() {
		if group.Barcode == "" {
			continue
		}
		if prev, dup := groupSeen[group.Barcode]; dup {
			result.Violations = append(result.Violations, Violation{
				Rule:     "barcode-unique",
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("barcode %q held by groups %s and %s", group.Barcode, prev, group.ID),
				Entity:   EntityContainerGroup,
				EntityID: group.ID,
			})
			continue
		}
		groupSeen[group.Barcode] = group.ID
	}
	return result, nil
}

// touchesEntity reports whether any change concerns one of the given entity types.
func touchesEntity(changes []Change, entities ...domain.EntityType) bool {
	for _, ch := range changes {
		for _, e := range entities {
			if ch.Entity == e {
				return true
			}
		}
	}
	return false
}

var _ Rule = BarcodeUniqueRule{}
