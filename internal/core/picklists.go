package core

import (
	"context"
	"strings"
	"time"

	"limscore/pkg/domain"
)

// CreatePickList registers a named basket for the actor. When markDefault is
// set, any existing default for the owner is cleared in the same transaction.
func (s *Service) CreatePickList(ctx context.Context, actor Actor, name string, markDefault bool) (list PickList, res Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "picklist.create", start, err) }(s.now())

	if strings.TrimSpace(name) == "" {
		return PickList{}, Result{}, domain.ValidationError{Field: "name", Reason: "cannot be empty"}
	}
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		if markDefault {
			if clearErr := clearDefaultPickList(tx, actor.ID); clearErr != nil {
				return clearErr
			}
		}
		created, createErr := tx.CreatePickList(PickList{
			Name:    name,
			OwnerID: actor.ID,
			Parts:   []string{},
			Default: markDefault,
		})
		if createErr != nil {
			return createErr
		}
		list = created
		return appendOperation(tx, actor, "picklist.create", LevelCreate, map[string]any{
			"pick_list_id": created.ID,
			"name":         name,
		})
	})
	if err != nil {
		return PickList{}, res, err
	}
	return list, res, nil
}

// AddToPickList adds a part reference. Adding a part that is already present
// is a no-op; the call still succeeds and the count is unchanged.
func (s *Service) AddToPickList(ctx context.Context, actor Actor, listID, partID string) (list PickList, res Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "picklist.add", start, err) }(s.now())

	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		current, ok := tx.FindPickList(listID)
		if !ok {
			return domain.NotFoundError{Entity: EntityPickList, ID: listID}
		}
		if authErr := authorize(actor, current.OwnerID, "modify pick list "+current.Name); authErr != nil {
			return authErr
		}
		if _, ok := tx.FindPart(partID); !ok {
			return domain.NotFoundError{Entity: EntityPart, ID: partID}
		}
		if current.Contains(partID) {
			list = current
			return nil
		}
		updated, upErr := tx.UpdatePickList(listID, func(l *PickList) error {
			l.Parts = append(l.Parts, partID)
			return nil
		})
		if upErr != nil {
			return upErr
		}
		list = updated
		return appendOperation(tx, actor, "picklist.add", LevelModify, map[string]any{
			"pick_list_id": listID,
			"part_id":      partID,
		})
	})
	if err != nil {
		return PickList{}, res, err
	}
	return list, res, nil
}

// RemoveFromPickList drops a part reference. Removing a part that is not in
// the list succeeds silently.
func (s *Service) RemoveFromPickList(ctx context.Context, actor Actor, listID, partID string) (list PickList, res Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "picklist.remove", start, err) }(s.now())

	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		current, ok := tx.FindPickList(listID)
		if !ok {
			return domain.NotFoundError{Entity: EntityPickList, ID: listID}
		}
		if authErr := authorize(actor, current.OwnerID, "modify pick list "+current.Name); authErr != nil {
			return authErr
		}
		if !current.Contains(partID) {
			list = current
			return nil
		}
		updated, upErr := tx.UpdatePickList(listID, func(l *PickList) error {
			kept := l.Parts[:0]
			for _, id := range l.Parts {
				if id != partID {
					kept = append(kept, id)
				}
			}
			l.Parts = kept
			return nil
		})
		if upErr != nil {
			return upErr
		}
		list = updated
		return appendOperation(tx, actor, "picklist.remove", LevelModify, map[string]any{
			"pick_list_id": listID,
			"part_id":      partID,
		})
	})
	if err != nil {
		return PickList{}, res, err
	}
	return list, res, nil
}

// ClearPickList empties the list in one step.
func (s *Service) ClearPickList(ctx context.Context, actor Actor, listID string) (list PickList, res Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "picklist.clear", start, err) }(s.now())

	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		current, ok := tx.FindPickList(listID)
		if !ok {
			return domain.NotFoundError{Entity: EntityPickList, ID: listID}
		}
		if authErr := authorize(actor, current.OwnerID, "modify pick list "+current.Name); authErr != nil {
			return authErr
		}
		updated, upErr := tx.UpdatePickList(listID, func(l *PickList) error {
			l.Parts = []string{}
			return nil
		})
		if upErr != nil {
			return upErr
		}
		list = updated
		return appendOperation(tx, actor, "picklist.clear", LevelModify, map[string]any{
			"pick_list_id": listID,
		})
	})
	if err != nil {
		return PickList{}, res, err
	}
	return list, res, nil
}

// SetDefaultPickList marks the list as its owner's default and clears the
// flag from the previous default in the same transaction, so no state ever
// holds two defaults for one user.
func (s *Service) SetDefaultPickList(ctx context.Context, actor Actor, listID string) (list PickList, res Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "picklist.set_default", start, err) }(s.now())

	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		current, ok := tx.FindPickList(listID)
		if !ok {
			return domain.NotFoundError{Entity: EntityPickList, ID: listID}
		}
		if authErr := authorize(actor, current.OwnerID, "modify pick list "+current.Name); authErr != nil {
			return authErr
		}
		if clearErr := clearDefaultPickList(tx, current.OwnerID); clearErr != nil {
			return clearErr
		}
		updated, upErr := tx.UpdatePickList(listID, func(l *PickList) error {
			l.Default = true
			return nil
		})
		if upErr != nil {
			return upErr
		}
		list = updated
		return appendOperation(tx, actor, "picklist.set_default", LevelModify, map[string]any{
			"pick_list_id": listID,
		})
	})
	if err != nil {
		return PickList{}, res, err
	}
	return list, res, nil
}

// DeletePickList removes a non-default list. The default list cannot be
// deleted; pick another default first.
func (s *Service) DeletePickList(ctx context.Context, actor Actor, listID string) (res Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "picklist.delete", start, err) }(s.now())

	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		current, ok := tx.FindPickList(listID)
		if !ok {
			return domain.NotFoundError{Entity: EntityPickList, ID: listID}
		}
		if authErr := authorize(actor, current.OwnerID, "delete pick list "+current.Name); authErr != nil {
			return authErr
		}
		if current.Default {
			return domain.ValidationError{Field: "default", Reason: "the default pick list cannot be deleted"}
		}
		if delErr := tx.DeletePickList(listID); delErr != nil {
			return delErr
		}
		return appendOperation(tx, actor, "picklist.delete", LevelModify, map[string]any{
			"pick_list_id": listID,
		})
	})
	return res, err
}

// GetPickList retrieves a list by ID.
func (s *Service) GetPickList(listID string) (PickList, error) {
	list, ok := s.store.GetPickList(listID)
	if !ok {
		return PickList{}, domain.NotFoundError{Entity: EntityPickList, ID: listID}
	}
	return list, nil
}

// ListPickListsByOwner returns a user's lists ordered by name.
func (s *Service) ListPickListsByOwner(ownerID string) []PickList {
	return s.store.ListPickListsByOwner(ownerID)
}

// clearDefaultPickList drops the default flag from the owner's current
// default, if any.
func clearDefaultPickList(tx Transaction, ownerID string) error {
	for _, list := range tx.Snapshot().ListPickLists() {
		if list.OwnerID != ownerID || !list.Default {
			continue
		}
		if _, err := tx.UpdatePickList(list.ID, func(l *PickList) error {
			l.Default = false
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}
