package core

import (
	"context"
	"time"

	"limscore/pkg/domain"
)

// ContainerInput carries the caller-supplied fields for a container
// assignment. WellID and WellName apply to well containers placed inside a
// group; LocationID, when set, is the intended storage position confirmed at
// verification time.
type ContainerInput struct {
	CType         ContainerType
	Barcode       string
	ParentGroupID string
	WellID        int
	WellName      string
	LocationID    string
}

// GroupInput carries the caller-supplied fields for a container group.
type GroupInput struct {
	CType      GroupType
	Barcode    string
	LocationID string
}

// AssignContainer records a new pending container on a part. The barcode must
// not be held by any active container or group; pending assignments are
// included in that check, containers in the deleting state are not.
func (s *Service) AssignContainer(ctx context.Context, actor Actor, partID string, input ContainerInput) (container Container, res Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "container.assign", start, err) }(s.now())

	if input.Barcode == "" {
		return Container{}, Result{}, domain.ValidationError{Field: "barcode", Reason: "cannot be empty"}
	}
	switch input.CType {
	case ContainerTube, ContainerWell:
	default:
		return Container{}, Result{}, domain.ValidationError{Field: "ctype", Reason: "must be tube or well"}
	}

	now := s.now()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		part, ok := tx.FindPart(partID)
		if !ok {
			return domain.NotFoundError{Entity: EntityPart, ID: partID}
		}
		if authErr := authorize(actor, part.OwnerID, "assign container to "+part.LabName); authErr != nil {
			return authErr
		}
		if barcodeHeld(tx.Snapshot(), input.Barcode) {
			return domain.DuplicateBarcodeError{Barcode: input.Barcode}
		}
		if purgeErr := purgeWithdrawnBarcode(tx, input.Barcode); purgeErr != nil {
			return purgeErr
		}
		if input.ParentGroupID != "" {
			if _, ok := tx.FindContainerGroup(input.ParentGroupID); !ok {
				return domain.NotFoundError{Entity: EntityContainerGroup, ID: input.ParentGroupID}
			}
		}
		if input.LocationID != "" {
			if _, ok := tx.FindLocation(input.LocationID); !ok {
				return domain.NotFoundError{Entity: EntityLocation, ID: input.LocationID}
			}
		}
		candidate := Container{
			CType:           input.CType,
			Barcode:         input.Barcode,
			CurrentStatus:   StatusPending,
			OperatorID:      actor.ID,
			ParentGroupID:   input.ParentGroupID,
			WellID:          input.WellID,
			WellName:        input.WellName,
			LocationID:      input.LocationID,
			AssignedAt:      now,
			LocationHistory: domain.NewLocationTrail(),
		}
		if _, upErr := tx.UpdatePart(partID, func(p *Part) error {
			p.Containers = append(p.Containers, candidate)
			return nil
		}); upErr != nil {
			return upErr
		}
		container = candidate
		return appendOperation(tx, actor, "container.assign", LevelCreate, map[string]any{
			"part_id": partID,
			"barcode": input.Barcode,
		})
	})
	if err != nil {
		return Container{}, res, err
	}
	return container, res, nil
}

// VerifyContainer confirms a pending container was physically placed. The
// status moves to verified, VerifiedAt is stamped, and the first placement
// event is appended to the trail. A non-empty locationID overrides the
// position declared at assignment.
func (s *Service) VerifyContainer(ctx context.Context, actor Actor, barcode, locationID string) (container Container, res Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "container.verify", start, err) }(s.now())

	now := s.now()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		part, found, ok := tx.FindPartByBarcode(barcode)
		if !ok || found.CurrentStatus == StatusDeleting {
			return domain.NotFoundError{Entity: EntityContainer, ID: barcode}
		}
		if found.CurrentStatus != StatusPending {
			return domain.ValidationError{Field: "current_status", Reason: "container is not pending verification"}
		}
		if authErr := authorize(actor, part.OwnerID, "verify container "+barcode); authErr != nil {
			return authErr
		}
		target := locationID
		if target == "" {
			target = found.LocationID
		}
		if target != "" {
			if _, ok := tx.FindLocation(target); !ok {
				return domain.NotFoundError{Entity: EntityLocation, ID: target}
			}
		}
		updated, upErr := tx.UpdatePart(part.ID, func(p *Part) error {
			c := containerRef(p, barcode)
			c.CurrentStatus = StatusVerified
			c.VerifiedAt = &now
			c.LocationID = target
			c.LocationHistory.Append(LocationEvent{LocationID: target, VerifiedAt: now})
			return nil
		})
		if upErr != nil {
			return upErr
		}
		container, _ = updated.FindContainer(barcode)
		return appendOperation(tx, actor, "container.verify", LevelExport, map[string]any{
			"part_id":     part.ID,
			"barcode":     barcode,
			"location_id": target,
		})
	})
	if err != nil {
		return Container{}, res, err
	}
	return container, res, nil
}

// WithdrawContainer backs out a pending assignment. Its owner may withdraw
// within the grace window after assignment; the container moves to the
// deleting state, which releases its barcode. Admins may withdraw any pending
// container at any time.
func (s *Service) WithdrawContainer(ctx context.Context, actor Actor, barcode string) (res Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "container.withdraw", start, err) }(s.now())

	now := s.now()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		part, found, ok := tx.FindPartByBarcode(barcode)
		if !ok || found.CurrentStatus == StatusDeleting {
			return domain.NotFoundError{Entity: EntityContainer, ID: barcode}
		}
		if found.CurrentStatus != StatusPending {
			return domain.ValidationError{Field: "current_status", Reason: "only pending containers can be withdrawn"}
		}
		if authErr := authorize(actor, part.OwnerID, "withdraw container "+barcode); authErr != nil {
			return authErr
		}
		if !actor.IsAdmin() && now.Sub(found.AssignedAt) > containerWithdrawGrace {
			return domain.UnauthorizedError{Name: actor.Name, Operation: "withdraw container " + barcode + " after grace window"}
		}
		if _, upErr := tx.UpdatePart(part.ID, func(p *Part) error {
			containerRef(p, barcode).CurrentStatus = StatusDeleting
			return nil
		}); upErr != nil {
			return upErr
		}
		return appendOperation(tx, actor, "container.withdraw", LevelModify, map[string]any{
			"part_id": part.ID,
			"barcode": barcode,
		})
	})
	return res, err
}

// UnassignContainer removes a container from the given part. Only the part's
// owner or an admin may do so.
func (s *Service) UnassignContainer(ctx context.Context, actor Actor, partID, barcode string) (res Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "container.unassign", start, err) }(s.now())

	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		part, ok := tx.FindPart(partID)
		if !ok {
			return domain.NotFoundError{Entity: EntityPart, ID: partID}
		}
		if authErr := authorize(actor, part.OwnerID, "unassign container "+barcode); authErr != nil {
			return authErr
		}
		if _, ok := part.FindContainer(barcode); !ok {
			return domain.NotFoundError{Entity: EntityContainer, ID: barcode}
		}
		if _, upErr := tx.UpdatePart(partID, func(p *Part) error {
			p.Containers = removeContainer(p.Containers, barcode)
			return nil
		}); upErr != nil {
			return upErr
		}
		return appendOperation(tx, actor, "container.unassign", LevelModify, map[string]any{
			"part_id": partID,
			"barcode": barcode,
		})
	})
	return res, err
}

// ForceRemoveContainer deletes a container by bare barcode across all parts.
// Admin only.
func (s *Service) ForceRemoveContainer(ctx context.Context, actor Actor, barcode string) (res Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "container.force_remove", start, err) }(s.now())

	if !actor.IsAdmin() {
		return Result{}, domain.UnauthorizedError{Name: actor.Name, Operation: "force remove container " + barcode}
	}
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		part, _, ok := tx.FindPartByBarcode(barcode)
		if !ok {
			return domain.NotFoundError{Entity: EntityContainer, ID: barcode}
		}
		if _, upErr := tx.UpdatePart(part.ID, func(p *Part) error {
			p.Containers = removeContainer(p.Containers, barcode)
			return nil
		}); upErr != nil {
			return upErr
		}
		return appendOperation(tx, actor, "container.force_remove", LevelAdmin, map[string]any{
			"part_id": part.ID,
			"barcode": barcode,
		})
	})
	return res, err
}

// RecordLocationMove relocates a verified container and appends the placement
// event to its trail.
func (s *Service) RecordLocationMove(ctx context.Context, actor Actor, barcode, locationID string) (container Container, res Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "container.move", start, err) }(s.now())

	now := s.now()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		part, found, ok := tx.FindPartByBarcode(barcode)
		if !ok || found.CurrentStatus == StatusDeleting {
			return domain.NotFoundError{Entity: EntityContainer, ID: barcode}
		}
		if found.CurrentStatus != StatusVerified {
			return domain.ValidationError{Field: "current_status", Reason: "only verified containers can be moved"}
		}
		if _, ok := tx.FindLocation(locationID); !ok {
			return domain.NotFoundError{Entity: EntityLocation, ID: locationID}
		}
		updated, upErr := tx.UpdatePart(part.ID, func(p *Part) error {
			c := containerRef(p, barcode)
			c.LocationID = locationID
			c.LocationHistory.Append(LocationEvent{LocationID: locationID, VerifiedAt: now})
			return nil
		})
		if upErr != nil {
			return upErr
		}
		container, _ = updated.FindContainer(barcode)
		return appendOperation(tx, actor, "container.move", LevelExport, map[string]any{
			"part_id":     part.ID,
			"barcode":     barcode,
			"location_id": locationID,
		})
	})
	if err != nil {
		return Container{}, res, err
	}
	return container, res, nil
}

// FindContainerByBarcode returns the container carrying the barcode along
// with its owning part.
func (s *Service) FindContainerByBarcode(barcode string) (Part, Container, error) {
	part, container, ok := s.store.FindPartByBarcode(barcode)
	if !ok {
		return Part{}, Container{}, domain.NotFoundError{Entity: EntityContainer, ID: barcode}
	}
	return part, container, nil
}

// ListContainersByPart returns the containers embedded in a part.
func (s *Service) ListContainersByPart(partID string) ([]Container, error) {
	part, ok := s.store.GetPart(partID)
	if !ok {
		return nil, domain.NotFoundError{Entity: EntityPart, ID: partID}
	}
	return append([]Container(nil), part.Containers...), nil
}

// CreateContainerGroup registers a plate or rack. Group barcodes live in the
// same namespace as container barcodes.
func (s *Service) CreateContainerGroup(ctx context.Context, actor Actor, input GroupInput) (group ContainerGroup, res Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "group.create", start, err) }(s.now())

	if input.Barcode == "" {
		return ContainerGroup{}, Result{}, domain.ValidationError{Field: "barcode", Reason: "cannot be empty"}
	}
	switch input.CType {
	case GroupPlate, GroupRack:
	default:
		return ContainerGroup{}, Result{}, domain.ValidationError{Field: "ctype", Reason: "must be plate or rack"}
	}

	now := s.now()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		if barcodeHeld(tx.Snapshot(), input.Barcode) {
			return domain.DuplicateBarcodeError{Barcode: input.Barcode}
		}
		if purgeErr := purgeWithdrawnBarcode(tx, input.Barcode); purgeErr != nil {
			return purgeErr
		}
		if input.LocationID != "" {
			if _, ok := tx.FindLocation(input.LocationID); !ok {
				return domain.NotFoundError{Entity: EntityLocation, ID: input.LocationID}
			}
		}
		candidate := ContainerGroup{
			CType:           input.CType,
			Barcode:         input.Barcode,
			CurrentStatus:   StatusVerified,
			LocationID:      input.LocationID,
			LocationHistory: domain.NewLocationTrail(),
		}
		if input.LocationID != "" {
			// Initial placement counts as the first history entry.
			candidate.VerifiedAt = &now
			candidate.LocationHistory.Append(LocationEvent{LocationID: input.LocationID, VerifiedAt: now})
		}
		created, createErr := tx.CreateContainerGroup(candidate)
		if createErr != nil {
			return createErr
		}
		group = created
		return appendOperation(tx, actor, "group.create", LevelCreate, map[string]any{
			"group_id": created.ID,
			"barcode":  input.Barcode,
		})
	})
	if err != nil {
		return ContainerGroup{}, res, err
	}
	return group, res, nil
}

// MoveContainerGroup relocates a group and appends the placement event.
func (s *Service) MoveContainerGroup(ctx context.Context, actor Actor, groupID, locationID string) (group ContainerGroup, res Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "group.move", start, err) }(s.now())

	now := s.now()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		if _, ok := tx.FindContainerGroup(groupID); !ok {
			return domain.NotFoundError{Entity: EntityContainerGroup, ID: groupID}
		}
		if _, ok := tx.FindLocation(locationID); !ok {
			return domain.NotFoundError{Entity: EntityLocation, ID: locationID}
		}
		updated, upErr := tx.UpdateContainerGroup(groupID, func(g *ContainerGroup) error {
			g.LocationID = locationID
			g.VerifiedAt = &now
			g.LocationHistory.Append(LocationEvent{LocationID: locationID, VerifiedAt: now})
			return nil
		})
		if upErr != nil {
			return upErr
		}
		group = updated
		return appendOperation(tx, actor, "group.move", LevelExport, map[string]any{
			"group_id":    groupID,
			"location_id": locationID,
		})
	})
	if err != nil {
		return ContainerGroup{}, res, err
	}
	return group, res, nil
}

// GetContainerGroup retrieves a group by ID.
func (s *Service) GetContainerGroup(groupID string) (ContainerGroup, error) {
	group, ok := s.store.GetContainerGroup(groupID)
	if !ok {
		return ContainerGroup{}, domain.NotFoundError{Entity: EntityContainerGroup, ID: groupID}
	}
	return group, nil
}

// GetContainerGroupByBarcode retrieves a group by its barcode. Groups share
// the barcode namespace with containers, so scanner-driven callers resolve a
// scanned plate or rack through this lookup.
func (s *Service) GetContainerGroupByBarcode(barcode string) (ContainerGroup, error) {
	group, ok := s.store.FindContainerGroupByBarcode(barcode)
	if !ok {
		return ContainerGroup{}, domain.NotFoundError{Entity: EntityContainerGroup, ID: barcode}
	}
	return group, nil
}

// ListContainerGroups returns all groups ordered by barcode.
func (s *Service) ListContainerGroups() []ContainerGroup { return s.store.ListContainerGroups() }

// CreateLocation registers a storage position.
func (s *Service) CreateLocation(ctx context.Context, actor Actor, barcode, description string) (location Location, res Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "location.create", start, err) }(s.now())

	if barcode == "" {
		return Location{}, Result{}, domain.ValidationError{Field: "barcode", Reason: "cannot be empty"}
	}
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		for _, existing := range tx.Snapshot().ListLocations() {
			if existing.Barcode == barcode {
				return domain.DuplicateBarcodeError{Barcode: barcode}
			}
		}
		created, createErr := tx.CreateLocation(Location{Barcode: barcode, Description: description})
		if createErr != nil {
			return createErr
		}
		location = created
		return appendOperation(tx, actor, "location.create", LevelCreate, map[string]any{
			"location_id": created.ID,
			"barcode":     barcode,
		})
	})
	if err != nil {
		return Location{}, res, err
	}
	return location, res, nil
}

// GetLocation retrieves a location by ID.
func (s *Service) GetLocation(locationID string) (Location, error) {
	location, ok := s.store.GetLocation(locationID)
	if !ok {
		return Location{}, domain.NotFoundError{Entity: EntityLocation, ID: locationID}
	}
	return location, nil
}

// ListLocations returns all locations ordered by barcode.
func (s *Service) ListLocations() []Location { return s.store.ListLocations() }

// barcodeHeld reports whether the barcode is held by any active container or
// any group in the snapshot.
func barcodeHeld(view TransactionView, barcode string) bool {
	if _, c, ok := view.FindPartByBarcode(barcode); ok && c.CurrentStatus != StatusDeleting {
		return true
	}
	for _, g := range view.ListContainerGroups() {
		if g.Barcode == barcode {
			return true
		}
	}
	return false
}

// purgeWithdrawnBarcode drops any container in the deleting state that still
// holds the barcode. Reassigning a released barcode supersedes the withdrawn
// record; leaving it embedded would make barcode lookups ambiguous.
func purgeWithdrawnBarcode(tx Transaction, barcode string) error {
	for {
		stale, c, ok := tx.FindPartByBarcode(barcode)
		if !ok || c.CurrentStatus != StatusDeleting {
			return nil
		}
		if _, err := tx.UpdatePart(stale.ID, func(p *Part) error {
			p.Containers = removeContainer(p.Containers, barcode)
			return nil
		}); err != nil {
			return err
		}
	}
}

// containerRef returns a pointer to the embedded container with the barcode.
// Callers must have checked existence first.
func containerRef(p *Part, barcode string) *Container {
	for i := range p.Containers {
		if p.Containers[i].Barcode == barcode {
			return &p.Containers[i]
		}
	}
	return nil
}

func removeContainer(containers []Container, barcode string) []Container {
	kept := containers[:0]
	for _, c := range containers {
		if c.Barcode != barcode {
			kept = append(kept, c)
		}
	}
	return kept
}
