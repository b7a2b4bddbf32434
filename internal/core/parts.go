package core

import (
	"context"
	"strconv"
	"strings"
	"time"

	"limscore/pkg/domain"
)

// labCounterKey names the lab-wide sequence for a prefix.
func labCounterKey(prefix string) string { return "lab:" + prefix }

// personalCounterKey names the per-owner sequence for a prefix.
func personalCounterKey(ownerID, prefix string) string {
	return "personal:" + ownerID + ":" + prefix
}

// PartInput carries the caller-supplied fields for part creation. Identity
// fields (lab and personal names) are allocated by the registry, never
// accepted from the caller.
type PartInput struct {
	OwnerID        string
	OwnerName      string
	SampleType     SampleType
	LabPrefix      string
	PersonalPrefix string
	Comment        string
	SampleDate     *time.Time
	Tags           []string
	Content        Content
}

// PartPatch describes an update to a part. Pointers distinguish "leave alone"
// from "set". Identity fields are present only so attempts to change them can
// be rejected explicitly.
type PartPatch struct {
	OwnerID      *string
	LabName      *string
	PersonalName *string
	Comment      *string
	SampleDate   *time.Time
	Tags         *[]string
	Content      *Content
}

// CreatePart allocates identity for a new sample and persists it. Lab and
// personal IDs come from named sequences incremented inside the transaction,
// so concurrent creations can never share a value.
func (s *Service) CreatePart(ctx context.Context, actor Actor, input PartInput) (part Part, res Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "part.create", start, err) }(s.now())

	if input.OwnerID == "" {
		input.OwnerID = actor.ID
		input.OwnerName = actor.Name
	}
	if input.OwnerID == "" {
		return Part{}, Result{}, domain.ValidationError{Field: "owner_id", Reason: "cannot be empty"}
	}
	if strings.TrimSpace(input.LabPrefix) == "" {
		return Part{}, Result{}, domain.ValidationError{Field: "lab_prefix", Reason: "cannot be empty"}
	}
	if strings.TrimSpace(input.PersonalPrefix) == "" {
		return Part{}, Result{}, domain.ValidationError{Field: "personal_prefix", Reason: "cannot be empty"}
	}
	if err = domain.ValidateContent(input.SampleType, input.Content); err != nil {
		return Part{}, Result{}, err
	}

	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		labID, seqErr := tx.NextSequence(labCounterKey(input.LabPrefix))
		if seqErr != nil {
			return seqErr
		}
		personalID, seqErr := tx.NextSequence(personalCounterKey(input.OwnerID, input.PersonalPrefix))
		if seqErr != nil {
			return seqErr
		}
		candidate := Part{
			LabPrefix:      input.LabPrefix,
			LabID:          labID,
			LabName:        input.LabPrefix + strconv.FormatInt(labID, 10),
			PersonalPrefix: input.PersonalPrefix,
			PersonalID:     personalID,
			PersonalName:   input.PersonalPrefix + strconv.FormatInt(personalID, 10),
			OwnerID:        input.OwnerID,
			OwnerName:      input.OwnerName,
			SampleType:     input.SampleType,
			Comment:        input.Comment,
			SampleDate:     input.SampleDate,
			Tags:           input.Tags,
			Content:        input.Content,
		}
		created, createErr := tx.CreatePart(candidate)
		if createErr != nil {
			return createErr
		}
		part = created
		return appendOperation(tx, actor, "part.create", LevelCreate, map[string]any{
			"part_id":  created.ID,
			"lab_name": created.LabName,
		})
	})
	if err != nil {
		return Part{}, res, err
	}
	return part, res, nil
}

// UpdatePart merges content, tags, comment, and sample date. Identity fields
// are immutable; patches touching them fail with ImmutableFieldError. The
// pre-image is archived and linked through HistoryID.
func (s *Service) UpdatePart(ctx context.Context, actor Actor, partID string, patch PartPatch) (part Part, res Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "part.update", start, err) }(s.now())

	switch {
	case patch.OwnerID != nil:
		return Part{}, Result{}, domain.ImmutableFieldError{Field: "owner_id"}
	case patch.LabName != nil:
		return Part{}, Result{}, domain.ImmutableFieldError{Field: "lab_name"}
	case patch.PersonalName != nil:
		return Part{}, Result{}, domain.ImmutableFieldError{Field: "personal_name"}
	}

	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		current, ok := tx.FindPart(partID)
		if !ok {
			return domain.NotFoundError{Entity: EntityPart, ID: partID}
		}
		if authErr := authorize(actor, current.OwnerID, "update part "+current.LabName); authErr != nil {
			return authErr
		}
		if patch.Content != nil {
			if vErr := domain.ValidateContent(current.SampleType, *patch.Content); vErr != nil {
				return vErr
			}
		}
		historyID, histErr := tx.AppendPartHistory(partID, current)
		if histErr != nil {
			return histErr
		}
		updated, upErr := tx.UpdatePart(partID, func(p *Part) error {
			if patch.Comment != nil {
				p.Comment = *patch.Comment
			}
			if patch.SampleDate != nil {
				d := *patch.SampleDate
				p.SampleDate = &d
			}
			if patch.Tags != nil {
				p.Tags = append([]string(nil), (*patch.Tags)...)
			}
			if patch.Content != nil {
				p.Content = patch.Content.Clone()
			}
			p.HistoryID = historyID
			return nil
		})
		if upErr != nil {
			return upErr
		}
		part = updated
		return appendOperation(tx, actor, "part.update", LevelModify, map[string]any{
			"part_id": partID,
		})
	})
	if err != nil {
		return Part{}, res, err
	}
	return part, res, nil
}

// DeletePart removes a part immediately when the actor is an admin, or when
// the owner requests it within the deletion grace window. Older parts queue a
// PartDeletionRequest for administrator review and the call returns
// DeferredDeletionError after the request has been persisted.
func (s *Service) DeletePart(ctx context.Context, actor Actor, partID string) (res Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "part.delete", start, err) }(s.now())

	var deferred *domain.DeferredDeletionError
	now := s.now()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		part, ok := tx.FindPart(partID)
		if !ok {
			return domain.NotFoundError{Entity: EntityPart, ID: partID}
		}
		if authErr := authorize(actor, part.OwnerID, "delete part "+part.LabName); authErr != nil {
			return authErr
		}
		if actor.IsAdmin() || now.Sub(part.CreatedAt) < partDeletionGrace {
			if delErr := tx.DeletePart(partID); delErr != nil {
				return delErr
			}
			if reqErr := tx.DeleteDeletionRequest(partID); reqErr != nil {
				return reqErr
			}
			level := LevelModify
			if actor.IsAdmin() && actor.ID != part.OwnerID {
				level = LevelAdmin
			}
			return appendOperation(tx, actor, "part.delete", level, map[string]any{
				"part_id":  partID,
				"lab_name": part.LabName,
			})
		}
		request, reqErr := tx.UpsertDeletionRequest(partID, func(r *PartDeletionRequest) error {
			r.SenderID = actor.ID
			r.SenderName = actor.Name
			r.RequestedCount++
			r.RequestedAt = append(r.RequestedAt, now)
			return nil
		})
		if reqErr != nil {
			return reqErr
		}
		deferred = &domain.DeferredDeletionError{PartID: partID, Requests: request.RequestedCount}
		return appendOperation(tx, actor, "part.deletion_request", LevelCreate, map[string]any{
			"part_id": partID,
		})
	})
	if err != nil {
		return res, err
	}
	if deferred != nil {
		return res, *deferred
	}
	return res, nil
}

// GetPart retrieves a part by ID.
func (s *Service) GetPart(partID string) (Part, error) {
	part, ok := s.store.GetPart(partID)
	if !ok {
		return Part{}, domain.NotFoundError{Entity: EntityPart, ID: partID}
	}
	return part, nil
}

// ListParts returns all parts ordered by lab name.
func (s *Service) ListParts() []Part { return s.store.ListParts() }

// ListPartsByOwner returns the parts owned by the given user.
func (s *Service) ListPartsByOwner(ownerID string) []Part {
	return s.store.ListPartsByOwner(ownerID)
}

// ListPartsByType returns the parts of the given sample type.
func (s *Service) ListPartsByType(sampleType SampleType) []Part {
	return s.store.ListPartsByType(sampleType)
}

// GetPartHistory returns the archived version snapshots of a part.
func (s *Service) GetPartHistory(partID string) (PartHistory, error) {
	h, ok := s.store.GetPartHistory(partID)
	if !ok {
		return PartHistory{}, domain.NotFoundError{Entity: EntityPart, ID: partID}
	}
	return h, nil
}

// ListDeletionRequests returns the pending deferred deletion requests.
func (s *Service) ListDeletionRequests() []PartDeletionRequest {
	return s.store.ListDeletionRequests()
}
