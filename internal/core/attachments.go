package core

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"limscore/internal/blob"
	"limscore/pkg/domain"
)

// AttachFile stores the payload in the blob store and records the attachment
// metadata on the part. The blob key is a fresh UUID, so file names never
// collide across parts.
func (s *Service) AttachFile(ctx context.Context, actor Actor, partID, fileName, contentType string, payload io.Reader) (att Attachment, res Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "part.attach", start, err) }(s.now())

	if s.blobs == nil {
		return Attachment{}, Result{}, domain.ValidationError{Field: "blob_store", Reason: "no blob backend configured"}
	}
	if fileName == "" {
		return Attachment{}, Result{}, domain.ValidationError{Field: "file_name", Reason: "cannot be empty"}
	}
	if part, ok := s.store.GetPart(partID); !ok {
		return Attachment{}, Result{}, domain.NotFoundError{Entity: EntityPart, ID: partID}
	} else if authErr := authorize(actor, part.OwnerID, "attach file to "+part.LabName); authErr != nil {
		return Attachment{}, Result{}, authErr
	}

	fileID := uuid.NewString()
	info, putErr := s.blobs.Put(ctx, fileID, payload, blob.PutOptions{
		ContentType: contentType,
		Metadata: map[string]string{
			"file_name": fileName,
			"part_id":   partID,
		},
	})
	if putErr != nil {
		return Attachment{}, Result{}, putErr
	}
	att = Attachment{
		FileName:    fileName,
		ContentType: contentType,
		FileSize:    info.Size,
		FileID:      fileID,
	}
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		if _, ok := tx.FindPart(partID); !ok {
			return domain.NotFoundError{Entity: EntityPart, ID: partID}
		}
		if _, upErr := tx.UpdatePart(partID, func(p *Part) error {
			p.Attachments = append(p.Attachments, att)
			return nil
		}); upErr != nil {
			return upErr
		}
		return appendOperation(tx, actor, "part.attach", LevelCreate, map[string]any{
			"part_id":   partID,
			"file_id":   fileID,
			"file_name": fileName,
		})
	})
	if err != nil {
		// The metadata never committed; drop the orphaned payload.
		_, _ = s.blobs.Delete(ctx, fileID)
		return Attachment{}, res, err
	}
	return att, res, nil
}

// OpenAttachment returns the attachment metadata and a reader over its bytes.
// The caller closes the reader.
func (s *Service) OpenAttachment(ctx context.Context, partID, fileID string) (Attachment, io.ReadCloser, error) {
	if s.blobs == nil {
		return Attachment{}, nil, domain.ValidationError{Field: "blob_store", Reason: "no blob backend configured"}
	}
	part, ok := s.store.GetPart(partID)
	if !ok {
		return Attachment{}, nil, domain.NotFoundError{Entity: EntityPart, ID: partID}
	}
	for _, att := range part.Attachments {
		if att.FileID != fileID {
			continue
		}
		_, rc, err := s.blobs.Get(ctx, fileID)
		if err != nil {
			return Attachment{}, nil, err
		}
		return att, rc, nil
	}
	return Attachment{}, nil, domain.NotFoundError{Entity: EntityPart, ID: fileID}
}
