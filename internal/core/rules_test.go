package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"limscore/internal/infra/persistence/memory"
	"limscore/pkg/domain"
)

// The rules engine is the commit-time safety net: even writes that bypass the
// service layer cannot leave the committed state violating an invariant.

func TestBarcodeUniqueRuleBlocksDirectWrites(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	ctx := context.Background()

	seed := func(labName, barcode string) error {
		_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
			_, err := tx.CreatePart(domain.Part{
				LabName: labName,
				OwnerID: "u1",
				Containers: []domain.Container{{
					CType:         ContainerTube,
					Barcode:       barcode,
					CurrentStatus: StatusVerified,
				}},
			})
			return err
		})
		return err
	}
	if err := seed("pk1", "T100"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := seed("pk2", "T100")
	var rve domain.RuleViolationError
	if !errors.As(err, &rve) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
	if len(store.ListParts()) != 1 {
		t.Fatalf("blocked write must not commit")
	}

	// A deleting container releases its barcode.
	if err := seed("pk3", "T100"); err == nil {
		t.Fatalf("expected duplicate block before release")
	}
	_, err = store.RunInTransaction(ctx, func(tx Transaction) error {
		part := store.ListParts()[0]
		_, err := tx.UpdatePart(part.ID, func(p *domain.Part) error {
			p.Containers[0].CurrentStatus = StatusDeleting
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := seed("pk3", "T100"); err != nil {
		t.Fatalf("barcode should be free after release: %v", err)
	}
}

func TestLocationHistoryRuleBlocksShrinkingTrail(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	var partID string
	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		part, err := tx.CreatePart(domain.Part{
			LabName: "pk1",
			OwnerID: "u1",
			Containers: []domain.Container{{
				CType:         ContainerTube,
				Barcode:       "T100",
				CurrentStatus: StatusVerified,
				LocationHistory: domain.NewLocationTrail(
					domain.LocationEvent{LocationID: "L-1", VerifiedAt: now},
					domain.LocationEvent{LocationID: "L-2", VerifiedAt: now.Add(time.Hour)},
				),
			}},
		})
		partID = part.ID
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err = store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.UpdatePart(partID, func(p *domain.Part) error {
			p.Containers[0].LocationHistory = domain.NewLocationTrail(
				domain.LocationEvent{LocationID: "L-2", VerifiedAt: now.Add(time.Hour)},
			)
			return nil
		})
		return err
	})
	var rve domain.RuleViolationError
	if !errors.As(err, &rve) {
		t.Fatalf("expected RuleViolationError for shrunken trail, got %v", err)
	}
}

func TestDefaultPickListRuleBlocksSecondDefault(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	ctx := context.Background()

	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.CreatePickList(domain.PickList{Name: "a", OwnerID: "u1", Default: true})
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.CreatePickList(domain.PickList{Name: "b", OwnerID: "u1", Default: true})
		return err
	})
	var rve domain.RuleViolationError
	if !errors.As(err, &rve) {
		t.Fatalf("expected RuleViolationError for second default, got %v", err)
	}

	// Other owners keep their own default independently.
	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.CreatePickList(domain.PickList{Name: "c", OwnerID: "u2", Default: true})
		return err
	}); err != nil {
		t.Fatalf("second owner default: %v", err)
	}
}
