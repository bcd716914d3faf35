package usecase

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"locar-esign/internal/domain/entity"
)

type fakeSignature struct {
	transitionCalls int
	lastRentalID    int64
	result          ReconcileResult
	err             error
}

func (f *fakeSignature) SubmitForSignature(ctx context.Context, rentalID int64) (*entity.Rental, error) {
	return nil, nil
}

func (f *fakeSignature) Reconcile(ctx context.Context, rental *entity.Rental) (ReconcileResult, error) {
	return ReconcileUnchanged, nil
}

func (f *fakeSignature) TransitionSigned(ctx context.Context, rental *entity.Rental) (ReconcileResult, error) {
	f.transitionCalls++
	f.lastRentalID = rental.ID
	return f.result, f.err
}

func TestProcessWebhookPackageSigned(t *testing.T) {
	rental := pendingRental(42)
	rental.DocumentID = "doc-1"
	rental.PackageID = "pkg-1"
	repo := newFakeRepo(rental)
	signature := &fakeSignature{result: ReconcileSigned}
	u := NewWebhookUsecase(repo, signature, zap.NewNop())

	err := u.ProcessWebhook(context.Background(), &entity.WebhookPayload{
		Event:   entity.WebhookEventPackageSigned,
		Package: entity.WebhookPackage{ID: "pkg-1"},
	})
	if err != nil {
		t.Fatalf("ProcessWebhook() error = %v", err)
	}
	if signature.transitionCalls != 1 || signature.lastRentalID != 42 {
		t.Fatalf("transition calls = %d (rental %d), want 1 call for rental 42",
			signature.transitionCalls, signature.lastRentalID)
	}
}

func TestProcessWebhookIgnoresUnrecognizedEvents(t *testing.T) {
	rental := pendingRental(42)
	rental.PackageID = "pkg-1"
	repo := newFakeRepo(rental)
	signature := &fakeSignature{}
	u := NewWebhookUsecase(repo, signature, zap.NewNop())

	for _, event := range []string{"package.expired", "package.viewed", "something.else"} {
		err := u.ProcessWebhook(context.Background(), &entity.WebhookPayload{
			Event:   event,
			Package: entity.WebhookPackage{ID: "pkg-1"},
		})
		if err != nil {
			t.Fatalf("ProcessWebhook(%q) error = %v", event, err)
		}
	}

	if signature.transitionCalls != 0 {
		t.Fatalf("transition calls = %d, want 0", signature.transitionCalls)
	}
	persisted, _ := repo.FindByID(context.Background(), 42)
	if persisted.Signed() {
		t.Fatal("rental mutated by unrecognized event")
	}
}

func TestProcessWebhookUnknownPackageIsAccepted(t *testing.T) {
	repo := newFakeRepo()
	signature := &fakeSignature{}
	u := NewWebhookUsecase(repo, signature, zap.NewNop())

	err := u.ProcessWebhook(context.Background(), &entity.WebhookPayload{
		Event:   entity.WebhookEventPackageSigned,
		Package: entity.WebhookPackage{ID: "pkg-unknown"},
	})
	if err != nil {
		t.Fatalf("ProcessWebhook() error = %v", err)
	}
	if signature.transitionCalls != 0 {
		t.Fatalf("transition calls = %d, want 0", signature.transitionCalls)
	}
}
