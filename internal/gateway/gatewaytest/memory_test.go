package gatewaytest

import (
	"context"
	"errors"
	"testing"

	"agency_backoffice/internal/domain"
	"agency_backoffice/internal/gateway"
	"agency_backoffice/platform/apperr"

	"github.com/google/uuid"
)

func TestMemoryScopesReadsToAgency(t *testing.T) {
	store := New()
	mine, theirs := uuid.New(), uuid.New()
	other := store.SeedContact(domain.Contact{AgencyID: theirs, FirstName: "Jean", LastName: "Dupont"})

	if _, err := store.GetContact(context.Background(), mine, other.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found across agencies, got %v", err)
	}
	candidates, err := store.ContactCandidates(context.Background(), mine, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates for empty agency, got %d", len(candidates))
	}
}

func TestMemoryCountsFailedWrites(t *testing.T) {
	store := New()
	boom := errors.New("store down")
	store.FailOn(MethodInsertTask, boom)

	_, err := store.InsertTask(context.Background(), uuid.New(), gateway.NewTask{Title: "call back"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if store.Writes() != 1 || store.WritesTo(MethodInsertTask) != 1 {
		t.Fatalf("expected one attempted write, got %d", store.Writes())
	}
}

func TestMemoryCandidatesNewestFirst(t *testing.T) {
	store := New()
	agency := uuid.New()
	older := store.SeedProperty(domain.Property{AgencyID: agency, Reference: "APT-001"})
	newer := store.SeedProperty(domain.Property{AgencyID: agency, Reference: "APT-002"})

	got, err := store.PropertyCandidates(context.Background(), agency, gateway.PropertyFilter{}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != newer.ID {
		t.Fatalf("expected newest property %s first, got %+v (older %s)", newer.ID, got, older.ID)
	}
}
