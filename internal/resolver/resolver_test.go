package resolver

import (
	"context"
	"errors"
	"testing"

	"agency_backoffice/internal/domain"
	"agency_backoffice/internal/gateway"
	"agency_backoffice/internal/gateway/gatewaytest"
	"agency_backoffice/platform/apperr"
	"agency_backoffice/platform/logger"

	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }

func newTestResolver(store *gatewaytest.Memory) *Resolver {
	return New(store, store, DefaultOptions(), logger.Nop())
}

func TestResolvePropertyNeverCrossesTenants(t *testing.T) {
	store := gatewaytest.New()
	mine, theirs := uuid.New(), uuid.New()
	foreign := store.SeedProperty(domain.Property{
		AgencyID: theirs, Reference: "APT-001",
		Address: domain.Address{Street: "12 rue de la Paix", City: "Paris", PostalCode: "75002"},
	})
	r := newTestResolver(store)

	for _, query := range []string{"APT-001", "rue de la paix", foreign.ID.String()} {
		outcome, err := r.ResolveProperty(context.Background(), mine, query, gateway.PropertyFilter{})
		if err != nil {
			t.Fatalf("query %q: unexpected error: %v", query, err)
		}
		if outcome.Status != StatusNotFound {
			t.Fatalf("query %q: expected not found, got %s", query, outcome.Status)
		}
	}
}

func TestResolveContactIDShortcutBeatsFuzzyDecoy(t *testing.T) {
	store := gatewaytest.New()
	agency := uuid.New()
	target := store.SeedContact(domain.Contact{AgencyID: agency, FirstName: "Paul", LastName: "Martin"})
	decoy := store.SeedContact(domain.Contact{
		AgencyID:  agency,
		FirstName: target.ID.String(),
		LastName:  target.ID.String(),
	})
	r := newTestResolver(store)

	outcome, err := r.ResolveContact(context.Background(), agency, target.ID.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Resolved() || outcome.Record.ID != target.ID {
		t.Fatalf("expected target %s, got %+v (decoy %s)", target.ID, outcome, decoy.ID)
	}
	if outcome.Tier != TierID {
		t.Fatalf("expected id tier, got %s", outcome.Tier)
	}
}

func TestResolveContactEmailShortcutBeatsNameMatch(t *testing.T) {
	store := gatewaytest.New()
	agency := uuid.New()
	owner := store.SeedContact(domain.Contact{
		AgencyID: agency, FirstName: "Claire", LastName: "Bernard", Email: strPtr("Marie@Agence.fr"),
	})
	store.SeedContact(domain.Contact{AgencyID: agency, FirstName: "Marie", LastName: "Agence"})
	r := newTestResolver(store)

	outcome, err := r.ResolveContact(context.Background(), agency, "marie@agence.fr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Resolved() || outcome.Record.ID != owner.ID || outcome.Tier != TierEmail {
		t.Fatalf("expected email owner via email tier, got %+v", outcome)
	}
}

func TestResolveContactPhoneShortcutMatchesLastDigits(t *testing.T) {
	store := gatewaytest.New()
	agency := uuid.New()
	owner := store.SeedContact(domain.Contact{
		AgencyID: agency, FirstName: "Luc", LastName: "Moreau", Phone: strPtr("06 12 34 56 78"),
	})
	store.SeedContact(domain.Contact{AgencyID: agency, FirstName: "Luc", LastName: "Morel", Phone: strPtr("06 99 99 99 99")})
	r := newTestResolver(store)

	outcome, err := r.ResolveContact(context.Background(), agency, "+33 6 12 34 56 78")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Resolved() || outcome.Record.ID != owner.ID || outcome.Tier != TierPhone {
		t.Fatalf("expected phone owner via phone tier, got %+v", outcome)
	}
}

func TestResolveContactFuzzyResolvesClearWinner(t *testing.T) {
	store := gatewaytest.New()
	agency := uuid.New()
	jean := store.SeedContact(domain.Contact{AgencyID: agency, FirstName: "Jean", LastName: "Dupont"})
	store.SeedContact(domain.Contact{AgencyID: agency, FirstName: "Sophie", LastName: "Lambert"})
	r := newTestResolver(store)

	outcome, err := r.ResolveContact(context.Background(), agency, "jean")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Resolved() || outcome.Record.ID != jean.ID || outcome.Tier != TierFuzzy {
		t.Fatalf("expected Jean Dupont via fuzzy tier, got %+v", outcome)
	}
}

func TestResolveContactExactNameBeatsLongerPrefixMatch(t *testing.T) {
	store := gatewaytest.New()
	agency := uuid.New()
	jean := store.SeedContact(domain.Contact{AgencyID: agency, FirstName: "Jean", LastName: "Dupont"})
	store.SeedContact(domain.Contact{AgencyID: agency, FirstName: "Jeanne", LastName: "Martin"})
	r := newTestResolver(store)

	outcome, err := r.ResolveContact(context.Background(), agency, "jean")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Resolved() || outcome.Record.ID != jean.ID {
		t.Fatalf("expected Jean Dupont, got %+v", outcome)
	}

	outcome, err = r.ResolveContact(context.Background(), agency, "jea")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Status != StatusAmbiguous {
		t.Fatalf("two prefix matches within the margin must stay ambiguous, got %s", outcome.Status)
	}
}

func TestResolveContactOnlyWellFormedEmailsHitTheEmailLookup(t *testing.T) {
	store := gatewaytest.New()
	agency := uuid.New()
	store.SeedContact(domain.Contact{AgencyID: agency, FirstName: "Jean", LastName: "Dupont"})
	store.FailOn(gatewaytest.MethodFindContactByEmail, errors.New("connection refused"))
	r := newTestResolver(store)

	for _, query := range []string{"dupont@", "jean dupont@example.fr", "@example.fr"} {
		if _, err := r.ResolveContact(context.Background(), agency, query); err != nil {
			t.Fatalf("query %q must skip the email lookup, got %v", query, err)
		}
	}
	_, err := r.ResolveContact(context.Background(), agency, "jean.dupont@example.fr")
	if !apperr.Is(err, apperr.KindResolution) {
		t.Fatalf("a well-formed email must reach the email lookup, got %v", err)
	}
}

func TestResolveContactFuzzyTieIsAmbiguous(t *testing.T) {
	store := gatewaytest.New()
	agency := uuid.New()
	store.SeedContact(domain.Contact{AgencyID: agency, FirstName: "Marie", LastName: "Dupont"})
	store.SeedContact(domain.Contact{AgencyID: agency, FirstName: "Pierre", LastName: "Dupont"})
	store.SeedContact(domain.Contact{AgencyID: agency, FirstName: "Anne", LastName: "Dupond"})
	store.SeedContact(domain.Contact{AgencyID: agency, FirstName: "Louis", LastName: "Dupuis"})
	r := newTestResolver(store)

	outcome, err := r.ResolveContact(context.Background(), agency, "dupont")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Status != StatusAmbiguous {
		t.Fatalf("expected ambiguous, got %s", outcome.Status)
	}
	if len(outcome.Suggestions) != 3 {
		t.Fatalf("expected three suggestions, got %v", outcome.Suggestions)
	}

	err = outcome.Err("contact", "dupont")
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind != apperr.KindAmbiguous || len(appErr.Suggestions) != 3 {
		t.Fatalf("expected ambiguous error with suggestions, got %v", err)
	}
}

func TestResolveContactEmptyPoolIsNotFound(t *testing.T) {
	store := gatewaytest.New()
	agency := uuid.New()
	store.SeedContact(domain.Contact{AgencyID: agency, FirstName: "Jean", LastName: "Dupont"})
	r := newTestResolver(store)

	outcome, err := r.ResolveContact(context.Background(), agency, "xyz-unknown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Status != StatusNotFound || len(outcome.Suggestions) != 0 {
		t.Fatalf("expected bare not found, got %+v", outcome)
	}
	if !apperr.Is(outcome.Err("contact", "xyz-unknown"), apperr.KindNotFound) {
		t.Fatal("expected not found error")
	}
}

func TestResolveBackendFailureIsNotNotFound(t *testing.T) {
	store := gatewaytest.New()
	store.FailOn(gatewaytest.MethodContactCandidates, errors.New("connection refused"))
	r := newTestResolver(store)

	_, err := r.ResolveContact(context.Background(), uuid.New(), "jean")
	if !apperr.Is(err, apperr.KindResolution) {
		t.Fatalf("expected resolution error, got %v", err)
	}
}

func TestResolveCancelledContextIsTimeout(t *testing.T) {
	store := gatewaytest.New()
	r := newTestResolver(store)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ResolveProperty(ctx, uuid.New(), "APT-001", gateway.PropertyFilter{})
	if !apperr.Is(err, apperr.KindTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestResolvePropertyByReferenceIgnoresCase(t *testing.T) {
	store := gatewaytest.New()
	agency := uuid.New()
	apt := store.SeedProperty(domain.Property{AgencyID: agency, Reference: "APT-001", Status: domain.PropertyPublished})
	r := newTestResolver(store)

	outcome, err := r.ResolveProperty(context.Background(), agency, "apt-001", gateway.PropertyFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Resolved() || outcome.Record.ID != apt.ID || outcome.Tier != TierReference {
		t.Fatalf("expected reference match, got %+v", outcome)
	}
}

func TestResolvePropertyFuzzyByStreetHonoursFilter(t *testing.T) {
	store := gatewaytest.New()
	agency := uuid.New()
	lyon := "Lyon"
	store.SeedProperty(domain.Property{
		AgencyID: agency, Reference: "MAI-010",
		Address: domain.Address{Street: "8 avenue Foch", City: "Paris", PostalCode: "75016"},
	})
	target := store.SeedProperty(domain.Property{
		AgencyID: agency, Reference: "MAI-011",
		Address: domain.Address{Street: "3 avenue Foch", City: "Lyon", PostalCode: "69006"},
	})
	r := newTestResolver(store)

	unfiltered, err := r.ResolveProperty(context.Background(), agency, "avenue foch", gateway.PropertyFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unfiltered.Status != StatusAmbiguous {
		t.Fatalf("expected two matching streets to be ambiguous, got %s", unfiltered.Status)
	}

	filtered, err := r.ResolveProperty(context.Background(), agency, "avenue foch", gateway.PropertyFilter{City: &lyon})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !filtered.Resolved() || filtered.Record.ID != target.ID {
		t.Fatalf("expected city filter to single out %s, got %+v", target.ID, filtered)
	}
}

func TestResolveRejectsEmptyQuery(t *testing.T) {
	r := newTestResolver(gatewaytest.New())
	_, err := r.ResolveContact(context.Background(), uuid.New(), "   ")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
